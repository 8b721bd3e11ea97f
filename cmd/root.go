package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Hermela-code/minigit/internal/clierr"
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "minigit",
	Short: "minigit is a minimal content-addressed version control tool",
	Long: `minigit tracks a flat working directory as a content-addressed
commit graph: blobs and commits hashed and stored under .minigit,
branches and a HEAD pointer, a plain-text staging index, and a
whole-file three-way merge.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

// Execute runs the root command and exits the process with the exit
// code the error's clierr.Kind maps to (0 for a reported merge
// conflict, 2 for a usage error, 1 otherwise).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "minigit: %v\n", err)
		os.Exit(clierr.ExitCode(err))
	}
}
