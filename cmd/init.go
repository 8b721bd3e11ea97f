package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Hermela-code/minigit/internal/repository"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty minigit repository in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		if _, err := repository.Init(afero.NewOsFs(), cwd, protectedFiles); err != nil {
			return err
		}
		fmt.Printf("Initialized empty minigit repository in %s\n", cwd)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
