package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Hermela-code/minigit/internal/clierr"
	"github.com/Hermela-code/minigit/internal/repository"
)

var addCmd = newRepoCommand(
	"add <path>...",
	"Stage file contents for the next commit",
	cobra.MinimumNArgs(1),
	func(repo *repository.Repository, args []string) error {
		result, err := repo.Add(args)
		if err != nil {
			return err
		}
		for _, missing := range result.Missing {
			fmt.Printf("warning: %v\n", clierr.NewPathMissing(missing, nil))
		}
		return nil
	},
)

func init() {
	rootCmd.AddCommand(addCmd)
}
