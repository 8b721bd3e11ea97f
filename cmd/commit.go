package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Hermela-code/minigit/internal/clierr"
	"github.com/Hermela-code/minigit/internal/repository"
)

var commitMessage string

var commitCmd = newRepoCommand(
	"commit",
	"Record a new commit from the staged index",
	cobra.NoArgs,
	func(repo *repository.Repository, args []string) error {
		if commitMessage == "" {
			return clierr.NewUsageError("commit requires -m <message>")
		}
		hash, err := repo.Commit(commitMessage)
		if err != nil {
			return err
		}
		log.Debugf("wrote commit %s in %s", hash, repo.GitDir())
		fmt.Printf("%s\n", hash)
		return nil
	},
)

func init() {
	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message")
	rootCmd.AddCommand(commitCmd)
}
