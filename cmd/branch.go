package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Hermela-code/minigit/internal/repository"
)

var branchCmd = newRepoCommand(
	"branch [<name>]",
	"Create a branch, or list all branches with the current one marked",
	cobra.MaximumNArgs(1),
	func(repo *repository.Repository, args []string) error {
		if len(args) == 1 {
			return repo.CreateBranch(args[0])
		}

		st, err := repo.Status()
		if err != nil {
			return err
		}
		for _, b := range st.Branches {
			if b == st.Current {
				fmt.Printf("* %s\n", b)
			} else {
				fmt.Printf("  %s\n", b)
			}
		}
		return nil
	},
)

func init() {
	rootCmd.AddCommand(branchCmd)
}
