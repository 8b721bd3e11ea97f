package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Hermela-code/minigit/internal/repository"
)

var checkoutForce bool

var checkoutCmd = newRepoCommand(
	"checkout <branch|commit>",
	"Switch HEAD, the index, and the working tree to a branch or commit",
	cobra.ExactArgs(1),
	func(repo *repository.Repository, args []string) error {
		return repo.Checkout(args[0], checkoutForce)
	},
)

func init() {
	checkoutCmd.Flags().BoolVar(&checkoutForce, "force", false, "discard local changes instead of refusing to switch")
	rootCmd.AddCommand(checkoutCmd)
}
