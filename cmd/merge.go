package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Hermela-code/minigit/internal/clierr"
	"github.com/Hermela-code/minigit/internal/repository"
)

var mergeCmd = newRepoCommand(
	"merge <branch>",
	"Merge a branch into the current branch",
	cobra.ExactArgs(1),
	func(repo *repository.Repository, args []string) error {
		outcome, err := repo.Merge(args[0])
		if err != nil {
			return err
		}
		log.Debugf("merge %s: fastForward=%v upToDate=%v conflicts=%d", args[0], outcome.FastForward, outcome.UpToDate, len(outcome.ConflictPaths))

		switch {
		case outcome.UpToDate:
			fmt.Println("up-to-date")
		case outcome.FastForward:
			fmt.Println("fast-forward")
		case outcome.HasConflicts:
			for _, path := range outcome.ConflictPaths {
				fmt.Println(clierr.NewMergeConflict(fmt.Sprintf("conflict in %s", path)))
			}
			fmt.Println("automatic merge failed; fix conflicts and commit")
		default:
			fmt.Println("merged; run commit to record the merge")
		}
		return nil
	},
)

func init() {
	rootCmd.AddCommand(mergeCmd)
}
