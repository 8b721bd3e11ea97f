package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Hermela-code/minigit/internal/repository"
)

var logCmd = newRepoCommand(
	"log",
	"Show commit history along the first-parent chain from HEAD",
	cobra.NoArgs,
	func(repo *repository.Repository, args []string) error {
		entries, err := repo.Log()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("commit %s\n", e.Hash)
			if len(e.Parents) > 1 {
				fmt.Printf("Merge:  %s\n", strings.Join(e.Parents, " "))
			}
			fmt.Printf("Date:   %s\n", e.Timestamp)
			fmt.Printf("\n    %s\n\n", e.Message)
		}
		return nil
	},
)

func init() {
	rootCmd.AddCommand(logCmd)
}
