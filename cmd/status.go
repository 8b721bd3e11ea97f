package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Hermela-code/minigit/internal/repository"
)

var statusCmd = newRepoCommand(
	"status",
	"Show the current branch, staged changes, and branch list",
	cobra.NoArgs,
	func(repo *repository.Repository, args []string) error {
		st, err := repo.Status()
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		if st.Detached {
			fmt.Printf("DETACHED HEAD at %s\n", st.HeadHash)
		} else {
			fmt.Printf("On branch %s\n", st.Branch)
		}

		if len(st.Entries) == 0 {
			fmt.Println("nothing staged")
		}
		for _, e := range st.Entries {
			switch e.Code {
			case 'A':
				fmt.Printf("%c %s\n", e.Code, green(e.Path))
			case 'M':
				fmt.Printf("%c %s\n", e.Code, yellow(e.Path))
			case 'D':
				fmt.Printf("%c %s\n", e.Code, red(e.Path))
			default:
				fmt.Printf("  %s\n", e.Path)
			}
		}

		fmt.Println("branches:")
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
	rootCmd.AddCommand(statusCmd)
}
