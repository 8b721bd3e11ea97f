package cmd

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Hermela-code/minigit/internal/repository"
)

// protectedFiles are flat working-directory entries Restore must
// never remove, even when absent from a target commit's tree.
var protectedFiles = []string{}

// RepoHandler is the signature shared by every subcommand that
// requires an already-initialized repository.
type RepoHandler func(repo *repository.Repository, args []string) error

// newRepoCommand builds a cobra.Command that opens the repository
// rooted at the current working directory before delegating to
// handler, the way the teacher's NewRepoCommand centralizes repo
// discovery for every command but init.
func newRepoCommand(use, short string, args cobra.PositionalArgs, handler RepoHandler) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, cliArgs []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			repo, err := repository.Open(afero.NewOsFs(), cwd, protectedFiles)
			if err != nil {
				return err
			}
			return handler(repo, cliArgs)
		},
	}
}
