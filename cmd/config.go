package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Hermela-code/minigit/internal/clierr"
	minigitconfig "github.com/Hermela-code/minigit/internal/config"
	"github.com/Hermela-code/minigit/internal/repository"
)

var configGlobal bool

var configCmd = &cobra.Command{
	Use:   "config <key> [value]",
	Short: "Get or set a repository or global configuration value",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		repo, err := repository.Open(afero.NewOsFs(), cwd, protectedFiles)
		if err != nil {
			return err
		}

		key := args[0]
		if len(args) == 2 {
			return setConfig(repo, key, args[1])
		}
		return getConfig(repo, key)
	},
}

func getConfig(repo *repository.Repository, key string) error {
	cfg, err := minigitconfig.Load(repo.GitDir())
	if err != nil {
		return err
	}
	value, ok := cfg.Get(key)
	if !ok {
		return clierr.NewUsageError(fmt.Sprintf("no value set for %q", key))
	}
	fmt.Println(value)
	return nil
}

func setConfig(repo *repository.Repository, key, value string) error {
	cfg, err := minigitconfig.Load(repo.GitDir())
	if err != nil {
		return err
	}
	if configGlobal {
		return cfg.SetGlobal(key, value)
	}
	return cfg.SetLocal(repo.GitDir(), key, value)
}

func init() {
	configCmd.Flags().BoolVar(&configGlobal, "global", false, "write to the user's global config instead of this repository's")
	rootCmd.AddCommand(configCmd)
}
