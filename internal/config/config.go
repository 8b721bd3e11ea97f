// Package config resolves user identity and repository settings from
// a local, repository-scoped config file with fallback to a global,
// per-user config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	localConfigFileName  = "config"
	globalConfigFileName = ".minigitconfig"
)

// Config resolves keys against a local repository config, falling
// back to a global per-user config when the local one has no value.
type Config struct {
	local  *viper.Viper
	global *viper.Viper
}

// Load reads the local config under gitDir and the global config from
// the user's home directory. Neither file needs to exist yet — a
// fresh repository has no config file written until the first
// `config <key> <value>`.
func Load(gitDir string) (*Config, error) {
	local := viper.New()
	local.SetConfigName(localConfigFileName)
	local.SetConfigType("toml")
	local.AddConfigPath(gitDir)
	if err := local.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read local config: %w", err)
		}
	}

	global := viper.New()
	global.SetConfigType("toml")
	homeDir, err := os.UserHomeDir()
	if err == nil {
		global.SetConfigFile(filepath.Join(homeDir, globalConfigFileName))
		if err := global.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				if _, statErr := os.Stat(global.ConfigFileUsed()); statErr == nil {
					return nil, fmt.Errorf("failed to read global config: %w", err)
				}
			}
		}
	}

	return &Config{local: local, global: global}, nil
}

// Get resolves key (e.g. "user.name") from the local config first,
// then the global config. It returns "" with ok=false if neither has
// a value.
func (c *Config) Get(key string) (string, bool) {
	if v := c.local.GetString(key); v != "" {
		return v, true
	}
	if v := c.global.GetString(key); v != "" {
		return v, true
	}
	return "", false
}

// UserName resolves user.name via the local-then-global cascade.
func (c *Config) UserName() (string, bool) {
	return c.Get("user.name")
}

// UserEmail resolves user.email via the local-then-global cascade.
func (c *Config) UserEmail() (string, bool) {
	return c.Get("user.email")
}

// Author formats the resolved identity the way commit records store
// it: "Name <email>". Missing fields are rendered as "unknown".
func (c *Config) Author() string {
	name, ok := c.UserName()
	if !ok {
		name = "unknown"
	}
	email, ok := c.UserEmail()
	if !ok {
		email = "unknown"
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// SetLocal sets key in the repository-local config and persists it.
func (c *Config) SetLocal(gitDir, key, value string) error {
	c.local.Set(key, value)
	return writeViperConfig(c.local, filepath.Join(gitDir, localConfigFileName+".toml"))
}

// SetGlobal sets key in the user's global config and persists it.
func (c *Config) SetGlobal(key, value string) error {
	c.global.Set(key, value)
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return writeViperConfig(c.global, filepath.Join(homeDir, globalConfigFileName))
}

func writeViperConfig(v *viper.Viper, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
