// Package config loads flashmd settings from file, environment, and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all runtime settings.
type Config struct {
	DBPath   string `koanf:"db_path" validate:"required"`
	Listen   string `koanf:"listen" validate:"required,hostname_port"`
	ReposDir string `koanf:"repos_dir" validate:"required"`
}

// Default returns the built-in settings: data under the user's home
// directory and the web UI on localhost.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".local", "share", "flashmd")
	return Config{
		DBPath:   filepath.Join(dataDir, "flashmd.db"),
		Listen:   "127.0.0.1:8418",
		ReposDir: filepath.Join(dataDir, "repos"),
	}
}

// Load layers configuration, lowest precedence first: defaults, the YAML
// config file (configPath, or ~/.config/flashmd/config.yaml if it exists),
// FLASHMD_* environment variables, then command-line flags.
func Load(configPath string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	cfg := Default()
	defaults := map[string]any{
		"db_path":   cfg.DBPath,
		"listen":    cfg.Listen,
		"repos_dir": cfg.ReposDir,
	}
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return Config{}, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	path := configPath
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".config", "flashmd", "config.yaml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider("FLASHMD_", ".", func(key string) string {
		return strings.ToLower(strings.TrimPrefix(key, "FLASHMD_"))
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
