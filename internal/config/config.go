// Package config resolves the runtime environment: where data lives, which
// storage backend to use and how the local purchase store behaves.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Env controls runtime settings. User preferences live in the data
// directory's config.yaml instead.
type Env struct {
	DataDir      string `env:"COCOACALM_DATA_DIR"`
	Storage      string `env:"COCOACALM_STORAGE"       envDefault:"file"`
	LogLevel     string `env:"COCOACALM_LOG_LEVEL"     envDefault:"info"`
	StoreKey     string `env:"COCOACALM_STORE_KEY"     envDefault:"cocoa-calm-local-store"`
	StoreOutcome string `env:"COCOACALM_STORE_OUTCOME" envDefault:"success"`
}

// Load parses the environment and fills in the default data directory.
func Load() (Env, error) {
	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return Env{}, err
		}
		cfg.DataDir = dir
	}
	return cfg, nil
}

func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".cocoacalm"), nil
}
