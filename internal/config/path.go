// Package config loads advisor settings from viper and resolves file paths.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and $VAR references in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// DefaultConfigDir is where config.yaml and .env are looked up.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "advisor")
}

// DefaultDatabasePath is used when database.path is unset.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "advisor.db"
	}
	return filepath.Join(home, ".local", "share", "advisor", "advisor.db")
}
