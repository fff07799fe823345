package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/tick/internal/core/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
// A config.toml is used when it exists and config.yaml does not.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}

	path := filepath.Join(configHome, "tick", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		alt := filepath.Join(configHome, "tick", "config.toml")
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return path
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tick")
}
