// Package config handles configuration loading and validation for tick.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/tick/internal/core/task"
)

// Backend names a kv.KV implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendJSON   Backend = "json"
	BackendMemory Backend = "memory"
)

// IsValid reports whether b is a supported backend.
func (b Backend) IsValid() bool {
	switch b {
	case BackendSQLite, BackendJSON, BackendMemory:
		return true
	default:
		return false
	}
}

// Theme names a color appearance preference.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// IsValid reports whether t is a supported theme.
func (t Theme) IsValid() bool {
	switch t {
	case ThemeAuto, ThemeLight, ThemeDark:
		return true
	default:
		return false
	}
}

// Config holds the application configuration.
type Config struct {
	Storage       StorageConfig      `yaml:"storage" toml:"storage"`
	Database      DatabaseConfig     `yaml:"database" toml:"database"`
	Undo          UndoConfig         `yaml:"undo" toml:"undo"`
	TUI           TUIConfig          `yaml:"tui" toml:"tui"`
	Tasks         TasksConfig        `yaml:"tasks" toml:"tasks"`
	Notifications NotificationConfig `yaml:"notifications" toml:"notifications"`
	DataDir       string             `yaml:"-" toml:"-"` // set by caller, not from config file
}

// StorageConfig selects where the task list is kept.
type StorageConfig struct {
	Backend Backend `yaml:"backend" toml:"backend"`
}

// DatabaseConfig tunes the SQLite backend.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns" toml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns" toml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout" toml:"busy_timeout"` // milliseconds
}

// UndoConfig controls how long `tick undo` can restore a deletion made by
// an earlier `tick rm`.
type UndoConfig struct {
	Window time.Duration `yaml:"window" toml:"window"`
}

// TUIConfig holds interactive UI settings.
type TUIConfig struct {
	Theme    Theme         `yaml:"theme" toml:"theme"`
	ToastTTL time.Duration `yaml:"toast_ttl" toml:"toast_ttl"`
}

// TasksConfig holds task defaults.
type TasksConfig struct {
	DefaultCategory task.Category `yaml:"default_category" toml:"default_category"`
}

// NotificationConfig controls the notification history.
type NotificationConfig struct {
	// Limit caps the number of notifications kept in history.
	Limit int `yaml:"limit" toml:"limit"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{Backend: BackendSQLite},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		Undo:          UndoConfig{Window: 10 * time.Minute},
		TUI:           TUIConfig{Theme: ThemeAuto, ToastTTL: 5 * time.Second},
		Tasks:         TasksConfig{DefaultCategory: task.FallbackCategory},
		Notifications: NotificationConfig{Limit: 100},
	}
}

// Load reads the config file at configPath, applies defaults, sets the data
// directory and validates the result. A missing or empty path yields the
// defaults. Files ending in .toml are parsed as TOML, everything else as YAML.
func Load(configPath, dataDir string) (*Config, error) {
	cfg, err := Read(configPath, dataDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Read is Load without validation. `tick config validate` uses it so it
// can report every problem instead of failing on the first load.
func Read(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := decode(configPath, data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()
	return &cfg, nil
}

// decode picks the format from the file extension. Anything other than
// .toml is read as YAML.
func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Undo.Window == 0 {
		c.Undo.Window = defaults.Undo.Window
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.ToastTTL == 0 {
		c.TUI.ToastTTL = defaults.TUI.ToastTTL
	}
	if c.Tasks.DefaultCategory == "" {
		c.Tasks.DefaultCategory = defaults.Tasks.DefaultCategory
	}
	if c.Notifications.Limit == 0 {
		c.Notifications.Limit = defaults.Notifications.Limit
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("data directory cannot be empty"))
	}
	if !c.Storage.Backend.IsValid() {
		errs = errs.Append("storage.backend", fmt.Errorf("unknown backend %q (want sqlite, json, or memory)", c.Storage.Backend))
	}
	switch {
	case c.Database.MaxOpenConns < 1:
		// The idle bound depends on max_open_conns, so it is only checked
		// once that value is usable.
		errs = errs.Append("database.max_open_conns", fmt.Errorf("must be at least 1"))
	case c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns:
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("must be between 0 and max_open_conns"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", fmt.Errorf("cannot be negative"))
	}
	if c.Undo.Window < 0 {
		errs = errs.Append("undo.window", fmt.Errorf("cannot be negative"))
	}
	if !c.TUI.Theme.IsValid() {
		errs = errs.Append("tui.theme", fmt.Errorf("unknown theme %q (want auto, light, or dark)", c.TUI.Theme))
	}
	if c.TUI.ToastTTL < 0 {
		errs = errs.Append("tui.toast_ttl", fmt.Errorf("cannot be negative"))
	}
	if !c.Tasks.DefaultCategory.IsStorable() {
		errs = errs.Append("tasks.default_category", fmt.Errorf("must be one of personal, work, shopping"))
	}
	if c.Notifications.Limit < 0 {
		errs = errs.Append("notifications.limit", fmt.Errorf("cannot be negative"))
	}

	return errs.ToError()
}

// KVDir returns the directory used by the JSON-file backend.
func (c *Config) KVDir() string {
	return filepath.Join(c.DataDir, "kv")
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "tick.log")
}
