package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hay-kot/criterio"
)

// ValidationWarning is a setting that works but is probably not what the
// user wants.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep runs Validate and then checks the filesystem: the config file,
// the data directory, and the paths the selected backend will write to.
// An empty configPath skips the config file check.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	var storagePath string
	var storageCheck func(string) error
	switch c.Storage.Backend {
	case BackendJSON:
		storagePath, storageCheck = c.KVDir(), mustBe(true)
	case BackendSQLite:
		storagePath, storageCheck = filepath.Join(c.DataDir, "tick.db"), mustBe(false)
	}

	errs := []error{
		criterio.Run("data_dir", c.DataDir, mustBe(true)),
	}
	if configPath != "" {
		errs = append(errs, criterio.Run("config_file", configPath, mustBe(false)))
	}
	if storageCheck != nil {
		errs = append(errs, criterio.Run("storage.backend", storagePath, storageCheck))
	}
	return criterio.ValidateStruct(errs...)
}

// Warnings lists settings worth a second look.
func (c *Config) Warnings() []ValidationWarning {
	var out []ValidationWarning

	if c.Storage.Backend == BackendMemory {
		out = append(out, ValidationWarning{
			Category: "Storage",
			Item:     "backend",
			Message:  "memory backend keeps tasks only for the lifetime of the process",
		})
	}
	if c.Undo.Window < c.TUI.ToastTTL {
		out = append(out, ValidationWarning{
			Category: "Undo",
			Item:     "window",
			Message:  fmt.Sprintf("undo window %s is shorter than the toast ttl %s; `tick undo` expires before the toast does", c.Undo.Window, c.TUI.ToastTTL),
		})
	}

	return out
}

// mustBe returns a check that passes when a path is absent or has the wanted
// kind. Absent paths are created on first use.
func mustBe(dir bool) func(string) error {
	return func(path string) error {
		if path == "" {
			return nil
		}
		info, err := os.Stat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil
		case err != nil:
			return fmt.Errorf("cannot access: %w", err)
		case dir && !info.IsDir():
			return fmt.Errorf("%s exists but is not a directory", path)
		case !dir && info.IsDir():
			return fmt.Errorf("%s is a directory, not a file", path)
		}
		return nil
	}
}
