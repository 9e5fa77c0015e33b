// Package store provides persistence for mapping rule sets.
//
// The store package abstracts storage backends to support:
//   - Local file-based storage, one JSON file per entity type (CLI, server)
//   - In-memory storage (tests, --store memory)
//
// Each entity type's rule set is independent: a save replaces the whole set
// for that entity and nothing else. Concurrent saves of the same entity are
// not merged; the last save wins.
//
// Directory structure follows XDG Base Directory Specification:
//   - Config: ~/.config/fieldmap/ (config.yaml)
//   - Data:   ~/.local/share/fieldmap/ (<entity>_mapping.json files)
package store

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/getmockd/fieldmap/pkg/mapping"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "fieldmap"

// Backend represents a storage backend type.
type Backend string

const (
	// BackendFile stores each rule set as a JSON file
	BackendFile Backend = "file"
	// BackendMemory uses in-memory storage (no persistence)
	BackendMemory Backend = "memory"
)

// ParseBackend parses a backend name. Unknown names return "".
func ParseBackend(s string) Backend {
	switch Backend(s) {
	case BackendFile, "":
		return BackendFile
	case BackendMemory:
		return BackendMemory
	default:
		return ""
	}
}

// Config holds store configuration.
type Config struct {
	// Backend specifies the storage backend to use
	Backend Backend `json:"backend" yaml:"backend"`

	// DataDir is the directory holding mapping files
	// Defaults to XDG_DATA_HOME/fieldmap or ~/.local/share/fieldmap
	DataDir string `json:"dataDir,omitempty" yaml:"dataDir,omitempty"`

	// ReadOnly prevents any write operations
	ReadOnly bool `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Backend: BackendFile,
		DataDir: DefaultDataDir(),
	}
}

// DefaultDataDir returns the default data directory following XDG spec.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName, "data")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", AppName)
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(home, "AppData", "Local", AppName)
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// DefaultConfigDir returns the default config directory following XDG spec.
func DefaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName, "config")
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Preferences", AppName)
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(home, "AppData", "Roaming", AppName)
	}
	return filepath.Join(home, ".config", AppName)
}

// ChangeEvent represents a change to a stored rule set.
type ChangeEvent struct {
	Operation string             `json:"operation"` // "save" or "delete"
	Entity    mapping.EntityType `json:"entity"`
	Rules     int                `json:"rules"`
}

// ChangeListener is a callback for change events.
type ChangeListener func(event ChangeEvent)

// Notifier is implemented by stores that publish change events.
type Notifier interface {
	AddChangeListener(listener ChangeListener)
}

// MappingStore persists one rule set per entity type.
type MappingStore interface {
	// Load returns the saved rule set for entity. It returns an error
	// matching ErrNotFound when nothing has been saved.
	Load(ctx context.Context, entity mapping.EntityType) (*mapping.RuleSet, error)

	// Save replaces the rule set stored for rs.Entity.
	Save(ctx context.Context, rs *mapping.RuleSet) error

	// Delete removes the rule set for entity. Deleting a missing entity
	// returns an error matching ErrNotFound.
	Delete(ctx context.Context, entity mapping.EntityType) error

	// List returns the entity types that have a saved rule set, sorted.
	List(ctx context.Context) ([]mapping.EntityType, error)
}
