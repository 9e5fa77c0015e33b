// Package file provides a file-based implementation of store.MappingStore.
// Each entity type's rule set lives in its own <entity>_mapping.json file
// inside the data directory, as a flat JSON object in rule order.
package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/fieldmap/internal/id"
	"github.com/getmockd/fieldmap/pkg/mapping"
	"github.com/getmockd/fieldmap/pkg/store"
)

const fileSuffix = "_mapping.json"

var errBadEntityName = errors.New("entity type is not a valid file name")

// FileStore implements store.MappingStore using one JSON file per entity.
type FileStore struct {
	cfg         store.Config
	mu          sync.RWMutex
	listeners   []store.ChangeListener
	listenersMu sync.RWMutex
	log         *slog.Logger
}

// New creates a new FileStore with the given configuration.
func New(cfg store.Config) *FileStore {
	if cfg.DataDir == "" {
		cfg.DataDir = store.DefaultDataDir()
	}
	return &FileStore{
		cfg: cfg,
		log: slog.Default(),
	}
}

// NewWithDefaults creates a new FileStore with default configuration.
func NewWithDefaults() *FileStore {
	return New(store.DefaultConfig())
}

// SetLogger replaces the store's logger.
func (s *FileStore) SetLogger(log *slog.Logger) {
	if log != nil {
		s.log = log
	}
}

// Open ensures the data directory exists.
func (s *FileStore) Open(ctx context.Context) error {
	if s.cfg.ReadOnly {
		return nil
	}
	if err := os.MkdirAll(s.cfg.DataDir, 0700); err != nil {
		return &store.StorageError{Op: "open", Err: err}
	}
	return nil
}

// DataDir returns the directory holding the mapping files.
func (s *FileStore) DataDir() string {
	return s.cfg.DataDir
}

// Path returns the file that stores entity's rule set.
func (s *FileStore) Path(entity mapping.EntityType) (string, error) {
	name := string(entity)
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", errBadEntityName
	}
	return filepath.Join(s.cfg.DataDir, mapping.FileName(entity, mapping.FormatJSON)), nil
}

// Load reads the saved rule set for entity. Files written before target
// uniqueness was enforced are accepted as is.
func (s *FileStore) Load(ctx context.Context, entity mapping.EntityType) (*mapping.RuleSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Path(entity)
	if err != nil {
		return nil, &store.StorageError{Op: "load", Entity: entity, Err: err}
	}

	s.mu.RLock()
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &store.NotFoundError{Entity: entity}
		}
		return nil, &store.StorageError{Op: "load", Entity: entity, Err: err}
	}

	flat, err := mapping.Import(data)
	if err != nil {
		return nil, &store.StorageError{Op: "load", Entity: entity, Err: err}
	}
	rs, err := mapping.FromFlatUnchecked(entity, flat)
	if err != nil {
		return nil, &store.StorageError{Op: "load", Entity: entity, Err: err}
	}
	return rs, nil
}

// Save replaces the rule set stored for rs.Entity with an atomic write.
func (s *FileStore) Save(ctx context.Context, rs *mapping.RuleSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rs == nil {
		return &store.StorageError{Op: "save", Err: errors.New("nil rule set")}
	}
	if s.cfg.ReadOnly {
		return &store.StorageError{Op: "save", Entity: rs.Entity, Err: store.ErrReadOnly}
	}
	path, err := s.Path(rs.Entity)
	if err != nil {
		return &store.StorageError{Op: "save", Entity: rs.Entity, Err: err}
	}

	data, err := mapping.Export(rs, mapping.FormatJSON)
	if err != nil {
		return &store.StorageError{Op: "save", Entity: rs.Entity, Err: err}
	}

	s.mu.Lock()
	err = writeAtomic(path, data)
	s.mu.Unlock()
	if err != nil {
		return &store.StorageError{Op: "save", Entity: rs.Entity, Err: err}
	}

	s.log.Debug("mapping saved", "entity", rs.Entity, "rules", rs.Len(), "path", path)
	s.notify(store.ChangeEvent{Operation: "save", Entity: rs.Entity, Rules: rs.Len()})
	return nil
}

// writeFile is swapped in tests to simulate a failed write.
var writeFile = os.WriteFile

// writeAtomic writes to a temp file in the same directory, then renames it
// over the destination. The temp file never outlives a failure.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	tmpFile := path + "." + id.Short() + ".tmp"
	if err := writeFile(tmpFile, data, 0600); err != nil {
		_ = os.Remove(tmpFile)
		return err
	}
	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return err
	}
	return nil
}

// Delete removes the file for entity.
func (s *FileStore) Delete(ctx context.Context, entity mapping.EntityType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.ReadOnly {
		return &store.StorageError{Op: "delete", Entity: entity, Err: store.ErrReadOnly}
	}
	path, err := s.Path(entity)
	if err != nil {
		return &store.StorageError{Op: "delete", Entity: entity, Err: err}
	}

	s.mu.Lock()
	err = os.Remove(path)
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return &store.NotFoundError{Entity: entity}
		}
		return &store.StorageError{Op: "delete", Entity: entity, Err: err}
	}

	s.log.Debug("mapping deleted", "entity", entity, "path", path)
	s.notify(store.ChangeEvent{Operation: "delete", Entity: entity})
	return nil
}

// List returns the entity types with a mapping file, sorted by name.
func (s *FileStore) List(ctx context.Context) ([]mapping.EntityType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.cfg.DataDir); err != nil {
		if os.IsNotExist(err) {
			return []mapping.EntityType{}, nil
		}
		return nil, &store.StorageError{Op: "list", Err: err}
	}

	s.mu.RLock()
	matches, err := doublestar.Glob(os.DirFS(s.cfg.DataDir), "*"+fileSuffix)
	s.mu.RUnlock()
	if err != nil {
		return nil, &store.StorageError{Op: "list", Err: fmt.Errorf("glob %s: %w", s.cfg.DataDir, err)}
	}

	entities := make([]mapping.EntityType, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(m, fileSuffix)
		if name == "" {
			continue
		}
		entities = append(entities, mapping.EntityType(name))
	}
	slices.Sort(entities)
	return entities, nil
}

// AddChangeListener registers a listener for save and delete events.
func (s *FileStore) AddChangeListener(listener store.ChangeListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *FileStore) notify(event store.ChangeEvent) {
	s.listenersMu.RLock()
	listeners := slices.Clone(s.listeners)
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l(event)
	}
}

var (
	_ store.MappingStore = (*FileStore)(nil)
	_ store.Notifier     = (*FileStore)(nil)
)
