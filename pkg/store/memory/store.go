// Package memory provides an in-memory store.MappingStore. Nothing survives
// a restart; it backs tests and the --store memory server mode.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/getmockd/fieldmap/pkg/mapping"
	"github.com/getmockd/fieldmap/pkg/store"
)

// Store is an in-memory mapping store safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	sets      map[mapping.EntityType]*mapping.RuleSet
	listeners []store.ChangeListener
}

// New creates an empty Store.
func New() *Store {
	return &Store{sets: make(map[mapping.EntityType]*mapping.RuleSet)}
}

// Load returns a copy of the stored rule set.
func (s *Store) Load(ctx context.Context, entity mapping.EntityType) (*mapping.RuleSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rs, ok := s.sets[entity]
	if !ok {
		return nil, &store.NotFoundError{Entity: entity}
	}
	return rs.Clone(), nil
}

// Save stores a copy of rs, replacing any previous set for the entity.
func (s *Store) Save(ctx context.Context, rs *mapping.RuleSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rs == nil {
		return &store.StorageError{Op: "save", Err: store.ErrStorage}
	}

	s.mu.Lock()
	s.sets[rs.Entity] = rs.Clone()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(store.ChangeEvent{Operation: "save", Entity: rs.Entity, Rules: rs.Len()})
	}
	return nil
}

// Delete removes the rule set for entity.
func (s *Store) Delete(ctx context.Context, entity mapping.EntityType) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := s.sets[entity]; !ok {
		s.mu.Unlock()
		return &store.NotFoundError{Entity: entity}
	}
	delete(s.sets, entity)
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(store.ChangeEvent{Operation: "delete", Entity: entity})
	}
	return nil
}

// List returns the stored entity types, sorted.
func (s *Store) List(ctx context.Context) ([]mapping.EntityType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entities := make([]mapping.EntityType, 0, len(s.sets))
	for e := range s.sets {
		entities = append(entities, e)
	}
	slices.Sort(entities)
	return entities, nil
}

// AddChangeListener registers a listener for save and delete events.
func (s *Store) AddChangeListener(listener store.ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

var (
	_ store.MappingStore = (*Store)(nil)
	_ store.Notifier     = (*Store)(nil)
)
