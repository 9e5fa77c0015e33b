// Package service implements the mapping operations shared by the HTTP API
// and the CLI: load-or-default, validate-and-save, test against a live
// sample, export and import.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/getmockd/fieldmap/pkg/catalog"
	"github.com/getmockd/fieldmap/pkg/logging"
	"github.com/getmockd/fieldmap/pkg/mapping"
	"github.com/getmockd/fieldmap/pkg/store"
)

// DefaultTimeout bounds calls to the source API.
const DefaultTimeout = 5 * time.Second

// Source says where a rule set returned by GetRuleSet came from.
type Source string

const (
	SourceStored   Source = "stored"
	SourceDefaults Source = "defaults"
)

// SampleProvider supplies one source record for mapping tests.
type SampleProvider interface {
	FetchSample(ctx context.Context, entity mapping.EntityType) (map[string]any, error)
}

// Service wires the store, field catalogs and sample provider together.
type Service struct {
	store           store.MappingStore
	registry        *mapping.Registry
	sourceCatalog   catalog.Provider
	fallbackSources catalog.Provider
	targetCatalog   catalog.Provider
	samples         SampleProvider
	timeout         time.Duration
	log             *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRegistry sets the accepted entity types.
func WithRegistry(r *mapping.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithSourceCatalog sets the live source field provider. The built-in
// catalog is used when it fails.
func WithSourceCatalog(p catalog.Provider) Option {
	return func(s *Service) {
		s.sourceCatalog = p
	}
}

// WithTargetCatalog replaces the built-in target field catalog.
func WithTargetCatalog(p catalog.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.targetCatalog = p
		}
	}
}

// WithSampleProvider sets where TestMapping fetches its sample record.
func WithSampleProvider(p SampleProvider) Option {
	return func(s *Service) {
		s.samples = p
	}
}

// WithTimeout bounds each call to the source API.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Service backed by st.
func New(st store.MappingStore, opts ...Option) *Service {
	s := &Service{
		store:           st,
		registry:        mapping.NewRegistry(),
		fallbackSources: catalog.Sources(),
		targetCatalog:   catalog.Targets(),
		timeout:         DefaultTimeout,
		log:             logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the accepted entity types.
func (s *Service) Registry() *mapping.Registry {
	return s.registry
}

// EntityTypes returns the accepted entity types as picker options.
func (s *Service) EntityTypes() []mapping.EntityOption {
	return s.registry.Options()
}

// CheckEntity returns an *UnknownEntityError when entity is not accepted.
func (s *Service) CheckEntity(entity mapping.EntityType) error {
	if !s.registry.Known(entity) {
		return &UnknownEntityError{Entity: entity, Known: s.registry.Types()}
	}
	return nil
}

// GetRuleSet returns the stored rule set for entity, or the built-in
// defaults when nothing has been saved.
func (s *Service) GetRuleSet(ctx context.Context, entity mapping.EntityType) (*mapping.RuleSet, Source, error) {
	if err := s.CheckEntity(entity); err != nil {
		return nil, "", err
	}
	rs, err := s.store.Load(ctx, entity)
	if err == nil {
		return rs, SourceStored, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		s.log.Debug("no stored mapping, using defaults", "entity", entity)
		return mapping.DefaultsFor(entity), SourceDefaults, nil
	}
	return nil, "", err
}

// SaveOptions tunes SaveRuleSet.
type SaveOptions struct {
	// Strict rejects duplicate targets instead of reporting them.
	Strict bool
}

// SaveRuleSet validates flat and persists it as the rule set for entity.
// Malformed paths and duplicate sources are rejected; everything Validate
// finds is returned as issues alongside the saved set.
func (s *Service) SaveRuleSet(ctx context.Context, entity mapping.EntityType, flat mapping.FlatMapping, opts SaveOptions) (*mapping.RuleSet, []mapping.Issue, error) {
	if err := s.CheckEntity(entity); err != nil {
		return nil, nil, err
	}

	build := mapping.FromFlatUnchecked
	if opts.Strict {
		build = mapping.FromFlat
	}
	rs, err := build(entity, flat)
	if err != nil {
		return nil, nil, err
	}

	issues := s.validate(ctx, rs)
	if err := s.store.Save(ctx, rs); err != nil {
		return nil, nil, err
	}
	s.log.Info("mapping saved", "entity", entity, "rules", rs.Len(), "issues", len(issues))
	return rs, issues, nil
}

// DeleteRuleSet removes the stored rule set for entity so that defaults
// apply again.
func (s *Service) DeleteRuleSet(ctx context.Context, entity mapping.EntityType) error {
	if err := s.CheckEntity(entity); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, entity); err != nil {
		return err
	}
	s.log.Info("mapping deleted", "entity", entity)
	return nil
}

// StoredEntities lists entity types with a saved rule set.
func (s *Service) StoredEntities(ctx context.Context) ([]mapping.EntityType, error) {
	return s.store.List(ctx)
}

// ValidateRuleSet builds flat without saving and reports its issues.
func (s *Service) ValidateRuleSet(ctx context.Context, entity mapping.EntityType, flat mapping.FlatMapping) (*mapping.RuleSet, []mapping.Issue, error) {
	if err := s.CheckEntity(entity); err != nil {
		return nil, nil, err
	}
	rs, err := mapping.FromFlatUnchecked(entity, flat)
	if err != nil {
		return nil, nil, err
	}
	return rs, s.validate(ctx, rs), nil
}

func (s *Service) validate(ctx context.Context, rs *mapping.RuleSet) []mapping.Issue {
	sources, _, _ := s.SourceFields(ctx, rs.Entity)
	issues := mapping.Validate(rs, sources)

	targets, err := s.targetCatalog.ListFields(ctx, rs.Entity)
	if err != nil {
		s.log.Warn("target catalog unavailable", "entity", rs.Entity, "error", err)
		return issues
	}
	return append(issues, mapping.ValidateTargets(rs, targets)...)
}

// SourceFields lists the source fields of entity. The bool reports that the
// built-in catalog was used because the live one failed.
func (s *Service) SourceFields(ctx context.Context, entity mapping.EntityType) ([]mapping.Field, bool, error) {
	if err := s.CheckEntity(entity); err != nil {
		return nil, false, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fields, fallback, err := catalog.ListWithFallback(ctx, s.sourceCatalog, s.fallbackSources, entity)
	if fallback && s.sourceCatalog != nil {
		s.log.Warn("source catalog unavailable, using built-in fields", "entity", entity, "error", err)
	}
	if fields == nil {
		fields = []mapping.Field{}
	}
	return fields, fallback, nil
}

// TargetFields lists the target fields of entity.
func (s *Service) TargetFields(ctx context.Context, entity mapping.EntityType) ([]mapping.Field, error) {
	if err := s.CheckEntity(entity); err != nil {
		return nil, err
	}
	return s.targetCatalog.ListFields(ctx, entity)
}
