// Package catalog lists the fields a mapping rule can reference.
//
// Source catalogs describe the records of the source API and are usually
// discovered at runtime; target catalogs describe the destination CRM and are
// static. The built-in catalogs double as the fallback when discovery fails.
package catalog

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/getmockd/fieldmap/pkg/mapping"
)

// Provider lists the fields available for an entity type.
type Provider interface {
	ListFields(ctx context.Context, entity mapping.EntityType) ([]mapping.Field, error)
}

// ErrNoFields is returned by a Provider that has nothing for an entity.
var ErrNoFields = errors.New("no fields available")

// Static is a Provider backed by a fixed table.
type Static struct {
	fields map[mapping.EntityType][]mapping.Field
}

// NewStatic creates a Static provider. The table is copied.
func NewStatic(fields map[mapping.EntityType][]mapping.Field) *Static {
	s := &Static{fields: make(map[mapping.EntityType][]mapping.Field, len(fields))}
	for e, f := range fields {
		s.fields[e] = slices.Clone(f)
	}
	return s
}

// ListFields returns a copy of the fields for entity. Unknown entity types
// yield an empty, non-nil list.
func (s *Static) ListFields(ctx context.Context, entity mapping.EntityType) ([]mapping.Field, error) {
	f, ok := s.fields[entity]
	if !ok {
		return []mapping.Field{}, nil
	}
	return slices.Clone(f), nil
}

// Entities returns the entity types present in the table, sorted.
func (s *Static) Entities() []mapping.EntityType {
	return slices.Sorted(maps.Keys(s.fields))
}

// Sources returns the built-in source field catalog.
func Sources() *Static {
	return NewStatic(builtinSources)
}

// Targets returns the built-in target field catalog.
func Targets() *Static {
	return NewStatic(builtinTargets)
}

// ListWithFallback asks primary for the fields of entity and falls back to
// fallback when primary fails or returns nothing. The bool reports whether
// the fallback was used. The returned error is primary's, kept for logging;
// it is nil when primary succeeded.
func ListWithFallback(ctx context.Context, primary, fallback Provider, entity mapping.EntityType) ([]mapping.Field, bool, error) {
	if primary != nil {
		fields, err := primary.ListFields(ctx, entity)
		if err == nil && len(fields) > 0 {
			return fields, false, nil
		}
		if err == nil {
			err = ErrNoFields
		}
		fb, fbErr := fallback.ListFields(ctx, entity)
		if fbErr != nil {
			return nil, true, errors.Join(err, fbErr)
		}
		return fb, true, err
	}
	fields, err := fallback.ListFields(ctx, entity)
	return fields, true, err
}

// FieldsFromRecords derives a catalog from the keys of sample records.
// Nested objects contribute dotted paths; arrays and scalars are leaves.
// The result is sorted by path.
func FieldsFromRecords(records ...map[string]any) []mapping.Field {
	seen := make(map[string]struct{})
	for _, r := range records {
		collectPaths(r, "", seen)
	}
	paths := slices.Sorted(maps.Keys(seen))

	fields := make([]mapping.Field, 0, len(paths))
	for _, p := range paths {
		fields = append(fields, mapping.Field{Path: p, Label: LabelFor(p)})
	}
	return fields
}

func collectPaths(obj map[string]any, prefix string, seen map[string]struct{}) {
	for k, v := range obj {
		if k == "" || strings.Contains(k, ".") {
			// not addressable as a dotted path
			continue
		}
		p := k
		if prefix != "" {
			p = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
			collectPaths(nested, p, seen)
			continue
		}
		seen[p] = struct{}{}
	}
}

// LabelFor builds a display label from a dotted path, e.g.
// "address.zip_code" becomes "Address Zip Code".
func LabelFor(path string) string {
	words := strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
