package mapping

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EntityType names the category of record a rule set applies to.
type EntityType string

// Built-in entity types.
const (
	EntityContact  EntityType = "contact"
	EntityDeal     EntityType = "deal"
	EntityCompany  EntityType = "company"
	EntityProject  EntityType = "project"
	EntityContract EntityType = "contract"
)

// BuiltinEntityTypes returns the built-in entity types in display order.
func BuiltinEntityTypes() []EntityType {
	return []EntityType{EntityContact, EntityDeal, EntityCompany, EntityProject, EntityContract}
}

// ParseEntityType normalizes s to an EntityType. It does not check that the
// type is known; use Registry.Known for that.
func ParseEntityType(s string) EntityType {
	return EntityType(strings.ToLower(strings.TrimSpace(s)))
}

// Plural returns the collection name used for envelopes and URLs.
func (e EntityType) Plural() string {
	s := string(e)
	switch {
	case s == "":
		return ""
	case strings.HasSuffix(s, "y") && len(s) > 1 && !strings.ContainsRune("aeiou", rune(s[len(s)-2])):
		return s[:len(s)-1] + "ies"
	case strings.HasSuffix(s, "s"):
		return s
	default:
		return s + "s"
	}
}

// Label returns a human readable plural label, e.g. "Companies".
func (e EntityType) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(e.Plural(), "_", " "))
}

// EntityOption is the {value,label} pair served to pickers.
type EntityOption struct {
	Value EntityType `json:"value"`
	Label string     `json:"label"`
}

// Registry is the set of entity types a deployment accepts: the built-ins
// plus any configured extras.
type Registry struct {
	types []EntityType
	index map[EntityType]struct{}
}

// NewRegistry builds a registry from the built-in types and extra.
// Duplicates and blank names are ignored.
func NewRegistry(extra ...string) *Registry {
	r := &Registry{index: make(map[EntityType]struct{})}
	for _, e := range BuiltinEntityTypes() {
		r.add(e)
	}
	for _, s := range extra {
		r.add(ParseEntityType(s))
	}
	return r
}

func (r *Registry) add(e EntityType) {
	if e == "" {
		return
	}
	if _, ok := r.index[e]; ok {
		return
	}
	r.index[e] = struct{}{}
	r.types = append(r.types, e)
}

// Known reports whether e is accepted.
func (r *Registry) Known(e EntityType) bool {
	_, ok := r.index[e]
	return ok
}

// Types returns the accepted types in registration order.
func (r *Registry) Types() []EntityType {
	out := make([]EntityType, len(r.types))
	copy(out, r.types)
	return out
}

// Options returns value/label pairs for every accepted type.
func (r *Registry) Options() []EntityOption {
	out := make([]EntityOption, 0, len(r.types))
	for _, e := range r.types {
		out = append(out, EntityOption{Value: e, Label: e.Label()})
	}
	return out
}
