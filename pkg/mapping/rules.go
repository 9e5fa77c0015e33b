package mapping

import (
	"github.com/getmockd/fieldmap/pkg/fieldpath"
)

// Rule maps one source path to one target path.
type Rule struct {
	Source fieldpath.Path
	Target fieldpath.Path
}

// NewRule parses a dotted source and target into a Rule.
func NewRule(source, target string) (Rule, error) {
	src, err := fieldpath.Parse(source)
	if err != nil {
		return Rule{}, &InvalidMappingError{Key: source, Target: target, Reason: ReasonInvalidSource, Err: err}
	}
	dst, err := fieldpath.Parse(target)
	if err != nil {
		return Rule{}, &InvalidMappingError{Key: source, Target: target, Reason: ReasonInvalidTarget, Err: err}
	}
	return Rule{Source: src, Target: dst}, nil
}

func (r Rule) String() string {
	return r.Source.String() + " -> " + r.Target.String()
}

// RuleSet is the ordered collection of rules for one entity type.
type RuleSet struct {
	Entity EntityType
	Rules  []Rule
}

// NewRuleSet returns an empty rule set for entity.
func NewRuleSet(entity EntityType) *RuleSet {
	return &RuleSet{Entity: entity, Rules: []Rule{}}
}

// FromFlat builds a rule set from a flat mapping. Pair order becomes rule
// order. A malformed path, a repeated source, a repeated target or a target
// nested inside another target fails with an *InvalidMappingError naming the
// key.
func FromFlat(entity EntityType, flat FlatMapping) (*RuleSet, error) {
	return fromFlat(entity, flat, true)
}

// FromFlatUnchecked is FromFlat without the target checks. It is
// used for files written before targets were required to be unique; Apply
// reports the resulting collisions.
func FromFlatUnchecked(entity EntityType, flat FlatMapping) (*RuleSet, error) {
	return fromFlat(entity, flat, false)
}

func fromFlat(entity EntityType, flat FlatMapping, uniqueTargets bool) (*RuleSet, error) {
	rs := &RuleSet{Entity: entity, Rules: make([]Rule, 0, len(flat))}
	sources := make(map[string]struct{}, len(flat))
	targets := make(map[string]struct{}, len(flat))
	var written []fieldpath.Path

	for _, p := range flat {
		rule, err := NewRule(p.Source, p.Target)
		if err != nil {
			return nil, err
		}
		src, dst := rule.Source.String(), rule.Target.String()
		if _, dup := sources[src]; dup {
			return nil, &InvalidMappingError{Key: p.Source, Target: p.Target, Reason: ReasonDuplicateSource}
		}
		if _, dup := targets[dst]; dup && uniqueTargets {
			return nil, &InvalidMappingError{Key: p.Source, Target: p.Target, Reason: ReasonDuplicateTarget}
		}
		if uniqueTargets && overlapsAny(rule.Target, written) {
			return nil, &InvalidMappingError{Key: p.Source, Target: p.Target, Reason: ReasonOverlappingTarget}
		}
		sources[src] = struct{}{}
		targets[dst] = struct{}{}
		written = append(written, rule.Target)
		rs.Rules = append(rs.Rules, rule)
	}
	return rs, nil
}

// Flat converts the rule set back to its flat form, preserving rule order.
func (rs *RuleSet) Flat() FlatMapping {
	out := make(FlatMapping, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		out = append(out, Pair{Source: r.Source.String(), Target: r.Target.String()})
	}
	return out
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.Rules)
}

// Lookup returns the rule reading source.
func (rs *RuleSet) Lookup(source fieldpath.Path) (Rule, bool) {
	for _, r := range rs.Rules {
		if r.Source.Equal(source) {
			return r, true
		}
	}
	return Rule{}, false
}

// Add appends a rule. It fails if the source or the target is already
// mapped, or if the target nests inside or encloses an existing target.
func (rs *RuleSet) Add(rule Rule) error {
	for _, r := range rs.Rules {
		if r.Source.Equal(rule.Source) {
			return &InvalidMappingError{Key: rule.Source.String(), Target: rule.Target.String(), Reason: ReasonDuplicateSource}
		}
		if r.Target.Equal(rule.Target) {
			return &InvalidMappingError{Key: rule.Source.String(), Target: rule.Target.String(), Reason: ReasonDuplicateTarget}
		}
		if r.Target.Overlaps(rule.Target) {
			return &InvalidMappingError{Key: rule.Source.String(), Target: rule.Target.String(), Reason: ReasonOverlappingTarget}
		}
	}
	rs.Rules = append(rs.Rules, rule)
	return nil
}

// Remove deletes the rule reading source and reports whether one existed.
func (rs *RuleSet) Remove(source fieldpath.Path) bool {
	for i, r := range rs.Rules {
		if r.Source.Equal(source) {
			rs.Rules = append(rs.Rules[:i], rs.Rules[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps in a new rule list after checking it the same way FromFlat
// does. The set is unchanged on error.
func (rs *RuleSet) Replace(rules []Rule) error {
	next := NewRuleSet(rs.Entity)
	for _, r := range rules {
		if err := next.Add(r); err != nil {
			return err
		}
	}
	rs.Rules = next.Rules
	return nil
}

// Clone returns a deep copy.
func (rs *RuleSet) Clone() *RuleSet {
	out := &RuleSet{Entity: rs.Entity, Rules: make([]Rule, len(rs.Rules))}
	for i, r := range rs.Rules {
		out.Rules[i] = Rule{
			Source: append(fieldpath.Path(nil), r.Source...),
			Target: append(fieldpath.Path(nil), r.Target...),
		}
	}
	return out
}
