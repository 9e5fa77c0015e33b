package mapping

import (
	"github.com/getmockd/fieldmap/pkg/fieldpath"
)

// Result is the outcome of applying a rule set to one record.
type Result struct {
	// Output is the target-shaped record.
	Output map[string]any `json:"output"`
	// Unresolved lists source paths with no value in the record, in rule order.
	Unresolved []fieldpath.Path `json:"unresolved"`
	// Collisions lists target paths written by more than one rule.
	Collisions []fieldpath.Path `json:"collisions"`
}

// UnresolvedPaths returns Unresolved as dotted strings.
func (r Result) UnresolvedPaths() []string {
	return pathStrings(r.Unresolved)
}

// CollisionPaths returns Collisions as dotted strings.
func (r Result) CollisionPaths() []string {
	return pathStrings(r.Collisions)
}

func pathStrings(paths []fieldpath.Path) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

// Apply runs rs against record in rule order. It never fails: missing source
// values are reported as unresolved and skipped, and a target written twice
// keeps the later value and is reported as a collision. A target nested in
// or enclosing an earlier written target is a collision too. record is not
// modified and the output shares no objects with it.
func Apply(rs *RuleSet, record map[string]any) Result {
	return applyInto(rs, record, make(map[string]any))
}

func applyInto(rs *RuleSet, record map[string]any, out map[string]any) Result {
	res := Result{
		Output:     out,
		Unresolved: []fieldpath.Path{},
		Collisions: []fieldpath.Path{},
	}
	if rs == nil {
		return res
	}

	// reported is keyed by target; true once the target is in Collisions.
	reported := make(map[string]bool, len(rs.Rules))
	var targets []fieldpath.Path
	for _, rule := range rs.Rules {
		v, ok := fieldpath.Resolve(record, rule.Source)
		if !ok {
			res.Unresolved = append(res.Unresolved, rule.Source)
			continue
		}

		key := rule.Target.String()
		done, seen := reported[key]
		switch {
		case done:
		case seen || overlapsAny(rule.Target, targets):
			res.Collisions = append(res.Collisions, rule.Target)
			reported[key] = true
		default:
			reported[key] = false
		}
		if !seen {
			targets = append(targets, rule.Target)
		}
		fieldpath.Assign(res.Output, rule.Target, fieldpath.Clone(v))
	}
	return res
}

func overlapsAny(p fieldpath.Path, paths []fieldpath.Path) bool {
	for _, other := range paths {
		if p.Overlaps(other) {
			return true
		}
	}
	return false
}

// BatchOptions tunes ApplyBatch.
type BatchOptions struct {
	// IDField, when set, is copied from each record to IDTarget before the
	// rules run. Rules may still overwrite it.
	IDField  string
	IDTarget string
}

// DefaultBatchOptions returns the options the transform endpoint uses for
// entity. Contacts carry their source id into hubspot_id.
func DefaultBatchOptions(entity EntityType) BatchOptions {
	if entity == EntityContact {
		return BatchOptions{IDField: "id", IDTarget: "hubspot_id"}
	}
	return BatchOptions{}
}

// BatchResult holds per-record results of ApplyBatch.
type BatchResult struct {
	Entity  EntityType
	Results []Result
}

// Items returns the transformed records in input order.
func (b BatchResult) Items() []map[string]any {
	items := make([]map[string]any, len(b.Results))
	for i, r := range b.Results {
		items[i] = r.Output
	}
	return items
}

// Envelope wraps the items under the plural entity name, e.g.
// {"contacts": [...]}.
func (b BatchResult) Envelope() map[string]any {
	return map[string]any{b.Entity.Plural(): b.Items()}
}

// ApplyBatch applies rs to every record.
func ApplyBatch(rs *RuleSet, records []map[string]any, opts BatchOptions) BatchResult {
	if rs == nil {
		return BatchResult{}
	}
	out := BatchResult{Entity: rs.Entity, Results: make([]Result, 0, len(records))}

	var idField, idTarget fieldpath.Path
	if opts.IDField != "" && opts.IDTarget != "" {
		idField, _ = fieldpath.Parse(opts.IDField)
		idTarget, _ = fieldpath.Parse(opts.IDTarget)
	}

	for _, rec := range records {
		seed := make(map[string]any)
		if idField != nil && idTarget != nil {
			if v, ok := fieldpath.Resolve(rec, idField); ok {
				fieldpath.Assign(seed, idTarget, fieldpath.Clone(v))
			}
		}
		out.Results = append(out.Results, applyInto(rs, rec, seed))
	}
	return out
}
