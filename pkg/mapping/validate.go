package mapping

import (
	"fmt"
)

// Field is one entry of a field catalog: a dotted path and a display label.
type Field struct {
	Path  string `json:"value" yaml:"path"`
	Label string `json:"label" yaml:"label"`
}

// IssueCode classifies a validation issue.
type IssueCode string

// Issue codes.
const (
	IssueEmptyRuleSet    IssueCode = "empty_rule_set"
	IssueDuplicateTarget IssueCode = "duplicate_target"
	IssueOverlapTarget   IssueCode = "overlapping_target"
	IssueUnknownSource   IssueCode = "unknown_source"
	IssueUnknownTarget   IssueCode = "unknown_target"
)

// Issue is a non-fatal finding about a rule set. Key is the source path of
// the rule concerned, empty for set-level issues.
type Issue struct {
	Code    IssueCode `json:"code"`
	Key     string    `json:"key,omitempty"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	if i.Key == "" {
		return fmt.Sprintf("[%s] %s", i.Code, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.Key, i.Message)
}

// Validate checks rs for problems that should be shown to the operator
// without necessarily blocking a save or a test run. Unknown sources are
// only reported when sourceFields is non-empty.
func Validate(rs *RuleSet, sourceFields []Field) []Issue {
	issues := []Issue{}
	if rs == nil || len(rs.Rules) == 0 {
		return append(issues, Issue{Code: IssueEmptyRuleSet, Message: "rule set has no rules"})
	}

	firstWriter := make(map[string]string, len(rs.Rules))
	var earlier []Rule
	for _, r := range rs.Rules {
		src, dst := r.Source.String(), r.Target.String()
		if prev, ok := firstWriter[dst]; ok {
			issues = append(issues, Issue{
				Code:    IssueDuplicateTarget,
				Key:     src,
				Message: fmt.Sprintf("target %q is also written by %q; the later rule wins", dst, prev),
			})
			continue
		}
		for _, e := range earlier {
			if e.Target.Overlaps(r.Target) {
				issues = append(issues, Issue{
					Code:    IssueOverlapTarget,
					Key:     src,
					Message: fmt.Sprintf("target %q overlaps %q written by %q", dst, e.Target, e.Source),
				})
				break
			}
		}
		firstWriter[dst] = src
		earlier = append(earlier, r)
	}

	if len(sourceFields) > 0 {
		known := fieldSet(sourceFields)
		for _, r := range rs.Rules {
			src := r.Source.String()
			if _, ok := known[src]; !ok {
				issues = append(issues, Issue{
					Code:    IssueUnknownSource,
					Key:     src,
					Message: fmt.Sprintf("source field %q is not in the %s field catalog", src, rs.Entity),
				})
			}
		}
	}
	return issues
}

// ValidateTargets reports rules whose target is missing from targetFields.
// It returns nothing when targetFields is empty.
func ValidateTargets(rs *RuleSet, targetFields []Field) []Issue {
	issues := []Issue{}
	if rs == nil || len(targetFields) == 0 {
		return issues
	}
	known := fieldSet(targetFields)
	for _, r := range rs.Rules {
		dst := r.Target.String()
		if _, ok := known[dst]; !ok {
			issues = append(issues, Issue{
				Code:    IssueUnknownTarget,
				Key:     r.Source.String(),
				Message: fmt.Sprintf("target field %q is not in the %s target catalog", dst, rs.Entity),
			})
		}
	}
	return issues
}

func fieldSet(fields []Field) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f.Path] = struct{}{}
	}
	return set
}
