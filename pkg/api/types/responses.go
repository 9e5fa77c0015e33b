// Package types provides the request and response bodies of the mapping API.
// The CLI renders the same types with --json so both surfaces agree.
package types

import (
	"time"

	"github.com/getmockd/fieldmap/pkg/mapping"
	"github.com/getmockd/fieldmap/pkg/service"
)

// ErrorResponse is a standard error response used across all APIs.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorDetails names the offending key of a rejected mapping.
type ErrorDetails struct {
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason,omitempty"`
	Hint   string `json:"hint,omitempty"`
}

// HealthResponse is a simple health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Uptime    int       `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EntityTypesResponse lists the accepted entity types.
type EntityTypesResponse struct {
	EntityTypes []mapping.EntityOption `json:"entity_types"`
}

// FieldsResponse lists the fields of one side of a mapping.
type FieldsResponse struct {
	Fields   []mapping.Field `json:"fields"`
	Fallback bool            `json:"fallback,omitempty"`
}

// RuleSetResponse is the current rule set of an entity.
type RuleSetResponse struct {
	Entity mapping.EntityType  `json:"entity"`
	Rules  mapping.FlatMapping `json:"rules"`
	Source string              `json:"source"`
}

// SaveResponse confirms a saved rule set and lists non-fatal issues.
type SaveResponse struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Entity  mapping.EntityType  `json:"entity"`
	Rules   mapping.FlatMapping `json:"rules"`
	Issues  []mapping.Issue     `json:"issues"`
}

// ValidateResponse lists the issues of a rule set that was not saved.
type ValidateResponse struct {
	Entity mapping.EntityType  `json:"entity"`
	Rules  mapping.FlatMapping `json:"rules"`
	Issues []mapping.Issue     `json:"issues"`
	Valid  bool                `json:"valid"`
}

// TestMappingResponse is the outcome of a mapping test run.
type TestMappingResponse struct {
	Entity         mapping.EntityType  `json:"entity"`
	Rules          mapping.FlatMapping `json:"rules"`
	SampleOutput   map[string]any      `json:"sample_output"`
	Unresolved     []string            `json:"unresolved"`
	Collisions     []string            `json:"collisions"`
	Issues         []mapping.Issue     `json:"issues"`
	Sample         map[string]any      `json:"sample"`
	SampleFallback bool                `json:"sample_fallback"`
}

// ImportResponse is a parsed, not yet saved, flat mapping.
type ImportResponse struct {
	Rules mapping.FlatMapping `json:"rules"`
	Count int                 `json:"count"`
}

// TransformRequest asks for a batch of source records to be mapped.
type TransformRequest struct {
	EntityType mapping.EntityType `json:"entity_type"`
	Data       []map[string]any   `json:"data"`
}

// NewTestMappingResponse converts a service report to its wire form.
func NewTestMappingResponse(report *service.TestReport) TestMappingResponse {
	return TestMappingResponse{
		Entity:         report.Entity,
		Rules:          report.Rules,
		SampleOutput:   report.Result.Output,
		Unresolved:     report.Result.UnresolvedPaths(),
		Collisions:     report.Result.CollisionPaths(),
		Issues:         report.Issues,
		Sample:         report.Sample,
		SampleFallback: report.SampleFallback,
	}
}
