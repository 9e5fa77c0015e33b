package service

import (
	"context"

	"github.com/getmockd/fieldmap/pkg/catalog"
	"github.com/getmockd/fieldmap/pkg/mapping"
)

// TestReport is the outcome of running a rule set against one sample record.
type TestReport struct {
	Entity         mapping.EntityType
	Rules          mapping.FlatMapping
	Result         mapping.Result
	Issues         []mapping.Issue
	Sample         map[string]any
	SampleFallback bool
}

// TestMapping applies flat to one sample record of entity. A nil flat tests
// the current rule set (stored or defaults). Duplicate targets are allowed
// here so that the report can show the collision.
func (s *Service) TestMapping(ctx context.Context, entity mapping.EntityType, flat mapping.FlatMapping) (*TestReport, error) {
	if err := s.CheckEntity(entity); err != nil {
		return nil, err
	}

	var rs *mapping.RuleSet
	if flat == nil {
		current, _, err := s.GetRuleSet(ctx, entity)
		if err != nil {
			return nil, err
		}
		rs = current
	} else {
		built, err := mapping.FromFlatUnchecked(entity, flat)
		if err != nil {
			return nil, err
		}
		rs = built
	}

	sample, fallback := s.sample(ctx, entity)
	return &TestReport{
		Entity:         entity,
		Rules:          rs.Flat(),
		Result:         mapping.Apply(rs, sample),
		Issues:         s.validate(ctx, rs),
		Sample:         sample,
		SampleFallback: fallback,
	}, nil
}

// sample fetches a live record, falling back to the built-in fixtures and
// finally to an empty record.
func (s *Service) sample(ctx context.Context, entity mapping.EntityType) (map[string]any, bool) {
	if s.samples != nil {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		rec, err := s.samples.FetchSample(ctx, entity)
		if err == nil && rec != nil {
			return rec, false
		}
		s.log.Warn("sample fetch failed, using built-in sample", "entity", entity, "error", err)
	}
	if records := catalog.SampleRecords(entity); len(records) > 0 {
		return records[0], true
	}
	return map[string]any{}, true
}

// Transform applies the current rule set of entity to every record, the
// way the batch transformer feeds the target CRM.
func (s *Service) Transform(ctx context.Context, entity mapping.EntityType, records []map[string]any) (mapping.BatchResult, error) {
	rs, _, err := s.GetRuleSet(ctx, entity)
	if err != nil {
		return mapping.BatchResult{}, err
	}
	batch := mapping.ApplyBatch(rs, records, mapping.DefaultBatchOptions(entity))
	s.log.Debug("records transformed", "entity", entity, "records", len(records))
	return batch, nil
}

// ExportRuleSet serializes the current rule set of entity.
func (s *Service) ExportRuleSet(ctx context.Context, entity mapping.EntityType, f mapping.Format) ([]byte, error) {
	rs, _, err := s.GetRuleSet(ctx, entity)
	if err != nil {
		return nil, err
	}
	return mapping.Export(rs, f)
}

// ImportRuleSet parses an exported payload. Nothing is saved; callers pass
// the result to SaveRuleSet or TestMapping.
func (s *Service) ImportRuleSet(data []byte, f mapping.Format) (mapping.FlatMapping, error) {
	return mapping.ImportAs(data, f)
}
