package catalog

import (
	"maps"

	"github.com/getmockd/fieldmap/pkg/mapping"
)

var builtinSamples = map[mapping.EntityType][]map[string]any{
	mapping.EntityContact: {
		{
			"id":         "1",
			"first_name": "aymene",
			"last_name":  "haloui",
			"email":      "john@example.com",
			"phone":      "+1234567890",
			"company":    "Acme Inc",
			"created_at": "2023-01-15T10:30:00Z",
			"updated_at": "2023-04-20T14:15:00Z",
		},
		{
			"id":         "2",
			"first_name": "abd1",
			"last_name":  "rabiai",
			"email":      "jane@example.com",
			"phone":      "+1987654321",
			"company":    "XYZ Corp",
			"created_at": "2023-02-20T08:45:00Z",
			"updated_at": "2023-04-15T11:30:00Z",
		},
		{
			"id":         "3",
			"first_name": "youness",
			"last_name":  "sabr",
			"email":      "alice@example.com",
			"phone":      "+1122334455",
			"company":    "Tech Solutions",
			"created_at": "2023-03-10T16:20:00Z",
			"updated_at": "2023-04-10T09:45:00Z",
		},
	},
	mapping.EntityProject: {
		{
			"id":          "proj_1",
			"name":        "Website Redesign",
			"description": "Complete website redesign for Q2",
			"status":      "in_progress",
			"start_date":  "2023-01-15",
			"end_date":    "2023-06-30",
			"budget":      50000,
		},
		{
			"id":          "proj_2",
			"name":        "Mobile App Development",
			"description": "New mobile app for customer portal",
			"status":      "planning",
			"start_date":  "2023-03-01",
			"end_date":    "2023-12-31",
			"budget":      120000,
		},
		{
			"id":          "proj_3",
			"name":        "Database Migration",
			"description": "Migrate legacy database to cloud",
			"status":      "completed",
			"start_date":  "2022-09-01",
			"end_date":    "2023-02-28",
			"budget":      75000,
		},
	},
	mapping.EntityContract: {
		{
			"id":         "ctr_1",
			"title":      "Annual Support Agreement",
			"value":      24000,
			"status":     "active",
			"start_date": "2023-01-01",
			"end_date":   "2023-12-31",
		},
		{
			"id":         "ctr_2",
			"title":      "Consulting Retainer",
			"value":      9000,
			"status":     "draft",
			"start_date": "2023-05-01",
			"end_date":   "2023-10-31",
		},
	},
	mapping.EntityDeal: {
		{"id": "deal_1", "name": "Q3 Platform Upgrade", "amount": 18500},
		{"id": "deal_2", "name": "Renewal 2024", "amount": 42000},
	},
	mapping.EntityCompany: {
		{"id": "comp_1", "name": "Acme Inc"},
		{"id": "comp_2", "name": "XYZ Corp"},
	},
}

// SampleRecords returns copies of the built-in fixture records for entity.
// They seed the mock record service and stand in for a live sample when the
// source API is unreachable.
func SampleRecords(entity mapping.EntityType) []map[string]any {
	src := builtinSamples[entity]
	out := make([]map[string]any, 0, len(src))
	for _, r := range src {
		out = append(out, maps.Clone(r))
	}
	return out
}
