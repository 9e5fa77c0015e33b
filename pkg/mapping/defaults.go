package mapping

// defaultRules is the fallback mapping for each built-in entity type, used
// when nothing has been saved and no field catalog is reachable.
var defaultRules = map[EntityType]FlatMapping{
	EntityContact: {
		{Source: "id", Target: "hubspot_id"},
		{Source: "first_name", Target: "properties.firstname"},
		{Source: "last_name", Target: "properties.lastname"},
		{Source: "email", Target: "properties.email"},
		{Source: "phone", Target: "properties.phone"},
	},
	EntityDeal: {
		{Source: "id", Target: "hubspot_id"},
		{Source: "name", Target: "properties.dealname"},
		{Source: "amount", Target: "properties.amount"},
	},
	EntityCompany: {
		{Source: "id", Target: "hubspot_id"},
		{Source: "name", Target: "properties.name"},
	},
	EntityProject: {
		{Source: "id", Target: "hubspot_id"},
		{Source: "name", Target: "properties.name"},
		{Source: "description", Target: "properties.description"},
		{Source: "status", Target: "properties.hs_pipeline_stage"},
		{Source: "start_date", Target: "properties.start_date"},
		{Source: "end_date", Target: "properties.end_date"},
		{Source: "budget", Target: "properties.budget"},
	},
	EntityContract: {
		{Source: "id", Target: "hubspot_id"},
		{Source: "title", Target: "properties.contract_name"},
		{Source: "value", Target: "properties.contract_value"},
		{Source: "status", Target: "properties.status"},
		{Source: "start_date", Target: "properties.start_date"},
		{Source: "end_date", Target: "properties.end_date"},
	},
}

// DefaultsFor returns the built-in rule set for entity. Unknown entity types
// get an empty set. The result is a fresh copy the caller may mutate.
func DefaultsFor(entity EntityType) *RuleSet {
	flat, ok := defaultRules[entity]
	if !ok {
		return NewRuleSet(entity)
	}
	rs, err := FromFlat(entity, flat)
	if err != nil {
		// the table is static; a failure here is a programming error
		panic(err)
	}
	return rs
}
