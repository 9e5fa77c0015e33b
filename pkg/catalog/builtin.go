package catalog

import "github.com/getmockd/fieldmap/pkg/mapping"

type f = mapping.Field

var builtinSources = map[mapping.EntityType][]mapping.Field{
	mapping.EntityContact: {
		f{Path: "id", Label: "Contact ID"},
		f{Path: "first_name", Label: "First Name"},
		f{Path: "last_name", Label: "Last Name"},
		f{Path: "email", Label: "Email Address"},
		f{Path: "phone", Label: "Phone Number"},
		f{Path: "company", Label: "Company Name"},
		f{Path: "created_at", Label: "Created Date"},
		f{Path: "updated_at", Label: "Updated Date"},
	},
	mapping.EntityDeal: {
		f{Path: "id", Label: "ID"},
		f{Path: "name", Label: "Deal Name"},
		f{Path: "amount", Label: "Amount"},
	},
	mapping.EntityCompany: {
		f{Path: "id", Label: "ID"},
		f{Path: "name", Label: "Company Name"},
	},
	mapping.EntityProject: {
		f{Path: "id", Label: "Project ID"},
		f{Path: "name", Label: "Project Name"},
		f{Path: "description", Label: "Description"},
		f{Path: "status", Label: "Status"},
		f{Path: "start_date", Label: "Start Date"},
		f{Path: "end_date", Label: "End Date"},
		f{Path: "budget", Label: "Budget"},
	},
	mapping.EntityContract: {
		f{Path: "id", Label: "Contract ID"},
		f{Path: "title", Label: "Contract Title"},
		f{Path: "value", Label: "Contract Value"},
		f{Path: "status", Label: "Status"},
		f{Path: "start_date", Label: "Start Date"},
		f{Path: "end_date", Label: "End Date"},
	},
}

var builtinTargets = map[mapping.EntityType][]mapping.Field{
	mapping.EntityContact: {
		f{Path: "hubspot_id", Label: "HubSpot Contact ID"},
		f{Path: "properties.firstname", Label: "First Name"},
		f{Path: "properties.lastname", Label: "Last Name"},
		f{Path: "properties.email", Label: "Email"},
		f{Path: "properties.phone", Label: "Phone"},
		f{Path: "properties.company", Label: "Company"},
		f{Path: "properties.created_date", Label: "Created Date"},
		f{Path: "properties.last_modified_date", Label: "Last Modified Date"},
		f{Path: "properties.jobtitle", Label: "Job Title"},
		f{Path: "properties.website", Label: "Website"},
		f{Path: "properties.address", Label: "Address"},
		f{Path: "properties.city", Label: "City"},
		f{Path: "properties.state", Label: "State"},
		f{Path: "properties.zip", Label: "Zip Code"},
		f{Path: "properties.country", Label: "Country"},
		f{Path: "properties.leadsource", Label: "Lead Source"},
	},
	mapping.EntityDeal: {
		f{Path: "hubspot_id", Label: "HubSpot Deal ID"},
		f{Path: "properties.dealname", Label: "Deal Name"},
		f{Path: "properties.amount", Label: "Amount"},
		f{Path: "properties.dealstage", Label: "Deal Stage"},
		f{Path: "properties.closedate", Label: "Close Date"},
		f{Path: "properties.hubspot_owner_id", Label: "Owner ID"},
		f{Path: "associations.contactIds", Label: "Contact IDs"},
		f{Path: "associations.companyIds", Label: "Company IDs"},
		f{Path: "properties.createdate", Label: "Created Date"},
		f{Path: "properties.hs_lastmodifieddate", Label: "Last Modified Date"},
	},
	mapping.EntityCompany: {
		f{Path: "hubspot_id", Label: "HubSpot Company ID"},
		f{Path: "properties.name", Label: "Company Name"},
		f{Path: "properties.domain", Label: "Website Domain"},
		f{Path: "properties.description", Label: "Description"},
		f{Path: "properties.industry", Label: "Industry"},
		f{Path: "properties.phone", Label: "Phone Number"},
		f{Path: "properties.address", Label: "Address"},
		f{Path: "properties.city", Label: "City"},
		f{Path: "properties.state", Label: "State"},
		f{Path: "properties.zip", Label: "Zip Code"},
		f{Path: "properties.country", Label: "Country"},
		f{Path: "properties.createdate", Label: "Created Date"},
		f{Path: "properties.hs_lastmodifieddate", Label: "Last Modified Date"},
	},
	mapping.EntityProject: {
		f{Path: "hubspot_id", Label: "HubSpot Project ID"},
		f{Path: "properties.name", Label: "Project Name"},
		f{Path: "properties.description", Label: "Description"},
		f{Path: "properties.hs_pipeline_stage", Label: "Pipeline Stage"},
		f{Path: "properties.start_date", Label: "Start Date"},
		f{Path: "properties.end_date", Label: "End Date"},
		f{Path: "properties.budget", Label: "Budget"},
	},
	mapping.EntityContract: {
		f{Path: "hubspot_id", Label: "HubSpot Contract ID"},
		f{Path: "properties.contract_name", Label: "Contract Name"},
		f{Path: "properties.contract_value", Label: "Contract Value"},
		f{Path: "properties.status", Label: "Status"},
		f{Path: "properties.start_date", Label: "Start Date"},
		f{Path: "properties.end_date", Label: "End Date"},
	},
}
