// Package mapping defines field-mapping rule sets and applies them to records.
//
// A rule set maps dotted source paths of one entity type (contact, deal,
// company, project, contract) to dotted target paths. It is stored and
// exchanged as a flat JSON object whose key order is the rule order:
//
//	{
//	  "id": "hubspot_id",
//	  "first_name": "properties.firstname",
//	  "email": "properties.email"
//	}
//
// # Lifecycle
//
// Flat objects are converted to a *RuleSet on ingress (FromFlat or Import)
// and back to a FlatMapping only on egress (RuleSet.Flat or Export). Inside
// the package rules are always held as parsed fieldpath.Path values.
//
// FromFlat rejects malformed paths, duplicate sources and duplicate targets
// with an *InvalidMappingError naming the offending key. FromFlatUnchecked
// accepts duplicate targets so that hand-edited legacy files still load;
// Apply then reports the colliding targets instead of hiding them.
//
// # Applying
//
// Apply never fails on data shape. Source paths missing from the record are
// reported in Result.Unresolved and nothing is written for them. When two
// rules write the same target the later rule wins and the target is listed
// in Result.Collisions.
package mapping
