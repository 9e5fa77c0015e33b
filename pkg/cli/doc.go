// Package cli provides the command-line interface for fieldmap.
//
// The cli package implements the commands for managing field mappings:
//   - serve: Run the mapping HTTP API (optionally with the mock CRM service)
//   - mock: Run the mock CRM service on its own
//   - mapping: Get, save, test, validate, edit, export, import or delete the
//     rule set of an entity type
//   - entities: List the entity types that can be mapped
//   - fields: List the source or target fields of an entity type
//   - config: Display effective configuration
//   - doctor: Check configuration, ports, the data directory and the source API
//   - version: Show fieldmap version
//
// Every command resolves its configuration the same way: defaults, then the
// global config file, then .fieldmaprc.yaml (or --config), then FIELDMAP_*
// environment variables, then flags.
package cli
