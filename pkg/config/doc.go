// Package config provides configuration types and loading for fieldmap.
//
// Values are merged from several sources. Later sources win:
//   - Defaults
//   - Global config file ($XDG_CONFIG_HOME/fieldmap/config.yaml)
//   - Local config file (.fieldmaprc.yaml in the current directory), or the
//     file named by --config / FIELDMAP_CONFIG
//   - Environment variables (FIELDMAP_*)
//   - Command-line flags
//
// Every merged key records where its value came from in Config.Sources so
// that `fieldmap config` can explain the effective configuration.
//
// Example .fieldmaprc.yaml:
//
//	listen: ":5000"
//	store: file
//	dataDir: ./mappings
//	sourceURL: http://localhost:3000
//	sourceAPIKey: mock-oggo-key
//	sourceTimeout: 5s
//	entityTypes:
//	  - line_item
package config
