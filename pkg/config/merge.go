package config

import "slices"

// MergeConfig merges source config into target, updating sources tracking.
// Only non-zero values from source are applied. Lists are applied when
// non-empty, or when SetFields marks them as explicitly present.
func MergeConfig(target, source *Config, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	if source.Listen != "" {
		target.Listen = source.Listen
		target.Sources["listen"] = sourceType
	}
	if source.MockListen != "" {
		target.MockListen = source.MockListen
		target.Sources["mockListen"] = sourceType
	}
	if source.Store != "" {
		target.Store = source.Store
		target.Sources["store"] = sourceType
	}
	if source.DataDir != "" {
		target.DataDir = source.DataDir
		target.Sources["dataDir"] = sourceType
	}
	if source.SourceURL != "" {
		target.SourceURL = source.SourceURL
		target.Sources["sourceURL"] = sourceType
	}
	if source.SourceAPIKey != "" {
		target.SourceAPIKey = source.SourceAPIKey
		target.Sources["sourceAPIKey"] = sourceType
	}
	if source.SourceTimeout != 0 {
		target.SourceTimeout = source.SourceTimeout
		target.Sources["sourceTimeout"] = sourceType
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
		target.Sources["logLevel"] = sourceType
	}
	if source.LogFormat != "" {
		target.LogFormat = source.LogFormat
		target.Sources["logFormat"] = sourceType
	}
	if len(source.APIKeys) > 0 || source.SetFields["apiKeys"] {
		target.APIKeys = slices.Clone(source.APIKeys)
		target.Sources["apiKeys"] = sourceType
	}
	if len(source.EntityTypes) > 0 || source.SetFields["entityTypes"] {
		target.EntityTypes = slices.Clone(source.EntityTypes)
		target.Sources["entityTypes"] = sourceType
	}
}
