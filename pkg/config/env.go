package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment variable names
const (
	EnvConfig        = "FIELDMAP_CONFIG"
	EnvListen        = "FIELDMAP_LISTEN"
	EnvMockListen    = "FIELDMAP_MOCK_LISTEN"
	EnvStore         = "FIELDMAP_STORE"
	EnvDataDir       = "FIELDMAP_DATA_DIR"
	EnvSourceURL     = "FIELDMAP_SOURCE_URL"
	EnvSourceAPIKey  = "FIELDMAP_SOURCE_API_KEY"
	EnvSourceTimeout = "FIELDMAP_SOURCE_TIMEOUT"
	EnvLogLevel      = "FIELDMAP_LOG_LEVEL"
	EnvLogFormat     = "FIELDMAP_LOG_FORMAT"
	EnvAPIKeys       = "FIELDMAP_API_KEYS"
	EnvEntityTypes   = "FIELDMAP_ENTITY_TYPES"
)

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment. An unparsable
// duration is reported; the other values are taken as is.
func LoadEnvConfig(cfg *Config) error {
	env := &Config{}
	env.Listen = os.Getenv(EnvListen)
	env.MockListen = os.Getenv(EnvMockListen)
	env.Store = os.Getenv(EnvStore)
	env.DataDir = os.Getenv(EnvDataDir)
	env.SourceURL = os.Getenv(EnvSourceURL)
	env.SourceAPIKey = os.Getenv(EnvSourceAPIKey)
	env.LogLevel = os.Getenv(EnvLogLevel)
	env.LogFormat = os.Getenv(EnvLogFormat)

	var errs []error
	if v := os.Getenv(EnvSourceTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvSourceTimeout, err))
		} else {
			env.SourceTimeout = d
		}
	}

	env.SetFields = make(map[string]bool)
	if v, ok := os.LookupEnv(EnvAPIKeys); ok {
		env.APIKeys = splitList(v)
		env.SetFields["apiKeys"] = true
	}
	if v, ok := os.LookupEnv(EnvEntityTypes); ok {
		env.EntityTypes = splitList(v)
		env.SetFields["entityTypes"] = true
	}

	MergeConfig(cfg, env, SourceEnv)
	return errors.Join(errs...)
}

// splitList splits a comma separated list, dropping empty entries.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
