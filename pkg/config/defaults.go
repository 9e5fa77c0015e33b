package config

import (
	"time"

	"github.com/getmockd/fieldmap/pkg/store"
)

// DefaultListen is the default listen address of the mapping API.
const DefaultListen = ":5000"

// DefaultMockListen is the default listen address of the mock service.
const DefaultMockListen = ":3000"

// DefaultSourceURL is where the source record API is expected.
const DefaultSourceURL = "http://localhost:3000"

// DefaultSourceAPIKey is the key the mock service accepts for source reads.
const DefaultSourceAPIKey = "mock-oggo-key"

// DefaultSourceTimeout bounds every call to the source API.
const DefaultSourceTimeout = 5 * time.Second

// DefaultAPIKeys returns the keys the mock service accepts by default.
func DefaultAPIKeys() []string {
	return []string{"mock-oggo-key", "mock-hubspot-key"}
}

// NewDefault creates a new Config with default values.
func NewDefault() *Config {
	cfg := &Config{
		Listen:        DefaultListen,
		MockListen:    DefaultMockListen,
		Store:         string(store.BackendFile),
		DataDir:       store.DefaultDataDir(),
		SourceURL:     DefaultSourceURL,
		SourceAPIKey:  DefaultSourceAPIKey,
		SourceTimeout: DefaultSourceTimeout,
		LogLevel:      "info",
		LogFormat:     "text",
		APIKeys:       DefaultAPIKeys(),
		Sources:       make(map[string]string),
	}
	for _, k := range Keys {
		cfg.Sources[k] = SourceDefault
	}
	return cfg
}
