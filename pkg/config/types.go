package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/getmockd/fieldmap/pkg/store"
)

// Config is the complete configuration of the fieldmap binary.
type Config struct {
	// Servers
	Listen     string `yaml:"listen" json:"listen"`
	MockListen string `yaml:"mockListen" json:"mockListen"`

	// Storage
	Store   string `yaml:"store" json:"store"`
	DataDir string `yaml:"dataDir" json:"dataDir"`

	// Source record API used for field catalogs and samples
	SourceURL     string        `yaml:"sourceURL" json:"sourceURL"`
	SourceAPIKey  string        `yaml:"sourceAPIKey,omitempty" json:"-"`
	SourceTimeout time.Duration `yaml:"sourceTimeout" json:"sourceTimeout"`

	// Logging
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`

	// APIKeys are the keys the mock service accepts.
	APIKeys []string `yaml:"apiKeys,omitempty" json:"-"`

	// EntityTypes are accepted in addition to the built-in ones.
	EntityTypes []string `yaml:"entityTypes,omitempty" json:"entityTypes,omitempty"`

	// ConfigFile is an explicit config file to load in place of the local one.
	ConfigFile string `yaml:"-" json:"configFile,omitempty"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields records the keys present in a loaded file, so that an
	// explicit empty list can be told apart from an absent key.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Keys lists the configuration keys in display order.
var Keys = []string{
	"listen", "mockListen", "store", "dataDir",
	"sourceURL", "sourceAPIKey", "sourceTimeout",
	"logLevel", "logFormat", "apiKeys", "entityTypes",
}

var validLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen must not be empty"))
	}
	if c.MockListen == "" {
		errs = append(errs, errors.New("mockListen must not be empty"))
	}
	if store.ParseBackend(c.Store) == "" {
		errs = append(errs, fmt.Errorf("store %q is not supported (use file or memory)", c.Store))
	}
	if c.SourceURL != "" {
		u, err := url.Parse(c.SourceURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("sourceURL %q must be an http(s) URL", c.SourceURL))
		}
	}
	if c.SourceTimeout <= 0 {
		errs = append(errs, fmt.Errorf("sourceTimeout %s must be positive", c.SourceTimeout))
	}
	if c.LogLevel != "" && !containsFold(validLogLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("logLevel %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "" && !containsFold([]string{"text", "json"}, c.LogFormat) {
		errs = append(errs, fmt.Errorf("logFormat %q is not one of text, json", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Value returns the display value of key. Secrets are masked.
func (c *Config) Value(key string) string {
	switch key {
	case "listen":
		return c.Listen
	case "mockListen":
		return c.MockListen
	case "store":
		return c.Store
	case "dataDir":
		return c.DataDir
	case "sourceURL":
		return c.SourceURL
	case "sourceAPIKey":
		return mask(c.SourceAPIKey)
	case "sourceTimeout":
		return c.SourceTimeout.String()
	case "logLevel":
		return c.LogLevel
	case "logFormat":
		return c.LogFormat
	case "apiKeys":
		masked := make([]string, len(c.APIKeys))
		for i, k := range c.APIKeys {
			masked[i] = mask(k)
		}
		return strings.Join(masked, ",")
	case "entityTypes":
		return strings.Join(c.EntityTypes, ",")
	}
	return ""
}

// Source returns where key's value came from.
func (c *Config) Source(key string) string {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

func mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 4:
		return "****"
	default:
		return secret[:4] + "****"
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
