package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/fieldmap/pkg/store"
)

// LocalConfigFileNames are the names to search for local config (in order).
var LocalConfigFileNames = []string{".fieldmaprc.yaml", ".fieldmaprc.yml"}

// GlobalConfigFileNames are the names to search for global config (in order).
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("%s (line %d, column %d): %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", e.Path, e.Line, e.Message)
	}
	return e.Path + ": " + e.Message
}

// FindLocalConfig searches for .fieldmaprc.yaml or .fieldmaprc.yml in dir.
// Returns empty string if not found.
func FindLocalConfig(dir string) string {
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FindGlobalConfig returns the path to the global config file.
// Returns empty string if not found.
func FindGlobalConfig() string {
	dir := store.DefaultConfigDir()
	for _, name := range GlobalConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfigFile loads a Config from a YAML file. Unknown keys are errors.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse decodes a YAML config document. path is only used in errors.
func Parse(path string, data []byte) (*Config, error) {
	cfg := &Config{}
	setFields := make(map[string]bool)
	if len(bytes.TrimSpace(data)) == 0 {
		cfg.Sources, cfg.SetFields = make(map[string]string), setFields
		return cfg, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, yamlConfigError(path, err)
	}
	if len(root.Content) > 0 {
		doc := root.Content[0]
		if doc.Kind != yaml.MappingNode {
			return nil, &ConfigError{Path: path, Line: doc.Line, Column: doc.Column, Message: "expected a mapping at the top level"}
		}
		for i := 0; i+1 < len(doc.Content); i += 2 {
			setFields[doc.Content[i].Value] = true
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, yamlConfigError(path, err)
	}
	cfg.Sources, cfg.SetFields = make(map[string]string), setFields
	return cfg, nil
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

func yamlConfigError(path string, err error) *ConfigError {
	msg := err.Error()
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		msg = typeErr.Errors[0]
	}
	ce := &ConfigError{Path: path, Message: msg}
	if m := yamlLineRe.FindStringSubmatch(msg); m != nil {
		ce.Line, _ = strconv.Atoi(m[1])
	}
	return ce
}

// LoadOptions tunes LoadAll.
type LoadOptions struct {
	// ConfigFile replaces the local config file when set. It must exist.
	ConfigFile string
	// Dir is searched for the local config file. Defaults to the working
	// directory.
	Dir string
	// SkipGlobal ignores the global config file.
	SkipGlobal bool
}

// LoadAll loads configuration from all file and environment sources and
// merges them. Flags are applied by the caller with MergeConfig.
// Precedence: flags > env > local (or explicit) config > global config > defaults
func LoadAll(opts LoadOptions) (*Config, error) {
	cfg := NewDefault()

	if !opts.SkipGlobal {
		if globalPath := FindGlobalConfig(); globalPath != "" {
			globalCfg, err := LoadConfigFile(globalPath)
			if err != nil {
				return nil, err
			}
			MergeConfig(cfg, globalCfg, SourceGlobal)
		}
	}

	explicit := opts.ConfigFile
	if explicit == "" {
		explicit = os.Getenv(EnvConfig)
	}
	if explicit != "" {
		fileCfg, err := LoadConfigFile(explicit)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		MergeConfig(cfg, fileCfg, SourceLocal)
		cfg.ConfigFile = explicit
	} else {
		dir := opts.Dir
		if dir == "" {
			dir, _ = os.Getwd()
		}
		if localPath := FindLocalConfig(dir); localPath != "" {
			localCfg, err := LoadConfigFile(localPath)
			if err != nil {
				return nil, err
			}
			MergeConfig(cfg, localCfg, SourceLocal)
			cfg.ConfigFile = localPath
		}
	}

	if err := LoadEnvConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
