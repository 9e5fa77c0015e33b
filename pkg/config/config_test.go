package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every lookup at fresh temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	for _, k := range []string{
		EnvConfig, EnvListen, EnvMockListen, EnvStore, EnvDataDir, EnvSourceURL,
		EnvSourceAPIKey, EnvSourceTimeout, EnvLogLevel, EnvLogFormat,
	} {
		t.Setenv(k, "")
	}
	for _, k := range []string{EnvAPIKeys, EnvEntityTypes} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return t.TempDir()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewDefault(t *testing.T) {
	isolate(t)
	cfg := NewDefault()
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, DefaultMockListen, cfg.MockListen)
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, DefaultSourceTimeout, cfg.SourceTimeout)
	assert.Equal(t, []string{"mock-oggo-key", "mock-hubspot-key"}, cfg.APIKeys)
	for _, k := range Keys {
		assert.Equal(t, SourceDefault, cfg.Source(k), k)
	}
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"memory store", func(c *Config) { c.Store = "memory" }, ""},
		{"unknown store", func(c *Config) { c.Store = "redis" }, `store "redis" is not supported`},
		{"empty listen", func(c *Config) { c.Listen = "" }, "listen must not be empty"},
		{"bad source url", func(c *Config) { c.SourceURL = "localhost:3000" }, "must be an http(s) URL"},
		{"zero timeout", func(c *Config) { c.SourceTimeout = 0 }, "sourceTimeout 0s must be positive"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, `logLevel "loud"`},
		{"upper case level", func(c *Config) { c.LogLevel = "DEBUG" }, ""},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, `logFormat "xml"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse("test.yaml", []byte(`
listen: ":8000"
store: memory
sourceTimeout: 2s
apiKeys: []
entityTypes:
  - line_item
`))
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Listen)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, 2*time.Second, cfg.SourceTimeout)
	assert.Empty(t, cfg.APIKeys)
	assert.True(t, cfg.SetFields["apiKeys"])
	assert.Equal(t, []string{"line_item"}, cfg.EntityTypes)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse("empty.yaml", []byte("\n  \n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Listen)
	assert.NotNil(t, cfg.Sources)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantLine int
		wantMsg  string
	}{
		{"unknown key", "listen: \":1\"\nbogus: true\n", 2, "bogus"},
		{"bad duration", "sourceTimeout: soon\n", 1, "time.Duration"},
		{"syntax", "listen: [\n", 0, ""},
		{"not a mapping", "- a\n- b\n", 1, "expected a mapping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("cfg.yaml", []byte(tt.data))
			require.Error(t, err)

			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "cfg.yaml", ce.Path)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, ce.Line)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, ce.Message, tt.wantMsg)
			}
			assert.Contains(t, err.Error(), "cfg.yaml")
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	assert.Equal(t, "a.yaml: boom", (&ConfigError{Path: "a.yaml", Message: "boom"}).Error())
	assert.Equal(t, "a.yaml (line 3): boom", (&ConfigError{Path: "a.yaml", Line: 3, Message: "boom"}).Error())
	assert.Equal(t, "a.yaml (line 3, column 7): boom", (&ConfigError{Path: "a.yaml", Line: 3, Column: 7, Message: "boom"}).Error())
}

func TestMergeConfig(t *testing.T) {
	t.Run("merges non-zero values", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &Config{Listen: ":9000", SourceTimeout: time.Second}, SourceLocal)
		assert.Equal(t, ":9000", target.Listen)
		assert.Equal(t, time.Second, target.SourceTimeout)
		assert.Equal(t, SourceLocal, target.Source("listen"))
		assert.Equal(t, SourceDefault, target.Source("store"))
	})

	t.Run("explicit empty list replaces", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &Config{SetFields: map[string]bool{"apiKeys": true}}, SourceEnv)
		assert.Empty(t, target.APIKeys)
		assert.Equal(t, SourceEnv, target.Source("apiKeys"))
	})

	t.Run("absent list is kept", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &Config{}, SourceEnv)
		assert.Len(t, target.APIKeys, 2)
	})

	t.Run("nil source is no-op", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, nil, SourceLocal)
		assert.Equal(t, DefaultListen, target.Listen)
	})
}

func TestLoadAll_Precedence(t *testing.T) {
	dir := isolate(t)

	writeFile(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "fieldmap", "config.yaml"),
		"listen: \":7000\"\nmockListen: \":7001\"\nlogLevel: debug\n")
	writeFile(t, filepath.Join(dir, ".fieldmaprc.yaml"),
		"mockListen: \":8001\"\nstore: memory\n")
	t.Setenv(EnvStore, "file")

	cfg, err := LoadAll(LoadOptions{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, SourceGlobal, cfg.Source("listen"))
	assert.Equal(t, ":8001", cfg.MockListen)
	assert.Equal(t, SourceLocal, cfg.Source("mockListen"))
	assert.Equal(t, "file", cfg.Store)
	assert.Equal(t, SourceEnv, cfg.Source("store"))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, ".fieldmaprc.yaml"), cfg.ConfigFile)
}

func TestLoadAll_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".fieldmaprc.yaml"), "listen: \":1111\"\n")
	explicit := filepath.Join(dir, "other.yaml")
	writeFile(t, explicit, "listen: \":2222\"\n")

	cfg, err := LoadAll(LoadOptions{Dir: dir, ConfigFile: explicit})
	require.NoError(t, err)
	assert.Equal(t, ":2222", cfg.Listen)

	_, err = LoadAll(LoadOptions{Dir: dir, ConfigFile: filepath.Join(dir, "missing.yaml")})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadAll_BrokenLocalFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".fieldmaprc.yaml"), "listen: \":1\"\nnope: 1\n")

	_, err := LoadAll(LoadOptions{Dir: dir})
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 2, ce.Line)
}

func TestLoadEnvConfig(t *testing.T) {
	isolate(t)
	t.Setenv(EnvSourceURL, "http://crm.internal:3000")
	t.Setenv(EnvSourceTimeout, "750ms")
	t.Setenv(EnvAPIKeys, "one, two,,")
	t.Setenv(EnvEntityTypes, "ticket")

	cfg := NewDefault()
	require.NoError(t, LoadEnvConfig(cfg))
	assert.Equal(t, "http://crm.internal:3000", cfg.SourceURL)
	assert.Equal(t, 750*time.Millisecond, cfg.SourceTimeout)
	assert.Equal(t, []string{"one", "two"}, cfg.APIKeys)
	assert.Equal(t, []string{"ticket"}, cfg.EntityTypes)
	assert.Equal(t, SourceEnv, cfg.Source("apiKeys"))

	t.Setenv(EnvSourceTimeout, "later")
	err := LoadEnvConfig(NewDefault())
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvSourceTimeout)
}

func TestValue_MasksSecrets(t *testing.T) {
	cfg := NewDefault()
	assert.Equal(t, "mock****", cfg.Value("sourceAPIKey"))
	assert.Equal(t, "mock****,mock****", cfg.Value("apiKeys"))
	assert.Equal(t, "5s", cfg.Value("sourceTimeout"))
	assert.Equal(t, "", cfg.Value("unknown"))
}
