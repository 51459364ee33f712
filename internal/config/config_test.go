package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - LoadConfigFromDir() uses defaults when no config file exists
// - Loads .ferrite/config.yml and .ferrite/config.yaml
// - Config file values merge with defaults
// - Environment variables override config file values and defaults
// - Malformed YAML and invalid values are rejected
// - Validate() reports each sentinel error and several at once
// - Duration and path helpers convert stored values

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	cfgDir := filepath.Join(dir, ".ferrite")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, name), []byte(content), 0o644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, []string{"**/*.rs"}, cfg.Paths.Include)
	assert.Contains(t, cfg.Paths.Ignore, "target/**")
	assert.True(t, cfg.Paths.RespectGitignore)
	assert.Equal(t, 512, cfg.Cache.MaxEntries)
	assert.Equal(t, filepath.Join(".ferrite", "index.db"), cfg.Storage.DBPath)
	assert.Equal(t, 250, cfg.Watch.DebounceMS)
	assert.Equal(t, 4, cfg.Index.Workers)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Output.Format)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_MergesFileWithDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", `
paths:
  include:
    - "src/**/*.rs"
cache:
  max_entries: 64
output:
  format: json
`)

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/**/*.rs"}, cfg.Paths.Include)
	assert.Equal(t, 64, cfg.Cache.MaxEntries)
	assert.Equal(t, "json", cfg.Output.Format)

	// untouched sections keep their defaults
	assert.Equal(t, 4, cfg.Index.Workers)
	assert.Equal(t, Default().Paths.Ignore, cfg.Paths.Ignore)
}

func TestLoadConfig_YamlExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "index:\n  workers: 9\n")

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Index.Workers)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	// Test: FERRITE_* variables win over the file and defaults
	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "index:\n  workers: 9\n")

	t.Setenv("FERRITE_INDEX_WORKERS", "2")
	t.Setenv("FERRITE_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Index.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "paths: [unclosed\n")

	_, err := LoadConfigFromDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "cache:\n  max_entries: 0\n")

	_, err := LoadConfigFromDir(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCacheSize))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty include", func(c *Config) { c.Paths.Include = nil }, ErrEmptyInclude},
		{"zero cache", func(c *Config) { c.Cache.MaxEntries = 0 }, ErrInvalidCacheSize},
		{"negative ttl", func(c *Config) { c.Cache.TTLSeconds = -1 }, ErrInvalidTTL},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "  " }, ErrEmptyDBPath},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -5 }, ErrInvalidDebounce},
		{"zero workers", func(c *Config) { c.Index.Workers = 0 }, ErrInvalidWorkers},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }, ErrInvalidLogLevel},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidFormat},
		{"unknown output format", func(c *Config) { c.Output.Format = "yaml" }, ErrInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

// Test: several problems are reported together and each sentinel still matches
func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Cache.MaxEntries = -1
	cfg.Index.Workers = 0

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.True(t, errors.Is(err, ErrInvalidCacheSize))
	assert.True(t, errors.Is(err, ErrInvalidWorkers))
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30*time.Second, CacheConfig{TTLSeconds: 30}.TTL())
	assert.Equal(t, 250*time.Millisecond, WatchConfig{DebounceMS: 250}.Debounce())
	assert.Equal(t, filepath.Join("/repo", ".ferrite", "index.db"), Default().Storage.DBPathFor("/repo"))
	assert.Equal(t, "/abs/x.db", StorageConfig{DBPath: "/abs/x.db"}.DBPathFor("/repo"))
}
