// Package config loads ferrite's project configuration.
//
// Values come from three layers, highest priority first:
//  1. Environment variables (FERRITE_*, nested keys joined with underscores)
//  2. The project file .ferrite/config.yml or .ferrite/config.yaml
//  3. Built-in defaults
package config

import (
	"path/filepath"
	"time"
)

// Config represents the complete ferrite configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
	Index   IndexConfig   `yaml:"index" mapstructure:"index"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
}

// PathsConfig defines which files are analyzed and which are skipped.
type PathsConfig struct {
	Include          []string `yaml:"include" mapstructure:"include"`                     // glob patterns for source files
	Ignore           []string `yaml:"ignore" mapstructure:"ignore"`                       // glob patterns to skip
	RespectGitignore bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"` // also skip .gitignore matches
}

// CacheConfig bounds the in-memory analysis cache.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
	TTLSeconds int `yaml:"ttl_seconds" mapstructure:"ttl_seconds"` // 0 disables expiry
}

// StorageConfig locates the project index database.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"` // relative paths resolve against the project root
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// IndexConfig tunes project indexing.
type IndexConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LoggingConfig selects log level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// OutputConfig selects how commands print results.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{"**/*.rs"},
			Ignore: []string{
				"target/**",
				".git/**",
				"vendor/**",
				"node_modules/**",
				".ferrite/**",
			},
			RespectGitignore: true,
		},
		Cache: CacheConfig{
			MaxEntries: 512,
			TTLSeconds: 0,
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(".ferrite", "index.db"),
		},
		Watch: WatchConfig{
			DebounceMS: 250,
		},
		Index: IndexConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Debounce returns the watch debounce as a duration.
func (c WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// DBPathFor resolves the database path against rootDir.
func (c StorageConfig) DBPathFor(rootDir string) string {
	if filepath.IsAbs(c.DBPath) {
		return c.DBPath
	}
	return filepath.Join(rootDir, c.DBPath)
}
