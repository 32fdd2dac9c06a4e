// Package config loads tsel configuration from .tsel/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigDirName is the per-repo directory holding tsel state.
const ConfigDirName = ".tsel"

// Config represents the complete tsel configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	Language string `json:"language" mapstructure:"language"`

	// Exclude holds caller glob patterns unioned with the built-in
	// dependency/build/coverage excludes during the repository walk.
	Exclude []string `json:"exclude" mapstructure:"exclude"`

	Cache   CacheConfig   `json:"cache" mapstructure:"cache"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// CacheConfig contains selection cache configuration
type CacheConfig struct {
	// Root overrides the cache directory. Empty means the default
	// (TSEL_CACHE_DIR env var, then the OS temp dir).
	Root string `json:"root" mapstructure:"root"`

	// Disabled turns the cache off for every invocation in this repo,
	// equivalent to always passing --no-cache.
	Disabled bool `json:"disabled" mapstructure:"disabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Language: "javascript",
		Exclude:  []string{},
		Cache:    CacheConfig{},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <repoRoot>/.tsel/config.json.
// A missing file is not an error; the defaults are returned.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("language", "javascript")
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ConfigDirName))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <repoRoot>/.tsel/config.json.
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}
