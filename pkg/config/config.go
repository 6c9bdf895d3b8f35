// Package config loads the YAML configuration shared by the storage and scan
// tooling.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"storevec/pkg/logging"
)

const (
	DefaultBTreeDegree = 32
	DefaultStringWidth = 64
)

type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
	Path   string `yaml:"path"`   // empty for stderr
}

type StorageConfig struct {
	BTreeDegree int `yaml:"btree_degree"`
	// StringWidth is the byte width given to string columns that do not declare one.
	StringWidth int `yaml:"string_width"`
	// SQLitePath selects the SQLite record store when set. ":memory:" is accepted.
	SQLitePath string `yaml:"sqlite_path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  string(logging.LevelInfo),
			Format: "text",
		},
		Storage: StorageConfig{
			BTreeDegree: DefaultBTreeDegree,
			StringWidth: DefaultStringWidth,
		},
	}
}

// Load reads configPath over the defaults. An empty path yields the defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", configPath, err)
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = string(logging.LevelInfo)
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Storage.BTreeDegree == 0 {
		cfg.Storage.BTreeDegree = DefaultBTreeDegree
	}
	if cfg.Storage.StringWidth == 0 {
		cfg.Storage.StringWidth = DefaultStringWidth
	}
}

// Validate rejects values the storage layer cannot work with.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format: must be text or json, got %q", c.Logging.Format)
	}
	if c.Storage.BTreeDegree < 2 {
		return fmt.Errorf("storage.btree_degree: must be at least 2, got %d", c.Storage.BTreeDegree)
	}
	if c.Storage.StringWidth < 1 {
		return fmt.Errorf("storage.string_width: must be positive, got %d", c.Storage.StringWidth)
	}
	return nil
}

// LoggingConfig converts the logging section into a logging.Config.
func (c *Config) LoggingConfig() logging.Config {
	lvl, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		lvl = logging.LevelInfo
	}
	return logging.Config{
		Level:      lvl,
		OutputPath: c.Logging.Path,
		Format:     c.Logging.Format,
	}
}
