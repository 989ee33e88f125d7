// Package config resolves tool configuration from defaults, an optional YAML
// file, and the environment. Command-line flags are layered on top by the CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultTable matches the table the tool was written against.
	DefaultTable = "Notes_Table"
	// TableEnvVar overrides the table name without touching flags or files.
	TableEnvVar = "NOTES_TABLE_NAME"

	DefaultUIHost = "127.0.0.1"
	DefaultUIPort = 5000
)

// Config is the resolved tool configuration.
type Config struct {
	// Table is the managed table holding notes.
	Table string `yaml:"table"`
	// KeyName is the partition key attribute name. Empty means detect.
	KeyName string `yaml:"keyName"`
	// SortKey is the sort key attribute name, for tables that have one.
	SortKey string `yaml:"sortKey"`
	// UserID is the default sort key value for item operations.
	UserID string `yaml:"userId"`
	// Region overrides the AWS region resolution.
	Region string `yaml:"region"`
	// Endpoint points the client at a non-default endpoint, e.g. a local
	// DynamoDB. Empty uses the SDK's resolution.
	Endpoint string `yaml:"endpoint"`

	UI UIConfig `yaml:"ui"`
}

// UIConfig is the web front-end listen address.
type UIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Table: DefaultTable,
		UI: UIConfig{
			Host: DefaultUIHost,
			Port: DefaultUIPort,
		},
	}
}

// Load resolves configuration: defaults, then the YAML file at path (if path
// is non-empty; the file must exist), then the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.applyFallbacks()
	}

	if table := os.Getenv(TableEnvVar); table != "" {
		cfg.Table = table
	}

	return cfg, nil
}

// applyFallbacks restores defaults a sparse config file zeroed out.
func (c *Config) applyFallbacks() {
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.UI.Host == "" {
		c.UI.Host = DefaultUIHost
	}
	if c.UI.Port == 0 {
		c.UI.Port = DefaultUIPort
	}
}
