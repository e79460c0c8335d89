package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name in a project directory.
const FileName = "transfers.yaml"

// Config represents the top-level transfers.yaml configuration.
type Config struct {
	Report  ReportConfig  `yaml:"report"`
	Input   InputConfig   `yaml:"input"`
	Clock   ClockConfig   `yaml:"clock"`
	Logging LoggingConfig `yaml:"logging"`
	History HistoryConfig `yaml:"history"`
}

// ReportConfig controls report rendering.
type ReportConfig struct {
	Format   string `yaml:"format"` // table, json or csv
	Currency string `yaml:"currency"`
}

// InputConfig selects the ledger parser.
type InputConfig struct {
	Format string `yaml:"format"` // csv or json; empty = by extension
}

// ClockConfig pins "today" for reproducible reports.
type ClockConfig struct {
	Today string `yaml:"today"` // "YYYY-MM-DD"; empty = wall clock
}

// LoggingConfig controls diagnostic output on stderr.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// HistoryConfig controls the run history log.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Load reads a transfers.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Report: ReportConfig{
			Format:   "table",
			Currency: "USD",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		History: HistoryConfig{
			Enabled: true,
			Dir:     ".",
		},
	}
}

// Today resolves the effective "today": the pinned clock date if set, as
// midnight UTC like ledger dates, otherwise now.
func (c *Config) Today(now time.Time) (time.Time, error) {
	if c.Clock.Today == "" {
		return now, nil
	}
	t, err := time.Parse(time.DateOnly, c.Clock.Today)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing clock.today %q: %w", c.Clock.Today, err)
	}
	return t, nil
}
