package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main gearproc configuration
type Config struct {
	// Procedurals
	Procedurals ProceduralsConfig `json:"procedurals" mapstructure:"procedurals"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Metrics
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// Output format for evaluated scenes: json or yaml
	OutputFormat string `json:"output_format" mapstructure:"output_format"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// ProceduralsConfig holds procedural discovery settings
type ProceduralsConfig struct {
	BuiltinDir   string   `json:"builtin_dir" mapstructure:"builtin_dir"`
	WorkspaceDir string   `json:"workspace_dir" mapstructure:"workspace_dir"`
	ExtraDirs    []string `json:"extra_dirs" mapstructure:"extra_dirs"`
	Watch        bool     `json:"watch" mapstructure:"watch"`
	DebounceMs   int      `json:"debounce_ms" mapstructure:"debounce_ms"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file" mapstructure:"file"`
	Console    bool   `json:"console" mapstructure:"console"`
	Pretty     bool   `json:"pretty" mapstructure:"pretty"`
	MaxSize    int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `json:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

// MetricsConfig holds the metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" mapstructure:"addr"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Procedurals: ProceduralsConfig{
			ExtraDirs:  []string{},
			Watch:      true,
			DebounceMs: 200,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			Pretty:     true,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    "127.0.0.1:9464",
		},
		OutputFormat: "json",
		DataDir:      "",
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if errs := NewValidator().ValidateConfig(c); len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errs[0])
	}
	return nil
}
