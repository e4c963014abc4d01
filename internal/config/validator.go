package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateOutputFormat validates the scene output format
func (v *Validator) ValidateOutputFormat(format string) error {
	validFormats := []string{"json", "yaml"}
	for _, valid := range validFormats {
		if format == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid output format: %s (must be one of: %s)", format, strings.Join(validFormats, ", "))
}

// ValidateAddr validates a host:port listen address. The host may be empty.
func (v *Validator) ValidateAddr(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %s: %w", addr, err)
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port in address %s", addr)
	}
	return nil
}

// ValidateDebounce validates the watcher debounce interval
func (v *Validator) ValidateDebounce(ms int) error {
	if ms < 0 {
		return fmt.Errorf("debounce must be >= 0, got %d", ms)
	}
	if ms > 60000 {
		return fmt.Errorf("debounce too large (max 60000ms), got %d", ms)
	}
	return nil
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}
	if cfg.Logging.MaxSize < 0 {
		errors = append(errors, fmt.Errorf("logging.max_size must be >= 0"))
	}
	if cfg.Logging.MaxBackups < 0 {
		errors = append(errors, fmt.Errorf("logging.max_backups must be >= 0"))
	}
	if cfg.Logging.MaxAge < 0 {
		errors = append(errors, fmt.Errorf("logging.max_age must be >= 0"))
	}

	if err := v.ValidateOutputFormat(cfg.OutputFormat); err != nil {
		errors = append(errors, err)
	}

	if cfg.Metrics.Enabled {
		if err := v.ValidateAddr(cfg.Metrics.Addr); err != nil {
			errors = append(errors, fmt.Errorf("metrics: %w", err))
		}
	}

	if err := v.ValidateDebounce(cfg.Procedurals.DebounceMs); err != nil {
		errors = append(errors, fmt.Errorf("procedurals: %w", err))
	}
	for i, dir := range cfg.Procedurals.ExtraDirs {
		if strings.TrimSpace(dir) == "" {
			errors = append(errors, fmt.Errorf("procedurals.extra_dirs[%d] is empty", i))
		}
	}

	return errors
}
