package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard creates a new configuration wizard reading answers from in
func NewWizard(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run runs the interactive configuration wizard starting from base
func (w *Wizard) Run(base *Config) (*Config, error) {
	fmt.Fprintln(w.out, "=== gearproc Configuration Wizard ===")
	fmt.Fprintln(w.out)

	cfg := *base
	cfg.Procedurals.ExtraDirs = append([]string(nil), base.Procedurals.ExtraDirs...)
	validator := NewValidator()

	// Procedurals
	fmt.Fprintln(w.out, "Procedurals:")
	fmt.Fprintf(w.out, "Workspace directory [%s]: ", cfg.Procedurals.WorkspaceDir)
	dir, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		cfg.Procedurals.WorkspaceDir = dir
	}

	fmt.Fprint(w.out, "Reload procedurals when they change? (y/n) [y]: ")
	watch, err := w.readLine()
	if err != nil {
		return nil, err
	}
	cfg.Procedurals.Watch = watch == "" || strings.ToLower(watch) == "y"

	fmt.Fprintln(w.out)

	// Output
	for {
		fmt.Fprintf(w.out, "Output format (json/yaml) [%s]: ", cfg.OutputFormat)
		format, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if format == "" {
			break
		}
		if err := validator.ValidateOutputFormat(format); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}
		cfg.OutputFormat = format
		break
	}

	// Metrics
	for {
		fmt.Fprintf(w.out, "Metrics listen address [%s]: ", cfg.Metrics.Addr)
		addr, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if addr == "" {
			break
		}
		if err := validator.ValidateAddr(addr); err != nil {
			fmt.Fprintf(w.out, "Error: %v\n", err)
			continue
		}
		cfg.Metrics.Addr = addr
		break
	}

	fmt.Fprintln(w.out)

	// Log Level
	fmt.Fprintln(w.out, "Logging:")
	fmt.Fprintf(w.out, "Log level (debug/info/warn/error) [%s]: ", cfg.Logging.Level)
	level, err := w.readLine()
	if err != nil {
		return nil, err
	}

	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			fmt.Fprintf(w.out, "Warning: %v, keeping %s\n", err, cfg.Logging.Level)
		} else {
			cfg.Logging.Level = level
		}
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Configuration complete!")

	return &cfg, nil
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
