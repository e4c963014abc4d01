package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLogLevel(t *testing.T) {
	v := NewValidator()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.NoError(t, v.ValidateLogLevel(level), level)
	}
	assert.Error(t, v.ValidateLogLevel("trace"))
	assert.Error(t, v.ValidateLogLevel(""))
}

func TestValidateOutputFormat(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateOutputFormat("json"))
	assert.NoError(t, v.ValidateOutputFormat("yaml"))
	assert.Error(t, v.ValidateOutputFormat("toml"))
}

func TestValidateAddr(t *testing.T) {
	v := NewValidator()

	t.Run("valid addresses", func(t *testing.T) {
		assert.NoError(t, v.ValidateAddr("127.0.0.1:9464"))
		assert.NoError(t, v.ValidateAddr(":8080"))
		assert.NoError(t, v.ValidateAddr("[::1]:0"))
	})

	t.Run("invalid addresses", func(t *testing.T) {
		assert.Error(t, v.ValidateAddr(""))
		assert.Error(t, v.ValidateAddr("localhost"))
		assert.Error(t, v.ValidateAddr("localhost:http"))
		assert.Error(t, v.ValidateAddr("localhost:70000"))
	})
}

func TestValidateDebounce(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateDebounce(0))
	assert.NoError(t, v.ValidateDebounce(200))
	assert.Error(t, v.ValidateDebounce(-5))
	assert.Error(t, v.ValidateDebounce(120000))
}

func TestValidateConfig(t *testing.T) {
	v := NewValidator()

	t.Run("default config is valid", func(t *testing.T) {
		assert.Empty(t, v.ValidateConfig(DefaultConfig()))
	})

	t.Run("collects every error", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Logging.Level = "loud"
		cfg.Logging.MaxAge = -1
		cfg.OutputFormat = "csv"
		cfg.Procedurals.ExtraDirs = []string{" "}

		errs := v.ValidateConfig(cfg)
		assert.Len(t, errs, 4)
	})
}

func TestWizard(t *testing.T) {
	t.Run("applies answers", func(t *testing.T) {
		in := strings.NewReader("/work/procs\nn\nxml\nyaml\n:9000\ndebug\n")
		var out bytes.Buffer

		cfg, err := NewWizard(in, &out).Run(DefaultConfig())
		require.NoError(t, err)

		assert.Equal(t, "/work/procs", cfg.Procedurals.WorkspaceDir)
		assert.False(t, cfg.Procedurals.Watch)
		assert.Equal(t, "yaml", cfg.OutputFormat)
		assert.Equal(t, ":9000", cfg.Metrics.Addr)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Contains(t, out.String(), "Error: invalid output format: xml")
		assert.Contains(t, out.String(), "Configuration complete!")
	})

	t.Run("empty answers keep the base", func(t *testing.T) {
		base := DefaultConfig()
		base.Procedurals.WorkspaceDir = "/base"

		cfg, err := NewWizard(strings.NewReader("\n\n\n\n\n"), &bytes.Buffer{}).Run(base)
		require.NoError(t, err)
		assert.Equal(t, "/base", cfg.Procedurals.WorkspaceDir)
		assert.True(t, cfg.Procedurals.Watch)
		assert.Equal(t, base.OutputFormat, cfg.OutputFormat)
		assert.Equal(t, base.Metrics.Addr, cfg.Metrics.Addr)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("invalid log level keeps the base", func(t *testing.T) {
		cfg, err := NewWizard(strings.NewReader("\n\n\n\nloud\n"), &bytes.Buffer{}).Run(DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("closed input fails", func(t *testing.T) {
		_, err := NewWizard(strings.NewReader(""), &bytes.Buffer{}).Run(DefaultConfig())
		assert.Error(t, err)
	})
}
