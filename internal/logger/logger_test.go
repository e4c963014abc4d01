package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("create logger with console output", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := Config{
			Level:   "info",
			Console: true,
			Pretty:  false,
			Output:  &buf,
		}

		logger, err := New(cfg)
		require.NoError(t, err)
		defer logger.Close()

		logger.Info().Str("component", "test").Msg("hello")
		assert.Contains(t, buf.String(), `"message":"hello"`)
		assert.Contains(t, buf.String(), `"component":"test"`)
	})

	t.Run("level filters events", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New(Config{Level: "warn", Console: true, Output: &buf})
		require.NoError(t, err)
		defer logger.Close()

		logger.Info().Msg("quiet")
		logger.Warn().Msg("loud")
		assert.NotContains(t, buf.String(), "quiet")
		assert.Contains(t, buf.String(), "loud")
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger, err := New(Config{Level: "verbose"})
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, logger.GetZerolog().GetLevel())
	})

	t.Run("create logger with file output", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "logs", "test.log")

		cfg := Config{
			Level:   "debug",
			File:    logFile,
			Console: false,
			MaxSize: 1,
		}

		logger, err := New(cfg)
		require.NoError(t, err)

		logger.Debug().Msg("test message")
		require.NoError(t, logger.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "test message")
	})

	t.Run("console and file together", func(t *testing.T) {
		var buf bytes.Buffer
		logFile := filepath.Join(t.TempDir(), "test.log")

		logger, err := New(Config{Level: "info", File: logFile, Console: true, Output: &buf})
		require.NoError(t, err)

		logger.Error().Msg("both")
		require.NoError(t, logger.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "both")
		assert.Contains(t, buf.String(), "both")
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.True(t, cfg.Console)
	assert.True(t, cfg.Pretty)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.Equal(t, 3, cfg.MaxBackups)
	assert.Equal(t, 7, cfg.MaxAge)
	assert.True(t, cfg.Compress)
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Console: true, Output: &buf})
	require.NoError(t, err)
	defer logger.Close()

	child := logger.With().Str("component", "child").Logger()
	child.Info().Msg("from child")
	assert.Contains(t, buf.String(), `"component":"child"`)
}

func TestGetZerolog(t *testing.T) {
	logger, err := New(Config{Level: "debug", Console: false})
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, zerolog.DebugLevel, logger.GetZerolog().GetLevel())
}
