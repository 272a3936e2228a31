package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestParseTimeFormat(t *testing.T) {
	assert.Equal(t, time.Kitchen, parseTimeFormat(""))
	assert.Equal(t, time.RFC3339, parseTimeFormat("rfc3339"))
	assert.Equal(t, "", parseTimeFormat("unix"))
	assert.Equal(t, "2006-01-02", parseTimeFormat("2006-01-02"))
	assert.Equal(t, time.Kitchen, parseTimeFormat("nonsense"))
}

func TestNewLoggerFromConfig(t *testing.T) {
	oldLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(oldLevel) })

	t.Run("nil config uses defaults", func(t *testing.T) {
		logger := NewLoggerFromConfig(nil)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		logger := NewLoggerFromConfig(&Config{Level: "debug", Format: "json", Output: path})
		logger.Debug().Str("family", "abi_base").Msg("merged")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"family":"abi_base"`)
		assert.Contains(t, string(data), `"level":"debug"`)
	})

	t.Run("warn level drops info", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "warn.log")
		logger := NewLoggerFromConfig(&Config{Level: "warn", Format: "json", Output: path})
		logger.Info().Msg("hidden")
		logger.Warn().Msg("shown")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "hidden")
		assert.Contains(t, string(data), "shown")
	})
}

func TestSetDefault(t *testing.T) {
	original := *Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer
	SetDefault(zerolog.New(&buf).Level(zerolog.TraceLevel))

	Default().Info().Msg("info message")
	Default().Warn().Msg("warn message")
	Default().Error().Msg("error message")

	out := buf.String()
	assert.Contains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger(t)
	tl.Info().Str("file", "abi_base.csv").Msg("parsed")
	tl.Debug().Msg("second")

	assert.Len(t, tl.Lines(), 2)
	assert.True(t, tl.ContainsAll("parsed", "abi_base.csv"))
	tl.AssertNotContains(t, "absent")
	assert.NotNil(t, NewNopLogger())

	e := tl.AssertLogged(t, zerolog.InfoLevel, "parsed")
	assert.Equal(t, "abi_base.csv", e["file"])
	_, ok := tl.Find(zerolog.WarnLevel, "parsed")
	assert.False(t, ok)
}

func TestEnvConfig(t *testing.T) {
	t.Setenv("TABLEMERGE_LOG_LEVEL", "debug")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("TABLEMERGE_LOG_OUTPUT", "")
	t.Setenv("LOG_OUTPUT", "")

	cfg := envConfig()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
}

func TestOrDefault(t *testing.T) {
	assert.Same(t, Default(), OrDefault(nil))
	l := NewNopLogger()
	assert.Same(t, l, OrDefault(l))
}
