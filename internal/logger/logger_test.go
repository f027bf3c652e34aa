package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"WARN", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error %d", 7)

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "[WARN] warn message")
	assert.Contains(t, out, "[ERROR] error 7")
	assert.False(t, l.Enabled(LevelInfo))
	assert.True(t, l.Enabled(LevelError))
}

func TestLogger_EnvConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.log")
	t.Setenv(envLevel, "debug")
	t.Setenv(envFile, path)

	l := New()
	l.Debug("from env")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[DEBUG] from env")
}

func TestLogger_Configure(t *testing.T) {
	t.Setenv(envLevel, "")
	t.Setenv(envFile, "")

	l := New()
	require.Error(t, l.Configure("loud", ""))

	first := filepath.Join(t.TempDir(), "a.log")
	second := filepath.Join(t.TempDir(), "b.log")

	require.NoError(t, l.Configure("info", first))
	l.Info("one")
	require.NoError(t, l.Configure("", second))
	l.Info("two")
	require.NoError(t, l.Close())

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(a), "one")
	assert.NotContains(t, string(a), "two")
	assert.Contains(t, string(b), "two")

	l.Info("after close")
	require.NoError(t, l.Close())
}
