package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points XDG_CONFIG_HOME and the working directory at a fresh temp
// dir so no real config leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	origWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origWd) })

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	for _, key := range envKeys {
		name := envPrefix + "_" + strings.ToUpper(key)
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	return dir
}

func TestGlobalPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/threadfeed/threadfeed.yml", GlobalPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	got := GlobalPath()
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "threadfeed.yml", filepath.Base(got))
}

func TestProjectPath(t *testing.T) {
	assert.Equal(t, "threadfeed.yml", ProjectPath())
}

func TestExists(t *testing.T) {
	isolate(t)
	assert.False(t, Exists())

	require.NoError(t, os.WriteFile(ProjectPath(), []byte("width: 80\n"), 0o644))
	assert.True(t, Exists())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 20, cfg.LineHeight)
	assert.Equal(t, 120, cfg.CapturePx)
	assert.Equal(t, 360, cfg.ReleasePx)
	assert.Equal(t, 16, cfg.TopTriggerPx)
	assert.Equal(t, 900, cfg.PageCooldownMs)
	assert.Equal(t, 120, cfg.VirtualizeThreshold)
	assert.Equal(t, 5, cfg.Collapse.KeepRecent)
	assert.Equal(t, "threadfeed", cfg.SubjectPrefix)
	assert.Contains(t, cfg.ControlTags, "<environment_context>")

	opts := cfg.FeedOptions()
	assert.Equal(t, 900*time.Millisecond, opts.PageCooldown)
	assert.Equal(t, 1200, opts.Collapse.PreviewChars)
	assert.Equal(t, 140, opts.EstimatedRowHeight)
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	isolate(t)

	global := &Config{
		LogLevel:   "warn",
		Width:      90,
		LineHeight: 20,
		CapturePx:  100,
		ReleasePx:  400,
		PageSize:   50,
		Collapse:   Collapse{KeepRecent: 2, AssistantChars: 500},
	}
	require.NoError(t, WriteGlobal(global))

	project := "width: 132\ncollapse:\n  keep_recent: 3\n"
	require.NoError(t, os.WriteFile(ProjectPath(), []byte(project), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 132, cfg.Width)
	assert.Equal(t, 3, cfg.Collapse.KeepRecent)
	assert.Equal(t, 500, cfg.Collapse.AssistantChars)
	assert.Equal(t, 50, cfg.PageSize)
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	isolate(t)

	require.NoError(t, os.WriteFile(ProjectPath(), []byte("page_size: 10\nmcp_enabled: false\n"), 0o644))
	t.Setenv("THREADFEED_PAGE_SIZE", "25")
	t.Setenv("THREADFEED_MCP_ENABLED", "true")
	t.Setenv("THREADFEED_NATS_URL", "nats://127.0.0.1:4222")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.PageSize)
	assert.True(t, cfg.MCPEnabled)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATSURL)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)

	require.NoError(t, os.WriteFile(ProjectPath(), []byte("capture_px: 500\nrelease_px: 100\n"), 0o644))
	_, err := Load()
	require.ErrorContains(t, err, "capture_px")
}

func TestWriteProject(t *testing.T) {
	isolate(t)

	require.NoError(t, WriteProject(&Config{LogLevel: "debug", LineHeight: 18, ControlTags: []string{"<x>"}}))

	data, err := os.ReadFile(ProjectPath())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "log_level: debug")
	assert.Contains(t, content, "line_height: 18")
	assert.Contains(t, content, "<x>")
}

func TestDefault_MatchesLoad(t *testing.T) {
	isolate(t)

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, loaded, Default())
	require.NoError(t, Default().Validate())
}
