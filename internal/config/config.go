// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/threadfeed/threadfeed/internal/feed"
)

const (
	envPrefix = "THREADFEED"
	fileName  = "threadfeed.yml"
)

// Config holds all configuration values for threadfeed.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`

	// Width is the render width for non-interactive output.
	Width int `mapstructure:"width" yaml:"width"`
	// LineHeight is the pixel height of one terminal row. Feed thresholds
	// are in pixels and converted with it.
	LineHeight int `mapstructure:"line_height" yaml:"line_height"`

	CapturePx           int `mapstructure:"capture_px" yaml:"capture_px"`
	ReleasePx           int `mapstructure:"release_px" yaml:"release_px"`
	TopTriggerPx        int `mapstructure:"top_trigger_px" yaml:"top_trigger_px"`
	PageCooldownMs      int `mapstructure:"page_cooldown_ms" yaml:"page_cooldown_ms"`
	PageSize            int `mapstructure:"page_size" yaml:"page_size"`
	VirtualizeThreshold int `mapstructure:"virtualize_threshold" yaml:"virtualize_threshold"`
	RowEstimatePx       int `mapstructure:"row_estimate_px" yaml:"row_estimate_px"`
	Overscan            int `mapstructure:"overscan" yaml:"overscan"`

	Collapse Collapse `mapstructure:"collapse" yaml:"collapse"`

	ControlTags []string `mapstructure:"control_tags" yaml:"control_tags"`

	NATSURL       string `mapstructure:"nats_url" yaml:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix" yaml:"subject_prefix"`
	MCPEnabled    bool   `mapstructure:"mcp_enabled" yaml:"mcp_enabled"`
}

// Collapse mirrors feed.CollapseRules.
type Collapse struct {
	AssistantChars int `mapstructure:"assistant_chars" yaml:"assistant_chars"`
	AssistantLines int `mapstructure:"assistant_lines" yaml:"assistant_lines"`
	KeepRecent     int `mapstructure:"keep_recent" yaml:"keep_recent"`
	UserChars      int `mapstructure:"user_chars" yaml:"user_chars"`
	UserLines      int `mapstructure:"user_lines" yaml:"user_lines"`
	PreviewChars   int `mapstructure:"preview_chars" yaml:"preview_chars"`
}

// envKeys are bound explicitly so ints and bools parse from the environment.
var envKeys = []string{
	"log_level", "log_file", "width", "line_height",
	"capture_px", "release_px", "top_trigger_px", "page_cooldown_ms", "page_size",
	"virtualize_threshold", "row_estimate_px", "overscan",
	"nats_url", "subject_prefix", "mcp_enabled",
}

func setDefaults(v *viper.Viper) {
	opts := feed.DefaultOptions()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("width", 100)
	v.SetDefault("line_height", 20)
	v.SetDefault("capture_px", opts.CaptureDistance)
	v.SetDefault("release_px", opts.ReleaseDistance)
	v.SetDefault("top_trigger_px", opts.TopTrigger)
	v.SetDefault("page_cooldown_ms", int(opts.PageCooldown/time.Millisecond))
	v.SetDefault("page_size", 200)
	v.SetDefault("virtualize_threshold", opts.VirtualizeThreshold)
	v.SetDefault("row_estimate_px", opts.EstimatedRowHeight)
	v.SetDefault("overscan", opts.Overscan)
	v.SetDefault("collapse.assistant_chars", opts.Collapse.AssistantChars)
	v.SetDefault("collapse.assistant_lines", opts.Collapse.AssistantLines)
	v.SetDefault("collapse.keep_recent", opts.Collapse.KeepRecent)
	v.SetDefault("collapse.user_chars", opts.Collapse.UserChars)
	v.SetDefault("collapse.user_lines", opts.Collapse.UserLines)
	v.SetDefault("collapse.preview_chars", opts.Collapse.PreviewChars)
	v.SetDefault("control_tags", opts.ControlTags)
	v.SetDefault("nats_url", "")
	v.SetDefault("subject_prefix", "threadfeed")
	v.SetDefault("mcp_enabled", false)
}

// Default returns the built-in configuration, ignoring files and the
// environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range envKeys {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	if globalPath := GlobalPath(); fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	if projectPath := ProjectPath(); fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the feed cannot work with.
func (c *Config) Validate() error {
	if c.LineHeight <= 0 {
		return fmt.Errorf("line_height must be positive, got %d", c.LineHeight)
	}
	if c.CapturePx > c.ReleasePx {
		return fmt.Errorf("capture_px (%d) must not exceed release_px (%d)", c.CapturePx, c.ReleasePx)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	return nil
}

// FeedOptions converts the config into core feed options. Distances stay in
// pixels.
func (c *Config) FeedOptions() feed.Options {
	return feed.Options{
		CaptureDistance:     c.CapturePx,
		ReleaseDistance:     c.ReleasePx,
		TopTrigger:          c.TopTriggerPx,
		PageCooldown:        time.Duration(c.PageCooldownMs) * time.Millisecond,
		VirtualizeThreshold: c.VirtualizeThreshold,
		EstimatedRowHeight:  c.RowEstimatePx,
		Overscan:            c.Overscan,
		Collapse: feed.CollapseRules{
			AssistantChars: c.Collapse.AssistantChars,
			AssistantLines: c.Collapse.AssistantLines,
			KeepRecent:     c.Collapse.KeepRecent,
			UserChars:      c.Collapse.UserChars,
			UserLines:      c.Collapse.UserLines,
			PreviewChars:   c.Collapse.PreviewChars,
		},
		ControlTags: append([]string(nil), c.ControlTags...),
	}
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns $XDG_CONFIG_HOME/threadfeed/threadfeed.yml, falling back
// to ~/.config.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "threadfeed", fileName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "threadfeed", fileName)
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return fileName
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
