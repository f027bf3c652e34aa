package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/threadfeed/threadfeed/internal/config"
	"github.com/threadfeed/threadfeed/internal/logger"
	"github.com/threadfeed/threadfeed/internal/tui/theme"
)

const logoText = "▀█▀ █ █ █▀█ █▀▀ ▄▀█ █▀▄ █▀▀ █▀▀ █▀▀ █▀▄"

// Version set via ldflags during build
var version = "dev"

func main() {
	// Ensure logger is closed on exit
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "threadfeed",
	Short: "Terminal viewer for streaming agent conversations",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := theme.Current()
	runes := []rune(logoText)
	var b strings.Builder
	for i, r := range runes {
		hex := theme.InterpolateColor(t.Primary, t.Secondary, float64(i)/float64(len(runes)-1))
		b.WriteString(theme.Current().S().HeaderTitle.Foreground(theme.HexToColor(hex)).Render(string(r)))
	}
	return b.String()
}

// loadConfig loads the configuration and applies its logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	rootCmd.Long = renderLogo() + `

threadfeed renders a streaming conversation between a user and a coding
agent: messages, reasoning, tool calls, diffs and reviews, grouped and
scrollable, with plan follow-ups and pending input prompts.

Snapshots come from a transcript file (watched for changes) or from a NATS
JetStream subject that an agent publishes to.`

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(setupCmd)
}
