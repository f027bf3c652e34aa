package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/logger"
	"github.com/threadfeed/threadfeed/internal/tui"
)

var renderFlags struct {
	width int
	out   string
}

var renderCmd = &cobra.Command{
	Use:   "render <transcript>",
	Short: "Print a transcript as plain feed output",
	Long: `Render a transcript the way the feed shows it, without the interactive
viewer. Collapsible rows use their default state.

With --out the result is written to DIR/<workspace>-<thread>.txt instead of
stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().IntVar(&renderFlags.width, "width", 0, "Render width in columns (default: width from config)")
	renderCmd.Flags().StringVarP(&renderFlags.out, "out", "o", "", "Directory to write the rendered transcript to")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	snap, err := conversation.LoadSnapshot(args[0])
	if err != nil {
		return err
	}

	width := renderFlags.width
	if width <= 0 {
		width = cfg.Width
	}
	out := tui.RenderTranscript(snap, cfg.FeedOptions(), width)

	if renderFlags.out == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}

	if err := os.MkdirAll(renderFlags.out, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(renderFlags.out, transcriptName(snap)+".txt")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	logger.Info("Rendered %s to %s", args[0], path)
	fmt.Fprintf(cmd.OutOrStdout(), "Written to: %s\n", path)
	return nil
}

// transcriptName is a file-safe name for the snapshot's thread.
func transcriptName(snap *conversation.Snapshot) string {
	name := slug.Make(snap.WorkspaceID + "-" + snap.ThreadID)
	if name == "" {
		return "transcript"
	}
	return name
}
