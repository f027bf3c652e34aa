package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/threadfeed/threadfeed/internal/inputmcp"
	"github.com/threadfeed/threadfeed/internal/logger"
	"github.com/threadfeed/threadfeed/internal/source"
	"github.com/threadfeed/threadfeed/internal/tui"
)

var viewFlags struct {
	nats      natsFlags
	workspace string
	thread    string
	mcp       bool
}

var viewCmd = &cobra.Command{
	Use:   "view [transcript]",
	Short: "Open the interactive feed",
	Long: `Open the interactive feed for one thread.

With a transcript argument the file is shown and re-read whenever it changes;
only the newest page_size items are loaded at first and scrolling to the top
loads older ones. Without one, snapshots for --workspace/--thread are read
from NATS. When NATS is available plan and input decisions are published back
on the thread's action subject.

With --mcp an MCP server exposing request_user_input is started; agents can
ask the user questions that appear in the input panel.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	viewFlags.nats.register(viewCmd)
	viewCmd.Flags().StringVarP(&viewFlags.workspace, "workspace", "w", "", "Workspace id to watch")
	viewCmd.Flags().StringVarP(&viewFlags.thread, "thread", "t", "", "Thread id to watch")
	viewCmd.Flags().BoolVar(&viewFlags.mcp, "mcp", false, "Serve request_user_input over MCP (default: mcp_enabled from config)")
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := tui.AppOptions{
		Title:      "threadfeed",
		Feed:       cfg.FeedOptions(),
		LineHeight: cfg.LineHeight,
	}
	workspace, thread := viewFlags.workspace, viewFlags.thread

	if viewFlags.nats.enabled(cfg) {
		conn, err := viewFlags.nats.connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer conn.close()
		opts.Actions = conn.transport
		if len(args) == 0 {
			if thread == "" {
				return fmt.Errorf("--thread is required when reading from NATS")
			}
			snaps, stop, err := conn.transport.Watch(ctx, workspace, thread)
			if err != nil {
				return err
			}
			defer stop()
			opts.Snapshots = snaps
		}
	}

	if len(args) == 1 {
		fs, err := source.NewFileSource(args[0], cfg.PageSize)
		if err != nil {
			return err
		}
		if err := fs.Start(); err != nil {
			return err
		}
		defer func() { _ = fs.Stop() }()
		opts.Snapshots = fs.Snapshots()
		opts.History = fs
		cur := fs.Current()
		workspace, thread = cur.WorkspaceID, cur.ThreadID
	}

	if opts.Snapshots == nil {
		return fmt.Errorf("nothing to view: pass a transcript or use NATS")
	}

	if viewFlags.mcp || cfg.MCPEnabled {
		srv := inputmcp.New(workspace, thread)
		if _, err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = srv.Stop() }()
		logger.Info("Input MCP server listening on %s", srv.URL())
		opts.Inputs = srv
	}

	return runProgram(ctx, opts)
}

func runProgram(ctx context.Context, opts tui.AppOptions) error {
	app := tui.NewApp(ctx, opts)
	p := tea.NewProgram(app)

	// Quit on SIGTERM or when the parent context ends.
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}

var (
	_ tui.InputBridge = (*inputmcp.Server)(nil)
	_ tui.History     = (*source.FileSource)(nil)
	_ tui.ActionSink  = (*source.Transport)(nil)
)
