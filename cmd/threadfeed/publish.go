package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/logger"
	"github.com/threadfeed/threadfeed/internal/source"
)

var publishFlags struct {
	nats  natsFlags
	watch bool
}

var publishCmd = &cobra.Command{
	Use:   "publish <transcript>",
	Short: "Publish a transcript as the latest snapshot on NATS",
	Long: `Publish a transcript file to its thread's snapshot subject so viewers
connected with 'threadfeed view --thread' pick it up.

With --watch the file is re-published every time it changes until
interrupted. Plan and input decisions made by viewers are logged.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	publishFlags.nats.register(publishCmd)
	publishCmd.Flags().BoolVar(&publishFlags.watch, "watch", false, "Re-publish whenever the transcript changes")
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conn, err := publishFlags.nats.connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.close()

	if !publishFlags.watch {
		snap, err := conversation.LoadSnapshot(args[0])
		if err != nil {
			return err
		}
		if err := conn.transport.PublishSnapshot(ctx, snap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Published %d items to %s\n", len(snap.Items),
			source.SnapshotSubject(cfg.SubjectPrefix, snap.WorkspaceID, snap.ThreadID))
		return nil
	}

	// Page size 0 keeps the whole transcript in every snapshot.
	fs, err := source.NewFileSource(args[0], 0)
	if err != nil {
		return err
	}
	cur := fs.Current()
	sub, err := conn.transport.SubscribeActions(cur.WorkspaceID, cur.ThreadID, func(a source.Action) {
		logger.Info("Action from viewer: %s item=%s", a.Kind, a.ItemID)
	})
	if err != nil {
		return err
	}
	defer func() { _ = sub.Unsubscribe() }()

	if err := fs.Start(); err != nil {
		return err
	}
	defer func() { _ = fs.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-fs.Snapshots():
			if !ok {
				return nil
			}
			if err := conn.transport.PublishSnapshot(ctx, snap); err != nil {
				logger.Error("Publish failed: %v", err)
				continue
			}
			logger.Debug("Published %d items", len(snap.Items))
		}
	}
}
