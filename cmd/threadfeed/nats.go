package main

import (
	"context"
	"fmt"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/threadfeed/threadfeed/internal/config"
	"github.com/threadfeed/threadfeed/internal/logger"
	"github.com/threadfeed/threadfeed/internal/source"
)

// natsFlags select the snapshot transport shared by view and publish.
type natsFlags struct {
	url     string
	dataDir string
}

func (f *natsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "nats", "", "NATS server URL (default: nats_url from config)")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "Run an embedded NATS server storing data here")
}

// enabled reports whether the user asked for NATS at all.
func (f *natsFlags) enabled(cfg *config.Config) bool {
	return f.url != "" || f.dataDir != "" || cfg.NATSURL != ""
}

// natsConn is an open transport and whatever it needs shut down.
type natsConn struct {
	nc        *nats.Conn
	ns        *server.Server
	transport *source.Transport
}

func (f *natsFlags) connect(ctx context.Context, cfg *config.Config) (*natsConn, error) {
	c := &natsConn{}
	url := f.url
	if url == "" {
		url = cfg.NATSURL
	}

	var err error
	switch {
	case f.dataDir != "":
		c.ns, err = source.StartEmbedded(f.dataDir)
		if err != nil {
			return nil, err
		}
		c.nc, err = source.ConnectInProcess(c.ns)
	case url != "":
		c.nc, err = source.Connect(url)
	default:
		return nil, fmt.Errorf("no NATS server: use --nats, --data-dir or set nats_url")
	}
	if err != nil {
		_ = source.Shutdown(nil, c.ns)
		return nil, err
	}

	c.transport, err = source.NewTransport(ctx, c.nc, cfg.SubjectPrefix)
	if err != nil {
		c.close()
		return nil, err
	}
	return c, nil
}

func (c *natsConn) close() {
	if err := source.Shutdown(c.nc, c.ns); err != nil {
		logger.Warn("NATS shutdown: %v", err)
	}
}
