package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topoview/internal/metrics"
	"github.com/matzehuels/topoview/pkg/graph"
	"github.com/matzehuels/topoview/pkg/server"
)

type serveOpts struct {
	addr  string
	fps   int
	watch bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [dataset]",
		Short: "Serve a live rendering over HTTP and WebSocket",
		Long: `Serve renders a dataset and keeps the simulation running. Browsers
report their container size, change the selection and drag nodes through
the REST API or the /ws WebSocket, and receive one frame per tick.

Prometheus metrics are exposed at /metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if !f.Changed("addr") {
				opts.addr = c.config.Server.Addr
			}
			if !f.Changed("fps") {
				opts.fps = c.config.Server.FPS
			}
			if !f.Changed("watch") {
				opts.watch = c.config.Server.Watch
			}
			if opts.fps <= 0 {
				return fmt.Errorf("--fps must be positive, got %d", opts.fps)
			}
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&opts.fps, "fps", 60, "frames per second while the layout is moving")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the dataset when its file changes")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	w, err := graph.NewWatcher(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	srv, err := server.New(w.Dataset(),
		server.WithLogger(logger),
		server.WithFPS(opts.fps),
		server.WithLayoutConfig(c.config.LayoutConfig()),
		server.WithDimmedOpacity(c.config.Selection.DimmedOpacity),
		server.WithSessionHooks(metrics.SessionHooks{}),
	)
	if err != nil {
		return err
	}

	if opts.watch {
		w.OnChange(func(ds *graph.Dataset) {
			if err := srv.SetDataset(ds); err != nil {
				logger.Error("dataset rejected", "error", err)
				return
			}
			logger.Info("dataset reloaded", "path", input)
		})
		w.OnError(func(err error) {
			logger.Warn("reload failed, keeping previous dataset", "error", err)
		})
		stop, err := w.Watch()
		if err != nil {
			srv.Close()
			return err
		}
		defer stop()
	}

	url := displayURL(opts.addr)
	printSuccess("Serving %s at %s", input, StyleLink.Render(url))
	printKeyValue("WebSocket", strings.Replace(url, "http", "ws", 1)+"/ws")
	printKeyValue("Metrics", url+"/metrics")
	printNextStep("Open the live view", url+"/graph.svg")
	return srv.ListenAndServe(ctx, opts.addr)
}

// displayURL turns a listen address into a browsable URL.
func displayURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
