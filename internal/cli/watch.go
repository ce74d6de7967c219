package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topoview/pkg/graph"
)

// watchCommand creates the watch command, which re-renders a dataset on
// every change to its file.
func (c *CLI) watchCommand() *cobra.Command {
	var formatsStr string
	opts := newRenderOpts(c.config)

	cmd := &cobra.Command{
		Use:   "watch [dataset]",
		Short: "Re-render a dataset whenever its file changes",
		Long: `Watch renders a dataset like render, then keeps running and renders it
again every time the file is written. A dataset that fails to load or
validate is reported and the previous output is left in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfig(cmd, &opts)
			if err := opts.validate(cmd, formatsStr); err != nil {
				return err
			}
			opts.quiet = true
			return c.runWatch(cmd.Context(), args[0], &opts)
		},
	}
	opts.bindFlags(cmd, &formatsStr)
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	w, err := graph.NewWatcher(input)
	if err != nil {
		return err
	}
	if err := c.renderDataset(ctx, w.Dataset(), input, opts); err != nil {
		return err
	}

	w.OnChange(func(ds *graph.Dataset) {
		logger.Infof("Dataset changed, re-rendering %s", input)
		if err := c.renderDataset(ctx, ds, input, opts); err != nil {
			logger.Error("render failed", "error", err)
		}
	})
	w.OnError(func(err error) {
		logger.Warn("reload failed, keeping previous dataset", "error", err)
	})

	stop, err := w.Watch()
	if err != nil {
		return err
	}
	defer stop()

	printInfo("Watching %s (ctrl+c to stop)", input)
	<-ctx.Done()
	return nil
}
