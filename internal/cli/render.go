package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topoview/pkg/buildinfo"
	"github.com/matzehuels/topoview/pkg/cache"
	"github.com/matzehuels/topoview/pkg/config"
	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/graph"
	"github.com/matzehuels/topoview/pkg/observability"
	"github.com/matzehuels/topoview/pkg/rendering"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/selection"
	"github.com/matzehuels/topoview/pkg/sizing"
)

const (
	formatSVG      = "svg"
	formatPNG      = "png"
	formatPDF      = "pdf"
	formatJSON     = "json"
	formatDOT      = "dot"
	formatGraphviz = "graphviz" // DOT laid out by graphviz with pinned positions, as SVG
)

// validFormats lists the supported output formats in display order.
var validFormats = []string{formatSVG, formatPNG, formatPDF, formatJSON, formatDOT, formatGraphviz}

// extensions maps formats to output file extensions.
var extensions = map[string]string{
	formatSVG:      "svg",
	formatPNG:      "png",
	formatPDF:      "pdf",
	formatJSON:     "json",
	formatDOT:      "dot",
	formatGraphviz: "gv.svg",
}

// renderOpts holds the command-line flags for the render and watch commands.
type renderOpts struct {
	output  string
	formats []string

	// Explicit graph size. Zero width follows the container, zero height
	// uses the default height.
	width  float64
	height float64

	containerWidth  float64
	containerHeight float64

	selectIDs   []int
	selectSet   bool
	noSelection bool

	maxTicks    int
	background  string
	interactive bool
	scale       float64

	noCache bool

	// quiet suppresses the spinner and styled output, as in watch mode.
	quiet bool
}

func newRenderOpts(cfg *config.Config) renderOpts {
	return renderOpts{
		containerWidth:  cfg.Sizing.ContainerWidth,
		containerHeight: cfg.Sizing.ContainerHeight,
		maxTicks:        cfg.Layout.MaxTicks,
		scale:           2,
	}
}

func (o *renderOpts) bindFlags(cmd *cobra.Command, formatsStr *string) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.StringVarP(formatsStr, "format", "f", "", "output format(s): "+strings.Join(validFormats, ", ")+" (comma-separated, default svg)")
	f.Float64Var(&o.width, "width", 0, "graph width (default: container width minus inset)")
	f.Float64Var(&o.height, "height", 0, "graph height (default 700)")
	f.Float64Var(&o.containerWidth, "container-width", o.containerWidth, "width of the container the graph is fitted to")
	f.Float64Var(&o.containerHeight, "container-height", o.containerHeight, "height of the container")
	f.IntSliceVar(&o.selectIDs, "select", nil, "node ids to select, replacing the dataset's selected flags")
	f.BoolVar(&o.noSelection, "no-selection", false, "clear the selection (everything at full opacity)")
	f.IntVar(&o.maxTicks, "max-ticks", o.maxTicks, "maximum simulation ticks")
	f.StringVar(&o.background, "background", "", "SVG background color")
	f.BoolVar(&o.interactive, "interactive", false, "embed hover highlighting in SVG output")
	f.Float64Var(&o.scale, "scale", o.scale, "PNG scale factor")
	f.BoolVar(&o.noCache, "no-cache", false, "always run the layout, ignoring cached artifacts")
}

func (o *renderOpts) validate(cmd *cobra.Command, formatsStr string) error {
	o.formats = parseFormats(formatsStr)
	if err := validateFormats(o.formats); err != nil {
		return err
	}
	o.selectSet = cmd.Flags().Changed("select")
	if o.selectSet && o.noSelection {
		return fmt.Errorf("--select and --no-selection are mutually exclusive")
	}
	if o.maxTicks <= 0 {
		return fmt.Errorf("--max-ticks must be positive, got %d", o.maxTicks)
	}
	return nil
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := newRenderOpts(c.config)

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Settle the layout and render a dataset to SVG, PNG, PDF, DOT or JSON",
		Long: `Render loads a dataset (JSON, YAML or TOML), runs the force simulation
until it converges and writes the scene in one or more formats.

Without --width the graph is as wide as the container minus a 16px inset
and 700px tall.`,
		Example: `  topoview render examples/guestbook.json
  topoview render cluster.yaml --select 2,55 -f svg,png -o out/cluster
  topoview render topo.toml --width 750 --height 750 -f graphviz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyConfig(cmd, &opts)
			if err := opts.validate(cmd, formatsStr); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}
	opts.bindFlags(cmd, &formatsStr)
	return cmd
}

// applyConfig refreshes flag defaults from the config file, which is only
// loaded after the flags were bound. Explicit flags win.
func (c *CLI) applyConfig(cmd *cobra.Command, opts *renderOpts) {
	f := cmd.Flags()
	if !f.Changed("container-width") {
		opts.containerWidth = c.config.Sizing.ContainerWidth
	}
	if !f.Changed("container-height") {
		opts.containerHeight = c.config.Sizing.ContainerHeight
	}
	if !f.Changed("max-ticks") {
		opts.maxTicks = c.config.Layout.MaxTicks
	}
}

// parseFormats parses the --format flag. If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// validateFormats checks that all requested formats are supported.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, validFormats); err != nil {
			return err
		}
	}
	return nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. If output carries
// a format extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	for _, e := range extensions {
		if e == ext {
			return strings.TrimSuffix(output, "."+ext)
		}
	}
	return output
}

// outputPath returns the file a format is written to.
func outputPath(output, input, format string, single bool) string {
	if single && output != "" {
		return output
	}
	return basePath(output, input) + "." + extensions[format]
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	ds, err := graph.ReadDatasetFile(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	return c.renderDataset(ctx, ds, input, opts)
}

// renderDataset settles ds and writes every requested format. Formats
// found in the artifact cache are written without running the layout.
func (c *CLI) renderDataset(ctx context.Context, ds *graph.Dataset, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	store := c.artifactCache(ctx, opts)
	defer store.Close()

	keys := make(map[string]string, len(opts.formats))
	artifacts := make(map[string][]byte, len(opts.formats))
	for _, format := range opts.formats {
		keys[format] = artifactKey(ds, format, c.config, opts)
		if data, ok, _ := store.Get(ctx, keys[format]); ok {
			artifacts[format] = data
		}
	}

	if len(artifacts) == len(opts.formats) {
		logger.Info("All formats cached, skipping layout")
	} else {
		view, err := c.settle(ctx, ds, opts)
		if err != nil {
			return err
		}
		defer view.Close()

		for _, format := range opts.formats {
			if _, ok := artifacts[format]; ok {
				logger.Debugf("Using cached %s", format)
				continue
			}
			start := time.Now()
			data, err := c.renderFormat(ctx, view, format, opts)
			observability.Render().OnRender(ctx, format, len(data), time.Since(start), err)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			logger.Debugf("Generated %s: %d bytes", format, len(data))
			artifacts[format] = data
			if err := store.Set(ctx, keys[format], data, cache.DefaultTTL); err != nil {
				logger.Warn("cache write failed", "format", format, "error", err)
			}
		}
	}

	single := len(opts.formats) == 1
	for _, format := range opts.formats {
		path := outputPath(opts.output, input, format, single)
		if err := writeOutput(path, artifacts[format]); err != nil {
			return err
		}
		if opts.quiet {
			logger.Infof("Generated %s", path)
		} else {
			printFile(path)
		}
	}
	return nil
}

// artifactCache opens the on-disk artifact cache, or a null cache when
// caching is disabled or the directory is unusable.
func (c *CLI) artifactCache(ctx context.Context, opts *renderOpts) cache.Cache {
	if opts.noCache {
		return cache.NewNullCache()
	}
	store, err := cache.NewFileCache(filepath.Join(cache.Dir(), "artifacts"))
	if err != nil {
		loggerFromContext(ctx).Debug("artifact cache disabled", "error", err)
		return cache.NewNullCache()
	}
	return store
}

// artifactKey identifies one output of one dataset. Every input that can
// change the bytes written takes part in the key.
func artifactKey(ds *graph.Dataset, format string, cfg *config.Config, opts *renderOpts) string {
	return cache.Key("artifact", buildinfo.Version, ds, cfg.Layout, cfg.Selection, artifactOpts{
		Format:          format,
		Width:           opts.width,
		Height:          opts.height,
		ContainerWidth:  opts.containerWidth,
		ContainerHeight: opts.containerHeight,
		Select:          opts.selectIDs,
		SelectSet:       opts.selectSet,
		NoSelection:     opts.noSelection,
		MaxTicks:        opts.maxTicks,
		Background:      opts.background,
		Interactive:     opts.interactive,
		Scale:           opts.scale,
	})
}

type artifactOpts struct {
	Format          string
	Width           float64
	Height          float64
	ContainerWidth  float64
	ContainerHeight float64
	Select          []int
	SelectSet       bool
	NoSelection     bool
	MaxTicks        int
	Background      string
	Interactive     bool
	Scale           float64
}

// settle builds a rendering of ds and runs it to convergence.
func (c *CLI) settle(ctx context.Context, ds *graph.Dataset, opts *renderOpts) (*rendering.Rendering, error) {
	logger := loggerFromContext(ctx)

	view, err := rendering.New(sizing.NewStaticContainer(opts.containerWidth, opts.containerHeight),
		rendering.WithLogger(logger),
		rendering.WithContext(ctx),
		rendering.WithLayoutConfig(c.config.LayoutConfig()),
		rendering.WithDimmedOpacity(c.config.Selection.DimmedOpacity),
	)
	if err != nil {
		return nil, err
	}
	if err := configure(view, ds, opts); err != nil {
		view.Close()
		return nil, err
	}
	g := view.Graph()
	logger.Infof("Loaded dataset: %d nodes, %d links", g.NodeCount(), g.LinkCount())

	var spinner *Spinner
	if !opts.quiet {
		spinner = newSpinnerWithContext(ctx, "Settling layout...")
		spinner.Start()
	}
	sw := startStopwatch(logger)
	ticks, err := view.Settle(opts.maxTicks)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		view.Close()
		return nil, err
	}
	sw.lap("Layout settled", "nodes", g.NodeCount(), "ticks", ticks)
	if !opts.quiet {
		printStats(g.NodeCount(), g.LinkCount(), view.NodeSelection().Len(), view.EdgeSelection().Len())
	}
	return view, nil
}

// configure applies dataset, selection and size to an unrendered view.
func configure(view *rendering.Rendering, ds *graph.Dataset, opts *renderOpts) error {
	if err := view.SetDataset(ds); err != nil {
		return err
	}
	switch {
	case opts.noSelection:
		if err := view.SetNodeSelection(nil); err != nil {
			return err
		}
	case opts.selectSet:
		if err := view.SetNodeSelection(selection.NewNodeSet(opts.selectIDs...)); err != nil {
			return err
		}
	}
	if opts.width > 0 || opts.height > 0 {
		size := view.GraphSize()
		if opts.width > 0 {
			size[0] = opts.width
		}
		if opts.height > 0 {
			size[1] = opts.height
		}
		if err := view.SetGraphSize(size); err != nil {
			return err
		}
	}
	return view.Render()
}

func (c *CLI) renderFormat(ctx context.Context, view *rendering.Rendering, format string, opts *renderOpts) ([]byte, error) {
	switch format {
	case formatSVG:
		return view.SVG(svgOptions(opts)...), nil
	case formatPNG:
		return scene.ToPNG(ctx, view.SVG(svgOptions(opts)...), opts.scale)
	case formatPDF:
		return scene.ToPDF(ctx, view.SVG(svgOptions(opts)...))
	case formatJSON:
		return graph.MarshalFrame(view.Frame())
	case formatDOT:
		return []byte(scene.ToDOT(view.Surface(), view.GraphSize()[1])), nil
	case formatGraphviz:
		return scene.RenderDOTSVG(ctx, scene.ToDOT(view.Surface(), view.GraphSize()[1]))
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func svgOptions(opts *renderOpts) []scene.SVGOption {
	var result []scene.SVGOption
	if opts.background != "" {
		result = append(result, scene.WithBackground(opts.background))
	}
	if opts.interactive {
		result = append(result, scene.WithInteraction())
	}
	return result
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
