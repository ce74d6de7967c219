package rendering

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/graph"
	"github.com/matzehuels/topoview/pkg/layout"
	"github.com/matzehuels/topoview/pkg/observability"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/selection"
	"github.com/matzehuels/topoview/pkg/sizing"
)

// Option configures a Rendering.
type Option func(*Rendering)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(r *Rendering) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithScheduler sets the frame scheduler. The default is a [ManualFrames].
func WithScheduler(s FrameScheduler) Option {
	return func(r *Rendering) {
		if s != nil {
			r.scheduler = s
		}
	}
}

// WithLayoutConfig sets the physical parameters of every simulation.
func WithLayoutConfig(c layout.Config) Option {
	return func(r *Rendering) { r.layoutCfg = c }
}

// WithDimmedOpacity sets the opacity of entities outside the selection.
func WithDimmedOpacity(v float64) Option {
	return func(r *Rendering) { r.dimmed = v }
}

// WithContext sets the context passed to observability hooks.
func WithContext(ctx context.Context) Option {
	return func(r *Rendering) { r.ctx = ctx }
}

// Rendering is a live rendering of one dataset into one container.
//
// Setters only accumulate configuration until [Rendering.Render] is called;
// afterwards every setter takes effect on the next frame. A Rendering is not
// safe for concurrent use: drive it from a single goroutine, such as a
// [Loop].
type Rendering struct {
	id        string
	ctx       context.Context
	container sizing.Container
	sizer     *sizing.Controller
	logger    *log.Logger
	scheduler FrameScheduler
	layoutCfg layout.Config
	dimmed    float64

	dataset *graph.Dataset
	g       *graph.Graph
	engine  *selection.Engine
	state   selection.RenderState
	sim     *layout.Simulation
	surface *scene.Surface

	listeners map[int]func(graph.Frame)
	nextSub   int

	rendered     bool
	framePending bool
	closed       bool
	started      time.Time
}

// New attaches a rendering instance to container. A container can be held
// by only one instance at a time; a second attachment fails with
// errors.ErrCodeContainerBusy until the first instance is closed.
func New(container sizing.Container, opts ...Option) (*Rendering, error) {
	r := &Rendering{
		id:        uuid.NewString(),
		ctx:       context.Background(),
		container: container,
		logger:    log.New(io.Discard),
		scheduler: &ManualFrames{},
		dimmed:    selection.DimmedOpacity,
		engine:    selection.NewEngine(nil),
		surface:   scene.NewSurface(),
		listeners: make(map[int]func(graph.Frame)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := errors.ValidateOpacity(r.dimmed); err != nil {
		return nil, err
	}
	if err := acquire(container, r.id); err != nil {
		return nil, err
	}
	r.sizer = sizing.New(container, r.logger)
	r.logger = r.logger.With("rendering", r.id[:8])
	return r, nil
}

// ID returns the unique id of this instance.
func (r *Rendering) ID() string { return r.id }

// Close stops the simulation, detaches all primitives and releases the
// container. Pending frames become no-ops. Close is idempotent.
func (r *Rendering) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.sim != nil {
		r.sim.Stop()
	}
	r.surface.Detach()
	r.rendered = false
	clear(r.listeners)
	release(r.container, r.id)
	r.logger.Debug("rendering closed")
	return nil
}

// Closed reports whether Close has been called.
func (r *Rendering) Closed() bool { return r.closed }

// =============================================================================
// Dataset
// =============================================================================

// SetDataset replaces the dataset and its settings wholesale. The selection
// is reseeded from the nodes' selected flags and any explicit graph size is
// dropped. An invalid dataset is rejected and the previous one stays in
// effect.
func (r *Rendering) SetDataset(d *graph.Dataset) error {
	if r.closed {
		return errClosed()
	}
	if d == nil {
		return errors.New(errors.ErrCodeInvalidInput, "dataset is nil")
	}
	g, err := d.Normalize()
	if err != nil {
		return err
	}

	r.dataset = d
	r.g = g
	r.engine.Reseed(g)
	r.sizer.Reset()
	r.derive()
	r.logger.Debug("dataset replaced", "nodes", g.NodeCount(), "links", g.LinkCount(), "clustered", d.Settings.Clustered)

	if r.rendered {
		r.restart(layout.WithPositions(r.sim.Positions()))
		observability.Layout().OnReheat(r.ctx, "dataset")
	}
	return nil
}

// Dataset returns the current dataset, or nil before SetDataset.
func (r *Rendering) Dataset() *graph.Dataset { return r.dataset }

// Graph returns the normalized current graph, or nil before SetDataset.
func (r *Rendering) Graph() *graph.Graph { return r.g }

// Settings returns the view settings of the current dataset.
func (r *Rendering) Settings() graph.Settings {
	if r.dataset == nil {
		return graph.Settings{}
	}
	return r.dataset.Settings
}

// =============================================================================
// Selection
// =============================================================================

// NodeSelection returns a copy of the current node selection.
func (r *Rendering) NodeSelection() selection.NodeSet { return r.engine.Get() }

// SetNodeSelection replaces the node selection. Ids that are not in the
// current dataset are dropped. Derived selections and opacity are
// recomputed immediately.
func (r *Rendering) SetNodeSelection(s selection.NodeSet) error {
	if r.closed {
		return errClosed()
	}
	if r.g != nil {
		s = selection.Filter(r.g, s)
	}
	r.engine.Set(s)
	r.derive()
	observability.Selection().OnSelectionChange(r.ctx, r.state.Nodes.Len(), r.state.Edges.Len())
	if r.rendered {
		r.surface.Apply(r.state, r.Settings())
		r.requestFrame()
	}
	return nil
}

// EdgeSelection returns the links whose endpoints are both selected.
func (r *Rendering) EdgeSelection() selection.LinkSet { return r.state.Edges }

// EdgeLabelSelection returns the links whose labels are selected.
func (r *Rendering) EdgeLabelSelection() selection.LinkSet { return r.state.EdgeLabels }

// RenderState returns the emphasis derived from the current selection.
func (r *Rendering) RenderState() selection.RenderState { return r.state }

func (r *Rendering) derive() {
	if r.g == nil {
		r.state = selection.RenderState{
			Nodes:      selection.NewNodeSet(),
			Edges:      selection.LinkSet{},
			EdgeLabels: selection.LinkSet{},
		}
		return
	}
	r.state = selection.DeriveAll(r.g, r.engine.Get(), selection.WithDimmedOpacity(r.dimmed))
}

// =============================================================================
// Sizing
// =============================================================================

// ContainerDimensions returns the container's current bounding box.
func (r *Rendering) ContainerDimensions() [2]float64 { return r.sizer.ContainerDimensions() }

// GraphSize returns the canvas size.
func (r *Rendering) GraphSize() [2]float64 { return r.sizer.GraphSize() }

// SetGraphSize overrides the canvas size and relayouts within the new
// bounds. The override survives container resizes until the next
// SetDataset.
func (r *Rendering) SetGraphSize(size [2]float64) error {
	if r.closed {
		return errClosed()
	}
	if err := r.sizer.SetGraphSize(size); err != nil {
		return err
	}
	r.applyBounds()
	return nil
}

// Resize tells the instance that its container changed size. Without an
// explicit override the canvas follows the container.
func (r *Rendering) Resize() {
	if r.closed || r.sizer.Overridden() {
		return
	}
	r.applyBounds()
}

func (r *Rendering) applyBounds() {
	if !r.rendered {
		return
	}
	size := r.sizer.GraphSize()
	w, h := r.sim.Bounds()
	if w == size[0] && h == size[1] {
		return
	}
	r.sim.SetBounds(size[0], size[1])
	observability.Layout().OnReheat(r.ctx, "resize")
	r.logger.Debug("bounds changed", "width", size[0], "height", size[1])
	r.requestFrame()
}

// =============================================================================
// Rendering
// =============================================================================

// Render builds the scene from the accumulated configuration and starts
// the simulation. Calling Render again starts over from the current
// configuration.
func (r *Rendering) Render() error {
	if r.closed {
		return errClosed()
	}
	if r.g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no dataset configured")
	}
	r.restart()
	r.rendered = true
	observability.Layout().OnStart(r.ctx, r.g.NodeCount(), r.g.LinkCount(), r.Settings().Clustered)
	return nil
}

// Rendered reports whether Render has been called since the last Close.
func (r *Rendering) Rendered() bool { return r.rendered }

func (r *Rendering) restart(opts ...layout.Option) {
	if r.sim != nil {
		r.sim.Stop()
	}
	size := r.sizer.GraphSize()
	opts = append([]layout.Option{layout.WithConfig(r.layoutCfg)}, opts...)
	r.sim = layout.New(r.g, r.Settings(), size[0], size[1], opts...)
	r.sim.Start()
	r.started = time.Now()

	r.surface.Build(r.g, r.Settings())
	r.surface.Reposition(r.sim)
	r.surface.Apply(r.state, r.Settings())
	r.requestFrame()
}

func (r *Rendering) requestFrame() {
	if r.framePending || r.closed {
		return
	}
	r.framePending = true
	r.scheduler.RequestFrame(r.frame)
}

// frame advances the simulation by one tick, repositions the scene and
// notifies frame listeners. It keeps requesting frames while ticking.
func (r *Rendering) frame() {
	r.framePending = false
	if r.closed || !r.rendered {
		return
	}
	wasTicking := r.sim.State() == layout.Ticking
	r.sim.Tick()
	r.surface.Reposition(r.sim)
	observability.Render().OnFrame(r.ctx)
	r.emit()

	switch r.sim.State() {
	case layout.Ticking:
		r.requestFrame()
	case layout.Converged:
		if wasTicking {
			d := time.Since(r.started)
			observability.Layout().OnConverged(r.ctx, r.sim.Ticks(), d)
			r.logger.Debug("layout converged", "ticks", r.sim.Ticks(), "alpha", r.sim.Alpha(), "duration", d)
		}
	}
}

// Settle ticks synchronously until the simulation converges or maxTicks
// steps were taken, and returns the number of steps. Batch hosts use it
// instead of a frame loop.
func (r *Rendering) Settle(maxTicks int) (int, error) {
	if r.closed {
		return 0, errClosed()
	}
	if !r.rendered {
		if err := r.Render(); err != nil {
			return 0, err
		}
	}
	if r.sim.State() == layout.Converged {
		return 0, nil
	}
	n := r.sim.Run(maxTicks)
	r.surface.Reposition(r.sim)
	if r.sim.State() == layout.Converged {
		observability.Layout().OnConverged(r.ctx, r.sim.Ticks(), time.Since(r.started))
	} else {
		r.logger.Warn("layout did not converge", "ticks", n, "alpha", r.sim.Alpha())
	}
	r.emit()
	return n, nil
}

// SimulationState returns the simulation state, Idle before Render.
func (r *Rendering) SimulationState() layout.State {
	if r.sim == nil {
		return layout.Idle
	}
	return r.sim.State()
}

// Ticks returns the number of simulation steps of the current layout.
func (r *Rendering) Ticks() int {
	if r.sim == nil {
		return 0
	}
	return r.sim.Ticks()
}

// =============================================================================
// Dragging
// =============================================================================

// Pin fixes node id at (x, y) until Unpin. This is the start of a drag.
func (r *Rendering) Pin(id int, x, y float64) error {
	return r.pinOp("pin", id, func() bool { return r.sim.Pin(id, x, y) })
}

// Drag moves node id to (x, y), pinning it if it was not pinned already.
func (r *Rendering) Drag(id int, x, y float64) error {
	return r.pinOp("drag", id, func() bool { return r.sim.Drag(id, x, y) })
}

// Unpin releases node id back into the simulation. This is the end of a
// drag.
func (r *Rendering) Unpin(id int) error {
	return r.pinOp("unpin", id, func() bool { return r.sim.Unpin(id) })
}

func (r *Rendering) pinOp(reason string, id int, op func() bool) error {
	if r.closed {
		return errClosed()
	}
	if !r.rendered {
		return errors.New(errors.ErrCodeInvalidInput, "cannot %s before render", reason)
	}
	if !r.g.Has(id) {
		return errors.New(errors.ErrCodeNotFound, "node %d not found", id)
	}
	if !op() {
		return errors.New(errors.ErrCodeInvalidInput, "node %d is not pinned", id)
	}
	observability.Layout().OnReheat(r.ctx, reason)
	r.surface.Reposition(r.sim)
	r.requestFrame()
	return nil
}

// =============================================================================
// Output
// =============================================================================

// Surface returns the primitives of the current scene.
func (r *Rendering) Surface() *scene.Surface { return r.surface }

// Frame snapshots the current scene.
func (r *Rendering) Frame() graph.Frame {
	size := r.sizer.GraphSize()
	info := scene.FrameInfo{
		State:     r.SimulationState().String(),
		Width:     size[0],
		Height:    size[1],
		Selection: r.state.Nodes.IDs(),
	}
	if r.sim != nil {
		info.Tick = r.sim.Ticks()
		info.Alpha = r.sim.Alpha()
	}
	return r.surface.Frame(info)
}

// SVG draws the current scene at the current graph size.
func (r *Rendering) SVG(opts ...scene.SVGOption) []byte {
	size := r.sizer.GraphSize()
	return scene.RenderSVG(r.surface, size[0], size[1], opts...)
}

// OnFrame registers fn to receive a snapshot after every frame. The
// returned function removes the listener.
func (r *Rendering) OnFrame(fn func(graph.Frame)) (cancel func()) {
	id := r.nextSub
	r.nextSub++
	r.listeners[id] = fn
	return func() { delete(r.listeners, id) }
}

func (r *Rendering) emit() {
	if len(r.listeners) == 0 {
		return
	}
	f := r.Frame()
	for _, fn := range r.listeners {
		fn(f)
	}
}

func errClosed() error {
	return errors.New(errors.ErrCodeClosed, "rendering is closed")
}
