package rendering

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/graph"
	"github.com/matzehuels/topoview/pkg/layout"
	"github.com/matzehuels/topoview/pkg/observability"
	"github.com/matzehuels/topoview/pkg/selection"
	"github.com/matzehuels/topoview/pkg/sizing"
)

func intPtr(v int) *int { return &v }

func sampleDataset() *graph.Dataset {
	return &graph.Dataset{
		Nodes: []graph.RawNode{
			{ID: intPtr(1), Name: "service: guestbook", Radius: 16, Fill: "olivedrab", Selected: true},
			{ID: intPtr(2), Name: "pod: guestbook-controller", Radius: 20, Fill: "palegoldenrod", Selected: true},
			{ID: intPtr(3), Name: "pod: guestbook-controller", Radius: 20, Fill: "palegoldenrod", Selected: true},
			{ID: intPtr(55), Name: "pod: guestbook-controller", Radius: 20, Fill: "palegoldenrod"},
			{ID: intPtr(77), Name: "container: php-redis", Radius: 24, Fill: "cornflowerblue"},
		},
		Links: []graph.RawLink{
			{Source: 0, Target: 1, Width: 2, Stroke: "black", Distance: 80},
			{Source: 0, Target: 2, Width: 2, Stroke: "black", Distance: 80},
			{Source: 1, Target: 3, Width: 2, Stroke: "black", Distance: 80, Label: "owns"},
		},
		Settings: graph.Settings{ShowEdgeLabels: true, ShowNodeLabels: true},
	}
}

func newRendering(t *testing.T, opts ...Option) (*Rendering, *ManualFrames) {
	t.Helper()
	frames := &ManualFrames{}
	r, err := New(sizing.NewStaticContainer(500, 500), append([]Option{WithScheduler(frames)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, frames
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScenario(t *testing.T) {
	r, _ := newRendering(t)

	if got := r.GraphSize(); got != [2]float64{484, 700} {
		t.Fatalf("GraphSize() = %v, want [484 700]", got)
	}
	if err := r.SetDataset(sampleDataset()); err != nil {
		t.Fatalf("SetDataset: %v", err)
	}
	if got := r.NodeSelection().IDs(); !equalInts(got, []int{1, 2, 3}) {
		t.Errorf("initial NodeSelection() = %v, want [1 2 3]", got)
	}
	if got := r.EdgeSelection().Indices(); !equalInts(got, []int{0, 1}) {
		t.Errorf("initial EdgeSelection() = %v, want [0 1]", got)
	}

	if err := r.SetNodeSelection(selection.NewNodeSet(2, 55, 999)); err != nil {
		t.Fatal(err)
	}
	if got := r.NodeSelection().IDs(); !equalInts(got, []int{2, 55}) {
		t.Errorf("NodeSelection() = %v, want [2 55]", got)
	}
	if got := r.EdgeSelection().Indices(); !equalInts(got, []int{2}) {
		t.Errorf("EdgeSelection() = %v, want [2]", got)
	}
	if got := r.EdgeLabelSelection().Indices(); !equalInts(got, []int{2}) {
		t.Errorf("EdgeLabelSelection() = %v, want [2]", got)
	}

	if err := r.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := r.Settle(1000); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if r.SimulationState() != layout.Converged {
		t.Errorf("SimulationState() = %s, want converged", r.SimulationState())
	}

	f := r.Frame()
	if len(f.Nodes) != 5 || len(f.Links) != 3 {
		t.Fatalf("Frame has %d nodes and %d links, want 5 and 3", len(f.Nodes), len(f.Links))
	}
	for _, n := range f.Nodes {
		want := selection.DimmedOpacity
		if n.ID == 2 || n.ID == 55 {
			want = 1
		}
		if n.Opacity != want {
			t.Errorf("node %d opacity = %v, want %v", n.ID, n.Opacity, want)
		}
		if n.X < 0 || n.X > 484 || n.Y < 0 || n.Y > 700 {
			t.Errorf("node %d at (%v, %v) outside bounds", n.ID, n.X, n.Y)
		}
	}

	if err := r.SetGraphSize([2]float64{750, 750}); err != nil {
		t.Fatal(err)
	}
	if got := r.GraphSize(); got != [2]float64{750, 750} {
		t.Errorf("GraphSize() = %v, want [750 750]", got)
	}
	if r.SimulationState() != layout.Ticking {
		t.Errorf("SimulationState() after resize = %s, want ticking", r.SimulationState())
	}

	if err := r.SetDataset(sampleDataset()); err != nil {
		t.Fatal(err)
	}
	if got := r.GraphSize(); got != [2]float64{484, 700} {
		t.Errorf("GraphSize() after SetDataset = %v, want [484 700]", got)
	}
	if got := r.NodeSelection().IDs(); !equalInts(got, []int{1, 2, 3}) {
		t.Errorf("NodeSelection() after SetDataset = %v, want [1 2 3]", got)
	}
}

func TestSetDatasetInvalidKeepsPrevious(t *testing.T) {
	r, _ := newRendering(t)
	if err := r.SetDataset(sampleDataset()); err != nil {
		t.Fatal(err)
	}
	prev := r.Graph()

	bad := sampleDataset()
	bad.Links = append(bad.Links, graph.RawLink{Source: 0, Target: 9})
	err := r.SetDataset(bad)
	if !errors.Is(err, errors.ErrCodeDataIntegrity) {
		t.Fatalf("SetDataset(bad) err = %v, want %s", err, errors.ErrCodeDataIntegrity)
	}
	if r.Graph() != prev {
		t.Error("invalid dataset replaced the graph")
	}

	nan := sampleDataset()
	nan.Nodes[0].Radius = math.NaN()
	if err := r.SetDataset(nan); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("SetDataset(NaN radius) err = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if r.Graph() != prev {
		t.Error("non-finite radius replaced the graph")
	}
	if err := r.SetDataset(nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("SetDataset(nil) err = %v", err)
	}
}

func TestRenderWithoutDataset(t *testing.T) {
	r, _ := newRendering(t)
	if err := r.Render(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Render() err = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if r.SimulationState() != layout.Idle {
		t.Errorf("SimulationState() = %s, want idle", r.SimulationState())
	}
}

func TestSettersBeforeRenderAccumulate(t *testing.T) {
	r, frames := newRendering(t)
	if err := r.SetNodeSelection(selection.NewNodeSet(2)); err != nil {
		t.Fatal(err)
	}
	if err := r.SetGraphSize([2]float64{300, 300}); err != nil {
		t.Fatal(err)
	}
	if err := r.SetDataset(sampleDataset()); err != nil {
		t.Fatal(err)
	}
	if frames.Pending() != 0 {
		t.Errorf("Pending() = %d before Render, want 0", frames.Pending())
	}
	if r.Surface().Attached() {
		t.Error("surface attached before Render")
	}
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if !r.Surface().Attached() || len(r.Surface().Nodes()) != 5 {
		t.Errorf("surface not built by Render")
	}
}

func TestFrameRequestsCoalesce(t *testing.T) {
	r, frames := newRendering(t)
	if err := r.SetDataset(sampleDataset()); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	for _, ids := range [][]int{{1}, {2}, {3, 55}} {
		if err := r.SetNodeSelection(selection.NewNodeSet(ids...)); err != nil {
			t.Fatal(err)
		}
	}
	if frames.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", frames.Pending())
	}

	frames.Step()
	if r.Ticks() != 1 {
		t.Errorf("Ticks() = %d after one frame, want 1", r.Ticks())
	}
	if frames.Pending() != 1 {
		t.Errorf("ticking simulation did not request the next frame")
	}

	n := frames.Drain(1000)
	if frames.Pending() != 0 {
		t.Errorf("still %d frames pending after %d steps", frames.Pending(), n)
	}
	if r.SimulationState() != layout.Converged {
		t.Errorf("SimulationState() = %s, want converged", r.SimulationState())
	}
}

func TestOnFrame(t *testing.T) {
	r, frames := newRendering(t)
	if err := r.SetDataset(sampleDataset()); err != nil {
		t.Fatal(err)
	}
	var got []graph.Frame
	cancel := r.OnFrame(func(f graph.Frame) { got = append(got, f) })
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	frames.Step()
	frames.Step()
	cancel()
	frames.Step()

	if len(got) != 2 {
		t.Fatalf("listener received %d frames, want 2", len(got))
	}
	if got[0].Tick != 1 || got[1].Tick != 2 {
		t.Errorf("ticks = %d, %d, want 1, 2", got[0].Tick, got[1].Tick)
	}
	if !equalInts(got[0].Selection, []int{1, 2, 3}) {
		t.Errorf("Selection = %v, want [1 2 3]", got[0].Selection)
	}
}

func TestPinning(t *testing.T) {
	r, frames := newRendering(t)
	if err := r.SetDataset(sampleDataset()); err != nil {
		t.Fatal(err)
	}
	if err := r.Pin(55, 10, 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Pin before Render err = %v", err)
	}
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Settle(1000); err != nil {
		t.Fatal(err)
	}

	if err := r.Pin(999, 10, 10); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Pin(999) err = %v, want %s", err, errors.ErrCodeNotFound)
	}
	if err := r.Pin(55, 10, 10); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if r.SimulationState() != layout.Ticking {
		t.Errorf("Pin did not reheat: %s", r.SimulationState())
	}
	frames.Drain(1000)

	var pinned bool
	for _, n := range r.Surface().Nodes() {
		if n.ID != 55 {
			continue
		}
		pinned = n.Pinned
		if n.X != 20 || n.Y != 20 {
			t.Errorf("pinned node at (%v, %v), want (20, 20)", n.X, n.Y)
		}
	}
	if !pinned {
		t.Error("node 55 not marked pinned")
	}

	if err := r.Drag(55, 200, 300); err != nil {
		t.Fatal(err)
	}
	if err := r.Unpin(55); err != nil {
		t.Fatal(err)
	}
	if err := r.Unpin(55); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second Unpin err = %v", err)
	}

	// Dragging a free node pins it.
	if err := r.Drag(77, 200, 300); err != nil {
		t.Fatalf("Drag unpinned node: %v", err)
	}
	frames.Drain(1000)
	for _, n := range r.Surface().Nodes() {
		if n.ID == 77 && !n.Pinned {
			t.Error("Drag did not pin node 77")
		}
	}
	if err := r.Unpin(77); err != nil {
		t.Errorf("Unpin after Drag: %v", err)
	}
}

func TestContainerExclusive(t *testing.T) {
	c := sizing.NewStaticContainer(500, 500)
	first, err := New(c)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(c); !errors.Is(err, errors.ErrCodeContainerBusy) {
		t.Fatalf("second New err = %v, want %s", err, errors.ErrCodeContainerBusy)
	}
	if _, err := New(sizing.NewStaticContainer(500, 500)); err != nil {
		t.Errorf("distinct container of equal size rejected: %v", err)
	}

	if err := first.Close(); err != nil {
		t.Fatal(err)
	}
	second, err := New(c)
	if err != nil {
		t.Fatalf("New after Close: %v", err)
	}
	second.Close()
}

func TestClose(t *testing.T) {
	r, frames := newRendering(t)
	if err := r.SetDataset(sampleDataset()); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if r.Surface().Attached() || len(r.Surface().Nodes()) != 0 {
		t.Error("primitives still attached after Close")
	}

	ticks := r.Ticks()
	frames.Drain(10)
	if r.Ticks() != ticks {
		t.Error("pending frame ticked after Close")
	}
	if err := r.SetDataset(sampleDataset()); !errors.Is(err, errors.ErrCodeClosed) {
		t.Errorf("SetDataset after Close err = %v, want %s", err, errors.ErrCodeClosed)
	}
	if err := r.Render(); !errors.Is(err, errors.ErrCodeClosed) {
		t.Errorf("Render after Close err = %v", err)
	}
}

func TestInvalidDimmedOpacity(t *testing.T) {
	_, err := New(sizing.NewStaticContainer(1, 1), WithDimmedOpacity(1.5))
	if !errors.Is(err, errors.ErrCodeInvalidSettings) {
		t.Errorf("New err = %v, want %s", err, errors.ErrCodeInvalidSettings)
	}
}

func TestSVG(t *testing.T) {
	r, _ := newRendering(t)
	if err := r.SetDataset(sampleDataset()); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Settle(1000); err != nil {
		t.Fatal(err)
	}
	svg := string(r.SVG())
	if !strings.Contains(svg, `width="484"`) {
		t.Errorf("SVG missing graph width: %.200s", svg)
	}
	if got := strings.Count(svg, `class="node"`); got != 5 {
		t.Errorf("SVG has %d nodes, want 5", got)
	}
}

type recordingHooks struct {
	observability.NoopLayoutHooks
	mu        sync.Mutex
	starts    int
	converged int
	reheats   []string
}

func (h *recordingHooks) OnStart(context.Context, int, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts++
}

func (h *recordingHooks) OnReheat(_ context.Context, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reheats = append(h.reheats, reason)
}

func (h *recordingHooks) OnConverged(context.Context, int, time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.converged++
}

func TestLayoutHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetLayoutHooks(hooks)
	t.Cleanup(observability.Reset)

	r, frames := newRendering(t)
	if err := r.SetDataset(sampleDataset()); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(); err != nil {
		t.Fatal(err)
	}
	frames.Drain(1000)
	if err := r.SetGraphSize([2]float64{600, 600}); err != nil {
		t.Fatal(err)
	}
	frames.Drain(1000)

	if hooks.starts != 1 {
		t.Errorf("starts = %d, want 1", hooks.starts)
	}
	if hooks.converged != 2 {
		t.Errorf("converged = %d, want 2", hooks.converged)
	}
	if len(hooks.reheats) != 1 || hooks.reheats[0] != "resize" {
		t.Errorf("reheats = %v, want [resize]", hooks.reheats)
	}
}

func TestLoop(t *testing.T) {
	loop := NewLoop(240, nil)
	defer loop.Stop()

	var r *Rendering
	err := loop.Do(func() {
		var err error
		r, err = New(sizing.NewStaticContainer(500, 500), WithScheduler(loop))
		if err != nil {
			t.Error(err)
			return
		}
		if err := r.SetDataset(sampleDataset()); err != nil {
			t.Error(err)
		}
		if err := r.Render(); err != nil {
			t.Error(err)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		var state layout.State
		if err := loop.Do(func() { state = r.SimulationState() }); err != nil {
			t.Fatal(err)
		}
		if state == layout.Converged {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("layout did not converge on the loop, state %s", state)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := loop.Do(func() { r.Close() }); err != nil {
		t.Fatal(err)
	}

	loop.Stop()
	loop.Stop()
	if err := loop.Do(func() {}); !errors.Is(err, errors.ErrCodeClosed) {
		t.Errorf("Do after Stop err = %v, want %s", err, errors.ErrCodeClosed)
	}
}
