// Package metrics exports topoview activity to Prometheus.
//
// Collectors are registered with the default registry on import. [Register]
// installs hooks that feed them from the observability package.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/topoview/pkg/observability"
)

var (
	SimulationsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topoview_simulations_started_total",
		Help: "Total number of layout simulations started, labelled by clustering.",
	}, []string{"clustered"})

	SimulationReheats = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topoview_simulation_reheats_total",
		Help: "Total number of simulations resumed after cooling, labelled by reason.",
	}, []string{"reason"})

	SimulationTicks = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "topoview_simulation_ticks",
		Help:    "Number of ticks a simulation took to converge.",
		Buckets: []float64{10, 25, 50, 100, 200, 300, 400, 600, 1000},
	})

	ConvergenceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "topoview_simulation_convergence_seconds",
		Help:    "Wall time from simulation start to convergence.",
		Buckets: prometheus.DefBuckets,
	})

	SelectionChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topoview_selection_changes_total",
		Help: "Total number of node selection replacements.",
	})

	SelectedNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "topoview_selected_nodes",
		Help: "Size of the most recent node selection.",
	})

	SelectedEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "topoview_selected_edges",
		Help: "Size of the edge selection derived from the most recent node selection.",
	})

	FramesDrawn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topoview_frames_total",
		Help: "Total number of frames drawn to a surface.",
	})

	Renders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topoview_renders_total",
		Help: "Total number of exports, labelled by format and status.",
	}, []string{"format", "status"})

	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "topoview_render_duration_seconds",
		Help:    "Export latency, labelled by format.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "topoview_active_sessions",
		Help: "Current number of connected WebSocket sessions.",
	})
)

// Register installs Prometheus-backed hooks for layout, selection and
// render events.
func Register() {
	observability.SetLayoutHooks(LayoutHooks{})
	observability.SetSelectionHooks(SelectionHooks{})
	observability.SetRenderHooks(RenderHooks{})
}

// LayoutHooks records simulation lifecycle events.
type LayoutHooks struct{}

func (LayoutHooks) OnStart(_ context.Context, _, _ int, clustered bool) {
	SimulationsStarted.WithLabelValues(strconv.FormatBool(clustered)).Inc()
}

func (LayoutHooks) OnReheat(_ context.Context, reason string) {
	SimulationReheats.WithLabelValues(reason).Inc()
}

func (LayoutHooks) OnConverged(_ context.Context, ticks int, d time.Duration) {
	SimulationTicks.Observe(float64(ticks))
	ConvergenceDuration.Observe(d.Seconds())
}

// SelectionHooks records selection replacements.
type SelectionHooks struct{}

func (SelectionHooks) OnSelectionChange(_ context.Context, nodes, edges int) {
	SelectionChanges.Inc()
	SelectedNodes.Set(float64(nodes))
	SelectedEdges.Set(float64(edges))
}

// RenderHooks records frames and exports.
type RenderHooks struct{}

func (RenderHooks) OnFrame(context.Context) {
	FramesDrawn.Inc()
}

func (RenderHooks) OnRender(_ context.Context, format string, _ int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	Renders.WithLabelValues(format, status).Inc()
	RenderDuration.WithLabelValues(format).Observe(d.Seconds())
}

// SessionHooks tracks connected WebSocket sessions.
type SessionHooks struct{}

func (SessionHooks) OnSessionOpen()  { ActiveSessions.Inc() }
func (SessionHooks) OnSessionClose() { ActiveSessions.Dec() }
