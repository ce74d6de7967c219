// Package observability provides hooks for metrics and tracing.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about simulations, selection changes and
// rendering.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The Prometheus implementation lives in internal/metrics and is registered
// by the CLI, so library code never imports a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnStart(ctx, nodeCount, linkCount, clustered)
//	// ... tick until converged ...
//	observability.Layout().OnConverged(ctx, ticks, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from force simulations.
type LayoutHooks interface {
	// OnStart records a simulation started for a new dataset.
	OnStart(ctx context.Context, nodeCount, linkCount int, clustered bool)

	// OnReheat records a converged simulation resumed. Reason is one of
	// "resize", "dataset", "pin", "drag" or "unpin".
	OnReheat(ctx context.Context, reason string)

	// OnConverged records a simulation that cooled down after ticks steps.
	OnConverged(ctx context.Context, ticks int, duration time.Duration)
}

// =============================================================================
// Selection Hooks
// =============================================================================

// SelectionHooks receives events from selection changes.
type SelectionHooks interface {
	// OnSelectionChange records a replaced node selection and the size of
	// the derived edge selection.
	OnSelectionChange(ctx context.Context, nodes, edges int)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from render sinks.
type RenderHooks interface {
	// OnFrame records one frame drawn to the surface.
	OnFrame(ctx context.Context)

	// OnRender records an export to a file format.
	OnRender(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnStart(context.Context, int, int, bool)         {}
func (NoopLayoutHooks) OnReheat(context.Context, string)                {}
func (NoopLayoutHooks) OnConverged(context.Context, int, time.Duration) {}

// NoopSelectionHooks is a no-op implementation of SelectionHooks.
type NoopSelectionHooks struct{}

func (NoopSelectionHooks) OnSelectionChange(context.Context, int, int) {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnFrame(context.Context)                                     {}
func (NoopRenderHooks) OnRender(context.Context, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks    LayoutHooks    = NoopLayoutHooks{}
	selectionHooks SelectionHooks = NoopSelectionHooks{}
	renderHooks    RenderHooks    = NoopRenderHooks{}
	hooksMu        sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any rendering.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetSelectionHooks registers custom selection hooks.
func SetSelectionHooks(h SelectionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		selectionHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Selection returns the registered selection hooks.
func Selection() SelectionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return selectionHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	selectionHooks = NoopSelectionHooks{}
	renderHooks = NoopRenderHooks{}
}
