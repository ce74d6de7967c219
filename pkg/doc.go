// Package pkg provides the core libraries for topoview topology rendering.
//
// # Overview
//
// Topoview turns node and link records into a force-directed node-link
// diagram. A node selection drives emphasis: links between two selected
// nodes are highlighted and everything else is dimmed. The pkg directory is
// organized by stage:
//
//  1. [graph] - Dataset records, normalization and frame serialization
//  2. [selection] - Node selection and derived edge emphasis
//  3. [layout] - Force simulation with alpha cooling
//  4. [sizing] - Graph size from the host container
//  5. [scene] - The drawing surface and SVG, DOT, PNG and PDF output
//  6. [rendering] - One rendering instance tying the stages together
//
// # Architecture
//
// The data flow of one rendering:
//
//	Dataset (JSON, YAML, TOML)
//	         ↓
//	    [graph] package (validate, normalize)
//	         ↓
//	    [selection] package (derive edges and opacities)
//	         ↓
//	    [layout] package (simulate until converged)
//	         ↓
//	    [scene] package (reposition elements each tick)
//	         ↓
//	    SVG/PNG/PDF/DOT/JSON output, or frames over WebSocket
//
// # Quick Start
//
//	ds, _ := graph.ReadDatasetFile("guestbook.json")
//
//	view, _ := rendering.New(sizing.NewStaticContainer(960, 700))
//	defer view.Close()
//
//	_ = view.SetDataset(ds)
//	_ = view.SetNodeSelection(selection.NewNodeSet(2, 55))
//	_, _ = view.Settle(1000)
//
//	svg := view.SVG()
//
// # Supporting Packages
//
// [config] loads the TOML configuration. [server] serves a live rendering
// over HTTP and WebSocket. [cache] stores rendered artifacts. [errors]
// defines the error codes shared by all packages and [observability]
// exposes hooks for metrics.
package pkg
