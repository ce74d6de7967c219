// Package graph provides the topology data model and its serialization.
//
// This package normalizes raw node and link records into a canonical
// in-memory [Graph] with resolved references, and defines the wire formats
// used for datasets and rendered frames.
//
// # Core Types
//
//   - [Dataset]: Raw input (nodes, links, settings) from a data provider
//   - [RawNode], [RawLink]: Records as supplied; links use positional indices
//   - [Graph]: Normalized form with an id→node index
//   - [Node], [Link]: Normalized records; links store endpoint ids
//   - [Frame]: Serialized snapshot of one rendered tick
//
// # Normalization
//
// [Normalize] assigns id = index to nodes without an explicit id and resolves
// each link's source/target index to a node id. Once normalized, endpoints
// are joined through the id index and never through sequence position:
//
//	g, err := graph.Normalize(rawNodes, rawLinks)
//	for _, l := range g.Links() {
//	    src, dst := g.Source(l), g.Target(l)
//	}
//
// Out-of-range indices and duplicate ids fail with
// *errors.DataIntegrityError, and no partial graph is returned.
//
// # Dataset Serialization
//
// Datasets are read and written as JSON, YAML or TOML; the format is inferred
// from the file extension:
//
//	{
//	  "nodes": [{"name": "service: guestbook", "radius": 16, "selected": true}],
//	  "links": [{"source": 0, "target": 1, "thickness": 2, "distance": 80}],
//	  "settings": {"clustered": false, "showNodeLabels": true, "showEdgeLabels": true}
//	}
//
// Common operations:
//
//	d, _ := graph.ReadDatasetFile("topology.yaml")  // File → Dataset
//	d, g, _ := graph.LoadFile("topology.json")      // File → Dataset + Graph
//	graph.WriteDatasetFile(d, "topology.toml")      // Dataset → File
//
// A [Watcher] reloads a dataset file whenever it changes on disk.
//
// # Concurrency
//
// A normalized [Graph] is immutable and safe for concurrent reads.
package graph
