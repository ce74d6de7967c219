// Package server exposes a live topology rendering over HTTP.
//
// # Endpoints
//
//	GET    /healthz         liveness probe
//	GET    /metrics         Prometheus metrics
//	GET    /graph.svg       current scene as standalone SVG
//	GET    /ws              WebSocket stream of frames
//	GET    /api/state       sizes, selections and simulation state
//	GET    /api/frame       current frame snapshot
//	PUT    /api/selection   {"nodes": [2, 55]}
//	PUT    /api/size        {"width": 750, "height": 750}
//	PUT    /api/container   {"width": 1280, "height": 800}
//	PUT    /api/dataset     dataset body; ?format=yaml|toml|json
//	POST   /api/pin         {"id": 55, "x": 100, "y": 80}
//	DELETE /api/pin/{id}
//
// Errors are JSON objects with a code and message. Input, size and data
// integrity errors map to 400, unknown nodes to 404, a busy container to
// 409 and anything else to 500.
//
// # WebSocket
//
// Each connection is a session with its own uuid. The server first sends a
// "hello" message carrying the session id and state, then a "frame"
// message after every simulation tick. Clients send "select", "resize",
// "drag" and "release" messages with the same fields as the REST bodies.
package server
