package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/graph"
	"github.com/matzehuels/topoview/pkg/observability"
	"github.com/matzehuels/topoview/pkg/rendering"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/selection"
)

// maxBodyBytes bounds request bodies, datasets included.
const maxBodyBytes = 8 << 20

// State is the response of GET /api/state.
type State struct {
	ID                  string         `json:"id"`
	Simulation          string         `json:"simulation"`
	Tick                int            `json:"tick"`
	GraphSize           [2]float64     `json:"graphSize"`
	ContainerDimensions [2]float64     `json:"containerDimensions"`
	NodeSelection       []int          `json:"nodeSelection"`
	EdgeSelection       []int          `json:"edgeSelection"`
	EdgeLabelSelection  []int          `json:"edgeLabelSelection"`
	Settings            graph.Settings `json:"settings"`
	Nodes               int            `json:"nodes"`
	Links               int            `json:"links"`
}

func snapshot(v *rendering.Rendering) State {
	st := State{
		ID:                  v.ID(),
		Simulation:          v.SimulationState().String(),
		Tick:                v.Ticks(),
		GraphSize:           v.GraphSize(),
		ContainerDimensions: v.ContainerDimensions(),
		NodeSelection:       v.NodeSelection().IDs(),
		EdgeSelection:       v.EdgeSelection().Indices(),
		EdgeLabelSelection:  v.EdgeLabelSelection().Indices(),
		Settings:            v.Settings(),
	}
	if g := v.Graph(); g != nil {
		st.Nodes, st.Links = g.NodeCount(), g.LinkCount()
	}
	return st
}

// SelectionRequest is the body of PUT /api/selection.
type SelectionRequest struct {
	Nodes []int `json:"nodes"`
}

// SizeRequest is the body of PUT /api/size and PUT /api/container.
type SizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PinRequest is the body of POST /api/pin.
type PinRequest struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.respond(w, func(v *rendering.Rendering) error { return nil })
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	var f graph.Frame
	if err := s.Do(func(v *rendering.Rendering) { f = v.Frame() }); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, func(v *rendering.Rendering) error {
		return v.SetNodeSelection(selection.NewNodeSet(req.Nodes...))
	})
}

func (s *Server) handleSize(w http.ResponseWriter, r *http.Request) {
	var req SizeRequest
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, func(v *rendering.Rendering) error {
		return v.SetGraphSize([2]float64{req.Width, req.Height})
	})
}

func (s *Server) handleContainer(w http.ResponseWriter, r *http.Request) {
	var req SizeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := errors.ValidateGraphSize(req.Width, req.Height); err != nil {
		writeError(w, err)
		return
	}
	s.container.Resize(req.Width, req.Height)
	s.respond(w, func(v *rendering.Rendering) error {
		v.Resize()
		return nil
	})
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	format := graph.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		format = graph.Format(f)
	}
	ds, err := graph.ReadDataset(http.MaxBytesReader(w, r.Body, maxBodyBytes), format)
	if err != nil {
		writeError(w, err)
		return
	}
	s.respond(w, func(v *rendering.Rendering) error { return v.SetDataset(ds) })
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	var req PinRequest
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, func(v *rendering.Rendering) error { return v.Drag(req.ID, req.X, req.Y) })
}

func (s *Server) handleUnpin(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid node id"))
		return
	}
	s.respond(w, func(v *rendering.Rendering) error { return v.Unpin(id) })
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var svg []byte
	if err := s.Do(func(v *rendering.Rendering) {
		svg = v.SVG(scene.WithInteraction(), scene.WithTitle("topoview"))
	}); err != nil {
		writeError(w, err)
		return
	}
	observability.Render().OnRender(r.Context(), "svg", len(svg), time.Since(start), nil)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

// respond runs fn on the loop and answers with the resulting state.
func (s *Server) respond(w http.ResponseWriter, fn func(*rendering.Rendering) error) {
	var (
		st    State
		opErr error
	)
	err := s.Do(func(v *rendering.Rendering) {
		if opErr = fn(v); opErr == nil {
			st = snapshot(v)
		}
	})
	if err == nil {
		err = opErr
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidSize,
		errors.ErrCodeInvalidSettings, errors.ErrCodeDataIntegrity:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeContainerBusy:
		return http.StatusConflict
	case errors.ErrCodeClosed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorResponse{Code: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
