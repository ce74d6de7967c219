package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Frame - Serialized Rendering Snapshot
// =============================================================================

// Frame is the serialization format for one rendered tick: positions,
// emphasis and the selection that produced it.
//
// Frames are streamed to WebSocket clients, written by `render -f json`, and
// can be read back for offline inspection.
type Frame struct {
	Tick      int         `json:"tick"`
	State     string      `json:"state"` // Simulation state: "idle", "ticking", "converged"
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	Alpha     float64     `json:"alpha"`
	Selection []int       `json:"selection"`
	Nodes     []FrameNode `json:"nodes"`
	Links     []FrameLink `json:"links"`
}

// FrameNode is a positioned node in a Frame.
type FrameNode struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Group    int     `json:"group"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"radius"`
	Opacity  float64 `json:"opacity"`
	Selected bool    `json:"selected,omitempty"`
	Pinned   bool    `json:"pinned,omitempty"`
}

// FrameLink is a positioned link in a Frame.
type FrameLink struct {
	Index    int     `json:"index"`
	Source   int     `json:"source"`
	Target   int     `json:"target"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`
	Opacity  float64 `json:"opacity"`
	Selected bool    `json:"selected,omitempty"`
	Label    string  `json:"label,omitempty"`
}

// =============================================================================
// Frame Serialization API
// =============================================================================

// MarshalFrame serializes a Frame to pretty-printed JSON bytes.
func MarshalFrame(f Frame) ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

// UnmarshalFrame deserializes JSON bytes into a Frame.
// Validates that the frame has usable dimensions.
func UnmarshalFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("unmarshal frame: %w", err)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return Frame{}, fmt.Errorf("frame must have positive dimensions, got %vx%v", f.Width, f.Height)
	}
	return f, nil
}

// WriteFrameFile writes a Frame to a JSON file.
func WriteFrameFile(f Frame, path string) error {
	data, err := MarshalFrame(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFrameFile reads a Frame from a JSON file.
func ReadFrameFile(path string) (Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalFrame(data)
}
