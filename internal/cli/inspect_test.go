package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/topoview/pkg/graph"
)

func loadSampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	_, g, err := graph.LoadFile(writeSample(t))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m inspectModel, keys ...string) inspectModel {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(inspectModel)
	}
	return m
}

func TestInspectModelSelection(t *testing.T) {
	m := newInspectModel(loadSampleGraph(t), 0.2)
	if got := m.state.Edges.Indices(); len(got) != 2 {
		t.Fatalf("initial edges = %v, want [0 1]", got)
	}

	// clear, then select 2 and 55 (rows 1 and 3)
	m = press(m, "c", "down", "x", "down", "down", "x")
	if got := m.engine.Get().IDs(); len(got) != 2 || got[0] != 2 || got[1] != 55 {
		t.Fatalf("selection = %v, want [2 55]", got)
	}
	if got := m.state.Edges.Indices(); len(got) != 1 || got[0] != 2 {
		t.Errorf("edges = %v, want [2]", got)
	}
	if m.state.NodeOpacity[77] != 0.2 {
		t.Errorf("opacity of 77 = %v, want 0.2", m.state.NodeOpacity[77])
	}

	m = press(m, "x")
	if got := m.engine.Get().IDs(); len(got) != 1 || got[0] != 2 {
		t.Errorf("after toggle selection = %v, want [2]", got)
	}

	m = press(m, "a")
	if m.state.Edges.Len() != 3 {
		t.Errorf("select all: %d edges, want 3", m.state.Edges.Len())
	}
	m = press(m, "r")
	if got := m.engine.Get().IDs(); len(got) != 3 {
		t.Errorf("reset selection = %v, want [1 2 3]", got)
	}
}

func TestInspectModelCursorBounds(t *testing.T) {
	m := newInspectModel(loadSampleGraph(t), 0.2)
	m = press(m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up at top", m.cursor)
	}
	m = press(m, "down", "down", "down", "down", "down", "down")
	if m.cursor != 4 {
		t.Errorf("cursor = %d, want 4", m.cursor)
	}
}

func TestInspectModelQuit(t *testing.T) {
	m := newInspectModel(loadSampleGraph(t), 0.2)
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q did not return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestInspectModelView(t *testing.T) {
	m := newInspectModel(loadSampleGraph(t), 0.2)
	view := m.View()
	for _, want := range []string{"Selection Explorer", "guestbook", "3/5 nodes selected", "2/3 links emphasized"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	m = press(m, "c")
	if !strings.Contains(m.View(), "empty selection shows everything") {
		t.Error("empty selection hint missing")
	}
}

func TestFormatIDs(t *testing.T) {
	if got := formatIDs([]int{2, 55}); got != "[2,55]" {
		t.Errorf("formatIDs = %q", got)
	}
	if got := formatIDs(nil); got != "[]" {
		t.Errorf("formatIDs(nil) = %q", got)
	}
}
