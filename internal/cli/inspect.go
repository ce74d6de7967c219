package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topoview/pkg/graph"
	"github.com/matzehuels/topoview/pkg/selection"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the interactive selection explorer.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [dataset]",
		Short: "Explore node selection and derived edge emphasis interactively",
		Long: `Inspect lists the nodes of a dataset. Toggling nodes updates the node
selection; the links whose endpoints are both selected are emphasized and
everything else is dimmed, exactly as a rendering would show it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runInspect(ctx context.Context, input string) error {
	_, g, err := graph.LoadFile(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	m := newInspectModel(g, c.config.Selection.DimmedOpacity)
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	ids := final.(inspectModel).engine.Get().IDs()
	printInfo("Final selection: %s", formatIDs(ids))
	if len(ids) > 0 {
		printNextStep("Render it", fmt.Sprintf("topoview render %s --select %s", input, strings.Trim(formatIDs(ids), "[]")))
	}
	return nil
}

// =============================================================================
// inspectModel - Interactive selection explorer
// =============================================================================

type inspectKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	All    key.Binding
	Clear  key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

var inspectKeys = inspectKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle: key.NewBinding(key.WithKeys(" ", "x", "enter"), key.WithHelp("space", "toggle")),
	All:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
	Clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	Reset:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

func (k inspectKeyMap) help() string {
	var parts []string
	for _, b := range []key.Binding{k.Up, k.Down, k.Toggle, k.All, k.Clear, k.Reset, k.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

// inspectModel is the bubbletea model for the selection explorer.
type inspectModel struct {
	g      *graph.Graph
	engine *selection.Engine
	state  selection.RenderState
	dimmed float64

	cursor int
	offset int
	height int
}

func newInspectModel(g *graph.Graph, dimmed float64) inspectModel {
	m := inspectModel{
		g:      g,
		engine: selection.NewEngine(selection.Initial(g)),
		dimmed: dimmed,
		height: 12,
	}
	m.derive()
	return m
}

func (m *inspectModel) derive() {
	m.state = selection.DeriveAll(m.g, m.engine.Get(), selection.WithDimmedOpacity(m.dimmed))
}

func (m *inspectModel) set(s selection.NodeSet) {
	m.engine.Set(s)
	m.derive()
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	nodes := m.g.Nodes()
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, inspectKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, inspectKeys.Up):
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case key.Matches(msg, inspectKeys.Down):
			if m.cursor < len(nodes)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case key.Matches(msg, inspectKeys.Toggle):
			if len(nodes) == 0 {
				return m, nil
			}
			s := m.engine.Get()
			s.Toggle(nodes[m.cursor].ID)
			m.set(s)
		case key.Matches(msg, inspectKeys.All):
			all := selection.NewNodeSet()
			for _, n := range nodes {
				all.Add(n.ID)
			}
			m.set(all)
		case key.Matches(msg, inspectKeys.Clear):
			m.set(nil)
		case key.Matches(msg, inspectKeys.Reset):
			m.set(selection.Initial(m.g))
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height/2 - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m inspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Selection Explorer"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(inspectKeys.help()))
	b.WriteString("\n\n")

	b.WriteString(m.nodeTable())
	b.WriteString("\n")
	b.WriteString(m.linkTable())
	b.WriteString("\n")

	summary := fmt.Sprintf("  %d/%d nodes selected · %d/%d links emphasized",
		m.state.Nodes.Len(), m.g.NodeCount(), m.state.Edges.Len(), m.g.LinkCount())
	if m.state.Empty() {
		summary += " · empty selection shows everything"
	}
	b.WriteString(listDimStyle.Render(summary))
	return b.String()
}

func (m inspectModel) nodeTable() string {
	nodes := m.g.Nodes()
	end := min(m.offset+m.height, len(nodes))

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		n := nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		mark := " "
		if m.state.Nodes.Has(n.ID) {
			mark = "●"
		}
		rows = append(rows, []string{cursor, mark, fmt.Sprint(n.ID), n.Name, fmt.Sprint(n.Group), fmtOpacity(m.state.NodeOpacity[n.ID])})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "ID", "Node", "Group", "Opacity").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(nodes) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.cursor:
				return listSelectedStyle
			case m.state.Nodes.Has(nodes[idx].ID):
				return StyleSuccess
			case !m.state.Empty():
				return listDimStyle
			}
			return StyleValue
		}).
		Render()
}

func (m inspectModel) linkTable() string {
	rows := [][]string{}
	for i, l := range m.g.Links() {
		mark := " "
		if m.state.Edges.Has(i) {
			mark = "●"
		}
		rows = append(rows, []string{mark, fmt.Sprint(i), fmt.Sprintf("%d → %d", l.SourceID, l.TargetID), l.Label, fmtOpacity(m.state.LinkOpacity[i])})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Link", "Label", "Opacity").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.state.Edges.Has(row) {
				return StyleSuccess
			}
			if !m.state.Empty() {
				return listDimStyle
			}
			return StyleValue
		}).
		Render()
}

// =============================================================================
// Helpers
// =============================================================================

func fmtOpacity(o float64) string {
	return fmt.Sprintf("%.2g", o)
}

func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
