package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/harperreed/pcrm/viz"
)

func (m Model) renderGraphView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("GRAPH VIEW"))
	s.WriteString("\n\n")

	// DOT source; pipe `pcrm viz` output to graphviz for an image.
	s.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Render(m.graphDOT))

	s.WriteString("\n\n")
	s.WriteString(m.renderGraphHelp())

	return s.String()
}

func (m Model) renderGraphHelp() string {
	help := []string{
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleGraphKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.viewMode = m.returnTo
		m.graphDOT = ""
	}

	return m, nil
}

func (m Model) pipelineGraph() tea.Cmd {
	generator := viz.NewGraphGenerator(m.store, m.userID)
	currency := m.currency
	return func() tea.Msg {
		dot, err := generator.GeneratePipelineGraph(context.Background(), currency)
		if err != nil {
			return errMsg{err}
		}
		return graphMsg{dot: dot}
	}
}

func (m Model) contactGraph(id uuid.UUID) tea.Cmd {
	generator := viz.NewGraphGenerator(m.store, m.userID)
	return func() tea.Msg {
		dot, err := generator.GenerateContactGraph(context.Background(), id)
		if err != nil {
			return errMsg{err}
		}
		return graphMsg{dot: dot}
	}
}
