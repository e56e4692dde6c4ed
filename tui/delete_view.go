// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Confirms deleting a contact along with its opportunities and interactions
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmDeleteView() string {
	contact, ok := m.contactByID(m.selectedContact)
	if !ok {
		return errorStyle.Render("Contact not found")
	}

	opps, interactions := 0, 0
	for _, o := range m.opportunities {
		if o.ContactID == contact.ID {
			opps++
		}
	}
	for _, it := range m.interactions {
		if it.ContactID == contact.ID {
			interactions++
		}
	}

	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	message := fmt.Sprintf("Delete %s?", contact.DisplayName())
	related := fmt.Sprintf("\nThis also deletes %d opportunities and %d interactions.", opps, interactions)
	warning := "\nThis action cannot be undone!"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		related,
		warning,
		"",
		buttons,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		contact, ok := m.contactByID(m.selectedContact)
		if !ok {
			m.viewMode = ViewList
			return m, nil
		}
		return m, m.deleteContact(contact.ID, contact.DisplayName())
	case "n", "N", "esc":
		m.viewMode = m.returnTo
	}

	return m, nil
}

func (m Model) deleteContact(id uuid.UUID, name string) tea.Cmd {
	store, userID := m.store, m.userID
	return func() tea.Msg {
		if err := store.DeleteContact(context.Background(), userID, id); err != nil {
			return errMsg{fmt.Errorf("failed to delete contact: %w", err)}
		}
		return deletedMsg{name: name}
	}
}
