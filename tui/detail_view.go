package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/pcrm/display"
	"github.com/harperreed/pcrm/models"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	contact, ok := m.contactByID(m.selectedContact)
	if !ok {
		s.WriteString(titleStyle.Render("CONTACT"))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render("Contact not found"))
		s.WriteString("\n\n")
		s.WriteString(m.renderDetailHelp())
		return s.String()
	}

	s.WriteString(titleStyle.Render(strings.ToUpper(contact.DisplayName())))
	s.WriteString("\n\n")
	s.WriteString(m.renderContactDetail(contact))
	s.WriteString("\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderContactDetail(c models.Contact) string {
	var s strings.Builder

	s.WriteString(m.renderField("Email", c.Email))
	s.WriteString(m.renderField("Phone", c.Phone))
	s.WriteString(m.renderField("Company", c.Company))
	s.WriteString(m.renderField("Title", c.RoleTitle))
	s.WriteString(m.renderField("Website", c.Website))
	s.WriteString(m.renderField("LinkedIn", c.LinkedInURL))
	birthday, _ := display.Date(c.Birthday)
	s.WriteString(m.renderField("Birthday", birthday))
	s.WriteString(m.renderField("Address", c.Address))
	s.WriteString(m.renderField("Source", c.Source))
	s.WriteString(m.renderField("Notes", c.Notes))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("OPPORTUNITIES"))
	s.WriteString("\n")
	found := false
	for _, o := range m.opportunities {
		if o.ContactID != c.ID {
			continue
		}
		found = true
		line := fmt.Sprintf("  • %s (%s)", o.Name, o.Stage)
		if value, ok := display.Currency(o.Value, o.CurrencyCode()); ok {
			line += " " + value
		}
		s.WriteString(line + "\n")
	}
	if !found {
		s.WriteString("  none\n")
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("INTERACTIONS"))
	s.WriteString("\n")
	now := m.now()
	found = false
	for _, it := range m.interactions {
		if it.ContactID != c.ID {
			continue
		}
		found = true
		when, _ := display.Date(&it.OccurredAt)
		line := fmt.Sprintf("  • [%s] %s: %s", when, it.Type, it.Summary)
		if it.IsOverdue(now) {
			due, _ := display.Date(it.FollowUpDate)
			line += " " + overdueStyle.Render("follow-up overdue since "+due)
		}
		s.WriteString(line + "\n")
	}
	if !found {
		s.WriteString("  none\n")
	}

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"d: Delete",
		"g: View graph",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
	case "d":
		if _, ok := m.contactByID(m.selectedContact); ok {
			m.returnTo = ViewDetail
			m.viewMode = ViewConfirmDelete
		}
	case "g":
		if _, ok := m.contactByID(m.selectedContact); ok {
			return m, m.contactGraph(m.selectedContact)
		}
	}

	return m, nil
}
