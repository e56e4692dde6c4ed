package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/harperreed/pcrm/display"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("PCRM"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	s.WriteString(m.search.View())
	if opts := m.filterOptions(); len(opts) > 0 {
		s.WriteString("    Filter: " + m.filter())
	}
	s.WriteString("\n\n")

	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case !m.loaded:
		s.WriteString("Loading...")
	default:
		s.WriteString(m.renderTable())
	}
	s.WriteString("\n\n")

	s.WriteString(m.renderFooter())
	if m.status != "" {
		s.WriteString("\n" + m.status)
	}
	s.WriteString("\n")

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string

	for i, tab := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) contactsView() listview.ContactView {
	return listview.Contacts(m.contacts, m.search.Value())
}

func (m Model) opportunitiesView() listview.OpportunityView {
	return listview.Opportunities(m.opportunities, m.search.Value(), m.filter())
}

func (m Model) interactionsView() listview.InteractionView {
	return listview.Interactions(m.interactions, m.search.Value(), m.filter())
}

// filterOptions lists the category filter values of the current tab, All first.
func (m Model) filterOptions() []string {
	switch m.tab {
	case TabOpportunities:
		opts := []string{listview.All}
		for _, s := range models.Stages {
			opts = append(opts, string(s))
		}
		return opts
	case TabInteractions:
		opts := []string{listview.All}
		for _, t := range models.InteractionTypes {
			opts = append(opts, string(t))
		}
		return opts
	}
	return nil
}

func (m Model) filter() string {
	opts := m.filterOptions()
	if len(opts) == 0 {
		return listview.All
	}
	return opts[m.filters[m.tab]%len(opts)]
}

func (m *Model) cycleFilter() {
	opts := m.filterOptions()
	if len(opts) == 0 {
		return
	}
	m.filters[m.tab] = (m.filters[m.tab] + 1) % len(opts)
	m.selectedRow = 0
}

func (m Model) rowCount() int {
	switch m.tab {
	case TabOpportunities:
		return len(m.opportunitiesView().Visible)
	case TabInteractions:
		return len(m.interactionsView().Visible)
	}
	return len(m.contactsView().Visible)
}

func (m *Model) clampRow() {
	if n := m.rowCount(); m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m Model) renderTable() string {
	var columns []table.Column
	var rows []table.Row

	switch m.tab {
	case TabContacts:
		columns = []table.Column{
			{Title: "Name", Width: 25},
			{Title: "Email", Width: 30},
			{Title: "Phone", Width: 15},
			{Title: "Company", Width: 20},
		}
		for _, c := range m.contactsView().Visible {
			rows = append(rows, table.Row{c.DisplayName(), c.Email, c.Phone, c.Company})
		}

	case TabOpportunities:
		columns = []table.Column{
			{Title: "Name", Width: 25},
			{Title: "Contact", Width: 20},
			{Title: "Stage", Width: 12},
			{Title: "Value", Width: 12},
			{Title: "Close", Width: 13},
		}
		for _, o := range m.opportunitiesView().Visible {
			value, _ := display.Currency(o.Value, o.CurrencyCode())
			closeDate, _ := display.Date(o.ExpectedCloseDate)
			rows = append(rows, table.Row{o.Name, models.RelatedContactName(o.Contact), string(o.Stage), value, closeDate})
		}

	case TabInteractions:
		now := m.now()
		columns = []table.Column{
			{Title: "When", Width: 16},
			{Title: "Type", Width: 9},
			{Title: "Contact", Width: 20},
			{Title: "Summary", Width: 32},
			{Title: "Follow-up", Width: 24},
		}
		for _, it := range m.interactionsView().Visible {
			followUp, _ := display.Date(it.FollowUpDate)
			if it.IsOverdue(now) {
				followUp += " (overdue)"
			}
			rows = append(rows, table.Row{
				display.Relative(it.OccurredAt, now), string(it.Type),
				models.RelatedContactName(it.Contact), it.Summary, followUp,
			})
		}
	}

	if len(rows) == 0 {
		return fmt.Sprintf("No %s found.", strings.ToLower(tabNames[m.tab]))
	}

	height := m.height - 14
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderFooter() string {
	switch m.tab {
	case TabOpportunities:
		view := m.opportunitiesView()
		return fmt.Sprintf("Showing %d of %d opportunities • Total: %s • Won: %d • Active: %d",
			len(view.Visible), view.Total, display.Amount(view.TotalValue, m.currency), view.WonCount, view.ActiveCount)
	case TabInteractions:
		view := m.interactionsView()
		now := m.now()
		overdue := 0
		for _, it := range view.Visible {
			if it.IsOverdue(now) {
				overdue++
			}
		}
		footer := fmt.Sprintf("Showing %d of %d interactions", len(view.Visible), view.Total)
		if overdue > 0 {
			footer += " • " + overdueStyle.Render(fmt.Sprintf("%d overdue", overdue))
		}
		return footer
	}
	view := m.contactsView()
	return fmt.Sprintf("Showing %d of %d contacts", len(view.Visible), view.Total)
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"/: Search",
		"Ctrl+F: Filter",
		"Enter: View contact",
	}
	switch m.tab {
	case TabContacts:
		help = append(help, "d: Delete")
	case TabOpportunities:
		help = append(help, "g: Pipeline graph")
	}
	help = append(help, "r: Reload", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "/":
		m.searching = true
		m.status = ""
		cmd := m.search.Focus()
		return m, cmd
	case "esc":
		m.search.SetValue("")
		m.selectedRow = 0
	case "ctrl+f":
		m.cycleFilter()
	case "enter":
		if id, ok := m.selectedContactID(); ok {
			m.selectedContact = id
			m.viewMode = ViewDetail
		}
	case "d":
		if m.tab != TabContacts {
			break
		}
		if id, ok := m.selectedContactID(); ok {
			m.selectedContact = id
			m.returnTo = ViewList
			m.viewMode = ViewConfirmDelete
		}
	case "g":
		if m.tab == TabOpportunities {
			return m, m.pipelineGraph()
		}
	case "r":
		m.status = ""
		return m, m.load()
	}

	return m, nil
}

// handleSearchKeys feeds keystrokes to the search box; the list is
// re-filtered on every render so each keystroke updates the table.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "ctrl+f":
		m.cycleFilter()
		return m, nil
	case "up":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
		return m, nil
	case "down":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.selectedRow = 0
	return m, cmd
}

// selectedContactID is the contact behind the highlighted row on any tab.
func (m Model) selectedContactID() (uuid.UUID, bool) {
	row := m.selectedRow
	switch m.tab {
	case TabContacts:
		visible := m.contactsView().Visible
		if row < len(visible) {
			return visible[row].ID, true
		}
	case TabOpportunities:
		visible := m.opportunitiesView().Visible
		if row < len(visible) {
			return visible[row].ContactID, true
		}
	case TabInteractions:
		visible := m.interactionsView().Visible
		if row < len(visible) {
			return visible[row].ContactID, true
		}
	}
	return uuid.Nil, false
}
