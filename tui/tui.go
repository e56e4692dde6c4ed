// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Provides interactive full-screen browsing of contacts, opportunities and interactions
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/harperreed/pcrm/models"
	"github.com/harperreed/pcrm/viz"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewGraph
	ViewConfirmDelete
)

// Tab is the record list shown in list mode.
type Tab int

const (
	TabContacts Tab = iota
	TabOpportunities
	TabInteractions
)

var tabNames = []string{"Contacts", "Opportunities", "Interactions"}

// Store is what the TUI reads from, plus contact deletion.
type Store interface {
	viz.Source
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	DeleteContact(ctx context.Context, userID, id uuid.UUID) error
}

// Model is the main bubbletea model
type Model struct {
	store  Store
	userID uuid.UUID
	now    func() time.Time

	viewMode ViewMode
	tab      Tab

	contacts      []models.Contact
	opportunities []models.Opportunity
	interactions  []models.Interaction
	currency      string
	loaded        bool

	// List view state
	search      textinput.Model
	searching   bool
	filters     [3]int
	selectedRow int

	// Detail, graph and delete state
	selectedContact uuid.UUID
	graphDOT        string
	returnTo        ViewMode

	status string
	err    error

	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel(store Store, userID uuid.UUID) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "type to search"
	search.CharLimit = 100

	return Model{
		store:    store,
		userID:   userID,
		now:      time.Now,
		viewMode: ViewList,
		tab:      TabContacts,
		search:   search,
		currency: models.DefaultCurrency,
		width:    100,
		height:   30,
	}
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, store Store, userID uuid.UUID) error {
	_, err := tea.NewProgram(NewModel(store, userID), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

type loadedMsg struct {
	contacts      []models.Contact
	opportunities []models.Opportunity
	interactions  []models.Interaction
	profile       *models.Profile
}

type errMsg struct{ err error }

type graphMsg struct{ dot string }

type deletedMsg struct{ name string }

func (m Model) Init() tea.Cmd {
	return m.load()
}

// load fetches every record once; searching and filtering happen in memory.
func (m Model) load() tea.Cmd {
	store, userID := m.store, m.userID
	return func() tea.Msg {
		ctx := context.Background()

		contacts, err := store.ListContacts(ctx, userID)
		if err != nil {
			return errMsg{fmt.Errorf("failed to load contacts: %w", err)}
		}
		opportunities, err := store.ListOpportunities(ctx, userID)
		if err != nil {
			return errMsg{fmt.Errorf("failed to load opportunities: %w", err)}
		}
		interactions, err := store.ListInteractions(ctx, userID)
		if err != nil {
			return errMsg{fmt.Errorf("failed to load interactions: %w", err)}
		}
		profile, err := store.GetProfile(ctx, userID)
		if err != nil {
			return errMsg{fmt.Errorf("failed to load profile: %w", err)}
		}

		return loadedMsg{
			contacts:      contacts,
			opportunities: opportunities,
			interactions:  interactions,
			profile:       profile,
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.contacts = msg.contacts
		m.opportunities = msg.opportunities
		m.interactions = msg.interactions
		m.currency = msg.profile.CurrencyCode()
		m.loaded = true
		m.err = nil
		m.clampRow()
		return m, nil
	case errMsg:
		m.err = msg.err
		m.viewMode = ViewList
		return m, nil
	case graphMsg:
		m.graphDOT = msg.dot
		m.returnTo = m.viewMode
		m.viewMode = ViewGraph
		return m, nil
	case deletedMsg:
		m.status = fmt.Sprintf("Deleted %s", msg.name)
		m.viewMode = ViewList
		m.selectedContact = uuid.Nil
		return m, m.load()
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// While the search box has focus every other key is text.
	if m.viewMode == ViewList && m.searching {
		return m.handleSearchKeys(msg)
	}

	if msg.String() == "q" {
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

func (m Model) contactByID(id uuid.UUID) (models.Contact, bool) {
	for _, c := range m.contacts {
		if c.ID == id {
			return c, true
		}
	}
	return models.Contact{}, false
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)
