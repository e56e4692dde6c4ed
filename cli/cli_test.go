package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/pcrm/config"
	"github.com/harperreed/pcrm/db"
	"github.com/harperreed/pcrm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func setupTestCLI(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	cfg := config.DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "pcrm.db")
	cfg.UserID = uuid.NewString()

	var out bytes.Buffer
	app := &App{
		Store:       db.NewStore(database),
		Config:      cfg,
		Logger:      log.New(io.Discard),
		UserID:      cfg.Identity().UserID,
		Out:         &out,
		In:          strings.NewReader(""),
		Now:         func() time.Time { return testNow },
		Interactive: func() bool { return false },
	}
	return app, &out
}

func addContact(t *testing.T, app *App, c *models.Contact) *models.Contact {
	t.Helper()
	require.NoError(t, app.Store.CreateContact(context.Background(), app.UserID, c))
	return c
}

func TestAddAndListContacts(t *testing.T) {
	app, out := setupTestCLI(t)

	err := AddContactCommand(app, []string{"--first-name", "Alice", "--last-name", "Smith", "--email", "alice@example.com", "--company", "Acme"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ Contact created: Alice Smith")
	assert.Contains(t, out.String(), "Company: Acme")

	require.NoError(t, AddContactCommand(app, []string{"--email", "bob@example.com"}))

	out.Reset()
	require.NoError(t, ListContactsCommand(app, []string{"--query", "acme"}))
	assert.Contains(t, out.String(), "Alice Smith")
	assert.NotContains(t, out.String(), "bob@example.com")
	assert.Contains(t, out.String(), "Showing 1 of 2 contact(s)")
}

func TestAddContactValidation(t *testing.T) {
	app, _ := setupTestCLI(t)

	err := AddContactCommand(app, []string{"--phone", "555"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)

	err = AddContactCommand(app, []string{"--email", "not-an-email"})
	assert.ErrorContains(t, err, "Invalid email address")

	err = AddContactCommand(app, []string{"--first-name", "A", "--birthday", "04/02/1990"})
	assert.ErrorContains(t, err, "invalid --birthday")
}

func TestListContactsEmpty(t *testing.T) {
	app, out := setupTestCLI(t)

	require.NoError(t, ListContactsCommand(app, nil))
	assert.Equal(t, "No contacts found\n", out.String())
}

func TestUpdateContactOnlyTouchesGivenFlags(t *testing.T) {
	app, out := setupTestCLI(t)
	c := addContact(t, app, &models.Contact{FirstName: "Alice", Email: "alice@example.com", Phone: "555"})

	require.NoError(t, UpdateContactCommand(app, []string{"--company", "Acme", "--phone", "", c.ID.String()}))
	assert.Contains(t, out.String(), "✓ Contact updated")

	got, err := app.Store.GetContact(context.Background(), app.UserID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, "", got.Phone)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestUpdateContactErrors(t *testing.T) {
	app, _ := setupTestCLI(t)

	assert.ErrorContains(t, UpdateContactCommand(app, nil), "contact ID is required")
	assert.ErrorContains(t, UpdateContactCommand(app, []string{"nope"}), "invalid contact ID")

	missing := uuid.New().String()
	assert.ErrorContains(t, UpdateContactCommand(app, []string{missing}), "contact not found: "+missing)
}

func TestDeleteContactRequiresConfirmation(t *testing.T) {
	app, out := setupTestCLI(t)
	c := addContact(t, app, &models.Contact{FirstName: "Alice"})
	ctx := context.Background()

	err := DeleteContactCommand(app, []string{c.ID.String()})
	assert.ErrorContains(t, err, "pass --yes")

	app.Interactive = func() bool { return true }
	app.In = strings.NewReader("n\n")
	require.NoError(t, DeleteContactCommand(app, []string{c.ID.String()}))
	assert.Contains(t, out.String(), "Delete Alice and 0 opportunities? [y/N]")
	assert.Contains(t, out.String(), "Cancelled")

	_, err = app.Store.GetContact(ctx, app.UserID, c.ID)
	require.NoError(t, err)

	app.In = strings.NewReader("yes\n")
	require.NoError(t, DeleteContactCommand(app, []string{c.ID.String()}))
	assert.Contains(t, out.String(), "✓ Contact deleted: Alice")

	_, err = app.Store.GetContact(ctx, app.UserID, c.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestDeleteContactWithYes(t *testing.T) {
	app, _ := setupTestCLI(t)
	c := addContact(t, app, &models.Contact{FirstName: "Alice"})

	require.NoError(t, DeleteContactCommand(app, []string{"--yes", c.ID.String()}))

	_, err := app.Store.GetContact(context.Background(), app.UserID, c.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestOpportunityCommands(t *testing.T) {
	app, out := setupTestCLI(t)
	c := addContact(t, app, &models.Contact{FirstName: "Alice", LastName: "Smith"})

	err := AddOpportunityCommand(app, []string{"--contact", c.ID.String(), "--name", "Website", "--value", "5,000", "--stage", "Proposal", "--priority", "3"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ Opportunity created: Website")
	assert.Contains(t, out.String(), "Value: $5,000")

	err = AddOpportunityCommand(app, []string{"--contact", c.ID.String(), "--name", "Retainer", "--value", "1500", "--currency", "eur", "--stage", "Won"})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, ListOpportunitiesCommand(app, nil))
	assert.Contains(t, out.String(), "Alice Smith")
	assert.Contains(t, out.String(), "€1,500")
	assert.Contains(t, out.String(), "Total value: $6,500  Won: 1  Active: 1")

	out.Reset()
	require.NoError(t, ListOpportunitiesCommand(app, []string{"--stage", "Won"}))
	assert.Contains(t, out.String(), "Retainer")
	assert.NotContains(t, out.String(), "Website")
	assert.Contains(t, out.String(), "Showing 1 of 2 opportunities")
}

func TestOpportunityCommandErrors(t *testing.T) {
	app, _ := setupTestCLI(t)
	c := addContact(t, app, &models.Contact{FirstName: "Alice"})

	assert.ErrorContains(t, ListOpportunitiesCommand(app, []string{"--stage", "Pending"}), "invalid stage")
	assert.ErrorContains(t, AddOpportunityCommand(app, []string{"--name", "X"}), "--contact is required")
	assert.ErrorContains(t, AddOpportunityCommand(app, []string{"--contact", uuid.NewString(), "--name", "X"}), "contact not found")

	err := AddOpportunityCommand(app, []string{"--contact", c.ID.String(), "--name", "X", "--value", "-5"})
	assert.ErrorContains(t, err, "must be positive")

	err = AddOpportunityCommand(app, []string{"--contact", c.ID.String(), "--value", "10"})
	assert.ErrorContains(t, err, "is required")
}

func TestOpportunityUsesProfileCurrency(t *testing.T) {
	app, out := setupTestCLI(t)
	ctx := context.Background()
	c := addContact(t, app, &models.Contact{FirstName: "Alice"})
	require.NoError(t, app.Store.SaveProfile(ctx, app.UserID, &models.Profile{Currency: "GBP"}))

	require.NoError(t, AddOpportunityCommand(app, []string{"--contact", c.ID.String(), "--name", "Audit", "--value", "200"}))
	assert.Contains(t, out.String(), "Value: £200")
}

func TestInteractionCommands(t *testing.T) {
	app, out := setupTestCLI(t)
	c := addContact(t, app, &models.Contact{FirstName: "Alice"})
	id := c.ID.String()

	require.NoError(t, LogInteractionCommand(app, []string{"--contact", id, "--type", "Call", "--summary", "Intro call", "--follow-up", "2026-03-01", "--when", "2026-02-20T10:00:00Z"}))
	assert.Contains(t, out.String(), "✓ Logged Call with Alice")
	assert.Contains(t, out.String(), "Follow up by Mar 1, 2026")

	require.NoError(t, LogInteractionCommand(app, []string{"--contact", id, "--summary", "Sent deck"}))

	out.Reset()
	require.NoError(t, ListInteractionsCommand(app, nil))
	assert.Contains(t, out.String(), "Intro call")
	assert.Contains(t, out.String(), "(overdue)")
	assert.Contains(t, out.String(), "Showing 2 of 2 interactions (1 overdue)")

	out.Reset()
	require.NoError(t, ListInteractionsCommand(app, []string{"--overdue-only"}))
	assert.Contains(t, out.String(), "Intro call")
	assert.NotContains(t, out.String(), "Sent deck")

	out.Reset()
	require.NoError(t, ListInteractionsCommand(app, []string{"--type", "Email"}))
	assert.Equal(t, "No interactions found\n", out.String())
}

func TestInteractionCommandErrors(t *testing.T) {
	app, _ := setupTestCLI(t)
	c := addContact(t, app, &models.Contact{FirstName: "Alice"})
	id := c.ID.String()

	assert.ErrorContains(t, ListInteractionsCommand(app, []string{"--type", "Fax"}), "invalid interaction type")
	assert.ErrorContains(t, LogInteractionCommand(app, []string{"--contact", id}), "is required")
	assert.ErrorContains(t, LogInteractionCommand(app, []string{"--contact", id, "--summary", "x", "--when", "yesterday"}), "invalid --when")
	assert.ErrorContains(t, LogInteractionCommand(app, []string{"--contact", id, "--summary", "x", "--type", "Fax"}), "must be one of")
}

func TestVizCommands(t *testing.T) {
	app, out := setupTestCLI(t)
	c := addContact(t, app, &models.Contact{FirstName: "Alice"})
	require.NoError(t, AddOpportunityCommand(app, []string{"--contact", c.ID.String(), "--name", "Website", "--value", "2500"}))

	out.Reset()
	require.NoError(t, VizDashboardCommand(app, nil))
	assert.Contains(t, out.String(), "PCRM DASHBOARD")

	out.Reset()
	require.NoError(t, VizGraphPipelineCommand(app, nil))
	assert.Contains(t, out.String(), "Lead")

	path := filepath.Join(t.TempDir(), "contact.dot")
	out.Reset()
	require.NoError(t, VizGraphContactCommand(app, []string{"--output", path, c.ID.String()}))
	assert.Contains(t, out.String(), "✓ Graph written to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Website")

	assert.ErrorContains(t, VizGraphContactCommand(app, nil), "contact ID is required")
}

func TestSyncContactsWithoutToken(t *testing.T) {
	app, _ := setupTestCLI(t)

	err := SyncContactsCommand(context.Background(), app, nil)
	assert.ErrorContains(t, err, "no authentication token found")
}

func TestSyncInitWithoutCredentials(t *testing.T) {
	app, _ := setupTestCLI(t)

	err := SyncInitCommand(context.Background(), app, []string{"--no-browser"})
	assert.ErrorContains(t, err, "GOOGLE_CLIENT_ID")
}
