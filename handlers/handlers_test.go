// ABOUTME: MCP tool handler test suite
// ABOUTME: Exercises contact, opportunity, interaction, query, graph, resource, and prompt handlers
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/pcrm/db"
	"github.com/harperreed/pcrm/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) (*db.Store, uuid.UUID) {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewStore(database), uuid.New()
}

func addContact(t *testing.T, h *ContactHandlers, input AddContactInput) ContactOutput {
	t.Helper()
	_, out, err := h.AddContact(context.Background(), nil, input)
	require.NoError(t, err)
	return out
}

func floatPtr(v float64) *float64 { return &v }

func TestAddAndListContacts(t *testing.T) {
	store, user := setupTestStore(t)
	h := NewContactHandlers(store, user)

	ada := addContact(t, h, AddContactInput{FirstName: " Ada ", LastName: "Lovelace", Company: "Acme Corp"})
	assert.Equal(t, "Ada Lovelace", ada.Name)
	assert.NotEmpty(t, ada.ID)

	addContact(t, h, AddContactInput{Email: "grace@navy.mil"})

	_, out, err := h.ListContacts(context.Background(), nil, ListContactsInput{Query: "acme"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, 1, out.Matched)
	require.Len(t, out.Contacts, 1)
	assert.Equal(t, ada.ID, out.Contacts[0].ID)

	_, out, err = h.ListContacts(context.Background(), nil, ListContactsInput{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Matched)
	assert.Len(t, out.Contacts, 1)
}

func TestAddContactValidation(t *testing.T) {
	store, user := setupTestStore(t)
	h := NewContactHandlers(store, user)

	_, _, err := h.AddContact(context.Background(), nil, AddContactInput{Company: "Acme"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, _, err = h.AddContact(context.Background(), nil, AddContactInput{FirstName: "Ada", Email: "nope"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, _, err = h.AddContact(context.Background(), nil, AddContactInput{FirstName: "Ada", Birthday: "15/03/1990"})
	assert.Error(t, err)

	contacts, err := store.ListContacts(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestGetContactIncludesRelatedRecords(t *testing.T) {
	store, user := setupTestStore(t)
	contacts := NewContactHandlers(store, user)
	opps := NewOpportunityHandlers(store, user)
	interactions := NewInteractionHandlers(store, user)
	ctx := context.Background()

	ada := addContact(t, contacts, AddContactInput{FirstName: "Ada"})
	_, _, err := opps.AddOpportunity(ctx, nil, AddOpportunityInput{ContactID: ada.ID, Name: "Deal"})
	require.NoError(t, err)
	_, _, err = interactions.LogInteraction(ctx, nil, LogInteractionInput{ContactID: ada.ID, Summary: "Intro call", Type: "Call"})
	require.NoError(t, err)

	_, out, err := contacts.GetContact(ctx, nil, GetContactInput{ID: ada.ID})
	require.NoError(t, err)
	assert.Equal(t, "Ada", out.Contact.Name)
	require.Len(t, out.Opportunities, 1)
	assert.Equal(t, "Ada", out.Opportunities[0].ContactName)
	require.Len(t, out.Interactions, 1)
	assert.Equal(t, "Call", out.Interactions[0].Type)

	_, _, err = contacts.GetContact(ctx, nil, GetContactInput{ID: uuid.NewString()})
	assert.ErrorContains(t, err, "contact not found")

	_, _, err = contacts.GetContact(ctx, nil, GetContactInput{ID: "bogus"})
	assert.ErrorContains(t, err, "invalid id")
}

func TestUpdateContactChangesOnlyGivenFields(t *testing.T) {
	store, user := setupTestStore(t)
	h := NewContactHandlers(store, user)
	ada := addContact(t, h, AddContactInput{FirstName: "Ada", Company: "Acme"})

	title := "CTO"
	_, out, err := h.UpdateContact(context.Background(), nil, UpdateContactInput{ID: ada.ID, RoleTitle: &title})
	require.NoError(t, err)
	assert.Equal(t, "CTO", out.RoleTitle)
	assert.Equal(t, "Acme", out.Company)
	assert.Equal(t, "Ada", out.FirstName)

	empty := ""
	_, _, err = h.UpdateContact(context.Background(), nil, UpdateContactInput{ID: ada.ID, FirstName: &empty})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDeleteContact(t *testing.T) {
	store, user := setupTestStore(t)
	h := NewContactHandlers(store, user)
	ada := addContact(t, h, AddContactInput{FirstName: "Ada"})

	_, out, err := h.DeleteContact(context.Background(), nil, DeleteContactInput{ID: ada.ID})
	require.NoError(t, err)
	assert.True(t, out.Deleted)

	_, _, err = h.DeleteContact(context.Background(), nil, DeleteContactInput{ID: ada.ID})
	assert.ErrorContains(t, err, "contact not found")
}

func TestContactsAreScopedToUser(t *testing.T) {
	store, user := setupTestStore(t)
	mine := NewContactHandlers(store, user)
	theirs := NewContactHandlers(store, uuid.New())

	ada := addContact(t, mine, AddContactInput{FirstName: "Ada"})

	_, out, err := theirs.ListContacts(context.Background(), nil, ListContactsInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Contacts)

	_, _, err = theirs.DeleteContact(context.Background(), nil, DeleteContactInput{ID: ada.ID})
	assert.Error(t, err)
}

func TestListOpportunitiesAggregates(t *testing.T) {
	store, user := setupTestStore(t)
	contacts := NewContactHandlers(store, user)
	h := NewOpportunityHandlers(store, user)
	ctx := context.Background()

	ada := addContact(t, contacts, AddContactInput{FirstName: "Ada", Company: "Acme"})
	for _, in := range []AddOpportunityInput{
		{ContactID: ada.ID, Name: "Big", Stage: "Proposal", Value: floatPtr(5000)},
		{ContactID: ada.ID, Name: "Closed", Stage: "Won", Value: floatPtr(1000)},
		{ContactID: ada.ID, Name: "Dead", Stage: "Lost"},
	} {
		_, _, err := h.AddOpportunity(ctx, nil, in)
		require.NoError(t, err)
	}

	_, out, err := h.ListOpportunities(ctx, nil, ListOpportunitiesInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
	assert.InDelta(t, 6000, out.TotalValue, 0.001)
	assert.Equal(t, 1, out.WonCount)
	assert.Equal(t, 1, out.ActiveCount)
	assert.Len(t, out.ByStage, len(models.Stages))

	_, out, err = h.ListOpportunities(ctx, nil, ListOpportunitiesInput{Stage: "Won"})
	require.NoError(t, err)
	require.Len(t, out.Opportunities, 1)
	assert.Equal(t, "Closed", out.Opportunities[0].Name)

	_, _, err = h.ListOpportunities(ctx, nil, ListOpportunitiesInput{Stage: "Closed"})
	assert.ErrorContains(t, err, "invalid stage")
}

func TestAddOpportunityDefaultsAndErrors(t *testing.T) {
	store, user := setupTestStore(t)
	contacts := NewContactHandlers(store, user)
	h := NewOpportunityHandlers(store, user)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, user, &models.Profile{Currency: "EUR"}))
	ada := addContact(t, contacts, AddContactInput{FirstName: "Ada"})

	_, out, err := h.AddOpportunity(ctx, nil, AddOpportunityInput{ContactID: ada.ID, Name: "Deal", ExpectedCloseDate: "2026-06-30"})
	require.NoError(t, err)
	assert.Equal(t, "Lead", out.Stage)
	assert.Equal(t, "EUR", out.Currency)
	assert.Equal(t, "Ada", out.ContactName)
	assert.Equal(t, "2026-06-30", out.ExpectedCloseDate)

	_, _, err = h.AddOpportunity(ctx, nil, AddOpportunityInput{ContactID: ada.ID, Name: "Neg", Value: floatPtr(-1)})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, _, err = h.AddOpportunity(ctx, nil, AddOpportunityInput{ContactID: uuid.NewString(), Name: "Orphan"})
	assert.ErrorContains(t, err, "contact not found")
}

func TestInteractionsOverdueFlags(t *testing.T) {
	store, user := setupTestStore(t)
	contacts := NewContactHandlers(store, user)
	h := NewInteractionHandlers(store, user)
	h.now = func() time.Time { return testNow }
	ctx := context.Background()

	ada := addContact(t, contacts, AddContactInput{FirstName: "Ada"})

	_, _, err := h.LogInteraction(ctx, nil, LogInteractionInput{
		ContactID: ada.ID, Type: "Call", Summary: "Renewal", OccurredAt: "2026-03-01T10:00:00Z",
		FollowUpNeeded: true, FollowUpDate: "2026-03-10",
	})
	require.NoError(t, err)
	_, _, err = h.LogInteraction(ctx, nil, LogInteractionInput{
		ContactID: ada.ID, Type: "Email", Summary: "Sent deck", OccurredAt: "2026-03-05T10:00:00Z",
		FollowUpNeeded: true, FollowUpDate: "2026-03-20",
	})
	require.NoError(t, err)

	_, out, err := h.ListInteractions(ctx, nil, ListInteractionsInput{})
	require.NoError(t, err)
	require.Len(t, out.Interactions, 2)
	assert.Equal(t, "Sent deck", out.Interactions[0].Summary)
	assert.False(t, out.Interactions[0].Overdue)
	assert.True(t, out.Interactions[1].Overdue)
	assert.Equal(t, 1, out.OverdueCount)

	_, out, err = h.ListInteractions(ctx, nil, ListInteractionsInput{OverdueOnly: true})
	require.NoError(t, err)
	require.Len(t, out.Interactions, 1)
	assert.Equal(t, "Renewal", out.Interactions[0].Summary)

	_, out, err = h.ListInteractions(ctx, nil, ListInteractionsInput{Type: "Email"})
	require.NoError(t, err)
	assert.Len(t, out.Interactions, 1)
}

func TestLogInteractionValidation(t *testing.T) {
	store, user := setupTestStore(t)
	contacts := NewContactHandlers(store, user)
	h := NewInteractionHandlers(store, user)
	ctx := context.Background()
	ada := addContact(t, contacts, AddContactInput{FirstName: "Ada"})

	_, _, err := h.LogInteraction(ctx, nil, LogInteractionInput{ContactID: ada.ID, Summary: "x", FollowUpNeeded: true})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, _, err = h.LogInteraction(ctx, nil, LogInteractionInput{ContactID: ada.ID, Summary: "x", Type: "Fax"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, _, err = h.LogInteraction(ctx, nil, LogInteractionInput{ContactID: ada.ID, Summary: "x", OpportunityID: uuid.NewString()})
	assert.ErrorContains(t, err, "not found")

	_, out, err := h.LogInteraction(ctx, nil, LogInteractionInput{ContactID: ada.ID, Summary: "Quick note"})
	require.NoError(t, err)
	assert.Equal(t, "Note", out.Type)
}

func TestQueryCRM(t *testing.T) {
	store, user := setupTestStore(t)
	contacts := NewContactHandlers(store, user)
	opps := NewOpportunityHandlers(store, user)
	h := NewQueryHandlers(store, user)
	ctx := context.Background()

	ada := addContact(t, contacts, AddContactInput{FirstName: "Ada", Company: "Acme"})
	addContact(t, contacts, AddContactInput{FirstName: "Bob", Company: "Beta"})
	_, _, err := opps.AddOpportunity(ctx, nil, AddOpportunityInput{ContactID: ada.ID, Name: "Small", Value: floatPtr(100)})
	require.NoError(t, err)
	_, _, err = opps.AddOpportunity(ctx, nil, AddOpportunityInput{ContactID: ada.ID, Name: "Large", Value: floatPtr(10000)})
	require.NoError(t, err)

	_, out, err := h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "contact", Filters: map[string]interface{}{"company": "beta"}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)

	_, out, err = h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "opportunity", Filters: map[string]interface{}{"min_value": float64(1000)}})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	assert.Equal(t, "Large", out.Results[0].(OpportunityOutput).Name)

	_, out, err = h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "interaction"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
	assert.NotNil(t, out.Results)

	_, _, err = h.QueryCRM(ctx, nil, QueryCRMInput{EntityType: "company"})
	assert.ErrorContains(t, err, "invalid entity_type")
}

func TestGenerateGraph(t *testing.T) {
	store, user := setupTestStore(t)
	contacts := NewContactHandlers(store, user)
	opps := NewOpportunityHandlers(store, user)
	h := NewVizHandlers(store, user)
	ctx := context.Background()

	ada := addContact(t, contacts, AddContactInput{FirstName: "Ada", Company: "Acme"})
	_, _, err := opps.AddOpportunity(ctx, nil, AddOpportunityInput{ContactID: ada.ID, Name: "Deal", Stage: "Proposal", Value: floatPtr(2500)})
	require.NoError(t, err)

	_, out, err := h.GenerateGraph(ctx, nil, GenerateGraphInput{Type: "pipeline"})
	require.NoError(t, err)
	assert.Contains(t, out.DOTSource, "Proposal")
	assert.Equal(t, len(models.Stages), out.NodeCount)
	assert.Equal(t, 5, out.EdgeCount)

	_, out, err = h.GenerateGraph(ctx, nil, GenerateGraphInput{Type: "contact", EntityID: ada.ID})
	require.NoError(t, err)
	assert.Contains(t, out.DOTSource, "Deal")

	_, _, err = h.GenerateGraph(ctx, nil, GenerateGraphInput{Type: "contact"})
	assert.Error(t, err)

	_, _, err = h.GenerateGraph(ctx, nil, GenerateGraphInput{Type: "org"})
	assert.ErrorContains(t, err, "unknown graph type")
}

func TestGetDashboard(t *testing.T) {
	store, user := setupTestStore(t)
	addContact(t, NewContactHandlers(store, user), AddContactInput{FirstName: "Ada"})

	h := NewVizHandlers(store, user)
	_, out, err := h.GetDashboard(context.Background(), nil, GetDashboardInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalContacts)
	assert.Contains(t, out.Text, "PCRM DASHBOARD")
}

func TestReadResource(t *testing.T) {
	store, user := setupTestStore(t)
	ada := addContact(t, NewContactHandlers(store, user), AddContactInput{FirstName: "Ada"})
	h := NewResourceHandlers(store, user)
	ctx := context.Background()

	read := func(uri string) (*mcp.ReadResourceResult, error) {
		return h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	}

	result, err := read("crm://contacts")
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	var contacts []models.Contact
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &contacts))
	assert.Len(t, contacts, 1)

	result, err = read("crm://contacts/" + ada.ID)
	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, `"opportunities"`)

	result, err = read("crm://pipeline")
	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, `"won_count": 0`)

	_, err = read("crm://companies")
	assert.Error(t, err)

	_, err = read("http://contacts")
	assert.ErrorContains(t, err, "invalid URI scheme")
}

func TestGetPrompt(t *testing.T) {
	store, user := setupTestStore(t)
	ada := addContact(t, NewContactHandlers(store, user), AddContactInput{FirstName: "Ada", Company: "Acme"})
	h := NewPromptHandlers(store, user)
	ctx := context.Background()

	get := func(name string, args map[string]string) (*mcp.GetPromptResult, error) {
		return h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name, Arguments: args}})
	}

	result, err := get("contact-summary", map[string]string{"contact_id": ada.ID})
	require.NoError(t, err)
	require.Len(t, result.Messages, 1)
	text := result.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Company: Acme")

	_, err = get("contact-summary", nil)
	assert.ErrorContains(t, err, "contact_id is required")

	result, err = get("follow-up-suggestions", nil)
	require.NoError(t, err)
	assert.Contains(t, result.Messages[0].Content.(*mcp.TextContent).Text, "No follow-ups are scheduled")

	_, err = get("pipeline-review", nil)
	require.NoError(t, err)

	_, err = get("nope", nil)
	assert.Error(t, err)

	for _, p := range h.Prompts() {
		_, err := get(p.Name, map[string]string{"contact_id": ada.ID})
		assert.NoError(t, err, p.Name)
	}
}

func TestNewServer(t *testing.T) {
	store, user := setupTestStore(t)
	assert.NotNil(t, NewServer(store, user, log.New(io.Discard), "test"))
}
