package viz

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/db"
	"github.com/harperreed/pcrm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func setupTestGenerator(t *testing.T) (*GraphGenerator, *db.Store, uuid.UUID) {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	store := db.NewStore(database)
	userID := uuid.New()
	return NewGraphGenerator(store, userID), store, userID
}

func TestPipelineGraph(t *testing.T) {
	opps := []models.Opportunity{
		{ID: uuid.New(), Name: "Acme", Stage: models.StageProposal, Value: floatPtr(5000)},
		{ID: uuid.New(), Name: "Beta", Stage: models.StageWon},
	}

	out, err := PipelineGraph(context.Background(), opps, "USD")
	require.NoError(t, err)
	for _, s := range models.Stages {
		assert.Contains(t, out, string(s))
	}
	assert.Contains(t, out, "$5,000")
}

func TestGeneratorGraphs(t *testing.T) {
	gen, store, userID := setupTestGenerator(t)
	ctx := context.Background()

	contact := &models.Contact{FirstName: "Ada", LastName: "Lovelace", Company: "Analytical Engines"}
	require.NoError(t, store.CreateContact(ctx, userID, contact))
	opp := &models.Opportunity{ContactID: contact.ID, Name: "Difference Engine", Stage: models.StageLead}
	require.NoError(t, store.CreateOpportunity(ctx, userID, opp))
	require.NoError(t, store.CreateInteraction(ctx, userID, &models.Interaction{
		ContactID: contact.ID, OpportunityID: &opp.ID, Type: models.InteractionCall,
		OccurredAt: time.Now(), Summary: "Intro",
	}))

	out, err := gen.GenerateContactGraph(ctx, contact.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "Difference Engine")
	assert.Contains(t, out, "1 interactions")

	out, err = gen.GenerateCompleteGraph(ctx)
	require.NoError(t, err)
	assert.Contains(t, out, "Analytical Engines")
	assert.Contains(t, out, "Difference Engine")

	out, err = gen.GeneratePipelineGraph(ctx, "EUR")
	require.NoError(t, err)
	assert.Contains(t, out, "Lead")

	_, err = gen.GenerateContactGraph(ctx, uuid.New())
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestDashboardStats(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)
	contact := models.Contact{ID: uuid.New(), FirstName: "Ada"}

	opps := []models.Opportunity{
		{Name: "Acme", Stage: models.StageProposal, Value: floatPtr(5000), UpdatedAt: now.AddDate(0, 0, -30)},
		{Name: "Beta", Stage: models.StageWon, UpdatedAt: now.AddDate(0, 0, -30)},
		{Name: "Gamma", Stage: models.StageLead, UpdatedAt: now},
	}
	interactions := []models.Interaction{
		{Summary: "late", FollowUpNeeded: true, FollowUpDate: &yesterday, Contact: models.Embed(contact)},
		{Summary: "upcoming", FollowUpNeeded: true, FollowUpDate: &tomorrow},
		{Summary: "orphan", FollowUpNeeded: true, FollowUpDate: &yesterday},
	}

	stats := BuildDashboardStats([]models.Contact{contact}, opps, interactions, now)
	assert.Equal(t, 1, stats.TotalContacts)
	assert.Equal(t, 3, stats.TotalOpportunities)
	assert.Equal(t, 2, stats.ActiveCount)
	assert.Equal(t, 1, stats.WonCount)
	require.Len(t, stats.OverdueFollowUps, 2)
	assert.Equal(t, "Ada", stats.OverdueFollowUps[0].ContactName)
	assert.Equal(t, models.UnknownContact, stats.OverdueFollowUps[1].ContactName)
	require.Len(t, stats.StaleOpportunities, 1)
	assert.Equal(t, "Acme", stats.StaleOpportunities[0].Name)
	assert.Equal(t, 30, stats.StaleOpportunities[0].DaysSince)

	out := RenderDashboard(stats, "USD")
	assert.Contains(t, out, "PIPELINE OVERVIEW")
	assert.Contains(t, out, "$5,000")
	assert.Contains(t, out, "follow up with Ada (due Mar 14, 2026): late")
	assert.Contains(t, out, "1 opportunities - stale")
}
