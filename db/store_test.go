package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func mustContact(t *testing.T, s *Store, user uuid.UUID, first, last, company string) *models.Contact {
	t.Helper()
	c := &models.Contact{FirstName: first, LastName: last, Company: company}
	require.NoError(t, s.CreateContact(context.Background(), user, c))
	return c
}

func TestContactCRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	birthday := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	c := &models.Contact{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Company:   "Analytical",
		Birthday:  &birthday,
	}
	require.NoError(t, s.CreateContact(ctx, user, c))
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, user, c.UserID)

	got, err := s.GetContact(ctx, user, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)
	assert.Equal(t, "ada@example.com", got.Email)
	require.NotNil(t, got.Birthday)
	assert.True(t, birthday.Equal(*got.Birthday))

	got.Company = "Babbage & Co"
	require.NoError(t, s.UpdateContact(ctx, user, got))

	got, err = s.GetContact(ctx, user, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Babbage & Co", got.Company)

	found, err := s.FindContactByEmail(ctx, user, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)

	_, err = s.FindContactByEmail(ctx, user, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContactsAreScopedToUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	c := mustContact(t, s, alice, "Ada", "", "")

	_, err := s.GetContact(ctx, bob, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListContacts(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	c.FirstName = "Mallory"
	assert.ErrorIs(t, s.UpdateContact(ctx, bob, c), ErrNotFound)
	assert.ErrorIs(t, s.DeleteContact(ctx, bob, c.ID), ErrNotFound)
}

func TestListContactsNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	first := mustContact(t, s, user, "First", "", "")
	time.Sleep(2 * time.Millisecond)
	second := mustContact(t, s, user, "Second", "", "")

	list, err := s.ListContacts(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestOpportunityEmbedsContact(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := uuid.New()
	c := mustContact(t, s, user, "Ada", "Lovelace", "Acme")

	o := &models.Opportunity{
		ContactID: c.ID,
		Name:      "Acme renewal",
		Value:     floatPtr(5000),
		Stage:     models.StageProposal,
		Priority:  intPtr(3),
	}
	require.NoError(t, s.CreateOpportunity(ctx, user, o))

	got, err := s.GetOpportunity(ctx, user, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Value)
	assert.Equal(t, 5000.0, *got.Value)
	require.NotNil(t, got.Priority)
	assert.Equal(t, 3, *got.Priority)
	assert.Nil(t, got.ExpectedCloseDate)

	contact, ok := got.Contact.Get()
	require.True(t, ok)
	assert.Equal(t, "Acme", contact.Company)

	list, err := s.ListOpportunitiesForContact(ctx, user, c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOpportunityRequiresOwnedContact(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	c := mustContact(t, s, uuid.New(), "Ada", "", "")

	o := &models.Opportunity{ContactID: c.ID, Name: "Deal", Stage: models.StageLead}
	assert.ErrorIs(t, s.CreateOpportunity(ctx, uuid.New(), o), ErrNotFound)
}

func TestOpportunityStageConstraint(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := uuid.New()
	c := mustContact(t, s, user, "Ada", "", "")

	o := &models.Opportunity{ContactID: c.ID, Name: "Deal", Stage: "Closed"}
	assert.Error(t, s.CreateOpportunity(ctx, user, o))
}

func TestUpdateOpportunity(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := uuid.New()
	c := mustContact(t, s, user, "Ada", "", "")

	o := &models.Opportunity{ContactID: c.ID, Name: "Deal", Stage: models.StageLead}
	require.NoError(t, s.CreateOpportunity(ctx, user, o))

	o.Stage = models.StageWon
	closed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	o.ActualCloseDate = &closed
	require.NoError(t, s.UpdateOpportunity(ctx, user, o))

	got, err := s.GetOpportunity(ctx, user, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageWon, got.Stage)
	require.NotNil(t, got.ActualCloseDate)
	assert.True(t, closed.Equal(*got.ActualCloseDate))
}

func TestInteractionsOrderedByOccurrence(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := uuid.New()
	c := mustContact(t, s, user, "Ada", "", "Acme")

	older := &models.Interaction{
		ContactID:  c.ID,
		Type:       models.InteractionCall,
		OccurredAt: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		Summary:    "Intro call",
	}
	newer := &models.Interaction{
		ContactID:  c.ID,
		Type:       models.InteractionEmail,
		OccurredAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		Summary:    "Sent proposal",
	}
	// Logged out of order on purpose.
	require.NoError(t, s.CreateInteraction(ctx, user, newer))
	require.NoError(t, s.CreateInteraction(ctx, user, older))

	list, err := s.ListInteractions(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	contact, ok := list[0].Contact.Get()
	require.True(t, ok)
	assert.Equal(t, "Acme", contact.Company)
	assert.False(t, list[0].Opportunity.Present())
}

func TestInteractionFollowUpAndOpportunity(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := uuid.New()
	c := mustContact(t, s, user, "Ada", "", "")
	o := &models.Opportunity{ContactID: c.ID, Name: "Deal", Stage: models.StageLead}
	require.NoError(t, s.CreateOpportunity(ctx, user, o))

	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	it := &models.Interaction{
		ContactID:      c.ID,
		OpportunityID:  &o.ID,
		Type:           models.InteractionMeeting,
		OccurredAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Summary:        "Kickoff",
		FollowUpNeeded: true,
		FollowUpDate:   &due,
	}
	require.NoError(t, s.CreateInteraction(ctx, user, it))

	got, err := s.GetInteraction(ctx, user, it.ID)
	require.NoError(t, err)
	assert.True(t, got.FollowUpNeeded)
	require.NotNil(t, got.FollowUpDate)
	assert.True(t, due.Equal(*got.FollowUpDate))
	require.NotNil(t, got.OpportunityID)
	assert.Equal(t, o.ID, *got.OpportunityID)

	opp, ok := got.Opportunity.Get()
	require.True(t, ok)
	assert.Equal(t, "Deal", opp.Name)

	require.NoError(t, s.DeleteOpportunity(ctx, user, o.ID))
	got, err = s.GetInteraction(ctx, user, it.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OpportunityID)
	assert.False(t, got.Opportunity.Present())

	assert.ErrorIs(t, s.DeleteOpportunity(ctx, user, o.ID), ErrNotFound)
}

func TestDeleteContactCascades(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := uuid.New()
	c := mustContact(t, s, user, "Ada", "", "")
	keep := mustContact(t, s, user, "Grace", "", "")

	o := &models.Opportunity{ContactID: c.ID, Name: "Deal", Stage: models.StageLead}
	require.NoError(t, s.CreateOpportunity(ctx, user, o))
	require.NoError(t, s.CreateInteraction(ctx, user, &models.Interaction{
		ContactID: c.ID, OpportunityID: &o.ID, Type: models.InteractionNote,
		OccurredAt: time.Now(), Summary: "note",
	}))
	require.NoError(t, s.CreateInteraction(ctx, user, &models.Interaction{
		ContactID: keep.ID, OpportunityID: &o.ID, Type: models.InteractionNote,
		OccurredAt: time.Now(), Summary: "cross-linked",
	}))

	require.NoError(t, s.DeleteContact(ctx, user, c.ID))

	_, err := s.GetContact(ctx, user, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	opps, err := s.ListOpportunities(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, opps)

	its, err := s.ListInteractions(ctx, user)
	require.NoError(t, err)
	require.Len(t, its, 1)
	assert.Equal(t, "cross-linked", its[0].Summary)
	assert.Nil(t, its[0].OpportunityID)
}

func TestProfileDefaultsAndUpsert(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	p, err := s.GetProfile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCurrency, p.CurrencyCode())
	assert.Equal(t, uuid.Nil, p.ID)

	p.TimeZone = "America/Chicago"
	p.Currency = "EUR"
	require.NoError(t, s.SaveProfile(ctx, user, p))

	p2 := &models.Profile{TimeZone: "Europe/Paris", Currency: "GBP"}
	require.NoError(t, s.SaveProfile(ctx, user, p2))

	got, err := s.GetProfile(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", got.TimeZone)
	assert.Equal(t, "GBP", got.Currency)
	assert.Equal(t, p.ID, got.ID)
}
