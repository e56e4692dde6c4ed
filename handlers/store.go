// ABOUTME: Store interface and shared helpers for the MCP tool handlers
// ABOUTME: Parses ids and dates from tool input and maps records to tool output
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/models"
)

// Store is the subset of db.Store the MCP tools read and write.
type Store interface {
	ListContacts(ctx context.Context, userID uuid.UUID) ([]models.Contact, error)
	GetContact(ctx context.Context, userID, id uuid.UUID) (*models.Contact, error)
	CreateContact(ctx context.Context, userID uuid.UUID, c *models.Contact) error
	UpdateContact(ctx context.Context, userID uuid.UUID, c *models.Contact) error
	DeleteContact(ctx context.Context, userID, id uuid.UUID) error

	ListOpportunities(ctx context.Context, userID uuid.UUID) ([]models.Opportunity, error)
	ListOpportunitiesForContact(ctx context.Context, userID, contactID uuid.UUID) ([]models.Opportunity, error)
	GetOpportunity(ctx context.Context, userID, id uuid.UUID) (*models.Opportunity, error)
	CreateOpportunity(ctx context.Context, userID uuid.UUID, o *models.Opportunity) error

	ListInteractions(ctx context.Context, userID uuid.UUID) ([]models.Interaction, error)
	ListInteractionsForContact(ctx context.Context, userID, contactID uuid.UUID) ([]models.Interaction, error)
	CreateInteraction(ctx context.Context, userID uuid.UUID, it *models.Interaction) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

const dateLayout = "2006-01-02"

func parseID(name, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

func parseDate(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s (want YYYY-MM-DD): %w", name, err)
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func limitOf(n int) int {
	if n <= 0 {
		return 50
	}
	return n
}

type ContactOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
	RoleTitle   string `json:"role_title,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Source      string `json:"source,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	Website     string `json:"website,omitempty"`
	Birthday    string `json:"birthday,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func contactToOutput(c *models.Contact) ContactOutput {
	return ContactOutput{
		ID:          c.ID.String(),
		Name:        c.DisplayName(),
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		Company:     c.Company,
		RoleTitle:   c.RoleTitle,
		Notes:       c.Notes,
		Source:      c.Source,
		LinkedInURL: c.LinkedInURL,
		Website:     c.Website,
		Birthday:    formatDate(c.Birthday),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}

type OpportunityOutput struct {
	ID                string   `json:"id"`
	ContactID         string   `json:"contact_id"`
	ContactName       string   `json:"contact_name"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Value             *float64 `json:"value,omitempty"`
	Currency          string   `json:"currency"`
	Stage             string   `json:"stage"`
	Priority          *int     `json:"priority,omitempty"`
	ExpectedCloseDate string   `json:"expected_close_date,omitempty"`
	CreatedAt         string   `json:"created_at"`
}

func opportunityToOutput(o *models.Opportunity) OpportunityOutput {
	return OpportunityOutput{
		ID:                o.ID.String(),
		ContactID:         o.ContactID.String(),
		ContactName:       models.RelatedContactName(o.Contact),
		Name:              o.Name,
		Description:       o.Description,
		Value:             o.Value,
		Currency:          o.CurrencyCode(),
		Stage:             string(o.Stage),
		Priority:          o.Priority,
		ExpectedCloseDate: formatDate(o.ExpectedCloseDate),
		CreatedAt:         o.CreatedAt.Format(time.RFC3339),
	}
}

type InteractionOutput struct {
	ID              string `json:"id"`
	ContactID       string `json:"contact_id"`
	ContactName     string `json:"contact_name"`
	OpportunityID   string `json:"opportunity_id,omitempty"`
	OpportunityName string `json:"opportunity_name,omitempty"`
	Type            string `json:"type"`
	OccurredAt      string `json:"date_of_interaction"`
	Summary         string `json:"summary"`
	FollowUpNeeded  bool   `json:"follow_up_needed"`
	FollowUpDate    string `json:"follow_up_date,omitempty"`
	Overdue         bool   `json:"overdue"`
}

func interactionToOutput(it *models.Interaction, now time.Time) InteractionOutput {
	out := InteractionOutput{
		ID:             it.ID.String(),
		ContactID:      it.ContactID.String(),
		ContactName:    models.RelatedContactName(it.Contact),
		Type:           string(it.Type),
		OccurredAt:     it.OccurredAt.Format(time.RFC3339),
		Summary:        it.Summary,
		FollowUpNeeded: it.FollowUpNeeded,
		FollowUpDate:   formatDate(it.FollowUpDate),
		Overdue:        it.IsOverdue(now),
	}
	if it.OpportunityID != nil {
		out.OpportunityID = it.OpportunityID.String()
	}
	if o, ok := it.Opportunity.Get(); ok {
		out.OpportunityName = o.Name
	}
	return out
}

// clip keeps the first n items.
func clip[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
