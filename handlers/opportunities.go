// ABOUTME: Opportunity MCP tool handlers
// ABOUTME: Implements list_opportunities with pipeline aggregates and add_opportunity
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type OpportunityHandlers struct {
	store  Store
	userID uuid.UUID
}

func NewOpportunityHandlers(store Store, userID uuid.UUID) *OpportunityHandlers {
	return &OpportunityHandlers{store: store, userID: userID}
}

type ListOpportunitiesInput struct {
	Query string `json:"query,omitempty" jsonschema:"Case-insensitive search over name and contact"`
	Stage string `json:"stage,omitempty" jsonschema:"Stage filter: all, Lead, Contacted, Proposal, Negotiation, Won, or Lost"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type StageOutput struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

type ListOpportunitiesOutput struct {
	Opportunities []OpportunityOutput `json:"opportunities"`
	Total         int                 `json:"total"`
	Matched       int                 `json:"matched"`
	TotalValue    float64             `json:"total_value"`
	WonCount      int                 `json:"won_count"`
	ActiveCount   int                 `json:"active_count"`
	ByStage       []StageOutput       `json:"by_stage"`
}

// ListOpportunities reports aggregates over every matching opportunity,
// not just the ones returned within the limit.
func (h *OpportunityHandlers) ListOpportunities(ctx context.Context, _ *mcp.CallToolRequest, input ListOpportunitiesInput) (*mcp.CallToolResult, ListOpportunitiesOutput, error) {
	stage := strings.TrimSpace(input.Stage)
	if stage != "" && stage != listview.All && !models.Stage(stage).Valid() {
		return nil, ListOpportunitiesOutput{}, fmt.Errorf("invalid stage: %s", stage)
	}

	opps, err := h.store.ListOpportunities(ctx, h.userID)
	if err != nil {
		return nil, ListOpportunitiesOutput{}, fmt.Errorf("failed to list opportunities: %w", err)
	}

	view := listview.Opportunities(opps, input.Query, stage)
	visible := clip(view.Visible, limitOf(input.Limit))

	out := ListOpportunitiesOutput{
		Opportunities: make([]OpportunityOutput, len(visible)),
		Total:         view.Total,
		Matched:       len(view.Visible),
		TotalValue:    view.TotalValue,
		WonCount:      view.WonCount,
		ActiveCount:   view.ActiveCount,
	}
	for i := range visible {
		out.Opportunities[i] = opportunityToOutput(&visible[i])
	}
	for _, s := range listview.ByStage(view.Visible) {
		out.ByStage = append(out.ByStage, StageOutput{Stage: string(s.Stage), Count: s.Count, Value: s.Value})
	}

	return nil, out, nil
}

type AddOpportunityInput struct {
	ContactID         string   `json:"contact_id" jsonschema:"ID of the contact this opportunity belongs to (required)"`
	Name              string   `json:"name" jsonschema:"Opportunity name (required)"`
	Description       string   `json:"description,omitempty" jsonschema:"Opportunity description"`
	Value             *float64 `json:"value,omitempty" jsonschema:"Monetary value (must be positive)"`
	Currency          string   `json:"currency,omitempty" jsonschema:"ISO 4217 currency code (defaults to the profile currency)"`
	Stage             string   `json:"stage,omitempty" jsonschema:"Pipeline stage (default Lead)"`
	Priority          *int     `json:"priority,omitempty" jsonschema:"Priority from 1 to 5"`
	ExpectedCloseDate string   `json:"expected_close_date,omitempty" jsonschema:"Expected close date as YYYY-MM-DD"`
}

func (h *OpportunityHandlers) AddOpportunity(ctx context.Context, _ *mcp.CallToolRequest, input AddOpportunityInput) (*mcp.CallToolResult, OpportunityOutput, error) {
	contactID, err := parseID("contact_id", input.ContactID)
	if err != nil {
		return nil, OpportunityOutput{}, err
	}
	closeDate, err := parseDate("expected_close_date", strings.TrimSpace(input.ExpectedCloseDate))
	if err != nil {
		return nil, OpportunityOutput{}, err
	}

	stage := models.Stage(strings.TrimSpace(input.Stage))
	if stage == "" {
		stage = models.StageLead
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		if profile, err := h.store.GetProfile(ctx, h.userID); err == nil {
			currency = profile.CurrencyCode()
		}
	}

	opp := &models.Opportunity{
		ContactID:         contactID,
		Name:              strings.TrimSpace(input.Name),
		Description:       strings.TrimSpace(input.Description),
		Value:             input.Value,
		Currency:          currency,
		Stage:             stage,
		Priority:          input.Priority,
		ExpectedCloseDate: closeDate,
	}
	if err := opp.Validate(); err != nil {
		return nil, OpportunityOutput{}, err
	}

	if err := h.store.CreateOpportunity(ctx, h.userID, opp); err != nil {
		return nil, OpportunityOutput{}, notFound("contact", input.ContactID, err)
	}

	// Re-read so the output carries the embedded contact.
	saved, err := h.store.GetOpportunity(ctx, h.userID, opp.ID)
	if err != nil {
		return nil, opportunityToOutput(opp), nil
	}
	return nil, opportunityToOutput(saved), nil
}
