// ABOUTME: Interaction MCP tool handlers
// ABOUTME: Implements list_interactions with overdue follow-up flags and log_interaction
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type InteractionHandlers struct {
	store  Store
	userID uuid.UUID
	now    func() time.Time
}

func NewInteractionHandlers(store Store, userID uuid.UUID) *InteractionHandlers {
	return &InteractionHandlers{store: store, userID: userID, now: time.Now}
}

type ListInteractionsInput struct {
	Query       string `json:"query,omitempty" jsonschema:"Case-insensitive search over summary and contact"`
	Type        string `json:"type,omitempty" jsonschema:"Type filter: all, Email, Call, Meeting, Note, LinkedIn, or Other"`
	OverdueOnly bool   `json:"overdue_only,omitempty" jsonschema:"Only return interactions with an overdue follow-up"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ListInteractionsOutput struct {
	Interactions []InteractionOutput `json:"interactions"`
	Total        int                 `json:"total"`
	Matched      int                 `json:"matched"`
	OverdueCount int                 `json:"overdue_count"`
}

func (h *InteractionHandlers) ListInteractions(ctx context.Context, _ *mcp.CallToolRequest, input ListInteractionsInput) (*mcp.CallToolResult, ListInteractionsOutput, error) {
	kind := strings.TrimSpace(input.Type)
	if kind != "" && kind != listview.All && !models.InteractionType(kind).Valid() {
		return nil, ListInteractionsOutput{}, fmt.Errorf("invalid type: %s", kind)
	}

	interactions, err := h.store.ListInteractions(ctx, h.userID)
	if err != nil {
		return nil, ListInteractionsOutput{}, fmt.Errorf("failed to list interactions: %w", err)
	}

	view := listview.Interactions(interactions, input.Query, kind)
	now := h.now()

	out := ListInteractionsOutput{Total: view.Total}
	matched := make([]InteractionOutput, 0, len(view.Visible))
	for i := range view.Visible {
		item := interactionToOutput(&view.Visible[i], now)
		if item.Overdue {
			out.OverdueCount++
		} else if input.OverdueOnly {
			continue
		}
		matched = append(matched, item)
	}
	out.Matched = len(matched)
	out.Interactions = clip(matched, limitOf(input.Limit))

	return nil, out, nil
}

type LogInteractionInput struct {
	ContactID      string `json:"contact_id" jsonschema:"ID of the contact (required)"`
	OpportunityID  string `json:"opportunity_id,omitempty" jsonschema:"ID of a related opportunity"`
	Type           string `json:"type,omitempty" jsonschema:"Interaction type (default Note)"`
	Summary        string `json:"summary" jsonschema:"What happened (required)"`
	OccurredAt     string `json:"date_of_interaction,omitempty" jsonschema:"When it happened, RFC3339 (default now)"`
	FollowUpNeeded bool   `json:"follow_up_needed,omitempty" jsonschema:"Whether a follow-up is needed"`
	FollowUpDate   string `json:"follow_up_date,omitempty" jsonschema:"Follow-up date as YYYY-MM-DD (required when follow_up_needed)"`
}

func (h *InteractionHandlers) LogInteraction(ctx context.Context, _ *mcp.CallToolRequest, input LogInteractionInput) (*mcp.CallToolResult, InteractionOutput, error) {
	contactID, err := parseID("contact_id", input.ContactID)
	if err != nil {
		return nil, InteractionOutput{}, err
	}

	var oppID *uuid.UUID
	if raw := strings.TrimSpace(input.OpportunityID); raw != "" {
		id, err := parseID("opportunity_id", raw)
		if err != nil {
			return nil, InteractionOutput{}, err
		}
		oppID = &id
	}

	occurred := h.now()
	if raw := strings.TrimSpace(input.OccurredAt); raw != "" {
		occurred, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, InteractionOutput{}, fmt.Errorf("invalid date_of_interaction (want RFC3339): %w", err)
		}
	}

	followUp, err := parseDate("follow_up_date", strings.TrimSpace(input.FollowUpDate))
	if err != nil {
		return nil, InteractionOutput{}, err
	}

	kind := models.InteractionType(strings.TrimSpace(input.Type))
	if kind == "" {
		kind = models.InteractionNote
	}

	it := &models.Interaction{
		ContactID:      contactID,
		OpportunityID:  oppID,
		Type:           kind,
		OccurredAt:     occurred,
		Summary:        strings.TrimSpace(input.Summary),
		FollowUpNeeded: input.FollowUpNeeded,
		FollowUpDate:   followUp,
	}
	if err := it.Validate(); err != nil {
		return nil, InteractionOutput{}, err
	}

	if err := h.store.CreateInteraction(ctx, h.userID, it); err != nil {
		return nil, InteractionOutput{}, notFound("contact or opportunity", input.ContactID, err)
	}

	return nil, interactionToOutput(it, h.now()), nil
}
