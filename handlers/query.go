// ABOUTME: Universal query tool handler
// ABOUTME: Implements flexible filtering across contacts, opportunities, and interactions
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

type QueryHandlers struct {
	store  Store
	userID uuid.UUID
	now    func() time.Time
}

func NewQueryHandlers(store Store, userID uuid.UUID) *QueryHandlers {
	return &QueryHandlers{store: store, userID: userID, now: time.Now}
}

type QueryCRMInput struct {
	EntityType string                 `json:"entity_type" jsonschema:"Type of entity to query (contact, opportunity, interaction)"`
	Query      string                 `json:"query,omitempty" jsonschema:"Case-insensitive search text"`
	Filters    map[string]interface{} `json:"filters,omitempty" jsonschema:"Additional filters: company, contact_id, stage, min_value, max_value, type, follow_up_needed"`
	Limit      int                    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type QueryCRMOutput struct {
	EntityType string        `json:"entity_type"`
	Results    []interface{} `json:"results"`
	Count      int           `json:"count"`
}

func (h *QueryHandlers) QueryCRM(ctx context.Context, _ *mcp.CallToolRequest, input QueryCRMInput) (*mcp.CallToolResult, QueryCRMOutput, error) {
	if input.Limit == 0 {
		input.Limit = 10
	}

	var results []interface{}
	var err error
	switch input.EntityType {
	case "contact":
		results, err = h.queryContacts(ctx, input)
	case "opportunity":
		results, err = h.queryOpportunities(ctx, input)
	case "interaction":
		results, err = h.queryInteractions(ctx, input)
	default:
		return nil, QueryCRMOutput{}, fmt.Errorf("invalid entity_type: %s (valid: contact, opportunity, interaction)", input.EntityType)
	}
	if err != nil {
		return nil, QueryCRMOutput{}, err
	}

	results = clip(results, input.Limit)
	if results == nil {
		results = []interface{}{}
	}
	return nil, QueryCRMOutput{EntityType: input.EntityType, Results: results, Count: len(results)}, nil
}

func (h *QueryHandlers) queryContacts(ctx context.Context, input QueryCRMInput) ([]interface{}, error) {
	contacts, err := h.store.ListContacts(ctx, h.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts: %w", err)
	}

	company := strings.ToLower(stringFilter(input.Filters, "company"))

	var results []interface{}
	for _, c := range listview.Contacts(contacts, input.Query).Visible {
		if company != "" && !strings.Contains(strings.ToLower(c.Company), company) {
			continue
		}
		results = append(results, contactToOutput(&c))
	}
	return results, nil
}

func (h *QueryHandlers) queryOpportunities(ctx context.Context, input QueryCRMInput) ([]interface{}, error) {
	contactID, err := idFilter(input.Filters, "contact_id")
	if err != nil {
		return nil, err
	}
	stage := stringFilter(input.Filters, "stage")
	if stage != "" && !models.Stage(stage).Valid() {
		return nil, fmt.Errorf("invalid stage: %s", stage)
	}
	minValue, hasMin := numberFilter(input.Filters, "min_value")
	maxValue, hasMax := numberFilter(input.Filters, "max_value")

	opps, err := h.store.ListOpportunities(ctx, h.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find opportunities: %w", err)
	}

	var results []interface{}
	for _, o := range listview.Opportunities(opps, input.Query, stage).Visible {
		if contactID != uuid.Nil && o.ContactID != contactID {
			continue
		}
		var value float64
		if o.Value != nil {
			value = *o.Value
		}
		if (hasMin && value < minValue) || (hasMax && value > maxValue) {
			continue
		}
		results = append(results, opportunityToOutput(&o))
	}
	return results, nil
}

func (h *QueryHandlers) queryInteractions(ctx context.Context, input QueryCRMInput) ([]interface{}, error) {
	contactID, err := idFilter(input.Filters, "contact_id")
	if err != nil {
		return nil, err
	}
	kind := stringFilter(input.Filters, "type")
	if kind != "" && !models.InteractionType(kind).Valid() {
		return nil, fmt.Errorf("invalid type: %s", kind)
	}
	followUp, hasFollowUp := input.Filters["follow_up_needed"].(bool)

	interactions, err := h.store.ListInteractions(ctx, h.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find interactions: %w", err)
	}

	now := h.now()
	var results []interface{}
	for _, it := range listview.Interactions(interactions, input.Query, kind).Visible {
		if contactID != uuid.Nil && it.ContactID != contactID {
			continue
		}
		if hasFollowUp && it.FollowUpNeeded != followUp {
			continue
		}
		results = append(results, interactionToOutput(&it, now))
	}
	return results, nil
}

func stringFilter(filters map[string]interface{}, key string) string {
	s, _ := filters[key].(string)
	return strings.TrimSpace(s)
}

func numberFilter(filters map[string]interface{}, key string) (float64, bool) {
	n, ok := filters[key].(float64)
	return n, ok
}

func idFilter(filters map[string]interface{}, key string) (uuid.UUID, error) {
	raw := stringFilter(filters, key)
	if raw == "" {
		return uuid.Nil, nil
	}
	return parseID(key, raw)
}
