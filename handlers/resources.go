// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only access to contacts, opportunities, interactions, and the pipeline via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/listview"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "crm://"

type ResourceHandlers struct {
	store  Store
	userID uuid.UUID
}

func NewResourceHandlers(store Store, userID uuid.UUID) *ResourceHandlers {
	return &ResourceHandlers{store: store, userID: userID}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")

	switch parts[0] {
	case "contacts":
		if len(parts) == 1 {
			return h.readAllContacts(ctx, uri)
		}
		return h.readContact(ctx, uri, parts[1])

	case "opportunities":
		return h.readAllOpportunities(ctx, uri)

	case "interactions":
		return h.readAllInteractions(ctx, uri)

	case "pipeline":
		return h.readPipeline(ctx, uri)

	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
}

func (h *ResourceHandlers) readAllContacts(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	contacts, err := h.store.ListContacts(ctx, h.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	return jsonResource(uri, contacts)
}

func (h *ResourceHandlers) readContact(ctx context.Context, uri, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid contact ID: %w", err)
	}

	contact, err := h.store.GetContact(ctx, h.userID, id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	opps, err := h.store.ListOpportunitiesForContact(ctx, h.userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact opportunities: %w", err)
	}
	interactions, err := h.store.ListInteractionsForContact(ctx, h.userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact interactions: %w", err)
	}

	return jsonResource(uri, map[string]interface{}{
		"contact":       contact,
		"opportunities": opps,
		"interactions":  interactions,
	})
}

func (h *ResourceHandlers) readAllOpportunities(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	opps, err := h.store.ListOpportunities(ctx, h.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunities: %w", err)
	}
	return jsonResource(uri, opps)
}

func (h *ResourceHandlers) readAllInteractions(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	interactions, err := h.store.ListInteractions(ctx, h.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}
	return jsonResource(uri, interactions)
}

func (h *ResourceHandlers) readPipeline(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	opps, err := h.store.ListOpportunities(ctx, h.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunities: %w", err)
	}

	view := listview.Opportunities(opps, "", listview.All)
	stages := make([]StageOutput, 0, len(opps))
	for _, s := range listview.ByStage(opps) {
		stages = append(stages, StageOutput{Stage: string(s.Stage), Count: s.Count, Value: s.Value})
	}

	return jsonResource(uri, map[string]interface{}{
		"stages":       stages,
		"total_value":  view.TotalValue,
		"won_count":    view.WonCount,
		"active_count": view.ActiveCount,
	})
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
