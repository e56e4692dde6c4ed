// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_graph and get_dashboard tools for agents
package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	store  Store
	userID uuid.UUID
	now    func() time.Time
}

func NewVizHandlers(store Store, userID uuid.UUID) *VizHandlers {
	return &VizHandlers{store: store, userID: userID, now: time.Now}
}

type GenerateGraphInput struct {
	Type     string `json:"type" jsonschema:"Graph type: pipeline, contact, or complete"`
	EntityID string `json:"entity_id,omitempty" jsonschema:"Contact UUID (required for contact graphs)"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, _ *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	if input.Type == "" {
		return nil, GenerateGraphOutput{}, fmt.Errorf("type is required")
	}

	generator := viz.NewGraphGenerator(h.store, h.userID)
	var dot string
	var err error

	switch input.Type {
	case "pipeline":
		dot, err = generator.GeneratePipelineGraph(ctx, h.currency(ctx))

	case "contact":
		var id uuid.UUID
		id, err = parseID("entity_id", input.EntityID)
		if err != nil {
			return nil, GenerateGraphOutput{}, err
		}
		dot, err = generator.GenerateContactGraph(ctx, id)
		if err != nil {
			return nil, GenerateGraphOutput{}, notFound("contact", input.EntityID, err)
		}

	case "complete":
		dot, err = generator.GenerateCompleteGraph(ctx)

	default:
		return nil, GenerateGraphOutput{}, fmt.Errorf("unknown graph type: %s (valid types: pipeline, contact, complete)", input.Type)
	}

	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	nodes, edges := countStatements(dot)
	return nil, GenerateGraphOutput{
		GraphType: input.Type,
		DOTSource: dot,
		NodeCount: nodes,
		EdgeCount: edges,
	}, nil
}

var (
	nodeStatement = regexp.MustCompile(`^"?[\w-]+"?\s+\[`)
	edgeStatement = regexp.MustCompile(`^"?[\w-]+"?\s+->`)
)

// countStatements counts node and edge statements in rendered DOT text.
func countStatements(dot string) (nodes, edges int) {
	for _, line := range strings.Split(dot, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "graph ["), strings.HasPrefix(line, "node ["), strings.HasPrefix(line, "edge ["):
		case edgeStatement.MatchString(line):
			edges++
		case nodeStatement.MatchString(line):
			nodes++
		}
	}
	return nodes, edges
}

type GetDashboardInput struct{}

type GetDashboardOutput struct {
	Text               string `json:"text"`
	TotalContacts      int    `json:"total_contacts"`
	TotalOpportunities int    `json:"total_opportunities"`
	TotalInteractions  int    `json:"total_interactions"`
	ActiveCount        int    `json:"active_count"`
	WonCount           int    `json:"won_count"`
	OverdueFollowUps   int    `json:"overdue_follow_ups"`
	StaleOpportunities int    `json:"stale_opportunities"`
}

func (h *VizHandlers) GetDashboard(ctx context.Context, _ *mcp.CallToolRequest, _ GetDashboardInput) (*mcp.CallToolResult, GetDashboardOutput, error) {
	stats, err := viz.NewGraphGenerator(h.store, h.userID).GenerateDashboardStats(ctx, h.now())
	if err != nil {
		return nil, GetDashboardOutput{}, fmt.Errorf("failed to build dashboard: %w", err)
	}
	return nil, GetDashboardOutput{
		Text:               viz.RenderDashboard(stats, h.currency(ctx)),
		TotalContacts:      stats.TotalContacts,
		TotalOpportunities: stats.TotalOpportunities,
		TotalInteractions:  stats.TotalInteractions,
		ActiveCount:        stats.ActiveCount,
		WonCount:           stats.WonCount,
		OverdueFollowUps:   len(stats.OverdueFollowUps),
		StaleOpportunities: len(stats.StaleOpportunities),
	}, nil
}

func (h *VizHandlers) currency(ctx context.Context) string {
	profile, err := h.store.GetProfile(ctx, h.userID)
	if err != nil {
		return ""
	}
	return profile.CurrencyCode()
}
