// ABOUTME: Opportunity pipeline graph, one node per stage
// ABOUTME: Labels each stage with its count and formatted total value
package viz

import (
	"context"
	"fmt"

	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/pcrm/display"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
)

var stageColors = map[models.Stage]string{
	models.StageLead:        "lightgray",
	models.StageContacted:   "lightblue",
	models.StageProposal:    "khaki",
	models.StageNegotiation: "orange",
	models.StageWon:         "palegreen",
	models.StageLost:        "salmon",
}

// stageFlow lists the edges between stages; both closed stages follow Negotiation.
var stageFlow = [][2]models.Stage{
	{models.StageLead, models.StageContacted},
	{models.StageContacted, models.StageProposal},
	{models.StageProposal, models.StageNegotiation},
	{models.StageNegotiation, models.StageWon},
	{models.StageNegotiation, models.StageLost},
}

// PipelineGraph renders the given opportunities grouped by stage. Values are
// formatted in currency.
func PipelineGraph(ctx context.Context, opportunities []models.Opportunity, currency string) (string, error) {
	summaries := listview.ByStage(opportunities)

	return buildGraph(ctx, func(graph *cgraph.Graph) error {
		graph.SetRankDir(cgraph.LRRank)
		graph.SetLabel("Opportunity Pipeline")

		nodes := make(map[models.Stage]*cgraph.Node, len(summaries))
		for _, s := range summaries {
			node, err := graph.CreateNodeByName(string(s.Stage))
			if err != nil {
				return fmt.Errorf("failed to create stage node: %w", err)
			}
			node.SetLabel(stageLabel(s, currency))
			node.SetShape("box")
			node.SetStyle("filled")
			node.SetFillColor(stageColors[s.Stage])
			nodes[s.Stage] = node
		}

		for _, flow := range stageFlow {
			edge, err := graph.CreateEdgeByName(string(flow[0])+"_"+string(flow[1]), nodes[flow[0]], nodes[flow[1]])
			if err != nil {
				return fmt.Errorf("failed to create stage edge: %w", err)
			}
			if flow[1] == models.StageLost {
				edge.SetStyle("dashed")
			}
		}
		return nil
	})
}

func stageLabel(s listview.StageSummary, currency string) string {
	return fmt.Sprintf("%s\n%d\n%s", s.Stage, s.Count, display.Amount(s.Value, currency))
}

// GeneratePipelineGraph renders every opportunity of the user.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context, currency string) (string, error) {
	opportunities, err := g.source.ListOpportunities(ctx, g.userID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch opportunities: %w", err)
	}
	return PipelineGraph(ctx, opportunities, currency)
}
