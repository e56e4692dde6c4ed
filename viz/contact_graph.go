// ABOUTME: Graph of one contact and the opportunities and interactions around them
// ABOUTME: Interactions are counted per opportunity and shown as edge labels
package viz

import (
	"context"
	"fmt"

	"github.com/goccy/go-graphviz/cgraph"
	"github.com/google/uuid"
	"github.com/harperreed/pcrm/display"
)

func (g *GraphGenerator) GenerateContactGraph(ctx context.Context, contactID uuid.UUID) (string, error) {
	contact, err := g.source.GetContact(ctx, g.userID, contactID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch contact: %w", err)
	}
	opportunities, err := g.source.ListOpportunitiesForContact(ctx, g.userID, contactID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch opportunities: %w", err)
	}
	interactions, err := g.source.ListInteractionsForContact(ctx, g.userID, contactID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch interactions: %w", err)
	}

	// Interactions per opportunity; uuid.Nil holds the ones not tied to a deal.
	counts := make(map[uuid.UUID]int)
	for _, it := range interactions {
		key := uuid.Nil
		if it.OpportunityID != nil {
			key = *it.OpportunityID
		}
		counts[key]++
	}

	return buildGraph(ctx, func(graph *cgraph.Graph) error {
		graph.SetRankDir(cgraph.LRRank)

		center, err := graph.CreateNodeByName(nodeName("contact", contact.ID))
		if err != nil {
			return fmt.Errorf("failed to create contact node: %w", err)
		}
		label := contact.DisplayName()
		if contact.Company != "" {
			label += "\n" + contact.Company
		}
		if n := counts[uuid.Nil]; n > 0 {
			label += fmt.Sprintf("\n%d direct interactions", n)
		}
		center.SetLabel(label)
		center.SetShape("ellipse")
		center.SetStyle("filled")
		center.SetFillColor("lightgreen")

		for _, o := range opportunities {
			node, err := graph.CreateNodeByName(nodeName("opportunity", o.ID))
			if err != nil {
				return fmt.Errorf("failed to create opportunity node: %w", err)
			}
			label := fmt.Sprintf("%s\n(%s)", o.Name, o.Stage)
			if value, ok := display.Currency(o.Value, o.CurrencyCode()); ok {
				label = fmt.Sprintf("%s\n%s\n(%s)", o.Name, value, o.Stage)
			}
			node.SetLabel(label)
			node.SetShape("diamond")
			node.SetStyle("filled")
			node.SetFillColor(stageColors[o.Stage])

			edge, err := graph.CreateEdgeByName("owns_"+o.ID.String()[:8], center, node)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			if n := counts[o.ID]; n > 0 {
				edge.SetLabel(fmt.Sprintf("%d interactions", n))
			}
		}
		return nil
	})
}
