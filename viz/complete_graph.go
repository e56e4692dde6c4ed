// ABOUTME: Complete graph generation combining all entities
// ABOUTME: Groups contacts under their company and hangs opportunities off their contact
package viz

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz/cgraph"
)

// GenerateCompleteGraph creates a graph with every company, contact and opportunity.
func (g *GraphGenerator) GenerateCompleteGraph(ctx context.Context) (string, error) {
	contacts, err := g.source.ListContacts(ctx, g.userID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch contacts: %w", err)
	}
	opportunities, err := g.source.ListOpportunities(ctx, g.userID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch opportunities: %w", err)
	}

	return buildGraph(ctx, func(graph *cgraph.Graph) error {
		graph.SetLabel("Complete CRM Graph")

		// Company is free text, so companies are keyed by lowercased name.
		companyNodes := make(map[string]*cgraph.Node)
		contactNodes := make(map[string]*cgraph.Node)

		for _, contact := range contacts {
			node, err := graph.CreateNodeByName(nodeName("contact", contact.ID))
			if err != nil {
				return fmt.Errorf("failed to create contact node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%s", contact.DisplayName(), contact.Email))
			node.SetShape("ellipse")
			node.SetStyle("filled")
			node.SetFillColor("lightgreen")
			contactNodes[contact.ID.String()] = node

			company := strings.TrimSpace(contact.Company)
			if company == "" {
				continue
			}
			key := strings.ToLower(company)
			companyNode, ok := companyNodes[key]
			if !ok {
				companyNode, err = graph.CreateNodeByName(fmt.Sprintf("company_%d", len(companyNodes)))
				if err != nil {
					return fmt.Errorf("failed to create company node: %w", err)
				}
				companyNode.SetLabel(fmt.Sprintf("%s\n(Company)", company))
				companyNode.SetShape("box")
				companyNode.SetStyle("filled")
				companyNode.SetFillColor("lightblue")
				companyNodes[key] = companyNode
			}

			edge, err := graph.CreateEdgeByName("works_at", node, companyNode)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetLabel("works at")
			edge.SetStyle("dashed")
		}

		for _, o := range opportunities {
			node, err := graph.CreateNodeByName(nodeName("opportunity", o.ID))
			if err != nil {
				return fmt.Errorf("failed to create opportunity node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n(%s)", o.Name, o.Stage))
			node.SetShape("diamond")
			node.SetStyle("filled")
			node.SetFillColor("lightyellow")

			if contactNode, ok := contactNodes[o.ContactID.String()]; ok {
				edge, err := graph.CreateEdgeByName("contact_for", contactNode, node)
				if err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetLabel("opportunity")
				edge.SetStyle("dotted")
			}
		}
		return nil
	})
}
