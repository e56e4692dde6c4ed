// ABOUTME: Graphviz graph generator over one user's CRM records
// ABOUTME: Shares graph setup and XDOT rendering between the graph kinds
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/google/uuid"
	"github.com/harperreed/pcrm/models"
)

// Source is the read side of the store that graphs are built from.
type Source interface {
	ListContacts(ctx context.Context, userID uuid.UUID) ([]models.Contact, error)
	GetContact(ctx context.Context, userID, id uuid.UUID) (*models.Contact, error)
	ListOpportunities(ctx context.Context, userID uuid.UUID) ([]models.Opportunity, error)
	ListOpportunitiesForContact(ctx context.Context, userID, contactID uuid.UUID) ([]models.Opportunity, error)
	ListInteractions(ctx context.Context, userID uuid.UUID) ([]models.Interaction, error)
	ListInteractionsForContact(ctx context.Context, userID, contactID uuid.UUID) ([]models.Interaction, error)
}

type GraphGenerator struct {
	source Source
	userID uuid.UUID
}

func NewGraphGenerator(source Source, userID uuid.UUID) *GraphGenerator {
	return &GraphGenerator{source: source, userID: userID}
}

// buildGraph creates a graph, lets fill populate it and renders it as XDOT.
func buildGraph(ctx context.Context, fill func(*cgraph.Graph) error) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	if err := fill(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

func nodeName(prefix string, id uuid.UUID) string {
	return fmt.Sprintf("%s_%s", prefix, id.String()[:8])
}
