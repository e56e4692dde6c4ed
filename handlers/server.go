// ABOUTME: MCP server assembly
// ABOUTME: Registers every CRM tool, resource, and prompt for one user on a new mcp.Server
package handlers

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server whose tools all act on behalf of userID.
func NewServer(store Store, userID uuid.UUID, logger *log.Logger, version string) *mcp.Server {
	contactHandlers := NewContactHandlers(store, userID)
	opportunityHandlers := NewOpportunityHandlers(store, userID)
	interactionHandlers := NewInteractionHandlers(store, userID)
	queryHandlers := NewQueryHandlers(store, userID)
	vizHandlers := NewVizHandlers(store, userID)
	resourceHandlers := NewResourceHandlers(store, userID)
	promptHandlers := NewPromptHandlers(store, userID)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "pcrm",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List contacts, optionally filtered by a search over name, email, and company",
	}, contactHandlers.ListContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_contact",
		Description: "Get a contact with their opportunities and interactions",
	}, contactHandlers.GetContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact. At least one of first name, last name, or email is required",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update an existing contact's information; omitted fields are left unchanged",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact together with their opportunities and interactions",
	}, contactHandlers.DeleteContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_opportunities",
		Description: "List opportunities with total value, won and active counts, and a per-stage breakdown",
	}, opportunityHandlers.ListOpportunities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_opportunity",
		Description: "Create a new opportunity for an existing contact",
	}, opportunityHandlers.AddOpportunity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_interactions",
		Description: "List interactions newest first, flagging overdue follow-ups",
	}, interactionHandlers.ListInteractions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_interaction",
		Description: "Log an interaction with a contact, optionally tied to an opportunity and a follow-up date",
	}, interactionHandlers.LogInteraction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_crm",
		Description: "Universal query tool for flexible filtering across contacts, opportunities, and interactions",
	}, queryHandlers.QueryCRM)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Render a GraphViz graph of the pipeline, one contact, or the complete CRM",
	}, vizHandlers.GenerateGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Summarise the CRM: pipeline, totals, overdue follow-ups, and stale opportunities",
	}, vizHandlers.GetDashboard)

	for _, r := range []*mcp.Resource{
		{URI: "crm://contacts", Name: "contacts", Description: "All contacts", MIMEType: "application/json"},
		{URI: "crm://opportunities", Name: "opportunities", Description: "All opportunities with their contact", MIMEType: "application/json"},
		{URI: "crm://interactions", Name: "interactions", Description: "All interactions, newest first", MIMEType: "application/json"},
		{URI: "crm://pipeline", Name: "pipeline", Description: "Opportunity counts and value per stage", MIMEType: "application/json"},
	} {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "crm://contacts/{id}",
		Name:        "contact",
		Description: "One contact with their opportunities and interactions",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	for _, p := range promptHandlers.Prompts() {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	server.AddReceivingMiddleware(logCalls(logger))

	return server
}

// logCalls logs every request the server handles.
func logCalls(logger *log.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()
			result, err := next(ctx, method, req)
			if err != nil {
				logger.Error("mcp request failed", "method", method, "duration", time.Since(start), "err", err)
			} else {
				logger.Debug("mcp request", "method", method, "duration", time.Since(start))
			}
			return result, err
		}
	}
}
