// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Provides contact summary, pipeline review, and follow-up suggestion prompts
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/display"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	store  Store
	userID uuid.UUID
	now    func() time.Time
}

func NewPromptHandlers(store Store, userID uuid.UUID) *PromptHandlers {
	return &PromptHandlers{store: store, userID: userID, now: time.Now}
}

// Prompts lists the templates GetPrompt understands.
func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "contact-summary",
			Description: "Summarise a contact with their opportunities and recent interactions",
			Arguments: []*mcp.PromptArgument{
				{Name: "contact_id", Description: "Contact ID", Required: true},
			},
		},
		{
			Name:        "pipeline-review",
			Description: "Review the opportunity pipeline stage by stage",
		},
		{
			Name:        "follow-up-suggestions",
			Description: "Suggest follow-ups for overdue and upcoming interactions",
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "contact-summary":
		return h.getContactSummaryPrompt(ctx, request.Params.Arguments)
	case "pipeline-review":
		return h.getPipelineReviewPrompt(ctx)
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getContactSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	contactID, err := parseID("contact_id", args["contact_id"])
	if err != nil {
		return nil, err
	}

	contact, err := h.store.GetContact(ctx, h.userID, contactID)
	if err != nil {
		return nil, notFound("contact", args["contact_id"], err)
	}
	opps, err := h.store.ListOpportunitiesForContact(ctx, h.userID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunities: %w", err)
	}
	interactions, err := h.store.ListInteractionsForContact(ctx, h.userID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}

	var b strings.Builder
	b.WriteString("Please provide a comprehensive summary of this contact:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", contact.DisplayName())
	writeField(&b, "Email", contact.Email)
	writeField(&b, "Phone", contact.Phone)
	writeField(&b, "Company", contact.Company)
	writeField(&b, "Role", contact.RoleTitle)
	writeField(&b, "Notes", contact.Notes)

	if len(opps) > 0 {
		fmt.Fprintf(&b, "\nOpportunities (%d):\n", len(opps))
		for _, o := range opps {
			value, _ := display.Currency(o.Value, o.CurrencyCode())
			fmt.Fprintf(&b, "- %s [%s] %s\n", o.Name, o.Stage, value)
		}
	}

	if len(interactions) > 0 {
		fmt.Fprintf(&b, "\nRecent interactions (%d):\n", len(interactions))
		for _, it := range clip(interactions, 10) {
			fmt.Fprintf(&b, "- %s %s: %s\n", it.OccurredAt.Format(dateLayout), it.Type, it.Summary)
		}
	}

	b.WriteString("\nPlease analyze this contact and provide:")
	b.WriteString("\n1. A brief summary of their role and background")
	b.WriteString("\n2. Recommendations for next steps or follow-up actions")
	b.WriteString("\n3. Any patterns or insights from their interaction history")

	return userPrompt(fmt.Sprintf("Summary for contact: %s", contact.DisplayName()), b.String()), nil
}

func (h *PromptHandlers) getPipelineReviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	opps, err := h.store.ListOpportunities(ctx, h.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunities: %w", err)
	}
	currency := models.DefaultCurrency
	if profile, err := h.store.GetProfile(ctx, h.userID); err == nil {
		currency = profile.CurrencyCode()
	}

	view := listview.Opportunities(opps, "", listview.All)

	var b strings.Builder
	b.WriteString("Please review my sales pipeline:\n\n")
	for _, s := range listview.ByStage(opps) {
		fmt.Fprintf(&b, "%s: %d opportunities, %s\n", s.Stage, s.Count, display.Amount(s.Value, currency))
	}
	fmt.Fprintf(&b, "\nTotal value: %s\n", display.Amount(view.TotalValue, currency))
	fmt.Fprintf(&b, "Won: %d, Active: %d\n", view.WonCount, view.ActiveCount)

	b.WriteString("\nPlease provide:")
	b.WriteString("\n1. Where deals are getting stuck")
	b.WriteString("\n2. Which opportunities to prioritise this week")
	b.WriteString("\n3. Any risks to the forecast")

	return userPrompt("Pipeline review", b.String()), nil
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	interactions, err := h.store.ListInteractions(ctx, h.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}

	now := h.now()
	var overdue, upcoming []models.Interaction
	for _, it := range interactions {
		if !it.FollowUpNeeded || it.FollowUpDate == nil {
			continue
		}
		if it.IsOverdue(now) {
			overdue = append(overdue, it)
		} else {
			upcoming = append(upcoming, it)
		}
	}

	var b strings.Builder
	b.WriteString("Please help me plan my follow-ups.\n")
	writeFollowUps(&b, "Overdue", overdue)
	writeFollowUps(&b, "Upcoming", upcoming)
	if len(overdue)+len(upcoming) == 0 {
		b.WriteString("\nNo follow-ups are scheduled. Suggest contacts I should reach out to.\n")
	}
	b.WriteString("\nFor each follow-up, draft a short message and suggest the best channel.")

	return userPrompt("Follow-up suggestions", b.String()), nil
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

func writeFollowUps(b *strings.Builder, heading string, items []models.Interaction) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d):\n", heading, len(items))
	for _, it := range items {
		fmt.Fprintf(b, "- %s, due %s: %s\n", models.RelatedContactName(it.Contact), formatDate(it.FollowUpDate), it.Summary)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
