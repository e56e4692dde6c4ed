// ABOUTME: Interaction CLI commands
// ABOUTME: Lists logged communications with overdue follow-ups flagged and logs new ones
package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/display"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
)

// ListInteractionsCommand lists interactions, newest first.
func ListInteractionsCommand(app *App, args []string) error {
	fs := app.flagSet("list-interactions")
	query := fs.String("query", "", "Search by summary or contact name")
	kind := fs.String("type", listview.All, "Filter by type (all, Email, Call, Meeting, Note, LinkedIn, Other)")
	overdueOnly := fs.Bool("overdue-only", false, "Show only overdue follow-ups")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *kind != listview.All && *kind != "" && !models.InteractionType(*kind).Valid() {
		return fmt.Errorf("invalid interaction type: %s", *kind)
	}

	interactions, err := app.Store.ListInteractions(context.Background(), app.UserID)
	if err != nil {
		return fmt.Errorf("failed to list interactions: %w", err)
	}

	now := app.Now()
	view := listview.Interactions(interactions, *query, *kind)

	var shown []models.Interaction
	overdue := 0
	for _, it := range view.Visible {
		late := it.IsOverdue(now)
		if late {
			overdue++
		}
		if *overdueOnly && !late {
			continue
		}
		shown = append(shown, it)
	}
	if *limit > 0 && len(shown) > *limit {
		shown = shown[:*limit]
	}

	if len(shown) == 0 {
		app.printf("No interactions found\n")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WHEN\tTYPE\tCONTACT\tSUMMARY\tFOLLOW-UP")
	_, _ = fmt.Fprintln(w, "----\t----\t-------\t-------\t---------")

	for _, it := range shown {
		followUp := "-"
		if it.FollowUpNeeded {
			if due, ok := display.Date(it.FollowUpDate); ok {
				followUp = due
			}
			if it.IsOverdue(now) {
				followUp = "🔴 " + followUp + " (overdue)"
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			display.Relative(it.OccurredAt, now), it.Type,
			models.RelatedContactName(it.Contact), it.Summary, followUp)
	}
	_ = w.Flush()

	app.printf("\nShowing %d of %d interactions (%d overdue)\n", len(shown), view.Total, overdue)
	return nil
}

// LogInteractionCommand records a communication with a contact.
func LogInteractionCommand(app *App, args []string) error {
	fs := app.flagSet("log-interaction")
	contact := fs.String("contact", "", "Contact ID (required)")
	opportunity := fs.String("opportunity", "", "Related opportunity ID")
	kind := fs.String("type", string(models.InteractionNote), "Type (Email, Call, Meeting, Note, LinkedIn, Other)")
	summary := fs.String("summary", "", "What happened (required)")
	when := fs.String("when", "", "When it happened, RFC3339 (default: now)")
	followUp := fs.String("follow-up", "", "Follow-up date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *contact == "" {
		return fmt.Errorf("--contact is required")
	}
	contactID, err := uuid.Parse(*contact)
	if err != nil {
		return fmt.Errorf("invalid contact ID: %w", err)
	}

	ctx := context.Background()
	owner, err := app.Store.GetContact(ctx, app.UserID, contactID)
	if err != nil {
		return contactNotFound(contactID.String(), err)
	}

	it := &models.Interaction{
		ContactID:  contactID,
		Type:       models.InteractionType(*kind),
		Summary:    strings.TrimSpace(*summary),
		OccurredAt: app.Now(),
	}

	if *opportunity != "" {
		oppID, err := uuid.Parse(*opportunity)
		if err != nil {
			return fmt.Errorf("invalid opportunity ID: %w", err)
		}
		it.OpportunityID = &oppID
	}
	if *when != "" {
		t, err := time.Parse(time.RFC3339, *when)
		if err != nil {
			return fmt.Errorf("invalid --when (want RFC3339): %w", err)
		}
		it.OccurredAt = t
	}
	if *followUp != "" {
		t, err := time.Parse("2006-01-02", *followUp)
		if err != nil {
			return fmt.Errorf("invalid --follow-up (want YYYY-MM-DD): %w", err)
		}
		it.FollowUpNeeded = true
		it.FollowUpDate = &t
	}

	if err := it.Validate(); err != nil {
		return err
	}
	if err := app.Store.CreateInteraction(ctx, app.UserID, it); err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}

	app.printf("✓ Logged %s with %s\n", it.Type, owner.DisplayName())
	if due, ok := display.Date(it.FollowUpDate); ok {
		app.printf("  Follow up by %s\n", due)
	}
	return nil
}
