// ABOUTME: Opportunity CLI commands
// ABOUTME: Lists the pipeline with totals and records new opportunities against a contact
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/display"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
)

// ListOpportunitiesCommand lists opportunities with pipeline totals for the
// visible set.
func ListOpportunitiesCommand(app *App, args []string) error {
	fs := app.flagSet("list-opportunities")
	query := fs.String("query", "", "Search by opportunity or contact name")
	stage := fs.String("stage", listview.All, "Filter by stage (all, Lead, Contacted, Proposal, Negotiation, Won, Lost)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *stage != listview.All && *stage != "" && !models.Stage(*stage).Valid() {
		return fmt.Errorf("invalid stage: %s", *stage)
	}

	ctx := context.Background()
	opps, err := app.Store.ListOpportunities(ctx, app.UserID)
	if err != nil {
		return fmt.Errorf("failed to list opportunities: %w", err)
	}
	profile, err := app.Store.GetProfile(ctx, app.UserID)
	if err != nil {
		return err
	}
	currency := profile.CurrencyCode()

	view := listview.Opportunities(opps, *query, *stage)
	if len(view.Visible) == 0 {
		app.printf("No opportunities found\n")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCONTACT\tSTAGE\tVALUE\tCLOSE\tPRIORITY\tID")
	_, _ = fmt.Fprintln(w, "----\t-------\t-----\t-----\t-----\t--------\t--")

	for _, o := range view.Visible {
		value, ok := display.Currency(o.Value, o.CurrencyCode())
		if !ok {
			value = "-"
		}
		closeDate, ok := display.Date(o.ExpectedCloseDate)
		if !ok {
			closeDate = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.Name, models.RelatedContactName(o.Contact), o.Stage, value, closeDate,
			dash(display.Priority(o.Priority)), shortID(o.ID))
	}
	_ = w.Flush()

	app.printf("\nShowing %d of %d opportunities\n", len(view.Visible), view.Total)
	app.printf("Total value: %s  Won: %d  Active: %d\n",
		display.Amount(view.TotalValue, currency), view.WonCount, view.ActiveCount)
	return nil
}

// AddOpportunityCommand records a new opportunity for a contact.
func AddOpportunityCommand(app *App, args []string) error {
	fs := app.flagSet("add-opportunity")
	contact := fs.String("contact", "", "Contact ID (required)")
	name := fs.String("name", "", "Opportunity name (required)")
	description := fs.String("description", "", "Description")
	value := fs.String("value", "", "Value in whole currency units")
	currency := fs.String("currency", "", "ISO 4217 currency code (default: profile currency)")
	stage := fs.String("stage", string(models.StageLead), "Stage")
	priority := fs.Int("priority", 0, "Priority 1-5")
	closeDate := fs.String("close-date", "", "Expected close date (YYYY-MM-DD)")
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

	opp := &models.Opportunity{
		ContactID:   contactID,
		Name:        strings.TrimSpace(*name),
		Description: strings.TrimSpace(*description),
		Currency:    strings.ToUpper(strings.TrimSpace(*currency)),
		Stage:       models.Stage(*stage),
	}

	if raw := strings.ReplaceAll(strings.TrimSpace(*value), ",", ""); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid --value: %s", *value)
		}
		opp.Value = &v
	}
	if *priority != 0 {
		p := *priority
		opp.Priority = &p
	}
	if *closeDate != "" {
		t, err := time.Parse("2006-01-02", *closeDate)
		if err != nil {
			return fmt.Errorf("invalid --close-date (want YYYY-MM-DD): %w", err)
		}
		opp.ExpectedCloseDate = &t
	}
	if opp.Currency == "" {
		profile, err := app.Store.GetProfile(ctx, app.UserID)
		if err != nil {
			return err
		}
		opp.Currency = profile.CurrencyCode()
	}

	if err := opp.Validate(); err != nil {
		return err
	}
	if err := app.Store.CreateOpportunity(ctx, app.UserID, opp); err != nil {
		return fmt.Errorf("failed to create opportunity: %w", err)
	}

	app.printf("✓ Opportunity created: %s (ID: %s)\n", opp.Name, opp.ID)
	app.printf("  Contact: %s\n", owner.DisplayName())
	app.printf("  Stage: %s\n", opp.Stage)
	if v, ok := display.Currency(opp.Value, opp.CurrencyCode()); ok {
		app.printf("  Value: %s\n", v)
	}
	return nil
}
