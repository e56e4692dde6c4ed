// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides ASCII dashboard for CRM overview
package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/pcrm/display"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
)

// staleAfter is how long an active opportunity may go without an update.
const staleAfter = 14 * 24 * time.Hour

type DashboardStats struct {
	PipelineByStage []listview.StageSummary

	TotalContacts      int
	TotalOpportunities int
	TotalInteractions  int
	ActiveCount        int
	WonCount           int

	OverdueFollowUps   []OverdueFollowUp
	StaleOpportunities []StaleOpportunity
}

type OverdueFollowUp struct {
	ContactName string
	Summary     string
	Due         time.Time
}

type StaleOpportunity struct {
	Name      string
	Stage     models.Stage
	DaysSince int
}

func (g *GraphGenerator) GenerateDashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	contacts, err := g.source.ListContacts(ctx, g.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	opportunities, err := g.source.ListOpportunities(ctx, g.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunities: %w", err)
	}
	interactions, err := g.source.ListInteractions(ctx, g.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}
	return BuildDashboardStats(contacts, opportunities, interactions, now), nil
}

// BuildDashboardStats summarises already-fetched records as of now.
func BuildDashboardStats(contacts []models.Contact, opportunities []models.Opportunity, interactions []models.Interaction, now time.Time) *DashboardStats {
	view := listview.Opportunities(opportunities, "", listview.All)
	stats := &DashboardStats{
		PipelineByStage:    listview.ByStage(opportunities),
		TotalContacts:      len(contacts),
		TotalOpportunities: len(opportunities),
		TotalInteractions:  len(interactions),
		ActiveCount:        view.ActiveCount,
		WonCount:           view.WonCount,
	}

	for _, it := range interactions {
		if it.IsOverdue(now) {
			stats.OverdueFollowUps = append(stats.OverdueFollowUps, OverdueFollowUp{
				ContactName: models.RelatedContactName(it.Contact),
				Summary:     it.Summary,
				Due:         *it.FollowUpDate,
			})
		}
	}

	for _, o := range opportunities {
		if o.Stage.Closed() {
			continue
		}
		if since := now.Sub(o.UpdatedAt); since > staleAfter {
			stats.StaleOpportunities = append(stats.StaleOpportunities, StaleOpportunity{
				Name:      o.Name,
				Stage:     o.Stage,
				DaysSince: int(since.Hours() / 24),
			})
		}
	}

	return stats
}

func RenderDashboard(stats *DashboardStats, currency string) string {
	var out strings.Builder

	// Header
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  PCRM DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.PipelineByStage, currency)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  💼 %d opportunities (%d active, %d won)  💬 %d interactions\n\n",
		stats.TotalContacts, stats.TotalOpportunities, stats.ActiveCount, stats.WonCount, stats.TotalInteractions))

	if len(stats.OverdueFollowUps) > 0 || len(stats.StaleOpportunities) > 0 {
		out.WriteString("NEEDS ATTENTION\n")

		for _, f := range stats.OverdueFollowUps {
			due, _ := display.Date(&f.Due)
			out.WriteString(fmt.Sprintf("  ⚠️  follow up with %s (due %s): %s\n", f.ContactName, due, f.Summary))
		}
		if len(stats.StaleOpportunities) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d opportunities - stale (no update in 14+ days)\n", len(stats.StaleOpportunities)))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, pipeline []listview.StageSummary, currency string) {
	// Find max count for scaling
	maxCount := 0
	for _, s := range pipeline {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, s := range pipeline {
		// Calculate bar length (0-10 blocks)
		barLength := (s.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-12s %s  %2d (%s)\n",
			s.Stage, bar, s.Count, display.Amount(s.Value, currency)))
	}
}
