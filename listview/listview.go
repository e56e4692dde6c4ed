// ABOUTME: Record list pipeline shared by the contacts, opportunities and interactions lists
// ABOUTME: Filters fetched records by search text and category and computes aggregates
package listview

import (
	"strings"

	"github.com/harperreed/pcrm/models"
)

// All is the category filter sentinel that matches every record.
const All = "all"

// ContactView is what the contacts list renders.
type ContactView struct {
	Visible []models.Contact
	Total   int
}

// OpportunityView is what the opportunities list renders.
type OpportunityView struct {
	Visible     []models.Opportunity
	Total       int
	TotalValue  float64
	WonCount    int
	ActiveCount int
}

// InteractionView is what the interactions list renders.
type InteractionView struct {
	Visible []models.Interaction
	Total   int
}

// Contacts keeps contacts whose first name, last name, email or company
// contains the search text.
func Contacts(records []models.Contact, search string) ContactView {
	visible := filter(records, search, "", func(c models.Contact) []string {
		return []string{c.FirstName, c.LastName, c.Email, c.Company}
	}, nil)
	return ContactView{Visible: visible, Total: len(records)}
}

// Opportunities keeps opportunities matching the search text and stage, and
// sums the visible set.
func Opportunities(records []models.Opportunity, search, stage string) OpportunityView {
	visible := filter(records, search, stage, func(o models.Opportunity) []string {
		return append([]string{o.Name}, relatedContactText(o.Contact)...)
	}, func(o models.Opportunity) string {
		return string(o.Stage)
	})

	view := OpportunityView{Visible: visible, Total: len(records)}
	for _, o := range visible {
		if o.Value != nil {
			view.TotalValue += *o.Value
		}
		switch {
		case o.Stage == models.StageWon:
			view.WonCount++
		case !o.Stage.Closed():
			view.ActiveCount++
		}
	}
	return view
}

// Interactions keeps interactions matching the search text and type.
func Interactions(records []models.Interaction, search, interactionType string) InteractionView {
	visible := filter(records, search, interactionType, func(i models.Interaction) []string {
		return append([]string{i.Summary}, relatedContactText(i.Contact)...)
	}, func(i models.Interaction) string {
		return string(i.Type)
	})
	return InteractionView{Visible: visible, Total: len(records)}
}

// StageSummary is the count and value of the opportunities in one stage.
type StageSummary struct {
	Stage models.Stage
	Count int
	Value float64
}

// ByStage groups opportunities into one summary per stage, in pipeline order.
// Stages with no opportunities are included with zero counts.
func ByStage(records []models.Opportunity) []StageSummary {
	index := make(map[models.Stage]int, len(models.Stages))
	out := make([]StageSummary, len(models.Stages))
	for i, s := range models.Stages {
		out[i].Stage = s
		index[s] = i
	}

	for _, o := range records {
		i, ok := index[o.Stage]
		if !ok {
			continue
		}
		out[i].Count++
		if o.Value != nil {
			out[i].Value += *o.Value
		}
	}
	return out
}

// filter preserves input order. An empty category behaves like All.
func filter[T any](records []T, search, category string, text func(T) []string, categoryOf func(T) string) []T {
	needle := strings.ToLower(search)
	visible := make([]T, 0, len(records))
	for _, r := range records {
		if !matchesCategory(r, category, categoryOf) {
			continue
		}
		if needle != "" && !anyContains(text(r), needle) {
			continue
		}
		visible = append(visible, r)
	}
	return visible
}

func matchesCategory[T any](r T, category string, categoryOf func(T) string) bool {
	if category == "" || category == All || categoryOf == nil {
		return true
	}
	return categoryOf(r) == category
}

func anyContains(fields []string, needle string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func relatedContactText(r models.Related[models.Contact]) []string {
	c, ok := r.Get()
	if !ok {
		return nil
	}
	return []string{c.FirstName, c.LastName, c.Company}
}
