// ABOUTME: Profile settings and pipeline graph handlers
// ABOUTME: Settings hold the time zone and default currency used when rendering
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
	"github.com/harperreed/pcrm/viz"
)

// commonTimeZones seeds the time zone picker; any IANA name is accepted.
var commonTimeZones = []string{
	"UTC",
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
	"Asia/Tokyo",
	"Asia/Singapore",
	"Australia/Sydney",
}

var commonCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "CHF"}

func (s *Server) renderSettings(w http.ResponseWriter, r *http.Request, id models.Identity, status int, form formValues, errs fieldErrors, generic string) {
	data := s.page(r.Context(), id, "Settings")
	data["Form"] = form
	data["Errors"] = errs
	data["Error"] = generic
	data["Saved"] = r.URL.Query().Get("saved") == "1"
	data["TimeZones"] = commonTimeZones
	data["Currencies"] = commonCurrencies
	data["Now"] = s.now()
	s.renderTemplate(w, status, "settings.html", data)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, id models.Identity) {
	s.renderSettings(w, r, id, http.StatusOK, profileForm(s.profile(r.Context(), id)), nil, "")
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request, id models.Identity) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	profile, form, errs := parseProfileForm(r.PostForm)
	if len(errs) > 0 {
		s.renderSettings(w, r, id, http.StatusUnprocessableEntity, form, errs, "")
		return
	}

	if err := s.store.SaveProfile(r.Context(), id.UserID, profile); err != nil {
		s.logger.Error("failed to save profile", "user", id.UserID, "err", err)
		s.renderSettings(w, r, id, http.StatusInternalServerError, form, nil, msgSaveFailed)
		return
	}

	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}

// handlePipeline graphs the opportunities visible under the same q and stage
// filters as the opportunities list. ?format=dot returns the raw graph.
func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request, id models.Identity) {
	ctx := r.Context()
	search := r.URL.Query().Get("q")
	stage := categoryParam(r, "stage")

	opportunities, err := s.store.ListOpportunities(ctx, id.UserID)
	if err != nil {
		s.logger.Error("failed to fetch opportunities", "user", id.UserID, "err", err)
		opportunities = nil
	}
	view := listview.Opportunities(opportunities, search, stage)

	data := s.page(ctx, id, "Pipeline")
	currency, _ := data["Currency"].(string)

	graphCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dot, err := viz.PipelineGraph(graphCtx, view.Visible, currency)
	if err != nil {
		s.logger.Error("failed to render pipeline graph", "user", id.UserID, "err", err)
		http.Error(w, "Failed to render graph", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = w.Write([]byte(dot))
		return
	}

	data["Search"] = search
	data["Stage"] = stage
	data["View"] = view
	data["Summaries"] = listview.ByStage(view.Visible)
	data["DOT"] = dot
	s.renderTemplate(w, http.StatusOK, "pipeline.html", data)
}
