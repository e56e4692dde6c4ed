// ABOUTME: Opportunity list, detail, form and delete handlers
// ABOUTME: The list shows pipeline aggregates over the visible opportunities
package web

import (
	"errors"
	"net/http"

	"github.com/harperreed/pcrm/db"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
)

// categoryParam returns the stage or type filter, defaulting to listview.All.
func categoryParam(r *http.Request, name string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return listview.All
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request, id models.Identity) {
	ctx := r.Context()
	search := r.URL.Query().Get("q")
	stage := categoryParam(r, "stage")

	opportunities, err := s.store.ListOpportunities(ctx, id.UserID)
	if err != nil {
		s.logger.Error("failed to fetch opportunities", "user", id.UserID, "err", err)
		opportunities = nil
	}

	data := s.page(ctx, id, "Opportunities")
	data["Search"] = search
	data["Stage"] = stage
	data["View"] = listview.Opportunities(opportunities, search, stage)
	data["Layout"] = viewMode(r)
	s.renderTemplate(w, http.StatusOK, "opportunities.html", data)
}

func (s *Server) handleOpportunity(w http.ResponseWriter, r *http.Request, id models.Identity) {
	ctx := r.Context()
	oppID, ok := parseID(r.PathValue("id"))
	if !ok {
		http.Redirect(w, r, "/opportunities", http.StatusSeeOther)
		return
	}

	opp, err := s.store.GetOpportunity(ctx, id.UserID, oppID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.logger.Error("failed to fetch opportunity", "user", id.UserID, "err", err)
		}
		http.Redirect(w, r, "/opportunities", http.StatusSeeOther)
		return
	}

	var related []models.Interaction
	interactions, err := s.store.ListInteractionsForContact(ctx, id.UserID, opp.ContactID)
	if err != nil {
		s.logger.Error("failed to fetch interactions", "user", id.UserID, "err", err)
	}
	for _, it := range interactions {
		if it.OpportunityID != nil && *it.OpportunityID == opp.ID {
			related = append(related, it)
		}
	}

	data := s.page(ctx, id, opp.Name)
	data["Opportunity"] = opp
	data["Interactions"] = related
	data["ConfirmDelete"] = r.URL.Query().Get("delete") == "confirm"
	if r.URL.Query().Get("error") == "delete" {
		data["Error"] = msgDeleteFailed
	}
	s.renderTemplate(w, http.StatusOK, "opportunity.html", data)
}

func (s *Server) renderOpportunityForm(w http.ResponseWriter, r *http.Request, id models.Identity, status int, form formValues, errs fieldErrors, generic string) {
	ctx := r.Context()
	contacts, err := s.store.ListContacts(ctx, id.UserID)
	if err != nil {
		s.logger.Error("failed to fetch contacts", "user", id.UserID, "err", err)
	}

	data := s.page(ctx, id, "New Opportunity")
	data["Contacts"] = contacts
	data["Form"] = form
	data["Errors"] = errs
	data["Error"] = generic
	s.renderTemplate(w, status, "opportunity_form.html", data)
}

func (s *Server) handleNewOpportunity(w http.ResponseWriter, r *http.Request, id models.Identity) {
	profile := s.profile(r.Context(), id)
	form := formValues{
		"stage":      string(models.StageLead),
		"currency":   profile.CurrencyCode(),
		"contact_id": r.URL.Query().Get("contact_id"),
	}
	s.renderOpportunityForm(w, r, id, http.StatusOK, form, nil, "")
}

func (s *Server) handleCreateOpportunity(w http.ResponseWriter, r *http.Request, id models.Identity) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	opp, form, errs := parseOpportunityForm(r.PostForm)
	if len(errs) > 0 {
		s.renderOpportunityForm(w, r, id, http.StatusUnprocessableEntity, form, errs, "")
		return
	}

	if err := s.store.CreateOpportunity(r.Context(), id.UserID, opp); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.renderOpportunityForm(w, r, id, http.StatusUnprocessableEntity, form, fieldErrors{"contact_id": "Contact not found"}, "")
			return
		}
		s.logger.Error("failed to create opportunity", "user", id.UserID, "err", err)
		s.renderOpportunityForm(w, r, id, http.StatusInternalServerError, form, nil, msgSaveFailed)
		return
	}

	http.Redirect(w, r, "/opportunities/"+opp.ID.String(), http.StatusSeeOther)
}

// handleDeleteOpportunity only deletes when the form carries confirm=yes.
func (s *Server) handleDeleteOpportunity(w http.ResponseWriter, r *http.Request, id models.Identity) {
	oppID, ok := parseID(r.PathValue("id"))
	if !ok {
		http.Redirect(w, r, "/opportunities", http.StatusSeeOther)
		return
	}
	detail := "/opportunities/" + oppID.String()

	if r.FormValue("confirm") != "yes" {
		http.Redirect(w, r, detail+"?delete=confirm", http.StatusSeeOther)
		return
	}

	if err := s.store.DeleteOpportunity(r.Context(), id.UserID, oppID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Redirect(w, r, "/opportunities", http.StatusSeeOther)
			return
		}
		s.logger.Error("failed to delete opportunity", "user", id.UserID, "err", err)
		http.Redirect(w, r, detail+"?error=delete", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/opportunities", http.StatusSeeOther)
}
