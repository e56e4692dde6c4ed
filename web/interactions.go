// ABOUTME: Interaction list and logging form handlers
// ABOUTME: Overdue follow-ups are recomputed against the server clock on every render
package web

import (
	"errors"
	"net/http"

	"github.com/harperreed/pcrm/db"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
)

func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request, id models.Identity) {
	ctx := r.Context()
	search := r.URL.Query().Get("q")
	kind := categoryParam(r, "type")

	interactions, err := s.store.ListInteractions(ctx, id.UserID)
	if err != nil {
		s.logger.Error("failed to fetch interactions", "user", id.UserID, "err", err)
		interactions = nil
	}

	data := s.page(ctx, id, "Interactions")
	data["Search"] = search
	data["Type"] = kind
	data["View"] = listview.Interactions(interactions, search, kind)
	s.renderTemplate(w, http.StatusOK, "interactions.html", data)
}

func (s *Server) renderInteractionForm(w http.ResponseWriter, r *http.Request, id models.Identity, status int, form formValues, errs fieldErrors, generic string) {
	ctx := r.Context()
	contacts, err := s.store.ListContacts(ctx, id.UserID)
	if err != nil {
		s.logger.Error("failed to fetch contacts", "user", id.UserID, "err", err)
	}
	opportunities, err := s.store.ListOpportunities(ctx, id.UserID)
	if err != nil {
		s.logger.Error("failed to fetch opportunities", "user", id.UserID, "err", err)
	}

	data := s.page(ctx, id, "Log Interaction")
	data["Contacts"] = contacts
	data["Opportunities"] = opportunities
	data["Form"] = form
	data["Errors"] = errs
	data["Error"] = generic
	s.renderTemplate(w, status, "interaction_form.html", data)
}

func (s *Server) handleNewInteraction(w http.ResponseWriter, r *http.Request, id models.Identity) {
	profile := s.profile(r.Context(), id)
	form := interactionForm(&models.Interaction{
		Type:       models.InteractionEmail,
		OccurredAt: s.now(),
	}, profile.Location())
	form["contact_id"] = r.URL.Query().Get("contact_id")
	form["opportunity_id"] = r.URL.Query().Get("opportunity_id")
	s.renderInteractionForm(w, r, id, http.StatusOK, form, nil, "")
}

func (s *Server) handleCreateInteraction(w http.ResponseWriter, r *http.Request, id models.Identity) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	profile := s.profile(r.Context(), id)
	it, form, errs := parseInteractionForm(r.PostForm, profile.Location())
	if len(errs) > 0 {
		s.renderInteractionForm(w, r, id, http.StatusUnprocessableEntity, form, errs, "")
		return
	}

	if err := s.store.CreateInteraction(r.Context(), id.UserID, it); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.renderInteractionForm(w, r, id, http.StatusUnprocessableEntity, form,
				fieldErrors{"contact_id": "Contact or opportunity not found"}, "")
			return
		}
		s.logger.Error("failed to create interaction", "user", id.UserID, "err", err)
		s.renderInteractionForm(w, r, id, http.StatusInternalServerError, form, nil, msgSaveFailed)
		return
	}

	http.Redirect(w, r, "/interactions", http.StatusSeeOther)
}
