// ABOUTME: Contact list, detail and form handlers
// ABOUTME: Lists run through the record list pipeline; writes validate before touching the store
package web

import (
	"errors"
	"net/http"

	"github.com/harperreed/pcrm/db"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
)

const (
	msgSaveFailed   = "Something went wrong while saving. Please try again."
	msgDeleteFailed = "Something went wrong while deleting. Please try again."
)

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request, id models.Identity) {
	ctx := r.Context()
	search := r.URL.Query().Get("q")

	contacts, err := s.store.ListContacts(ctx, id.UserID)
	if err != nil {
		s.logger.Error("failed to fetch contacts", "user", id.UserID, "err", err)
		contacts = nil
	}

	data := s.page(ctx, id, "Contacts")
	data["Search"] = search
	data["View"] = listview.Contacts(contacts, search)
	data["Layout"] = viewMode(r)
	s.renderTemplate(w, http.StatusOK, "contacts.html", data)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request, id models.Identity) {
	ctx := r.Context()
	contactID, ok := parseID(r.PathValue("id"))
	if !ok {
		http.Redirect(w, r, "/contacts", http.StatusSeeOther)
		return
	}

	contact, err := s.store.GetContact(ctx, id.UserID, contactID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.logger.Error("failed to fetch contact", "user", id.UserID, "err", err)
		}
		http.Redirect(w, r, "/contacts", http.StatusSeeOther)
		return
	}

	opportunities, err := s.store.ListOpportunitiesForContact(ctx, id.UserID, contactID)
	if err != nil {
		s.logger.Error("failed to fetch opportunities", "user", id.UserID, "err", err)
	}
	interactions, err := s.store.ListInteractionsForContact(ctx, id.UserID, contactID)
	if err != nil {
		s.logger.Error("failed to fetch interactions", "user", id.UserID, "err", err)
	}

	data := s.page(ctx, id, contact.DisplayName())
	data["Contact"] = contact
	data["Opportunities"] = opportunities
	data["Interactions"] = interactions
	data["ConfirmDelete"] = r.URL.Query().Get("delete") == "confirm"
	if r.URL.Query().Get("error") == "delete" {
		data["Error"] = msgDeleteFailed
	}
	s.renderTemplate(w, http.StatusOK, "contact.html", data)
}

// renderContactForm serves both the create and the edit form; edit routes carry an id.
func (s *Server) renderContactForm(w http.ResponseWriter, r *http.Request, id models.Identity, status int, form formValues, errs fieldErrors, generic string) {
	title := "New Contact"
	action := "/contacts"
	if r.PathValue("id") != "" {
		title = "Edit Contact"
		action = "/contacts/" + r.PathValue("id")
	}

	data := s.page(r.Context(), id, title)
	data["Action"] = action
	data["Form"] = form
	data["Errors"] = errs
	data["Error"] = generic
	s.renderTemplate(w, status, "contact_form.html", data)
}

func (s *Server) handleNewContact(w http.ResponseWriter, r *http.Request, id models.Identity) {
	s.renderContactForm(w, r, id, http.StatusOK, formValues{}, nil, "")
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request, id models.Identity) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	contact, form, errs := parseContactForm(r.PostForm)
	if len(errs) > 0 {
		s.renderContactForm(w, r, id, http.StatusUnprocessableEntity, form, errs, "")
		return
	}

	if err := s.store.CreateContact(r.Context(), id.UserID, contact); err != nil {
		s.logger.Error("failed to create contact", "user", id.UserID, "err", err)
		s.renderContactForm(w, r, id, http.StatusInternalServerError, form, nil, msgSaveFailed)
		return
	}

	http.Redirect(w, r, "/contacts/"+contact.ID.String(), http.StatusSeeOther)
}

func (s *Server) handleEditContact(w http.ResponseWriter, r *http.Request, id models.Identity) {
	contactID, ok := parseID(r.PathValue("id"))
	if !ok {
		http.Redirect(w, r, "/contacts", http.StatusSeeOther)
		return
	}

	contact, err := s.store.GetContact(r.Context(), id.UserID, contactID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			s.logger.Error("failed to fetch contact", "user", id.UserID, "err", err)
		}
		http.Redirect(w, r, "/contacts", http.StatusSeeOther)
		return
	}

	s.renderContactForm(w, r, id, http.StatusOK, contactForm(contact), nil, "")
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request, id models.Identity) {
	contactID, ok := parseID(r.PathValue("id"))
	if !ok {
		http.Redirect(w, r, "/contacts", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	contact, form, errs := parseContactForm(r.PostForm)
	contact.ID = contactID
	if len(errs) > 0 {
		s.renderContactForm(w, r, id, http.StatusUnprocessableEntity, form, errs, "")
		return
	}

	if err := s.store.UpdateContact(r.Context(), id.UserID, contact); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Redirect(w, r, "/contacts", http.StatusSeeOther)
			return
		}
		s.logger.Error("failed to update contact", "user", id.UserID, "err", err)
		s.renderContactForm(w, r, id, http.StatusInternalServerError, form, nil, msgSaveFailed)
		return
	}

	http.Redirect(w, r, "/contacts/"+contactID.String(), http.StatusSeeOther)
}

// handleDeleteContact only deletes when the form carries confirm=yes.
func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request, id models.Identity) {
	contactID, ok := parseID(r.PathValue("id"))
	if !ok {
		http.Redirect(w, r, "/contacts", http.StatusSeeOther)
		return
	}
	detail := "/contacts/" + contactID.String()

	if r.FormValue("confirm") != "yes" {
		http.Redirect(w, r, detail+"?delete=confirm", http.StatusSeeOther)
		return
	}

	if err := s.store.DeleteContact(r.Context(), id.UserID, contactID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Redirect(w, r, "/contacts", http.StatusSeeOther)
			return
		}
		s.logger.Error("failed to delete contact", "user", id.UserID, "err", err)
		http.Redirect(w, r, detail+"?error=delete", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/contacts", http.StatusSeeOther)
}
