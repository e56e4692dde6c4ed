// ABOUTME: Web UI server with embedded templates
// ABOUTME: Serves the contacts, opportunities, interactions and settings pages for one identity
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harperreed/pcrm/display"
	"github.com/harperreed/pcrm/models"
)

//go:embed templates/*
var templatesFS embed.FS

// Store is the data access the web pages need.
type Store interface {
	ListContacts(ctx context.Context, userID uuid.UUID) ([]models.Contact, error)
	GetContact(ctx context.Context, userID, id uuid.UUID) (*models.Contact, error)
	CreateContact(ctx context.Context, userID uuid.UUID, c *models.Contact) error
	UpdateContact(ctx context.Context, userID uuid.UUID, c *models.Contact) error
	DeleteContact(ctx context.Context, userID, id uuid.UUID) error

	ListOpportunities(ctx context.Context, userID uuid.UUID) ([]models.Opportunity, error)
	ListOpportunitiesForContact(ctx context.Context, userID, contactID uuid.UUID) ([]models.Opportunity, error)
	GetOpportunity(ctx context.Context, userID, id uuid.UUID) (*models.Opportunity, error)
	CreateOpportunity(ctx context.Context, userID uuid.UUID, o *models.Opportunity) error
	DeleteOpportunity(ctx context.Context, userID, id uuid.UUID) error

	ListInteractions(ctx context.Context, userID uuid.UUID) ([]models.Interaction, error)
	ListInteractionsForContact(ctx context.Context, userID, contactID uuid.UUID) ([]models.Interaction, error)
	CreateInteraction(ctx context.Context, userID uuid.UUID, it *models.Interaction) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	SaveProfile(ctx context.Context, userID uuid.UUID, p *models.Profile) error
}

// IdentityProvider resolves the user a request acts for.
type IdentityProvider interface {
	Identity(r *http.Request) (models.Identity, bool)
}

// StaticIdentity serves every request as the same user.
type StaticIdentity models.Identity

func (s StaticIdentity) Identity(*http.Request) (models.Identity, bool) {
	id := models.Identity(s)
	return id, id.Present()
}

type Server struct {
	store    Store
	identity IdentityProvider
	logger   *log.Logger
	pages    map[string]*template.Template
	now      func() time.Time
}

var pageNames = []string{
	"contacts.html",
	"contact.html",
	"contact_form.html",
	"opportunities.html",
	"opportunity.html",
	"opportunity_form.html",
	"interactions.html",
	"interaction_form.html",
	"settings.html",
	"pipeline.html",
}

func NewServer(store Store, identity IdentityProvider, logger *log.Logger) (*Server, error) {
	s := &Server{
		store:    store,
		identity: identity,
		logger:   logger,
		pages:    make(map[string]*template.Template, len(pageNames)),
		now:      time.Now,
	}

	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(s.funcMap()).ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}
		s.pages[name] = tmpl
	}

	return s, nil
}

func (s *Server) funcMap() template.FuncMap {
	return template.FuncMap{
		"displayName": func(c models.Contact) string { return c.DisplayName() },
		"relatedName": models.RelatedContactName,
		"relatedOpportunity": func(r models.Related[models.Opportunity]) *models.Opportunity {
			if o, ok := r.Get(); ok {
				return &o
			}
			return nil
		},
		"currency": func(value *float64, code string) string {
			out, _ := display.Currency(value, code)
			return out
		},
		"amount": display.Amount,
		"date": func(t *time.Time) string {
			out, _ := display.Date(t)
			return out
		},
		"datetime": func(t time.Time, loc *time.Location) string {
			out, _ := display.DateTime(t, loc)
			return out
		},
		"relative": func(t time.Time) string { return display.Relative(t, s.now()) },
		"overdue":  func(it models.Interaction) bool { return it.IsOverdue(s.now()) },
		"badge":    display.StageBadge,
		"stars":    display.Priority,
		"stages":   func() []models.Stage { return models.Stages },
		"types":    func() []models.InteractionType { return models.InteractionTypes },
		"field": func(label, kind, name string, form formValues, errs fieldErrors) formField {
			return formField{Label: label, Type: kind, Name: name, Value: form[name], Error: errs[name]}
		},
	}
}

// formField is the data of one labelled input.
type formField struct {
	Label string
	Type  string
	Name  string
	Value string
	Error string
}

// Handler returns the routed handler wrapped in request id and logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/contacts", http.StatusSeeOther)
	})

	mux.HandleFunc("GET /contacts", s.authed(s.handleContacts))
	mux.HandleFunc("GET /contacts/new", s.authed(s.handleNewContact))
	mux.HandleFunc("POST /contacts", s.authed(s.handleCreateContact))
	mux.HandleFunc("GET /contacts/{id}", s.authed(s.handleContact))
	mux.HandleFunc("GET /contacts/{id}/edit", s.authed(s.handleEditContact))
	mux.HandleFunc("POST /contacts/{id}", s.authed(s.handleUpdateContact))
	mux.HandleFunc("POST /contacts/{id}/delete", s.authed(s.handleDeleteContact))

	mux.HandleFunc("GET /opportunities", s.authed(s.handleOpportunities))
	mux.HandleFunc("GET /opportunities/new", s.authed(s.handleNewOpportunity))
	mux.HandleFunc("POST /opportunities", s.authed(s.handleCreateOpportunity))
	mux.HandleFunc("GET /opportunities/{id}", s.authed(s.handleOpportunity))
	mux.HandleFunc("POST /opportunities/{id}/delete", s.authed(s.handleDeleteOpportunity))

	mux.HandleFunc("GET /interactions", s.authed(s.handleInteractions))
	mux.HandleFunc("GET /interactions/new", s.authed(s.handleNewInteraction))
	mux.HandleFunc("POST /interactions", s.authed(s.handleCreateInteraction))

	mux.HandleFunc("GET /settings", s.authed(s.handleSettings))
	mux.HandleFunc("POST /settings", s.authed(s.handleSaveSettings))

	mux.HandleFunc("GET /pipeline", s.authed(s.handlePipeline))

	return requestID(s.logRequests(mux))
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// renderTemplate executes a page into a buffer so a template error never
// leaves a half-written page behind.
func (s *Server) renderTemplate(w http.ResponseWriter, status int, name string, data map[string]interface{}) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.logger.Error("unknown template", "name", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error("template error", "name", name, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("error writing response", "err", err)
	}
}

// profile returns the user's settings, or defaults when they cannot be fetched.
func (s *Server) profile(ctx context.Context, id models.Identity) *models.Profile {
	p, err := s.store.GetProfile(ctx, id.UserID)
	if err != nil {
		s.logger.Error("failed to fetch profile", "user", id.UserID, "err", err)
		return &models.Profile{UserID: id.UserID}
	}
	return p
}

// page builds the template data every page shares.
func (s *Server) page(ctx context.Context, id models.Identity, title string) map[string]interface{} {
	p := s.profile(ctx, id)
	return map[string]interface{}{
		"Title":    title,
		"Identity": id,
		"Profile":  p,
		"Currency": p.CurrencyCode(),
		"Location": p.Location(),
	}
}

// viewMode is the list layout picked with ?view=; grid is the default.
func viewMode(r *http.Request) string {
	if r.URL.Query().Get("view") == "list" {
		return "list"
	}
	return "grid"
}
