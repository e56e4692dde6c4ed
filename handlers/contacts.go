// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements list_contacts, get_contact, add_contact, update_contact, and delete_contact tools
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/db"
	"github.com/harperreed/pcrm/listview"
	"github.com/harperreed/pcrm/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ContactHandlers struct {
	store  Store
	userID uuid.UUID
	now    func() time.Time
}

func NewContactHandlers(store Store, userID uuid.UUID) *ContactHandlers {
	return &ContactHandlers{store: store, userID: userID, now: time.Now}
}

type ListContactsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Case-insensitive search over name, email, and company"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type ListContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
	Total    int             `json:"total"`
	Matched  int             `json:"matched"`
}

func (h *ContactHandlers) ListContacts(ctx context.Context, _ *mcp.CallToolRequest, input ListContactsInput) (*mcp.CallToolResult, ListContactsOutput, error) {
	contacts, err := h.store.ListContacts(ctx, h.userID)
	if err != nil {
		return nil, ListContactsOutput{}, fmt.Errorf("failed to list contacts: %w", err)
	}

	view := listview.Contacts(contacts, input.Query)
	visible := clip(view.Visible, limitOf(input.Limit))

	result := make([]ContactOutput, len(visible))
	for i := range visible {
		result[i] = contactToOutput(&visible[i])
	}

	return nil, ListContactsOutput{Contacts: result, Total: view.Total, Matched: len(view.Visible)}, nil
}

type GetContactInput struct {
	ID string `json:"id" jsonschema:"Contact ID (required)"`
}

type GetContactOutput struct {
	Contact       ContactOutput       `json:"contact"`
	Opportunities []OpportunityOutput `json:"opportunities"`
	Interactions  []InteractionOutput `json:"interactions"`
}

func (h *ContactHandlers) GetContact(ctx context.Context, _ *mcp.CallToolRequest, input GetContactInput) (*mcp.CallToolResult, GetContactOutput, error) {
	id, err := parseID("id", input.ID)
	if err != nil {
		return nil, GetContactOutput{}, err
	}

	contact, err := h.store.GetContact(ctx, h.userID, id)
	if err != nil {
		return nil, GetContactOutput{}, notFound("contact", input.ID, err)
	}

	opps, err := h.store.ListOpportunitiesForContact(ctx, h.userID, id)
	if err != nil {
		return nil, GetContactOutput{}, fmt.Errorf("failed to list opportunities: %w", err)
	}
	interactions, err := h.store.ListInteractionsForContact(ctx, h.userID, id)
	if err != nil {
		return nil, GetContactOutput{}, fmt.Errorf("failed to list interactions: %w", err)
	}

	out := GetContactOutput{
		Contact:       contactToOutput(contact),
		Opportunities: make([]OpportunityOutput, len(opps)),
		Interactions:  make([]InteractionOutput, len(interactions)),
	}
	for i := range opps {
		out.Opportunities[i] = opportunityToOutput(&opps[i])
	}
	now := h.now()
	for i := range interactions {
		out.Interactions[i] = interactionToOutput(&interactions[i], now)
	}
	return nil, out, nil
}

type AddContactInput struct {
	FirstName   string `json:"first_name,omitempty" jsonschema:"First name"`
	LastName    string `json:"last_name,omitempty" jsonschema:"Last name"`
	Email       string `json:"email,omitempty" jsonschema:"Email address"`
	Phone       string `json:"phone,omitempty" jsonschema:"Phone number"`
	Company     string `json:"company,omitempty" jsonschema:"Company name"`
	RoleTitle   string `json:"role_title,omitempty" jsonschema:"Job title"`
	Notes       string `json:"notes,omitempty" jsonschema:"Additional notes about the contact"`
	LinkedInURL string `json:"linkedin_url,omitempty" jsonschema:"LinkedIn profile URL"`
	Website     string `json:"website,omitempty" jsonschema:"Website URL"`
	Birthday    string `json:"birthday,omitempty" jsonschema:"Birthday as YYYY-MM-DD"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	birthday, err := parseDate("birthday", strings.TrimSpace(input.Birthday))
	if err != nil {
		return nil, ContactOutput{}, err
	}

	contact := &models.Contact{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		Company:     strings.TrimSpace(input.Company),
		RoleTitle:   strings.TrimSpace(input.RoleTitle),
		Notes:       strings.TrimSpace(input.Notes),
		LinkedInURL: strings.TrimSpace(input.LinkedInURL),
		Website:     strings.TrimSpace(input.Website),
		Birthday:    birthday,
	}
	if err := contact.Validate(); err != nil {
		return nil, ContactOutput{}, err
	}

	if err := h.store.CreateContact(ctx, h.userID, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type UpdateContactInput struct {
	ID          string  `json:"id" jsonschema:"Contact ID (required)"`
	FirstName   *string `json:"first_name,omitempty" jsonschema:"Updated first name"`
	LastName    *string `json:"last_name,omitempty" jsonschema:"Updated last name"`
	Email       *string `json:"email,omitempty" jsonschema:"Updated email address"`
	Phone       *string `json:"phone,omitempty" jsonschema:"Updated phone number"`
	Company     *string `json:"company,omitempty" jsonschema:"Updated company name"`
	RoleTitle   *string `json:"role_title,omitempty" jsonschema:"Updated job title"`
	Notes       *string `json:"notes,omitempty" jsonschema:"Updated notes"`
	LinkedInURL *string `json:"linkedin_url,omitempty" jsonschema:"Updated LinkedIn profile URL"`
	Website     *string `json:"website,omitempty" jsonschema:"Updated website URL"`
}

// UpdateContact changes only the fields present in the input.
func (h *ContactHandlers) UpdateContact(ctx context.Context, _ *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	id, err := parseID("id", input.ID)
	if err != nil {
		return nil, ContactOutput{}, err
	}

	contact, err := h.store.GetContact(ctx, h.userID, id)
	if err != nil {
		return nil, ContactOutput{}, notFound("contact", input.ID, err)
	}

	for dst, src := range map[*string]*string{
		&contact.FirstName:   input.FirstName,
		&contact.LastName:    input.LastName,
		&contact.Email:       input.Email,
		&contact.Phone:       input.Phone,
		&contact.Company:     input.Company,
		&contact.RoleTitle:   input.RoleTitle,
		&contact.Notes:       input.Notes,
		&contact.LinkedInURL: input.LinkedInURL,
		&contact.Website:     input.Website,
	} {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	if err := contact.Validate(); err != nil {
		return nil, ContactOutput{}, err
	}
	if err := h.store.UpdateContact(ctx, h.userID, contact); err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type DeleteContactInput struct {
	ID string `json:"id" jsonschema:"Contact ID (required)"`
}

type DeleteContactOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// DeleteContact removes the contact with its opportunities and interactions.
func (h *ContactHandlers) DeleteContact(ctx context.Context, _ *mcp.CallToolRequest, input DeleteContactInput) (*mcp.CallToolResult, DeleteContactOutput, error) {
	id, err := parseID("id", input.ID)
	if err != nil {
		return nil, DeleteContactOutput{}, err
	}

	if err := h.store.DeleteContact(ctx, h.userID, id); err != nil {
		return nil, DeleteContactOutput{}, notFound("contact", input.ID, err)
	}

	return nil, DeleteContactOutput{ID: id.String(), Deleted: true}, nil
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	return fmt.Errorf("failed to load %s: %w", kind, err)
}
