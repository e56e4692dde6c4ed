// ABOUTME: Data models for CRM entities
// ABOUTME: Defines Contact, Opportunity, Interaction, Profile and their fixed enumerations
package models

import (
	"time"
	_ "time/tzdata" // embedded zoneinfo for profile time zones

	"github.com/google/uuid"
)

// Stage is the lifecycle label of an Opportunity.
type Stage string

const (
	StageLead        Stage = "Lead"
	StageContacted   Stage = "Contacted"
	StageProposal    Stage = "Proposal"
	StageNegotiation Stage = "Negotiation"
	StageWon         Stage = "Won"
	StageLost        Stage = "Lost"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageLead,
	StageContacted,
	StageProposal,
	StageNegotiation,
	StageWon,
	StageLost,
}

// Valid reports whether s is one of the fixed stages.
func (s Stage) Valid() bool {
	for _, known := range Stages {
		if s == known {
			return true
		}
	}
	return false
}

// Closed reports whether the opportunity has left the active pipeline.
func (s Stage) Closed() bool {
	return s == StageWon || s == StageLost
}

// InteractionType is the category of a logged communication.
type InteractionType string

const (
	InteractionEmail    InteractionType = "Email"
	InteractionCall     InteractionType = "Call"
	InteractionMeeting  InteractionType = "Meeting"
	InteractionNote     InteractionType = "Note"
	InteractionLinkedIn InteractionType = "LinkedIn"
	InteractionOther    InteractionType = "Other"
)

// InteractionTypes lists every interaction type in display order.
var InteractionTypes = []InteractionType{
	InteractionEmail,
	InteractionCall,
	InteractionMeeting,
	InteractionNote,
	InteractionLinkedIn,
	InteractionOther,
}

// Valid reports whether t is one of the fixed interaction types.
func (t InteractionType) Valid() bool {
	for _, known := range InteractionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DefaultCurrency is used whenever a record or profile carries no currency code.
const DefaultCurrency = "USD"

// Identity is the authenticated user on whose behalf records are read and written.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
}

// Present reports whether an authenticated user is known.
func (i Identity) Present() bool {
	return i.UserID != uuid.Nil
}

type Contact struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	FirstName   string     `json:"first_name,omitempty" validate:"max=100"`
	LastName    string     `json:"last_name,omitempty" validate:"max=100"`
	Email       string     `json:"email,omitempty" validate:"omitempty,mailbox"`
	Phone       string     `json:"phone,omitempty" validate:"max=50"`
	Company     string     `json:"company,omitempty"`
	RoleTitle   string     `json:"role_title,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Source      string     `json:"source,omitempty"`
	LinkedInURL string     `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	TwitterURL  string     `json:"twitter_url,omitempty" validate:"omitempty,url"`
	Website     string     `json:"website,omitempty" validate:"omitempty,url"`
	Address     string     `json:"address,omitempty"`
	Birthday    *time.Time `json:"birthday,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Opportunity struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	ContactID         uuid.UUID  `json:"contact_id"`
	Name              string     `json:"name" validate:"required,max=200"`
	Description       string     `json:"description,omitempty"`
	Value             *float64   `json:"value,omitempty" validate:"omitempty,gt=0"`
	Currency          string     `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Stage             Stage      `json:"stage" validate:"required,oneof=Lead Contacted Proposal Negotiation Won Lost"`
	Priority          *int       `json:"priority,omitempty" validate:"omitempty,min=1,max=5"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	ActualCloseDate   *time.Time `json:"actual_close_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Contact Related[Contact] `json:"contact" validate:"-"`
}

// CurrencyCode returns the opportunity currency, falling back to DefaultCurrency.
func (o Opportunity) CurrencyCode() string {
	if o.Currency == "" {
		return DefaultCurrency
	}
	return o.Currency
}

type Interaction struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	ContactID      uuid.UUID       `json:"contact_id"`
	OpportunityID  *uuid.UUID      `json:"opportunity_id,omitempty"`
	Type           InteractionType `json:"type" validate:"required,oneof=Email Call Meeting Note LinkedIn Other"`
	OccurredAt     time.Time       `json:"date_of_interaction"`
	Summary        string          `json:"summary" validate:"required"`
	FollowUpNeeded bool            `json:"follow_up_needed"`
	FollowUpDate   *time.Time      `json:"follow_up_date,omitempty" validate:"required_if=FollowUpNeeded true"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Contact     Related[Contact]     `json:"contact" validate:"-"`
	Opportunity Related[Opportunity] `json:"opportunity" validate:"-"`
}

// IsOverdue reports whether a pending follow-up date lies strictly before now.
// It is recomputed on every render and never stored.
func (i Interaction) IsOverdue(now time.Time) bool {
	if !i.FollowUpNeeded || i.FollowUpDate == nil {
		return false
	}
	return i.FollowUpDate.Before(now)
}

// Profile holds per-user display settings.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TimeZone  string    `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	Currency  string    `json:"currency,omitempty" validate:"omitempty,iso4217"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CurrencyCode returns the profile currency, falling back to DefaultCurrency.
func (p Profile) CurrencyCode() string {
	if p.Currency == "" {
		return DefaultCurrency
	}
	return p.Currency
}

// Location resolves the profile time zone, or time.Local when unset or unknown.
func (p Profile) Location() *time.Location {
	if p.TimeZone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}
