// ABOUTME: Store type shared by the record repositories
// ABOUTME: Scopes every query to one user and scans joined rows into embedded related records
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/models"
)

// ErrNotFound is returned when a record does not exist or belongs to another user.
var ErrNotFound = errors.New("record not found")

// Store reads and writes CRM records owned by a single user per call.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that need raw access.
func (s *Store) DB() *sql.DB {
	return s.db
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseNullID(ns sql.NullString) *uuid.UUID {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	id, err := uuid.Parse(ns.String)
	if err != nil {
		return nil
	}
	return &id
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

const contactColumns = `id, user_id, first_name, last_name, email, phone, company, role_title, notes, source,
	linkedin_url, twitter_url, website, address, birthday, created_at, updated_at`

const joinedContactColumns = `c.id, c.user_id, c.first_name, c.last_name, c.email, c.phone, c.company, c.role_title, c.notes, c.source,
	c.linkedin_url, c.twitter_url, c.website, c.address, c.birthday, c.created_at, c.updated_at`

// contactRow receives contact columns that may be NULL when reached through a LEFT JOIN.
type contactRow struct {
	id, userID                          sql.NullString
	firstName, lastName, email, phone   sql.NullString
	company, roleTitle, notes, source   sql.NullString
	linkedIn, twitter, website, address sql.NullString
	birthday, createdAt, updatedAt      sql.NullTime
}

func (r *contactRow) dest() []interface{} {
	return []interface{}{
		&r.id, &r.userID, &r.firstName, &r.lastName, &r.email, &r.phone, &r.company, &r.roleTitle,
		&r.notes, &r.source, &r.linkedIn, &r.twitter, &r.website, &r.address,
		&r.birthday, &r.createdAt, &r.updatedAt,
	}
}

func (r *contactRow) contact() models.Contact {
	c := models.Contact{
		FirstName:   r.firstName.String,
		LastName:    r.lastName.String,
		Email:       r.email.String,
		Phone:       r.phone.String,
		Company:     r.company.String,
		RoleTitle:   r.roleTitle.String,
		Notes:       r.notes.String,
		Source:      r.source.String,
		LinkedInURL: r.linkedIn.String,
		TwitterURL:  r.twitter.String,
		Website:     r.website.String,
		Address:     r.address.String,
		Birthday:    timePtr(r.birthday),
		CreatedAt:   r.createdAt.Time,
		UpdatedAt:   r.updatedAt.Time,
	}
	if id := parseNullID(r.id); id != nil {
		c.ID = *id
	}
	if uid := parseNullID(r.userID); uid != nil {
		c.UserID = *uid
	}
	return c
}

func (r *contactRow) related() models.Related[models.Contact] {
	if !r.id.Valid {
		return models.Related[models.Contact]{}
	}
	return models.Embed(r.contact())
}

const opportunityColumns = `o.id, o.user_id, o.contact_id, o.name, o.description, o.value, o.currency, o.stage, o.priority,
	o.expected_close_date, o.actual_close_date, o.created_at, o.updated_at`

const joinedOpportunityColumns = `p.id, p.user_id, p.contact_id, p.name, p.description, p.value, p.currency, p.stage, p.priority,
	p.expected_close_date, p.actual_close_date, p.created_at, p.updated_at`

type opportunityRow struct {
	id, userID, contactID      sql.NullString
	name, description          sql.NullString
	value                      sql.NullFloat64
	currency, stage            sql.NullString
	priority                   sql.NullInt64
	expectedClose, actualClose sql.NullTime
	createdAt, updatedAt       sql.NullTime
}

func (r *opportunityRow) dest() []interface{} {
	return []interface{}{
		&r.id, &r.userID, &r.contactID, &r.name, &r.description, &r.value, &r.currency, &r.stage,
		&r.priority, &r.expectedClose, &r.actualClose, &r.createdAt, &r.updatedAt,
	}
}

func (r *opportunityRow) opportunity() models.Opportunity {
	o := models.Opportunity{
		Name:              r.name.String,
		Description:       r.description.String,
		Currency:          r.currency.String,
		Stage:             models.Stage(r.stage.String),
		ExpectedCloseDate: timePtr(r.expectedClose),
		ActualCloseDate:   timePtr(r.actualClose),
		CreatedAt:         r.createdAt.Time,
		UpdatedAt:         r.updatedAt.Time,
	}
	if id := parseNullID(r.id); id != nil {
		o.ID = *id
	}
	if uid := parseNullID(r.userID); uid != nil {
		o.UserID = *uid
	}
	if cid := parseNullID(r.contactID); cid != nil {
		o.ContactID = *cid
	}
	if r.value.Valid {
		v := r.value.Float64
		o.Value = &v
	}
	if r.priority.Valid {
		p := int(r.priority.Int64)
		o.Priority = &p
	}
	return o
}

func (r *opportunityRow) related() models.Related[models.Opportunity] {
	if !r.id.Valid {
		return models.Related[models.Opportunity]{}
	}
	return models.Embed(r.opportunity())
}
