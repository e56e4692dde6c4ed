// ABOUTME: Contact database operations
// ABOUTME: Handles per-user contact CRUD, email lookup and cascading delete
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pcrm/models"
)

func scanContact(row scanner) (*models.Contact, error) {
	var r contactRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, err
	}
	c := r.contact()
	return &c, nil
}

// CreateContact inserts a contact owned by userID, assigning ID and timestamps.
func (s *Store) CreateContact(ctx context.Context, userID uuid.UUID, contact *models.Contact) error {
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	contact.UserID = userID
	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, contact.ID.String(), userID.String(), contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.Company, contact.RoleTitle, contact.Notes, contact.Source, contact.LinkedInURL, contact.TwitterURL,
		contact.Website, contact.Address, contact.Birthday, contact.CreatedAt, contact.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// GetContact returns ErrNotFound when the contact is missing or owned by someone else.
func (s *Store) GetContact(ctx context.Context, userID, id uuid.UUID) (*models.Contact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts WHERE id = ? AND user_id = ?
	`, id.String(), userID.String())

	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

// ListContacts returns every contact of userID, newest first.
func (s *Store) ListContacts(ctx context.Context, userID uuid.UUID) ([]models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *contact)
	}
	return contacts, rows.Err()
}

// FindContactByEmail matches case-insensitively; it returns ErrNotFound for an empty email.
func (s *Store) FindContactByEmail(ctx context.Context, userID uuid.UUID, email string) (*models.Contact, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts WHERE user_id = ? AND LOWER(email) = LOWER(?)
		ORDER BY created_at DESC LIMIT 1
	`, userID.String(), email)

	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	return contact, nil
}

// UpdateContact overwrites every editable field of an existing contact.
func (s *Store) UpdateContact(ctx context.Context, userID uuid.UUID, contact *models.Contact) error {
	contact.UserID = userID
	contact.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE contacts SET first_name = ?, last_name = ?, email = ?, phone = ?, company = ?, role_title = ?,
			notes = ?, source = ?, linkedin_url = ?, twitter_url = ?, website = ?, address = ?, birthday = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, contact.FirstName, contact.LastName, contact.Email, contact.Phone, contact.Company, contact.RoleTitle,
		contact.Notes, contact.Source, contact.LinkedInURL, contact.TwitterURL, contact.Website, contact.Address,
		contact.Birthday, contact.UpdatedAt, contact.ID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return requireAffected(res)
}

// DeleteContact removes the contact together with its opportunities and interactions.
func (s *Store) DeleteContact(ctx context.Context, userID, id uuid.UUID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM contacts WHERE id = ? AND user_id = ?`,
			id.String(), userID.String()).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to look up contact: %w", err)
		}

		stmts := []string{
			`UPDATE interactions SET opportunity_id = NULL
			 WHERE user_id = ? AND opportunity_id IN (SELECT id FROM opportunities WHERE contact_id = ?)`,
			`DELETE FROM interactions WHERE user_id = ? AND contact_id = ?`,
			`DELETE FROM opportunities WHERE user_id = ? AND contact_id = ?`,
			`DELETE FROM contacts WHERE user_id = ? AND id = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, userID.String(), id.String()); err != nil {
				return fmt.Errorf("failed to delete contact: %w", err)
			}
		}
		return nil
	})
}
