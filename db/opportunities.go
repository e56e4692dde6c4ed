// ABOUTME: Opportunity database operations
// ABOUTME: Lists opportunities with their owning contact embedded through a LEFT JOIN
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

const opportunitySelect = `
	SELECT ` + opportunityColumns + `, ` + joinedContactColumns + `
	FROM opportunities o
	LEFT JOIN contacts c ON c.id = o.contact_id AND c.user_id = o.user_id
`

func scanOpportunity(row scanner) (*models.Opportunity, error) {
	var or opportunityRow
	var cr contactRow
	if err := row.Scan(append(or.dest(), cr.dest()...)...); err != nil {
		return nil, err
	}
	o := or.opportunity()
	o.Contact = cr.related()
	return &o, nil
}

func (s *Store) queryOpportunities(ctx context.Context, where string, args ...interface{}) ([]models.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx, opportunitySelect+where+` ORDER BY o.created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	defer rows.Close()

	var opportunities []models.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		opportunities = append(opportunities, *o)
	}
	return opportunities, rows.Err()
}

// CreateOpportunity inserts an opportunity. The referenced contact must belong to userID.
func (s *Store) CreateOpportunity(ctx context.Context, userID uuid.UUID, o *models.Opportunity) error {
	if _, err := s.GetContact(ctx, userID, o.ContactID); err != nil {
		return err
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.UserID = userID
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO opportunities (id, user_id, contact_id, name, description, value, currency, stage, priority,
			expected_close_date, actual_close_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID.String(), userID.String(), o.ContactID.String(), o.Name, o.Description, o.Value, o.Currency,
		string(o.Stage), o.Priority, o.ExpectedCloseDate, o.ActualCloseDate, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create opportunity: %w", err)
	}
	return nil
}

// GetOpportunity returns the opportunity with its contact embedded.
func (s *Store) GetOpportunity(ctx context.Context, userID, id uuid.UUID) (*models.Opportunity, error) {
	row := s.db.QueryRowContext(ctx, opportunitySelect+` WHERE o.id = ? AND o.user_id = ?`, id.String(), userID.String())
	o, err := scanOpportunity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	return o, nil
}

// ListOpportunities returns every opportunity of userID, newest first.
func (s *Store) ListOpportunities(ctx context.Context, userID uuid.UUID) ([]models.Opportunity, error) {
	return s.queryOpportunities(ctx, ` WHERE o.user_id = ?`, userID.String())
}

func (s *Store) ListOpportunitiesForContact(ctx context.Context, userID, contactID uuid.UUID) ([]models.Opportunity, error) {
	return s.queryOpportunities(ctx, ` WHERE o.user_id = ? AND o.contact_id = ?`, userID.String(), contactID.String())
}

// UpdateOpportunity overwrites every editable field of an existing opportunity.
func (s *Store) UpdateOpportunity(ctx context.Context, userID uuid.UUID, o *models.Opportunity) error {
	if _, err := s.GetContact(ctx, userID, o.ContactID); err != nil {
		return err
	}
	o.UserID = userID
	o.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE opportunities SET contact_id = ?, name = ?, description = ?, value = ?, currency = ?, stage = ?,
			priority = ?, expected_close_date = ?, actual_close_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, o.ContactID.String(), o.Name, o.Description, o.Value, o.Currency, string(o.Stage), o.Priority,
		o.ExpectedCloseDate, o.ActualCloseDate, o.UpdatedAt, o.ID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("failed to update opportunity: %w", err)
	}
	return requireAffected(res)
}

// DeleteOpportunity removes the opportunity and detaches interactions that referenced it.
func (s *Store) DeleteOpportunity(ctx context.Context, userID, id uuid.UUID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE interactions SET opportunity_id = NULL WHERE user_id = ? AND opportunity_id = ?`,
			userID.String(), id.String()); err != nil {
			return fmt.Errorf("failed to detach interactions: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM opportunities WHERE user_id = ? AND id = ?`, userID.String(), id.String())
		if err != nil {
			return fmt.Errorf("failed to delete opportunity: %w", err)
		}
		return requireAffected(res)
	})
}
