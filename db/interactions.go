// ABOUTME: Interaction database operations
// ABOUTME: Logs communications and lists them newest-first with contact and opportunity embedded
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

const interactionSelect = `
	SELECT i.id, i.user_id, i.contact_id, i.opportunity_id, i.type, i.date_of_interaction, i.summary,
		i.follow_up_needed, i.follow_up_date, i.created_at, i.updated_at,
		` + joinedContactColumns + `,
		` + joinedOpportunityColumns + `
	FROM interactions i
	LEFT JOIN contacts c ON c.id = i.contact_id AND c.user_id = i.user_id
	LEFT JOIN opportunities p ON p.id = i.opportunity_id AND p.user_id = i.user_id
`

func scanInteraction(row scanner) (*models.Interaction, error) {
	var it models.Interaction
	var opportunityID sql.NullString
	var kind string
	var followUp sql.NullTime
	var cr contactRow
	var or opportunityRow

	dest := []interface{}{
		&it.ID, &it.UserID, &it.ContactID, &opportunityID, &kind, &it.OccurredAt, &it.Summary,
		&it.FollowUpNeeded, &followUp, &it.CreatedAt, &it.UpdatedAt,
	}
	dest = append(dest, cr.dest()...)
	dest = append(dest, or.dest()...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	it.Type = models.InteractionType(kind)
	it.OpportunityID = parseNullID(opportunityID)
	it.FollowUpDate = timePtr(followUp)
	it.Contact = cr.related()
	it.Opportunity = or.related()
	return &it, nil
}

func (s *Store) queryInteractions(ctx context.Context, where string, args ...interface{}) ([]models.Interaction, error) {
	rows, err := s.db.QueryContext(ctx, interactionSelect+where+` ORDER BY i.date_of_interaction DESC, i.created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []models.Interaction
	for rows.Next() {
		it, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, *it)
	}
	return interactions, rows.Err()
}

// CreateInteraction logs an interaction against a contact and optionally an opportunity of userID.
func (s *Store) CreateInteraction(ctx context.Context, userID uuid.UUID, it *models.Interaction) error {
	if _, err := s.GetContact(ctx, userID, it.ContactID); err != nil {
		return err
	}
	if it.OpportunityID != nil {
		if _, err := s.GetOpportunity(ctx, userID, *it.OpportunityID); err != nil {
			return err
		}
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	it.UserID = userID
	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now
	if !it.FollowUpNeeded {
		it.FollowUpDate = nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interactions (id, user_id, contact_id, opportunity_id, type, date_of_interaction, summary,
			follow_up_needed, follow_up_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, it.ID.String(), userID.String(), it.ContactID.String(), nullableID(it.OpportunityID), string(it.Type),
		it.OccurredAt.UTC(), it.Summary, it.FollowUpNeeded, it.FollowUpDate, it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create interaction: %w", err)
	}
	return nil
}

func (s *Store) GetInteraction(ctx context.Context, userID, id uuid.UUID) (*models.Interaction, error) {
	row := s.db.QueryRowContext(ctx, interactionSelect+` WHERE i.id = ? AND i.user_id = ?`, id.String(), userID.String())
	it, err := scanInteraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interaction: %w", err)
	}
	return it, nil
}

// ListInteractions returns every interaction of userID, most recent occurrence first.
func (s *Store) ListInteractions(ctx context.Context, userID uuid.UUID) ([]models.Interaction, error) {
	return s.queryInteractions(ctx, ` WHERE i.user_id = ?`, userID.String())
}

func (s *Store) ListInteractionsForContact(ctx context.Context, userID, contactID uuid.UUID) ([]models.Interaction, error) {
	return s.queryInteractions(ctx, ` WHERE i.user_id = ? AND i.contact_id = ?`, userID.String(), contactID.String())
}
