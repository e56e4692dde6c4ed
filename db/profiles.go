// ABOUTME: Profile database operations
// ABOUTME: Reads and upserts the per-user time zone and currency settings
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

// GetProfile returns the stored profile, or an unsaved default profile when none exists.
func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, time_zone, currency, created_at, updated_at
		FROM profiles WHERE user_id = ?
	`, userID.String()).Scan(&p.ID, &p.UserID, &p.TimeZone, &p.Currency, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Profile{UserID: userID, Currency: models.DefaultCurrency}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// SaveProfile inserts or replaces the profile of userID.
func (s *Store) SaveProfile(ctx context.Context, userID uuid.UUID, p *models.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.UserID = userID
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, user_id, time_zone, currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			time_zone = excluded.time_zone,
			currency = excluded.currency,
			updated_at = excluded.updated_at
	`, p.ID.String(), userID.String(), p.TimeZone, p.Currency, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
