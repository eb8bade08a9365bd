// Package repository provides data access interfaces and their SQLite
// implementations.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkovalev/playsquad/internal/storage/models"
)

// ProfileRepository provides access to matchmaking profiles.
type ProfileRepository interface {
	// Get retrieves a profile by user ID. Returns (nil, nil) when no
	// profile exists; an absent profile is a valid domain state, not an
	// error.
	Get(ctx context.Context, userID string) (*models.Profile, error)

	// ListOthers retrieves every profile except the given user's, in a
	// stable order.
	ListOthers(ctx context.Context, excludeUserID string) ([]*models.Profile, error)

	// Upsert inserts or replaces a profile. The trait vector is replaced
	// wholesale; there are no partial updates.
	Upsert(ctx context.Context, p *models.Profile) error
}

// profileRepository implements ProfileRepository using SQLite.
type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = "user_id, nickname, avatar_url, archetype, cooperation, exploration, strategy, leadership, social, updated_at"

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.UserID, &p.Nickname, &p.AvatarURL, &p.Archetype,
		&p.Vector.Cooperation, &p.Vector.Exploration, &p.Vector.Strategy,
		&p.Vector.Leadership, &p.Vector.Social, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get retrieves a profile by user ID.
func (r *profileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id = ?", userID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}
	return p, nil
}

// ListOthers retrieves every profile except the given user's.
func (r *profileRepository) ListOthers(ctx context.Context, excludeUserID string) ([]*models.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id != ? ORDER BY user_id", excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return profiles, nil
}

// Upsert inserts or replaces a profile.
func (r *profileRepository) Upsert(ctx context.Context, p *models.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			nickname = excluded.nickname,
			avatar_url = excluded.avatar_url,
			archetype = excluded.archetype,
			cooperation = excluded.cooperation,
			exploration = excluded.exploration,
			strategy = excluded.strategy,
			leadership = excluded.leadership,
			social = excluded.social,
			updated_at = excluded.updated_at
	`, p.UserID, p.Nickname, p.AvatarURL, p.Archetype,
		p.Vector.Cooperation, p.Vector.Exploration, p.Vector.Strategy,
		p.Vector.Leadership, p.Vector.Social, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", p.UserID, err)
	}
	return nil
}
