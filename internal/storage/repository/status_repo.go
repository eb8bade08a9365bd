package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkovalev/playsquad/internal/storage/models"
)

// StatusRepository provides access to persisted manual status rows.
type StatusRepository interface {
	// Get retrieves a user's status row. Returns (nil, nil) when no row
	// exists.
	Get(ctx context.Context, userID string) (*models.StatusRow, error)

	// Seed inserts an 'online' row for the user if no row exists yet.
	// An existing row is left untouched.
	Seed(ctx context.Context, userID string) error

	// Upsert inserts or replaces the user's status row.
	Upsert(ctx context.Context, userID, status string) error

	// Delete removes the user's status row. Deleting a missing row is
	// not an error.
	Delete(ctx context.Context, userID string) error
}

// statusRepository implements StatusRepository using SQLite.
type statusRepository struct {
	db *sql.DB
}

// NewStatusRepository creates a new status repository.
func NewStatusRepository(db *sql.DB) StatusRepository {
	return &statusRepository{db: db}
}

// Get retrieves a user's status row.
func (r *statusRepository) Get(ctx context.Context, userID string) (*models.StatusRow, error) {
	var row models.StatusRow
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, status, updated_at FROM user_status WHERE user_id = ?", userID).
		Scan(&row.UserID, &row.Status, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get status for %s: %w", userID, err)
	}
	return &row, nil
}

// Seed inserts an 'online' row for the user if no row exists yet.
func (r *statusRepository) Seed(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_status (user_id, status, updated_at) VALUES (?, 'online', ?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to seed status for %s: %w", userID, err)
	}
	return nil
}

// Upsert inserts or replaces the user's status row.
func (r *statusRepository) Upsert(ctx context.Context, userID, status string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_status (user_id, status, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
	`, userID, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert status for %s: %w", userID, err)
	}
	return nil
}

// Delete removes the user's status row.
func (r *statusRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM user_status WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete status for %s: %w", userID, err)
	}
	return nil
}
