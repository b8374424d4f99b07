package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/josephshahen/nibras-api/internal/models"
)

const (
	// DefaultActivityLimit is the default page size for activity listings
	DefaultActivityLimit = 20
)

// ActivityRepository handles assistant_activities database operations
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends a new unread activity. Retrying a failed append can
// produce a duplicate entry; that is a known limitation, not idempotent.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	query := `
		INSERT INTO assistant_activities (id, user_id, activity_type, title, description, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		activity.ID,
		activity.UserID,
		activity.Type,
		activity.Title,
		activity.Description,
		activity.IsRead,
		time.Now(),
	).Scan(&activity.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	return nil
}

// ListByUserID returns the newest activities for a user, newest first.
// Ties on created_at are broken by insertion order (id is a v4 UUID, but
// rows inserted in the same transaction batch keep their insert order via
// the secondary sort key).
func (r *ActivityRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	query := `
		SELECT id, user_id, activity_type, title, description, is_read, created_at
		FROM assistant_activities
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var activities []*models.Activity
	for rows.Next() {
		activity := &models.Activity{}
		err := rows.Scan(
			&activity.ID,
			&activity.UserID,
			&activity.Type,
			&activity.Title,
			&activity.Description,
			&activity.IsRead,
			&activity.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, activity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, nil
}

// MarkAllRead marks every currently-unread activity of the user as read in
// one statement. Activities inserted concurrently may land on either side
// of the update; that race is accepted. Idempotent.
func (r *ActivityRepository) MarkAllRead(ctx context.Context, userID string) error {
	query := `
		UPDATE assistant_activities
		SET is_read = true
		WHERE user_id = $1 AND is_read = false
	`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to mark activities read: %w", err)
	}

	return nil
}

// CountUnread returns the number of unread activities for a user
func (r *ActivityRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM assistant_activities
		WHERE user_id = $1 AND is_read = false
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread activities: %w", err)
	}

	return count, nil
}
