package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/josephshahen/nibras-api/internal/models"
)

const (
	// DefaultRecommendationLimit is the default page size for recommendation listings
	DefaultRecommendationLimit = 20
	// DefaultUnreadRecommendationLimit is the default page size for unread listings
	DefaultUnreadRecommendationLimit = 10
)

// RecommendationRepository handles recommendations database operations
type RecommendationRepository struct {
	db *DB
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(db *DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// Create appends a new unread recommendation
func (r *RecommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	query := `
		INSERT INTO recommendations (id, user_id, title, description, url, category, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Title,
		rec.Description,
		rec.URL,
		rec.Category,
		rec.IsRead,
		time.Now(),
	).Scan(&rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create recommendation: %w", err)
	}

	return nil
}

// ListByUserID returns the newest recommendations for a user, newest first
func (r *RecommendationRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error) {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	query := `
		SELECT id, user_id, title, description, url, category, is_read, created_at
		FROM recommendations
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	return r.list(ctx, query, userID, limit)
}

// ListUnread returns the newest unread recommendations for a user
func (r *RecommendationRepository) ListUnread(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error) {
	if limit <= 0 {
		limit = DefaultUnreadRecommendationLimit
	}

	query := `
		SELECT id, user_id, title, description, url, category, is_read, created_at
		FROM recommendations
		WHERE user_id = $1 AND is_read = false
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	return r.list(ctx, query, userID, limit)
}

func (r *RecommendationRepository) list(ctx context.Context, query string, userID string, limit int) ([]*models.Recommendation, error) {
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var recs []*models.Recommendation
	for rows.Next() {
		rec := &models.Recommendation{}
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Title,
			&rec.Description,
			&rec.URL,
			&rec.Category,
			&rec.IsRead,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}

	return recs, nil
}

// MarkAllRead marks every currently-unread recommendation of the user as
// read in one statement. Idempotent; same concurrency caveat as the
// activity log.
func (r *RecommendationRepository) MarkAllRead(ctx context.Context, userID string) error {
	query := `
		UPDATE recommendations
		SET is_read = true
		WHERE user_id = $1 AND is_read = false
	`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to mark recommendations read: %w", err)
	}

	return nil
}

// CountUnread returns the number of unread recommendations for a user
func (r *RecommendationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM recommendations
		WHERE user_id = $1 AND is_read = false
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread recommendations: %w", err)
	}

	return count, nil
}
