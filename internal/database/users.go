package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/josephshahen/nibras-api/internal/models"
)

// UserRepository handles persistent_users database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user with status=active and created_at=last_active=now
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO persistent_users (user_id, status, preferences, created_at, last_active)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING created_at, last_active
	`

	prefsJSON, err := json.Marshal(user.Preferences)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	user.Status = models.UserStatusActive
	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Status,
		prefsJSON,
		now,
	).Scan(&user.CreatedAt, &user.LastActive)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID. Returns ErrNotFound if the user does not
// exist so callers can clear a dangling local identity.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	var prefsJSON []byte

	query := `
		SELECT user_id, status, preferences, created_at, last_active
		FROM persistent_users
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Status,
		&prefsJSON,
		&user.CreatedAt,
		&user.LastActive,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := json.Unmarshal(prefsJSON, &user.Preferences); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}

	return user, nil
}

// UpdatePreferences overwrites the preferences and refreshes last_active.
// The status column is deliberately untouched.
func (r *UserRepository) UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) error {
	query := `
		UPDATE persistent_users
		SET preferences = $2, last_active = $3
		WHERE user_id = $1
	`

	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, id, prefsJSON, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateStatus sets the user status. The caller is responsible for checking
// the transition with models.UserStatus.CanTransitionTo.
func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status models.UserStatus) error {
	query := `
		UPDATE persistent_users
		SET status = $2
		WHERE user_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// TouchLastActive refreshes the last_active timestamp
func (r *UserRepository) TouchLastActive(ctx context.Context, id string) error {
	query := `
		UPDATE persistent_users
		SET last_active = $2
		WHERE user_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to touch last_active: %w", err)
	}

	return nil
}

// GetActiveUsers returns all users with status=active
func (r *UserRepository) GetActiveUsers(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT user_id, status, preferences, created_at, last_active
		FROM persistent_users
		WHERE status = $1
	`

	rows, err := r.db.QueryContext(ctx, query, models.UserStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			_ = err
		}
	}()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		var prefsJSON []byte

		err := rows.Scan(
			&user.ID,
			&user.Status,
			&prefsJSON,
			&user.CreatedAt,
			&user.LastActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		if err := json.Unmarshal(prefsJSON, &user.Preferences); err != nil {
			return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// ExpireInactive flips active users whose last_active is before cutoff to
// expired. Returns the number of users expired.
func (r *UserRepository) ExpireInactive(ctx context.Context, cutoff time.Time) (int, error) {
	query := `
		UPDATE persistent_users
		SET status = $1
		WHERE status = $2 AND last_active < $3
	`

	result, err := r.db.ExecContext(ctx, query, models.UserStatusExpired, models.UserStatusActive, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire inactive users: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// Delete removes a user. Activities and recommendations go with it via
// ON DELETE CASCADE; this is the user-level data erasure path.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM persistent_users WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
