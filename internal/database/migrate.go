package database

import (
	"context"
	"fmt"
)

// schema holds the DDL applied on startup. Statements are idempotent so
// repeated boots are safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS persistent_users (
		user_id TEXT PRIMARY KEY,
		status TEXT NOT NULL DEFAULT 'active',
		preferences JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_active TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS assistant_activities (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES persistent_users(user_id) ON DELETE CASCADE,
		activity_type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_read BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES persistent_users(user_id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		is_read BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_status_last_active ON persistent_users (status, last_active)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user_created ON assistant_activities (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_user_unread ON assistant_activities (user_id) WHERE is_read = false`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_user_created ON recommendations (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_user_unread ON recommendations (user_id) WHERE is_read = false`,
}

// Migrate applies the schema
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
