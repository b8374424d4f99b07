package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType represents the kind of system-generated notice
type ActivityType string

const (
	ActivityTypeSearch     ActivityType = "search"
	ActivityTypeAnalysis   ActivityType = "analysis"
	ActivityTypeSuggestion ActivityType = "suggestion"
)

// Activity is one system-generated notice belonging to one user.
// Activities are append-only; the only mutation is the unread->read
// transition, applied in batch. Individual deletes do not exist, only
// user-level cascade erasure.
type Activity struct {
	ID          uuid.UUID    `json:"id"`
	UserID      string       `json:"user_id"`
	Type        ActivityType `json:"activity_type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	IsRead      bool         `json:"is_read"`
	CreatedAt   time.Time    `json:"created_at"`
}
