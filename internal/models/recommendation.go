package models

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation is one discovered content item belonging to one user.
// It has the same lifecycle shape as Activity but lives in its own table
// because it carries an actionable external link rather than an
// informational notice.
type Recommendation struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Category    string    `json:"category"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
