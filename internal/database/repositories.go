package database

import (
	"context"
	"time"

	"github.com/josephshahen/nibras-api/internal/models"
)

// UserRepositoryInterface defines the interface for user repository operations
// This interface enables better testability by allowing mock implementations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) error
	UpdateStatus(ctx context.Context, id string, status models.UserStatus) error
	TouchLastActive(ctx context.Context, id string) error
	GetActiveUsers(ctx context.Context) ([]*models.User, error)
	ExpireInactive(ctx context.Context, cutoff time.Time) (int, error)
	Delete(ctx context.Context, id string) error
}

// ActivityRepositoryInterface defines the interface for activity repository operations
type ActivityRepositoryInterface interface {
	Create(ctx context.Context, activity *models.Activity) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]*models.Activity, error)
	MarkAllRead(ctx context.Context, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// RecommendationRepositoryInterface defines the interface for recommendation repository operations
type RecommendationRepositoryInterface interface {
	Create(ctx context.Context, rec *models.Recommendation) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error)
	ListUnread(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error)
	MarkAllRead(ctx context.Context, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface           = (*UserRepository)(nil)
	_ ActivityRepositoryInterface       = (*ActivityRepository)(nil)
	_ RecommendationRepositoryInterface = (*RecommendationRepository)(nil)
)
