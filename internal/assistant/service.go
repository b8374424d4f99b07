// Package assistant implements the persistent-assistant subsystem: account
// lifecycle, the client-side session controller, and the browser-storage
// port it persists its cached identity through.
package assistant

import (
	"context"
	"fmt"

	"github.com/josephshahen/nibras-api/internal/database"
	"github.com/josephshahen/nibras-api/internal/identity"
	"github.com/josephshahen/nibras-api/internal/models"
	"go.uber.org/zap"
)

// Service manages assistant account lifecycle: creation, loading,
// preference updates and status transitions.
type Service struct {
	users      database.UserRepositoryInterface
	activities database.ActivityRepositoryInterface
	logger     *zap.Logger
}

// NewService creates a new assistant account service
func NewService(users database.UserRepositoryInterface, activities database.ActivityRepositoryInterface, logger *zap.Logger) *Service {
	return &Service{
		users:      users,
		activities: activities,
		logger:     logger,
	}
}

// CreateAccount persists a new active user and emits the welcome activity.
// If userID is empty a fresh identifier is generated. On a failed insert
// nothing is persisted and the operation is safe to retry with the same id.
// A failed welcome append is logged but does not undo account creation;
// the worst case is a missing notice.
func (s *Service) CreateAccount(ctx context.Context, userID string, prefs models.Preferences) (*models.User, error) {
	if userID == "" {
		generated, err := identity.Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate identity: %w", err)
		}
		userID = generated
	}

	user := &models.User{
		ID:          userID,
		Status:      models.UserStatusActive,
		Preferences: prefs,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	welcome := &models.Activity{
		UserID:      user.ID,
		Type:        models.ActivityTypeSuggestion,
		Title:       "Your assistant is active",
		Description: fmt.Sprintf("We will look for %s content for you in the background.", prefs.SearchCategory),
	}
	if err := s.activities.Create(ctx, welcome); err != nil {
		s.logger.Warn("failed_to_create_welcome_activity",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}

	return user, nil
}

// LoadAccount fetches a user by id. Returns database.ErrNotFound when the
// id does not exist remotely; callers must then clear any locally cached
// identity so a dangling id is never referenced again.
func (s *Service) LoadAccount(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == database.ErrNotFound {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return user, nil
}

// UpdatePreferences overwrites the preferences and refreshes last_active.
// It never changes status.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, prefs models.Preferences) error {
	if err := s.users.UpdatePreferences(ctx, userID, prefs); err != nil {
		if err == database.ErrNotFound {
			return database.ErrNotFound
		}
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return nil
}

// Touch refreshes the user's last_active timestamp
func (s *Service) Touch(ctx context.Context, userID string) error {
	if err := s.users.TouchLastActive(ctx, userID); err != nil {
		return fmt.Errorf("failed to touch last_active: %w", err)
	}
	return nil
}

// Deactivate transitions an active user to inactive. The cached identity
// stays with the client so the user can come back.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	return s.transition(ctx, userID, models.UserStatusInactive)
}

// Reactivate transitions an inactive user back to active. Expired users
// cannot be reactivated; they must create a fresh account.
func (s *Service) Reactivate(ctx context.Context, userID string) error {
	return s.transition(ctx, userID, models.UserStatusActive)
}

func (s *Service) transition(ctx context.Context, userID string, next models.UserStatus) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == database.ErrNotFound {
			return database.ErrNotFound
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	if user.Status == next {
		return nil
	}
	if !user.Status.CanTransitionTo(next) {
		return fmt.Errorf("cannot transition user %s from %s to %s", userID, user.Status, next)
	}

	if err := s.users.UpdateStatus(ctx, userID, next); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	s.logger.Info("user_status_changed",
		zap.String("user_id", userID),
		zap.String("from", string(user.Status)),
		zap.String("to", string(next)),
	)

	return nil
}

// EraseAccount deletes the user and, via cascade, every activity and
// recommendation owned by it. This is the only bulk-delete path for feed
// entries.
func (s *Service) EraseAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if err == database.ErrNotFound {
			return database.ErrNotFound
		}
		return fmt.Errorf("failed to erase account: %w", err)
	}

	s.logger.Info("user_account_erased", zap.String("user_id", userID))
	return nil
}
