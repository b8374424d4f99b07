package assistant

import (
	"context"
	"time"

	"github.com/josephshahen/nibras-api/internal/database"
	"github.com/josephshahen/nibras-api/internal/models"
)

// Hand-rolled mocks with overridable function fields. Unset fields return
// zero values.

type mockUserRepo struct {
	CreateFunc            func(ctx context.Context, user *models.User) error
	GetByIDFunc           func(ctx context.Context, id string) (*models.User, error)
	UpdatePreferencesFunc func(ctx context.Context, id string, prefs models.Preferences) error
	UpdateStatusFunc      func(ctx context.Context, id string, status models.UserStatus) error
	TouchLastActiveFunc   func(ctx context.Context, id string) error
	GetActiveUsersFunc    func(ctx context.Context) ([]*models.User, error)
	ExpireInactiveFunc    func(ctx context.Context, cutoff time.Time) (int, error)
	DeleteFunc            func(ctx context.Context, id string) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, database.ErrNotFound
}

func (m *mockUserRepo) UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) error {
	if m.UpdatePreferencesFunc != nil {
		return m.UpdatePreferencesFunc(ctx, id, prefs)
	}
	return nil
}

func (m *mockUserRepo) UpdateStatus(ctx context.Context, id string, status models.UserStatus) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockUserRepo) TouchLastActive(ctx context.Context, id string) error {
	if m.TouchLastActiveFunc != nil {
		return m.TouchLastActiveFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) GetActiveUsers(ctx context.Context) ([]*models.User, error) {
	if m.GetActiveUsersFunc != nil {
		return m.GetActiveUsersFunc(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) ExpireInactive(ctx context.Context, cutoff time.Time) (int, error) {
	if m.ExpireInactiveFunc != nil {
		return m.ExpireInactiveFunc(ctx, cutoff)
	}
	return 0, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockActivityRepo struct {
	CreateFunc       func(ctx context.Context, activity *models.Activity) error
	ListByUserIDFunc func(ctx context.Context, userID string, limit int) ([]*models.Activity, error)
	MarkAllReadFunc  func(ctx context.Context, userID string) error
	CountUnreadFunc  func(ctx context.Context, userID string) (int, error)
}

func (m *mockActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, activity)
	}
	return nil
}

func (m *mockActivityRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockActivityRepo) MarkAllRead(ctx context.Context, userID string) error {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	return nil
}

func (m *mockActivityRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	if m.CountUnreadFunc != nil {
		return m.CountUnreadFunc(ctx, userID)
	}
	return 0, nil
}

type mockRecommendationRepo struct {
	CreateFunc       func(ctx context.Context, rec *models.Recommendation) error
	ListByUserIDFunc func(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error)
	ListUnreadFunc   func(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error)
	MarkAllReadFunc  func(ctx context.Context, userID string) error
	CountUnreadFunc  func(ctx context.Context, userID string) (int, error)
}

func (m *mockRecommendationRepo) Create(ctx context.Context, rec *models.Recommendation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return nil
}

func (m *mockRecommendationRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockRecommendationRepo) ListUnread(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error) {
	if m.ListUnreadFunc != nil {
		return m.ListUnreadFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockRecommendationRepo) MarkAllRead(ctx context.Context, userID string) error {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	return nil
}

func (m *mockRecommendationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	if m.CountUnreadFunc != nil {
		return m.CountUnreadFunc(ctx, userID)
	}
	return 0, nil
}

type mockRefreshTrigger struct {
	RefreshUserFunc func(ctx context.Context, userID string) (int, error)
}

func (m *mockRefreshTrigger) RefreshUser(ctx context.Context, userID string) (int, error) {
	if m.RefreshUserFunc != nil {
		return m.RefreshUserFunc(ctx, userID)
	}
	return 1, nil
}

var (
	_ database.UserRepositoryInterface           = (*mockUserRepo)(nil)
	_ database.ActivityRepositoryInterface       = (*mockActivityRepo)(nil)
	_ database.RecommendationRepositoryInterface = (*mockRecommendationRepo)(nil)
	_ RefreshTrigger                             = (*mockRefreshTrigger)(nil)
)
