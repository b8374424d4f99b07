package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/josephshahen/nibras-api/internal/assistant"
	"github.com/josephshahen/nibras-api/internal/database"
	"github.com/josephshahen/nibras-api/internal/models"
	"go.uber.org/zap"
)

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

type mockRefresher struct {
	RunFunc         func(ctx context.Context) (int, error)
	RefreshUserFunc func(ctx context.Context, userID string) (int, error)
}

func (m *mockRefresher) Run(ctx context.Context) (int, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return 0, nil
}

func (m *mockRefresher) RefreshUser(ctx context.Context, userID string) (int, error) {
	if m.RefreshUserFunc != nil {
		return m.RefreshUserFunc(ctx, userID)
	}
	return 0, nil
}

var (
	_ database.UserRepositoryInterface           = (*mockUserRepo)(nil)
	_ database.ActivityRepositoryInterface       = (*mockActivityRepo)(nil)
	_ database.RecommendationRepositoryInterface = (*mockRecommendationRepo)(nil)
	_ RefreshRunner                              = (*mockRefresher)(nil)
)

func newTestRouter(users *mockUserRepo, activities *mockActivityRepo, recs *mockRecommendationRepo, refresher RefreshRunner) *mux.Router {
	svc := assistant.NewService(users, activities, zap.NewNop())
	h := NewAssistantHandler(svc, activities, recs, refresher)

	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/api/v1/assistant").Subrouter())
	return r
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response envelope: %v (body %q)", err, w.Body.String())
	}
	return env
}

func TestCreateUserHandler(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		CreateFunc: func(ctx context.Context, user *models.User) error {
			user.Status = models.UserStatusActive
			user.CreatedAt = time.Now()
			user.LastActive = user.CreatedAt
			return nil
		},
	}
	r := newTestRouter(users, &mockActivityRepo{}, &mockRecommendationRepo{}, &mockRefresher{})

	body := `{"user_id":"user-cafe0123","preferences":{"searchCategory":"technology"}}`
	req := httptest.NewRequest("POST", "/api/v1/assistant/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d (body %q)", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Error("Expected success envelope")
	}

	var resp UserResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("Failed to decode user response: %v", err)
	}
	if resp.User.ID != "user-cafe0123" {
		t.Errorf("Expected client-supplied id, got %q", resp.User.ID)
	}
	if resp.User.Status != models.UserStatusActive {
		t.Errorf("Expected status active, got %s", resp.User.Status)
	}
	if resp.LastActiveAgo != "just now" {
		t.Errorf("Expected fresh relative timestamp, got %q", resp.LastActiveAgo)
	}
}

func TestCreateUserHandlerValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid JSON", body: `{`},
		{name: "missing category", body: `{"preferences":{"searchCategory":""}}`},
		{name: "bad id format", body: `{"user_id":"bogus","preferences":{"searchCategory":"news"}}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestRouter(&mockUserRepo{}, &mockActivityRepo{}, &mockRecommendationRepo{}, &mockRefresher{})

			req := httptest.NewRequest("POST", "/api/v1/assistant/users", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d (body %q)", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetUserHandlerNotFound(t *testing.T) {
	t.Parallel()

	r := newTestRouter(&mockUserRepo{}, &mockActivityRepo{}, &mockRecommendationRepo{}, &mockRefresher{})

	req := httptest.NewRequest("GET", "/api/v1/assistant/users/user-deadbeef", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Success {
		t.Error("Expected error envelope")
	}
}

func TestGetUserHandler(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{
				ID:          id,
				Status:      models.UserStatusActive,
				Preferences: models.Preferences{SearchCategory: "news"},
				LastActive:  time.Now().Add(-45 * time.Minute),
			}, nil
		},
	}
	r := newTestRouter(users, &mockActivityRepo{}, &mockRecommendationRepo{}, &mockRefresher{})

	req := httptest.NewRequest("GET", "/api/v1/assistant/users/user-cafe0123", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp UserResponse
	env := decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("Failed to decode user response: %v", err)
	}
	if resp.LastActiveAgo != "45 minutes ago" {
		t.Errorf("Expected relative timestamp, got %q", resp.LastActiveAgo)
	}
}

func TestReactivateExpiredUserConflicts(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Status: models.UserStatusExpired}, nil
		},
	}
	r := newTestRouter(users, &mockActivityRepo{}, &mockRecommendationRepo{}, &mockRefresher{})

	req := httptest.NewRequest("POST", "/api/v1/assistant/users/user-cafe0123/reactivate", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for reactivating an expired user, got %d", w.Code)
	}
}

func TestListActivitiesHandler(t *testing.T) {
	t.Parallel()

	now := time.Now()
	activities := &mockActivityRepo{
		ListByUserIDFunc: func(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
			if limit != database.DefaultActivityLimit {
				t.Errorf("Expected default limit %d, got %d", database.DefaultActivityLimit, limit)
			}
			return []*models.Activity{
				{ID: uuid.New(), UserID: userID, Type: models.ActivityTypeSearch, Title: "Searched", CreatedAt: now.Add(-2 * time.Minute)},
				{ID: uuid.New(), UserID: userID, Type: models.ActivityTypeAnalysis, Title: "Analyzed", IsRead: true, CreatedAt: now.Add(-3 * time.Hour)},
			}, nil
		},
		CountUnreadFunc: func(ctx context.Context, userID string) (int, error) {
			return 1, nil
		},
	}
	r := newTestRouter(&mockUserRepo{}, activities, &mockRecommendationRepo{}, &mockRefresher{})

	req := httptest.NewRequest("GET", "/api/v1/assistant/users/user-cafe0123/activities", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (body %q)", w.Code, w.Body.String())
	}

	var resp ListActivitiesResponse
	env := decodeEnvelope(t, w)
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("Failed to decode activities response: %v", err)
	}
	if len(resp.Activities) != 2 {
		t.Fatalf("Expected 2 activities, got %d", len(resp.Activities))
	}
	if resp.UnreadCount != 1 {
		t.Errorf("Expected unread count 1, got %d", resp.UnreadCount)
	}
	if resp.Activities[0].TimeAgo != "2 minutes ago" {
		t.Errorf("Expected relative timestamp, got %q", resp.Activities[0].TimeAgo)
	}
}

func TestListRecommendationsUnreadFilter(t *testing.T) {
	t.Parallel()

	unreadCalled := false
	recs := &mockRecommendationRepo{
		ListUnreadFunc: func(ctx context.Context, userID string, limit int) ([]*models.Recommendation, error) {
			unreadCalled = true
			if limit != database.DefaultUnreadRecommendationLimit {
				t.Errorf("Expected default unread limit %d, got %d", database.DefaultUnreadRecommendationLimit, limit)
			}
			return []*models.Recommendation{
				{ID: uuid.New(), UserID: userID, Title: "Something new", CreatedAt: time.Now()},
			}, nil
		},
		CountUnreadFunc: func(ctx context.Context, userID string) (int, error) {
			return 1, nil
		},
	}
	r := newTestRouter(&mockUserRepo{}, &mockActivityRepo{}, recs, &mockRefresher{})

	req := httptest.NewRequest("GET", "/api/v1/assistant/users/user-cafe0123/recommendations?unread=true", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !unreadCalled {
		t.Error("Expected the unread listing to be used")
	}
}

func TestMarkReadHandlersAreIdempotent(t *testing.T) {
	t.Parallel()

	markCalls := 0
	activities := &mockActivityRepo{
		MarkAllReadFunc: func(ctx context.Context, userID string) error {
			markCalls++
			return nil
		},
	}
	r := newTestRouter(&mockUserRepo{}, activities, &mockRecommendationRepo{}, &mockRefresher{})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/v1/assistant/users/user-cafe0123/activities/read", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Call %d: expected 200, got %d", i, w.Code)
		}
	}
	if markCalls != 2 {
		t.Errorf("Expected 2 mark-read calls, got %d", markCalls)
	}
}

func TestDeleteUserHandler(t *testing.T) {
	t.Parallel()

	deleted := ""
	users := &mockUserRepo{
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	r := newTestRouter(users, &mockActivityRepo{}, &mockRecommendationRepo{}, &mockRefresher{})

	req := httptest.NewRequest("DELETE", "/api/v1/assistant/users/user-cafe0123", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if deleted != "user-cafe0123" {
		t.Errorf("Expected delete of user-cafe0123, got %q", deleted)
	}
}

func TestRefreshHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		body          string
		wantUser      string
		wantRun       bool
		wantProcessed int
	}{
		{name: "full pass without body", body: "", wantRun: true, wantProcessed: 5},
		{name: "single user", body: `{"user_id":"user-cafe0123"}`, wantUser: "user-cafe0123", wantProcessed: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ranFull := false
			var gotUser string
			refresher := &mockRefresher{
				RunFunc: func(ctx context.Context) (int, error) {
					ranFull = true
					return 5, nil
				},
				RefreshUserFunc: func(ctx context.Context, userID string) (int, error) {
					gotUser = userID
					return 1, nil
				},
			}
			r := newTestRouter(&mockUserRepo{}, &mockActivityRepo{}, &mockRecommendationRepo{}, refresher)

			var req *http.Request
			if tt.body == "" {
				req = httptest.NewRequest("POST", "/api/v1/assistant/refresh", nil)
			} else {
				req = httptest.NewRequest("POST", "/api/v1/assistant/refresh", bytes.NewBufferString(tt.body))
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d (body %q)", w.Code, w.Body.String())
			}
			if ranFull != tt.wantRun {
				t.Errorf("Expected full run=%v, got %v", tt.wantRun, ranFull)
			}
			if gotUser != tt.wantUser {
				t.Errorf("Expected user %q, got %q", tt.wantUser, gotUser)
			}

			var resp RefreshResponse
			env := decodeEnvelope(t, w)
			if err := json.Unmarshal(env.Data, &resp); err != nil {
				t.Fatalf("Failed to decode refresh response: %v", err)
			}
			if resp.ProcessedUsers != tt.wantProcessed {
				t.Errorf("Expected %d processed users, got %d", tt.wantProcessed, resp.ProcessedUsers)
			}
		})
	}
}
