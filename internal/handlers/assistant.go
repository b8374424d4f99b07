package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/josephshahen/nibras-api/internal/assistant"
	"github.com/josephshahen/nibras-api/internal/database"
	"github.com/josephshahen/nibras-api/internal/identity"
	"github.com/josephshahen/nibras-api/internal/models"
	"github.com/josephshahen/nibras-api/internal/validation"
)

// RefreshRunner triggers background-refresh passes synchronously
type RefreshRunner interface {
	Run(ctx context.Context) (int, error)
	RefreshUser(ctx context.Context, userID string) (int, error)
}

// AssistantHandler handles assistant account and feed requests
type AssistantHandler struct {
	service         *assistant.Service
	activities      database.ActivityRepositoryInterface
	recommendations database.RecommendationRepositoryInterface
	refresher       RefreshRunner
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(service *assistant.Service, activities database.ActivityRepositoryInterface, recommendations database.RecommendationRepositoryInterface, refresher RefreshRunner) *AssistantHandler {
	return &AssistantHandler{
		service:         service,
		activities:      activities,
		recommendations: recommendations,
		refresher:       refresher,
	}
}

// RegisterRoutes registers assistant routes on the given router.
// The router should already carry the /assistant prefix.
func (h *AssistantHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users", h.CreateUser).Methods("POST")
	r.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
	r.HandleFunc("/users/{id}", h.DeleteUser).Methods("DELETE")
	r.HandleFunc("/users/{id}/preferences", h.UpdatePreferences).Methods("PATCH")
	r.HandleFunc("/users/{id}/deactivate", h.Deactivate).Methods("POST")
	r.HandleFunc("/users/{id}/reactivate", h.Reactivate).Methods("POST")
	r.HandleFunc("/users/{id}/activities", h.ListActivities).Methods("GET")
	r.HandleFunc("/users/{id}/activities/read", h.MarkActivitiesRead).Methods("POST")
	r.HandleFunc("/users/{id}/recommendations", h.ListRecommendations).Methods("GET")
	r.HandleFunc("/users/{id}/recommendations/read", h.MarkRecommendationsRead).Methods("POST")
	r.HandleFunc("/refresh", h.Refresh).Methods("POST")
}

const (
	// MaxFeedLimit is the maximum number of feed entries returned per request
	MaxFeedLimit = 100
)

// CreateUserRequest represents a create account request. The client may
// supply its own identifier so a locally cached id survives registration.
type CreateUserRequest struct {
	UserID      string             `json:"user_id,omitempty"`
	Preferences models.Preferences `json:"preferences" validate:"required"`
}

// UpdatePreferencesRequest represents a preferences update request
type UpdatePreferencesRequest struct {
	Preferences models.Preferences `json:"preferences" validate:"required"`
}

// UserResponse wraps a user with a human-readable activity timestamp
type UserResponse struct {
	User          *models.User `json:"user"`
	LastActiveAgo string       `json:"last_active_ago"`
}

// ActivityEntry is one feed entry with a human-readable timestamp
type ActivityEntry struct {
	*models.Activity
	TimeAgo string `json:"time_ago"`
}

// RecommendationEntry is one recommendation with a human-readable timestamp
type RecommendationEntry struct {
	*models.Recommendation
	TimeAgo string `json:"time_ago"`
}

// ListActivitiesResponse represents the activity feed response
type ListActivitiesResponse struct {
	Activities  []ActivityEntry `json:"activities"`
	UnreadCount int             `json:"unread_count"`
}

// ListRecommendationsResponse represents the recommendation feed response
type ListRecommendationsResponse struct {
	Recommendations []RecommendationEntry `json:"recommendations"`
	UnreadCount     int                   `json:"unread_count"`
}

// RefreshResponse reports how many users a refresh pass processed
type RefreshResponse struct {
	ProcessedUsers int `json:"processed_users"`
}

// CreateUser creates a new assistant account
func (h *AssistantHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	if err := validation.Validate.Struct(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", validationErrors.Error())
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request")
		return
	}

	if req.UserID != "" && !identity.Valid(req.UserID) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user id format")
		return
	}

	user, err := h.service.CreateAccount(r.Context(), req.UserID, req.Preferences)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create account")
		return
	}

	respondJSON(w, http.StatusCreated, UserResponse{
		User:          user,
		LastActiveAgo: assistant.FormatRelativeTime(user.LastActive, time.Now()),
	})
}

// GetUser loads an assistant account by id
func (h *AssistantHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.service.LoadAccount(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "User not found")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load account")
		return
	}

	respondJSON(w, http.StatusOK, UserResponse{
		User:          user,
		LastActiveAgo: assistant.FormatRelativeTime(user.LastActive, time.Now()),
	})
}

// DeleteUser erases the account and all feed entries owned by it
func (h *AssistantHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.EraseAccount(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "User not found")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to erase account")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"user_id": id, "status": "erased"})
}

// UpdatePreferences overwrites the user's preferences
func (h *AssistantHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	if err := validation.Validate.Struct(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", validationErrors.Error())
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request")
		return
	}

	if err := h.service.UpdatePreferences(r.Context(), id, req.Preferences); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "User not found")
			return
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update preferences")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"user_id": id, "status": "updated"})
}

// Deactivate pauses the assistant without erasing the account
func (h *AssistantHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Deactivate)
}

// Reactivate resumes a paused assistant. Expired accounts are rejected;
// the client must register again.
func (h *AssistantHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reactivate)
}

func (h *AssistantHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, string) error) {
	id := mux.Vars(r)["id"]

	if err := op(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "User not found")
			return
		}
		respondJSONError(w, http.StatusConflict, "Conflict", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"user_id": id, "status": "ok"})
}

// ListActivities returns the most recent activities for a user
func (h *AssistantHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	limit := parseLimit(r, database.DefaultActivityLimit)

	activities, err := h.activities.ListByUserID(r.Context(), id, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list activities")
		return
	}

	unread, err := h.activities.CountUnread(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to count unread activities")
		return
	}

	now := time.Now()
	entries := make([]ActivityEntry, 0, len(activities))
	for _, a := range activities {
		entries = append(entries, ActivityEntry{
			Activity: a,
			TimeAgo:  assistant.FormatRelativeTime(a.CreatedAt, now),
		})
	}

	respondJSON(w, http.StatusOK, ListActivitiesResponse{
		Activities:  entries,
		UnreadCount: unread,
	})
}

// MarkActivitiesRead marks every activity for the user as read. Idempotent.
func (h *AssistantHandler) MarkActivitiesRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.activities.MarkAllRead(r.Context(), id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to mark activities read")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"user_id": id, "status": "ok"})
}

// ListRecommendations returns recommendations for a user. With ?unread=true
// only unread entries are returned.
func (h *AssistantHandler) ListRecommendations(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	var (
		recs []*models.Recommendation
		err  error
	)
	if r.URL.Query().Get("unread") == "true" {
		limit := parseLimit(r, database.DefaultUnreadRecommendationLimit)
		recs, err = h.recommendations.ListUnread(ctx, id, limit)
	} else {
		limit := parseLimit(r, database.DefaultActivityLimit)
		recs, err = h.recommendations.ListByUserID(ctx, id, limit)
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list recommendations")
		return
	}

	unread, err := h.recommendations.CountUnread(ctx, id)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to count unread recommendations")
		return
	}

	now := time.Now()
	entries := make([]RecommendationEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, RecommendationEntry{
			Recommendation: rec,
			TimeAgo:        assistant.FormatRelativeTime(rec.CreatedAt, now),
		})
	}

	respondJSON(w, http.StatusOK, ListRecommendationsResponse{
		Recommendations: entries,
		UnreadCount:     unread,
	})
}

// MarkRecommendationsRead marks every recommendation for the user as read
func (h *AssistantHandler) MarkRecommendationsRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.recommendations.MarkAllRead(r.Context(), id); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to mark recommendations read")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"user_id": id, "status": "ok"})
}

// RefreshRequest optionally narrows a refresh pass to one user
type RefreshRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// Refresh runs a refresh pass synchronously. Without a user_id it processes
// every active user; the inactivity sweep runs either way.
func (h *AssistantHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
			return
		}
	}

	var (
		processed int
		err       error
	)
	if req.UserID != "" {
		processed, err = h.refresher.RefreshUser(r.Context(), req.UserID)
	} else {
		processed, err = h.refresher.Run(r.Context())
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Refresh pass failed")
		return
	}

	respondJSON(w, http.StatusOK, RefreshResponse{ProcessedUsers: processed})
}

// parseLimit reads the limit query parameter, clamped to MaxFeedLimit
func parseLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	if parsed > MaxFeedLimit {
		return MaxFeedLimit
	}
	return parsed
}
