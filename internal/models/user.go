package models

import (
	"time"
)

// UserStatus represents the lifecycle state of an assistant subscription
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusExpired  UserStatus = "expired"
)

// Preferences holds the user's chosen content interests
type Preferences struct {
	SearchCategory string `json:"searchCategory" validate:"required,min=1,max=100"`
	CustomSearch   string `json:"customSearch,omitempty" validate:"max=500"`
}

// User represents one anonymous assistant subscription.
// The ID is generated client-side and is immutable once created.
type User struct {
	ID          string      `json:"user_id"`
	Status      UserStatus  `json:"status"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
	LastActive  time.Time   `json:"last_active"`
}

// CanTransitionTo reports whether the status transition is allowed.
// Valid transitions: active->inactive, active->expired, inactive->active.
// Expired is terminal.
func (s UserStatus) CanTransitionTo(next UserStatus) bool {
	switch s {
	case UserStatusActive:
		return next == UserStatusInactive || next == UserStatusExpired
	case UserStatusInactive:
		return next == UserStatusActive
	default:
		return false
	}
}
