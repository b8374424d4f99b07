package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/josephshahen/nibras-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	if err := Validate.RegisterValidation("user_status", validateUserStatus); err != nil {
		panic(fmt.Sprintf("failed to register user_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("activity_type", validateActivityType); err != nil {
		panic(fmt.Sprintf("failed to register activity_type validator: %v", err))
	}
}

// validateUserStatus validates that a string is a valid UserStatus enum value
func validateUserStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.UserStatus(value) {
	case models.UserStatusActive, models.UserStatusInactive, models.UserStatusExpired:
		return true
	default:
		return false
	}
}

// validateActivityType validates that a string is a valid ActivityType enum value
func validateActivityType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch models.ActivityType(value) {
	case models.ActivityTypeSearch, models.ActivityTypeAnalysis, models.ActivityTypeSuggestion:
		return true
	default:
		return false
	}
}

// ValidateUserStatus checks a raw status string against the enum
func ValidateUserStatus(value string) error {
	switch models.UserStatus(value) {
	case models.UserStatusActive, models.UserStatusInactive, models.UserStatusExpired:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be active, inactive, or expired)", value)
	}
}

// ValidateActivityType checks a raw activity type string against the enum
func ValidateActivityType(value string) error {
	switch models.ActivityType(value) {
	case models.ActivityTypeSearch, models.ActivityTypeAnalysis, models.ActivityTypeSuggestion:
		return nil
	default:
		return fmt.Errorf("invalid activity type: %s (must be search, analysis, or suggestion)", value)
	}
}
