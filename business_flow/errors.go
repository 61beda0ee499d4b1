// Package businessflow contains the core business logic and use cases for the lead dashboard
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrPasswordLoginOnly  = errors.New("account has no password; use the linked provider to sign in")
	ErrSessionNotFound    = errors.New("session not found")

	// Campaign-related errors
	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrCampaignAccessDenied  = errors.New("campaign access denied")
	ErrCampaignNameRequired  = errors.New("campaign name is required")
	ErrInvalidCampaignStatus = errors.New("invalid campaign status")

	// Lead-related errors
	ErrLeadNotFound         = errors.New("lead not found")
	ErrLeadNameRequired     = errors.New("lead name is required")
	ErrLeadCampaignRequired = errors.New("lead campaign is required")
	ErrInvalidLeadStatus    = errors.New("invalid lead status")
	ErrLeadUpdateRequired   = errors.New("at least one field must be provided for update")
	ErrInteractionTypeEmpty = errors.New("interaction type is required")
	ErrInteractionDescEmpty = errors.New("interaction description is required")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 200")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsPasswordLoginOnly(err error) bool {
	return errors.Is(err, ErrPasswordLoginOnly)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignAccessDenied(err error) bool {
	return errors.Is(err, ErrCampaignAccessDenied)
}

func IsLeadNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound)
}

func IsNotFound(err error) bool {
	return IsUserNotFound(err) || IsCampaignNotFound(err) || IsLeadNotFound(err) ||
		errors.Is(err, ErrSessionNotFound)
}

func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrLeadNameRequired),
		errors.Is(err, ErrLeadCampaignRequired),
		errors.Is(err, ErrInvalidLeadStatus),
		errors.Is(err, ErrLeadUpdateRequired),
		errors.Is(err, ErrInteractionTypeEmpty),
		errors.Is(err, ErrInteractionDescEmpty),
		errors.Is(err, ErrCampaignNameRequired),
		errors.Is(err, ErrInvalidCampaignStatus),
		errors.Is(err, ErrInvalidPage),
		errors.Is(err, ErrInvalidPageSize):
		return true
	default:
		return false
	}
}
