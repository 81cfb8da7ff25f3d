package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound            = errors.New("resource not found")
	ErrGroupNotFound       = fmt.Errorf("%w: group", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("%w: participant", ErrNotFound)

	// Validation errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidDate   = fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	ErrDuplicateName = errors.New("name already exists in group")
	ErrAlreadyMember = errors.New("already a member of this group")
	ErrJoinCodeTaken = errors.New("join code already in use")

	// Migration errors
	ErrMissingGroup = errors.New("target group is not resolved")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrAlreadyMember) ||
		errors.Is(err, ErrJoinCodeTaken)
}
