package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// Domain-specific ID types
type (
	GroupID       ID
	ParticipantID ID
	UserID        ID
)

// String conversions for domain IDs
func (id GroupID) String() string       { return ID(id).String() }
func (id ParticipantID) String() string { return ID(id).String() }
func (id UserID) String() string        { return ID(id).String() }

func (id GroupID) IsEmpty() bool       { return ID(id).IsEmpty() }
func (id ParticipantID) IsEmpty() bool { return ID(id).IsEmpty() }
func (id UserID) IsEmpty() bool        { return ID(id).IsEmpty() }

// ParseGroupID parses a string into GroupID
func ParseGroupID(s string) (GroupID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: group ID cannot be empty", ErrMissingGroup)
	}
	return GroupID(s), nil
}

// ParseParticipantID parses a string into ParticipantID
func ParseParticipantID(s string) (ParticipantID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewValidationError("participant_id", "cannot be empty")
	}
	return ParticipantID(s), nil
}

// ParseUserID parses a string into UserID
func ParseUserID(s string) (UserID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewValidationError("user_id", "cannot be empty")
	}
	return UserID(s), nil
}
