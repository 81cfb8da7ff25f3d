package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if !ID("   ").IsEmpty() {
		t.Error("Expected blank ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseGroupID tests group ID parsing
func TestParseGroupID(t *testing.T) {
	tests := []struct {
		input    string
		expected GroupID
		hasError bool
	}{
		{"grp-1", GroupID("grp-1"), false},
		{"  grp-2 ", GroupID("grp-2"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseGroupID(test.input)
		if test.hasError {
			if err == nil {
				t.Errorf("Expected error for input '%s', but got none", test.input)
			} else if !errors.Is(err, ErrMissingGroup) {
				t.Errorf("Expected ErrMissingGroup for input '%s', got %v", test.input, err)
			}
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestParseParticipantID tests participant ID parsing
func TestParseParticipantID(t *testing.T) {
	if _, err := ParseParticipantID(""); !IsValidationError(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	id, err := ParseParticipantID("p-1")
	if err != nil || id != ParticipantID("p-1") {
		t.Errorf("Unexpected result %q, %v", id, err)
	}
}
