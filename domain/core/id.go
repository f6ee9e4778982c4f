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
	return id == ""
}

// Domain-specific ID types
type (
	// RunID identifies a single discovery run.
	RunID ID
	// GraphID identifies a causal graph instance.
	GraphID ID
	// VariableKey names an observed variable (e.g. "sleep_quality", "rumination").
	VariableKey ID
)

// String conversions for domain IDs
func (id RunID) String() string       { return ID(id).String() }
func (id GraphID) String() string     { return ID(id).String() }
func (id VariableKey) String() string { return ID(id).String() }

// ParseVariableKey parses a string into VariableKey
func ParseVariableKey(s string) (VariableKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("variable key cannot be empty")
	}
	return VariableKey(s), nil
}

// ParseGraphID parses a string into GraphID
func ParseGraphID(s string) (GraphID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("graph ID cannot be empty")
	}
	return GraphID(s), nil
}
