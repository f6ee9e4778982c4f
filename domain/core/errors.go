package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrVariableNotFound = fmt.Errorf("%w: variable", ErrNotFound)
	ErrNodeNotFound     = fmt.Errorf("%w: node", ErrNotFound)
	ErrEdgeNotFound     = fmt.Errorf("%w: edge", ErrNotFound)

	// Graph mutation errors
	ErrEdgeExists   = errors.New("edge already exists")
	ErrSelfLoop     = errors.New("self-referential edge")
	ErrGraphInvalid = errors.New("graph failed validation")

	// Discovery errors
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrNoVariables      = errors.New("observations contain no variables")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
