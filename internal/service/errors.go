package service

import (
	"errors"
	"fmt"

	"faqsearch/internal/index"
	"faqsearch/internal/source"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrSourceUnavailable is returned when the upstream document source
	// cannot be reached.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrUnauthorized is returned when the caller's credentials are missing
	// or wrong.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// classifyLoadError maps document loader failures onto the service
// sentinels while keeping the original error in the chain.
func classifyLoadError(err error) error {
	if err == nil {
		return nil
	}
	var schemaErr *source.SchemaError
	var fetchErr *source.FetchError
	switch {
	case errors.Is(err, source.ErrNoData):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.As(err, &schemaErr):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.As(err, &fetchErr):
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrExternalService, err)
	}
}

// classifyExternal marks a failure of an outside dependency.
func classifyExternal(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrExternalService, err)
}

// classifyIndexError maps index manager failures onto the service
// sentinels.
func classifyIndexError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, index.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrExternalService, err)
}
