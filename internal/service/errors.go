package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when input validation fails.
	ErrValidation = errors.New("invalid input")
	// ErrQuotaExhausted is returned when every provider credential in the
	// rotation pool has been reported exhausted within one operation.
	ErrQuotaExhausted = errors.New("credential pool exhausted")
	// ErrEmbedding is returned when the embedding provider fails for a
	// reason other than quota exhaustion.
	ErrEmbedding = errors.New("embedding failed")
	// ErrRetrieval is returned when the vector store is unreachable.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrGeneration is returned when the generation provider fails.
	ErrGeneration = errors.New("generation failed")
	// ErrTimeout is returned when an ask operation exceeds its deadline.
	ErrTimeout = errors.New("operation timed out")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
)

// ValidationError represents a validation error with a field name.
// It unwraps to ErrValidation so callers can match by kind.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
