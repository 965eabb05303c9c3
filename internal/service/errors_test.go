package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorUnwrapsToSentinel(t *testing.T) {
	err := &ValidationError{Field: "question", Message: "is required"}

	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ValidationError to match ErrValidation")
	}

	var ve *ValidationError
	wrapped := fmt.Errorf("ask: %w", err)
	if !errors.As(wrapped, &ve) {
		t.Fatalf("expected errors.As to recover *ValidationError from wrapped chain")
	}
	if ve.Field != "question" {
		t.Errorf("expected field %q, got %q", "question", ve.Field)
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Fatalf("wrapping nil should return nil")
	}

	wrapped := WrapError(ErrRetrieval, "searching chunks")
	if !errors.Is(wrapped, ErrRetrieval) {
		t.Fatalf("expected wrapped error to match ErrRetrieval")
	}
	if wrapped.Error() != "searching chunks: retrieval failed" {
		t.Errorf("unexpected message: %q", wrapped.Error())
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrValidation, ErrQuotaExhausted, ErrEmbedding,
		ErrRetrieval, ErrGeneration, ErrTimeout, ErrNotFound,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}
