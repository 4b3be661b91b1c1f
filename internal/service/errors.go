package service

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRequest is returned when the transcript has the wrong shape.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrUpstreamEmbedding is returned when the embedding service call fails.
	ErrUpstreamEmbedding = errors.New("upstream embedding error")
	// ErrUpstreamRetrieval is returned when the vector index query fails.
	ErrUpstreamRetrieval = errors.New("upstream retrieval error")
	// ErrUpstreamCompletion is returned when the completion stream fails.
	ErrUpstreamCompletion = errors.New("upstream completion error")
)

// ValidationError represents a validation error with a field name.
// It matches ErrMalformedRequest with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap links the validation error to ErrMalformedRequest.
func (e *ValidationError) Unwrap() error {
	return ErrMalformedRequest
}

// WrapError wraps err with a sentinel and a message so that both the sentinel
// and the original cause remain reachable through errors.Is.
func WrapError(err error, sentinel error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", msg, sentinel, err)
}
