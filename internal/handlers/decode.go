package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"rateprof-ai/internal/rag"
	"rateprof-ai/internal/service"
)

// wireMessage is a transcript entry as it appears on the wire. Content is a
// pointer so that a missing field can be told apart from an empty string.
type wireMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// DecodeTranscript decodes a JSON array of {role, content} messages.
// It fails with a *service.ValidationError (matching service.ErrMalformedRequest)
// when the body is not a single JSON array, the array is empty, or the last message
// has no content string. A body exceeding an http.MaxBytesReader limit is
// returned as a wrapped *http.MaxBytesError instead.
func DecodeTranscript(r io.Reader) ([]rag.Message, error) {
	var wire []wireMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, decodeError(err, "invalid JSON")
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after transcript")
		}
		return nil, decodeError(err, "trailing data after JSON array")
	}

	if len(wire) == 0 {
		return nil, &service.ValidationError{
			Field:   "messages",
			Message: "cannot be empty",
		}
	}

	if wire[len(wire)-1].Content == nil {
		return nil, &service.ValidationError{
			Field:   "content",
			Message: "last message must have a content string",
		}
	}

	transcript := make([]rag.Message, 0, len(wire))
	for _, m := range wire {
		msg := rag.Message{Role: m.Role}
		if m.Content != nil {
			msg.Content = *m.Content
		}
		transcript = append(transcript, msg)
	}

	return transcript, nil
}

// decodeError keeps body-size errors intact and turns everything else into a
// validation error on the body.
func decodeError(err error, msg string) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return fmt.Errorf("failed to read body: %w", err)
	}
	return &service.ValidationError{
		Field:   "body",
		Message: fmt.Sprintf("%s: %v", msg, err),
	}
}
