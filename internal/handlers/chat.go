package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"rateprof-ai/internal/contextutil"
	"rateprof-ai/internal/rag"
	"rateprof-ai/internal/service"
)

// maxBodyBytes caps the size of a chat transcript.
const maxBodyBytes = 1 << 20

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP decodes a chat transcript and streams the completion back as
// plain text, flushing every fragment as it arrives.
//
// Errors before streaming produce a JSON error response. An upstream failure
// after streaming has started aborts the connection; whatever was already
// flushed stays with the client.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	transcript, err := DecodeTranscript(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.handleServiceError(w, ctx, err, "Invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		h.writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	stream, err := h.chatService.StreamChat(ctx, transcript)
	if err != nil {
		h.handleServiceError(w, ctx, err, "Failed to process chat request")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	h.relay(ctx, w, flusher, stream)
}

// relay drains the fragment channel into the response.
func (h *ChatHandler) relay(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, stream <-chan rag.Fragment) {
	logger := contextutil.LoggerFromContext(ctx)

	written := 0
	for f := range stream {
		if f.Err != nil {
			err := fmt.Errorf("%w: %w", service.ErrUpstreamCompletion, f.Err)
			logger.ErrorContext(ctx, "completion stream failed, aborting response", "bytes_written", written, "error", err)
			// Headers are gone; abort so the client sees a truncated body
			// instead of a clean end of stream.
			panic(http.ErrAbortHandler)
		}

		n, err := io.WriteString(w, f.Text)
		written += n
		if err != nil {
			logger.WarnContext(ctx, "failed to write chunk, client likely disconnected", "bytes_written", written, "error", err)
			return
		}
		flusher.Flush()
	}

	logger.InfoContext(ctx, "chat stream completed", "bytes_written", written)
}

// handleServiceError maps service errors to appropriate HTTP status codes and responses.
func (h *ChatHandler) handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		logger.WarnContext(ctx, "malformed chat request", "error", err)
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		logger.WarnContext(ctx, "request body too large", "limit", maxBytesErr.Limit)
		h.writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	logger.ErrorContext(ctx, "service error", "error", err)

	switch {
	case errors.Is(err, service.ErrMalformedRequest):
		h.writeError(w, http.StatusBadRequest, "Malformed request")
	case errors.Is(err, service.ErrUpstreamEmbedding):
		h.writeError(w, http.StatusBadGateway, "Embedding service error")
	case errors.Is(err, service.ErrUpstreamRetrieval):
		h.writeError(w, http.StatusBadGateway, "Vector index error")
	case errors.Is(err, service.ErrUpstreamCompletion):
		h.writeError(w, http.StatusBadGateway, "Completion service error")
	default:
		h.writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}

// writeError writes an error response.
func (h *ChatHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
