package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_pipeline.go -package=mocks rateprof-ai/internal/service Embedder,Retriever,Completer
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService rateprof-ai/internal/service ChatService

import (
	"context"
	"fmt"

	"rateprof-ai/internal/contextutil"
	"rateprof-ai/internal/rag"
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever returns the professor records nearest to a vector.
type Retriever interface {
	Query(ctx context.Context, vector []float32) ([]rag.Match, error)
}

// Completer opens a streamed chat completion. The returned channel carries
// text fragments in arrival order; a fragment with Err set ends the stream.
type Completer interface {
	StreamChat(ctx context.Context, messages []rag.Message) (<-chan rag.Fragment, error)
}

// ChatService answers a chat transcript with retrieval-augmented context.
type ChatService interface {
	// StreamChat embeds the last message, retrieves matching professors,
	// augments the transcript and opens a streamed completion.
	// Errors returned directly occur before any output is produced.
	StreamChat(ctx context.Context, transcript []rag.Message) (<-chan rag.Fragment, error)
}

// chatService implements ChatService.
type chatService struct {
	embedder  Embedder
	retriever Retriever
	completer Completer
}

// NewChatService creates a new ChatService.
func NewChatService(embedder Embedder, retriever Retriever, completer Completer) ChatService {
	return &chatService{
		embedder:  embedder,
		retriever: retriever,
		completer: completer,
	}
}

// ValidateTranscript checks that the transcript can be augmented.
func ValidateTranscript(transcript []rag.Message) error {
	if len(transcript) == 0 {
		return &ValidationError{Field: "messages", Message: "cannot be empty"}
	}
	return nil
}

// StreamChat runs the pipeline: embed, retrieve, assemble, stream.
func (s *chatService) StreamChat(ctx context.Context, transcript []rag.Message) (<-chan rag.Fragment, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := ValidateTranscript(transcript); err != nil {
		logger.WarnContext(ctx, "invalid chat transcript", "error", err)
		return nil, err
	}

	query := transcript[len(transcript)-1].Content

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil, WrapError(err, ErrUpstreamEmbedding, "failed to embed query")
	}
	if len(vector) == 0 {
		logger.ErrorContext(ctx, "embedding service returned no vector")
		return nil, fmt.Errorf("failed to embed query: %w: empty vector", ErrUpstreamEmbedding)
	}

	matches, err := s.retriever.Query(ctx, vector)
	if err != nil {
		logger.ErrorContext(ctx, "failed to query vector index", "error", err)
		return nil, WrapError(err, ErrUpstreamRetrieval, "failed to query vector index")
	}

	professors := make([]string, 0, len(matches))
	for _, m := range matches {
		professors = append(professors, m.Professor)
	}
	logger.InfoContext(ctx, "retrieved professors", "count", len(matches), "professors", professors)

	messages := rag.Assemble(transcript, matches)
	logger.DebugContext(ctx, "prompt assembled",
		"transcript_length", len(transcript),
		"messages", len(messages),
		"last_message_length", len(messages[len(messages)-1].Content),
	)

	stream, err := s.completer.StreamChat(ctx, messages)
	if err != nil {
		logger.ErrorContext(ctx, "failed to open completion stream", "error", err)
		return nil, WrapError(err, ErrUpstreamCompletion, "failed to open completion stream")
	}

	return stream, nil
}
