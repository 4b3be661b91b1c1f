package llm

import (
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is the OpenAI API endpoint used when no base URL is configured.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultChatModel is the completion model used by the chat pipeline.
	DefaultChatModel = openai.GPT4oMini

	// DefaultEmbeddingModel is the embedding model used for queries and ingestion.
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)

	// defaultStreamBuffer bounds the number of fragments queued between the
	// upstream reader and the consumer.
	defaultStreamBuffer = 16
)

// newOpenAIClient creates a go-openai client for an OpenAI-compatible endpoint.
func newOpenAIClient(baseURL, apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return openai.NewClientWithConfig(cfg)
}
