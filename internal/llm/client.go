package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"rateprof-ai/internal/contextutil"
	"rateprof-ai/internal/rag"
)

// Client streams chat completions from an OpenAI-compatible API.
type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	BufferSize int
	client     *openai.Client
}

// NewClient creates a new LLM client.
func NewClient(baseURL, apiKey, model string) *Client {
	if model == "" {
		model = DefaultChatModel
	}
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		BufferSize: defaultStreamBuffer,
		client:     newOpenAIClient(baseURL, apiKey),
	}
}

// StreamChat opens a streaming chat completion for the given messages.
//
// An error is returned only if the stream could not be opened. Once open,
// text deltas are delivered on the returned channel in arrival order; empty
// deltas are dropped. A read failure is delivered as a final Fragment with Err
// set. The channel is closed when the upstream stream ends, fails, or ctx is
// cancelled.
func (c *Client) StreamChat(ctx context.Context, messages []rag.Message) (<-chan rag.Fragment, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req := openai.ChatCompletionRequest{
		Model:    c.Model,
		Messages: toOpenAIMessages(messages),
		Stream:   true,
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to open completion stream: %w", err)
	}
	logger.DebugContext(ctx, "completion stream opened", "model", c.Model, "messages", len(messages))

	size := c.BufferSize
	if size <= 0 {
		size = defaultStreamBuffer
	}
	out := make(chan rag.Fragment, size)

	go func() {
		defer close(out)
		defer stream.Close()

		fragments := 0
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				logger.DebugContext(ctx, "completion stream finished", "fragments", fragments)
				return
			}
			if err != nil {
				logger.ErrorContext(ctx, "completion stream failed", "fragments", fragments, "error", err)
				send(ctx, out, rag.Fragment{Err: fmt.Errorf("failed to read stream: %w", err)})
				return
			}

			if len(resp.Choices) == 0 {
				continue
			}
			text := resp.Choices[0].Delta.Content
			if text == "" {
				continue
			}

			if !send(ctx, out, rag.Fragment{Text: text}) {
				logger.WarnContext(ctx, "completion stream abandoned by consumer", "fragments", fragments)
				return
			}
			fragments++
		}
	}()

	return out, nil
}

// send delivers f unless ctx is done first.
func send(ctx context.Context, out chan<- rag.Fragment, f rag.Fragment) bool {
	select {
	case out <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

func toOpenAIMessages(messages []rag.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		result = append(result, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return result
}
