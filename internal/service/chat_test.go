package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.uber.org/mock/gomock"

	"rateprof-ai/internal/rag"
	"rateprof-ai/internal/service"
	"rateprof-ai/internal/service/mocks"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// testContext returns a context for testing.
// The default logger is already set to discard in init().
func testContext() context.Context {
	return context.Background()
}

// fragments returns a closed channel carrying the given chunks.
func fragments(chunks ...string) <-chan rag.Fragment {
	ch := make(chan rag.Fragment, len(chunks))
	for _, c := range chunks {
		ch <- rag.Fragment{Text: c}
	}
	close(ch)
	return ch
}

func drain(ch <-chan rag.Fragment) (string, error) {
	var out string
	for f := range ch {
		if f.Err != nil {
			return out, f.Err
		}
		out += f.Text
	}
	return out, nil
}

type pipelineMocks struct {
	embedder  *mocks.MockEmbedder
	retriever *mocks.MockRetriever
	completer *mocks.MockCompleter
}

func newPipeline(ctrl *gomock.Controller) (service.ChatService, pipelineMocks) {
	m := pipelineMocks{
		embedder:  mocks.NewMockEmbedder(ctrl),
		retriever: mocks.NewMockRetriever(ctrl),
		completer: mocks.NewMockCompleter(ctrl),
	}
	return service.NewChatService(m.embedder, m.retriever, m.completer), m
}

func TestNewChatService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newPipeline(ctrl)
	if svc == nil {
		t.Fatal("NewChatService() returned nil")
	}
}

func TestChatService_StreamChat(t *testing.T) {
	vector := []float32{0.1, 0.2, 0.3}
	matches := []rag.Match{
		{Professor: "Dr. Smith", Review: "Great lectures", Subject: "Physics", Stars: 5},
		{Professor: "Dr. Jones", Review: "Hard exams", Subject: "Physics", Stars: 3},
	}

	tests := []struct {
		name       string
		transcript []rag.Message
		mockSetup  func(m pipelineMocks)
		wantErr    error
		wantText   string
	}{
		{
			name: "successful pipeline",
			transcript: []rag.Message{
				{Role: rag.RoleUser, Content: "Hi"},
				{Role: rag.RoleAssistant, Content: "Hello!"},
				{Role: rag.RoleUser, Content: "Who teaches physics?"},
			},
			mockSetup: func(m pipelineMocks) {
				gomock.InOrder(
					m.embedder.EXPECT().Embed(gomock.Any(), "Who teaches physics?").Return(vector, nil),
					m.retriever.EXPECT().Query(gomock.Any(), vector).Return(matches, nil),
					m.completer.EXPECT().
						StreamChat(gomock.Any(), gomock.Any()).
						DoAndReturn(func(ctx context.Context, messages []rag.Message) (<-chan rag.Fragment, error) {
							if len(messages) != 4 {
								t.Errorf("completer got %d messages, want 4", len(messages))
							}
							if messages[0].Role != rag.RoleSystem || messages[0].Content != rag.SystemPrompt {
								t.Errorf("first message = %+v, want system prompt", messages[0])
							}
							if messages[1].Content != "Hi" || messages[2].Role != rag.RoleAssistant {
								t.Errorf("history not preserved: %+v", messages[1:3])
							}
							want := "Who teaches physics?" + rag.FormatContext(matches)
							if messages[3].Content != want {
								t.Errorf("last message = %q, want %q", messages[3].Content, want)
							}
							return fragments("Prof", " Smith", " is great"), nil
						}),
				)
			},
			wantText: "Prof Smith is great",
		},
		{
			name: "empty index still completes",
			transcript: []rag.Message{
				{Role: rag.RoleUser, Content: "Anyone for art?"},
			},
			mockSetup: func(m pipelineMocks) {
				m.embedder.EXPECT().Embed(gomock.Any(), "Anyone for art?").Return(vector, nil)
				m.retriever.EXPECT().Query(gomock.Any(), vector).Return([]rag.Match{}, nil)
				m.completer.EXPECT().
					StreamChat(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, messages []rag.Message) (<-chan rag.Fragment, error) {
						want := "Anyone for art?\n\n" + rag.ContextPreamble
						if messages[1].Content != want {
							t.Errorf("last message = %q, want %q", messages[1].Content, want)
						}
						return fragments("No matches."), nil
					})
			},
			wantText: "No matches.",
		},
		{
			name:       "empty transcript",
			transcript: []rag.Message{},
			mockSetup:  func(m pipelineMocks) {},
			wantErr:    service.ErrMalformedRequest,
		},
		{
			name: "embedding failure",
			transcript: []rag.Message{
				{Role: rag.RoleUser, Content: "Hello"},
			},
			mockSetup: func(m pipelineMocks) {
				m.embedder.EXPECT().Embed(gomock.Any(), "Hello").Return(nil, errors.New("401 unauthorized"))
			},
			wantErr: service.ErrUpstreamEmbedding,
		},
		{
			name: "embedding returns no vector",
			transcript: []rag.Message{
				{Role: rag.RoleUser, Content: "Hello"},
			},
			mockSetup: func(m pipelineMocks) {
				m.embedder.EXPECT().Embed(gomock.Any(), "Hello").Return([]float32{}, nil)
			},
			wantErr: service.ErrUpstreamEmbedding,
		},
		{
			name: "retrieval failure",
			transcript: []rag.Message{
				{Role: rag.RoleUser, Content: "Hello"},
			},
			mockSetup: func(m pipelineMocks) {
				m.embedder.EXPECT().Embed(gomock.Any(), "Hello").Return(vector, nil)
				m.retriever.EXPECT().Query(gomock.Any(), vector).Return(nil, errors.New("index unavailable"))
			},
			wantErr: service.ErrUpstreamRetrieval,
		},
		{
			name: "completion open failure",
			transcript: []rag.Message{
				{Role: rag.RoleUser, Content: "Hello"},
			},
			mockSetup: func(m pipelineMocks) {
				m.embedder.EXPECT().Embed(gomock.Any(), "Hello").Return(vector, nil)
				m.retriever.EXPECT().Query(gomock.Any(), vector).Return(matches, nil)
				m.completer.EXPECT().StreamChat(gomock.Any(), gomock.Any()).Return(nil, errors.New("rate limited"))
			},
			wantErr: service.ErrUpstreamCompletion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newPipeline(ctrl)
			tt.mockSetup(m)

			stream, err := svc.StreamChat(testContext(), tt.transcript)

			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("StreamChat() expected error, got nil")
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("StreamChat() error = %v, want %v", err, tt.wantErr)
				}
				if stream != nil {
					t.Error("StreamChat() should not return a stream on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("StreamChat() unexpected error: %v", err)
			}

			text, streamErr := drain(stream)
			if streamErr != nil {
				t.Fatalf("stream error: %v", streamErr)
			}
			if text != tt.wantText {
				t.Errorf("streamed text = %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestChatService_StreamChat_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newPipeline(ctrl)
	_, err := svc.StreamChat(testContext(), nil)

	var validationErr *service.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("StreamChat() error = %v, want *ValidationError", err)
	}
	if validationErr.Field != "messages" {
		t.Errorf("ValidationError.Field = %q, want messages", validationErr.Field)
	}
}

func TestChatService_StreamChat_UpstreamCausePreserved(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cause := errors.New("dial tcp: connection refused")
	svc, m := newPipeline(ctrl)
	m.embedder.EXPECT().Embed(gomock.Any(), gomock.Any()).Return(nil, cause)

	_, err := svc.StreamChat(testContext(), []rag.Message{{Role: rag.RoleUser, Content: "x"}})
	if !errors.Is(err, cause) {
		t.Errorf("StreamChat() error = %v, want cause preserved", err)
	}
}
