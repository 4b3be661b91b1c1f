package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rateprof-ai/internal/config"
	"rateprof-ai/internal/http"
	"rateprof-ai/internal/llm"
	"rateprof-ai/internal/service"
	"rateprof-ai/internal/vectorstore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	defer func() {
		_ = vectorStore.Close()
	}()

	// The collection is seeded by cmd/ingest; serving continues without it so /api/health can report it.
	if exists, err := vectorStore.CollectionExists(ctx, cfg.QdrantCollection); err != nil {
		slog.Warn("Could not reach Qdrant", "url", cfg.QdrantURL, "error", err)
	} else if !exists {
		slog.Warn("Qdrant collection not found, run ingest load first", "collection", cfg.QdrantCollection)
	} else {
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "namespace", cfg.QdrantNamespace)
	}

	embedder := llm.NewEmbeddingsClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	llmClient := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.LLMModelName)
	index := vectorstore.NewProfessorIndex(vectorStore, cfg.QdrantCollection, cfg.QdrantNamespace)

	chatService := service.NewChatService(embedder, index, llmClient)
	slog.Info("Chat service initialized", "embedding_model", cfg.EmbeddingModelName, "llm_model", cfg.LLMModelName)

	router := http.NewRouter(&http.Deps{
		ChatService:    chatService,
		VectorStore:    vectorStore,
		CollectionName: cfg.QdrantCollection,
	})

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("API server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", server.Addr)
	slog.Debug("OpenAI configuration", "base_url", cfg.OpenAIBaseURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed: %v", err)
	}
}
