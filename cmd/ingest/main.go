package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rateprof-ai/internal/config"
	"rateprof-ai/internal/storage"
	"rateprof-ai/internal/vectorstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

// env holds the resources shared by every subcommand.
type env struct {
	cfg   *config.Config
	db    *sql.DB
	store *vectorstore.QdrantStore
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ingest",
		Short:         "Seed and inspect the professor review index",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newLoadCmd(), newStatusCmd())
	return rootCmd
}

// openEnv loads configuration, installs the default logger and opens the
// catalog and the Qdrant client. The caller must call close.
func openEnv() (*env, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(cfg.NewLogger())

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate catalog: %w", err)
	}

	store, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	closeFn := func() {
		_ = store.Close()
		_ = db.Close()
	}
	return &env{cfg: cfg, db: db, store: store}, closeFn, nil
}
