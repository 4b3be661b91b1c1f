package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"rateprof-ai/internal/contextutil"
	"rateprof-ai/internal/indexer"
	"rateprof-ai/internal/llm"
	"rateprof-ai/internal/storage"
	"rateprof-ai/internal/vectorstore"
)

func newLoadCmd() *cobra.Command {
	var (
		batchSize int
		prune     bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "load <reviews.json>",
		Short: "Embed and upsert professor reviews from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize <= 0 {
				return fmt.Errorf("--batch-size must be greater than 0")
			}
			source := args[0]

			reviews, err := indexer.LoadReviewsFile(source)
			if err != nil {
				return err
			}

			e, closeEnv, err := openEnv()
			if err != nil {
				return err
			}
			defer closeEnv()

			ctx := contextutil.WithLogger(cmd.Context(), slog.Default().With(
				"collection", e.cfg.QdrantCollection,
				"namespace", e.cfg.QdrantNamespace,
			))

			if err := e.store.EnsureCollection(ctx, e.cfg.QdrantCollection, e.cfg.QdrantVectorSize); err != nil {
				return fmt.Errorf("ensure collection: %w", err)
			}
			if e.cfg.QdrantNamespace != "" {
				if err := e.store.EnsureKeywordIndex(ctx, e.cfg.QdrantCollection, vectorstore.PayloadNamespace); err != nil {
					return err
				}
			}

			embedder := llm.NewEmbeddingsClient(e.cfg.OpenAIBaseURL, e.cfg.OpenAIAPIKey, e.cfg.EmbeddingModelName, e.cfg.QdrantVectorSize)
			pipeline := indexer.NewPipeline(
				embedder,
				e.store,
				storage.NewProfessorRepo(e.db),
				e.cfg.QdrantCollection,
				e.cfg.QdrantNamespace,
				batchSize,
			)

			stats, err := pipeline.Index(ctx, reviews, indexer.Options{Prune: prune, Force: force})
			if err != nil {
				return fmt.Errorf("index reviews: %w", err)
			}

			run := &storage.IngestRun{
				Namespace: e.cfg.QdrantNamespace,
				Source:    source,
				Total:     stats.Total,
				Indexed:   stats.Indexed,
				Skipped:   stats.Skipped,
				Pruned:    stats.Pruned,
			}
			if err := storage.NewRunRepo(e.db).Record(ctx, run); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "total=%d indexed=%d skipped=%d pruned=%d\n",
				stats.Total, stats.Indexed, stats.Skipped, stats.Pruned)
			return err
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", indexer.DefaultBatchSize, "reviews embedded per request")
	cmd.Flags().BoolVar(&prune, "prune", false, "remove professors that are no longer in the file")
	cmd.Flags().BoolVar(&force, "force", false, "re-embed every review even if unchanged")
	return cmd
}
