package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"rateprof-ai/internal/storage"
	"rateprof-ai/internal/vectorstore"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show collection and catalog state for the configured namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeEnv, err := openEnv()
			if err != nil {
				return err
			}
			defer closeEnv()

			ctx := cmd.Context()

			var info *vectorstore.CollectionInfo
			exists, err := e.store.CollectionExists(ctx, e.cfg.QdrantCollection)
			if err != nil {
				return err
			}
			if exists {
				if info, err = e.store.GetCollectionInfo(ctx, e.cfg.QdrantCollection); err != nil {
					return err
				}
			}

			count, err := storage.NewProfessorRepo(e.db).Count(ctx, e.cfg.QdrantNamespace)
			if err != nil {
				return err
			}

			last, err := storage.NewRunRepo(e.db).Last(ctx, e.cfg.QdrantNamespace)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return err
			}

			return printStatus(cmd.OutOrStdout(), e.cfg.QdrantCollection, e.cfg.QdrantNamespace, info, count, last)
		},
	}
}

// printStatus writes the status report. A nil info means the collection does not exist.
func printStatus(w io.Writer, collection, namespace string, info *vectorstore.CollectionInfo, count int, last *storage.IngestRun) error {
	lines := []string{fmt.Sprintf("collection: %s", collection)}
	if info == nil {
		lines = append(lines, "  missing")
	} else {
		lines = append(lines,
			fmt.Sprintf("  status: %s", info.Status),
			fmt.Sprintf("  vector_size: %d", info.VectorSize),
			fmt.Sprintf("  points: %d", info.PointsCount),
		)
	}
	lines = append(lines,
		fmt.Sprintf("namespace: %s", namespace),
		fmt.Sprintf("  professors: %d", count),
	)
	if last == nil {
		lines = append(lines, "  last_run: never")
	} else {
		lines = append(lines, fmt.Sprintf("  last_run: %s source=%s total=%d indexed=%d skipped=%d pruned=%d",
			last.FinishedAt.Format(time.RFC3339), last.Source, last.Total, last.Indexed, last.Skipped, last.Pruned))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
