package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks rateprof-ai/internal/indexer Embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"rateprof-ai/internal/contextutil"
	"rateprof-ai/internal/rag"
	"rateprof-ai/internal/storage"
	"rateprof-ai/internal/vectorstore"
)

// DefaultBatchSize is the number of reviews embedded per request.
const DefaultBatchSize = 32

// Embedder embeds a batch of texts, one vector per text in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline indexes professor reviews into the vector store and keeps the
// SQLite catalog in step so unchanged reviews are not re-embedded.
type Pipeline struct {
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	catalog     storage.ProfessorStore
	collection  string
	namespace   string
	batchSize   int
}

// NewPipeline creates a new indexing pipeline. A batchSize <= 0 uses DefaultBatchSize.
func NewPipeline(
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	catalog storage.ProfessorStore,
	collection string,
	namespace string,
	batchSize int,
) *Pipeline {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{
		embedder:    embedder,
		vectorStore: vectorStore,
		catalog:     catalog,
		collection:  collection,
		namespace:   namespace,
		batchSize:   batchSize,
	}
}

// Index embeds and stores every review whose content changed since the last
// run. Every review is re-embedded when opts.Force is set or when the vector
// store holds fewer points than the catalog. Batches are committed in order;
// a failure leaves earlier batches indexed.
func (p *Pipeline) Index(ctx context.Context, reviews []Review, opts Options) (*Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)
	stats := &Stats{Total: len(reviews)}

	force := opts.Force
	if !force {
		missing, err := p.pointsMissing(ctx)
		if err != nil {
			return stats, err
		}
		force = missing
	}

	pending := make([]Review, 0, len(reviews))
	hashes := make(map[string]string, len(reviews))
	for _, rev := range reviews {
		hash, err := hashReview(p.namespace, rev)
		if err != nil {
			return stats, err
		}
		hashes[rev.Professor] = hash

		var existing *storage.ProfessorRecord
		if !force {
			existing, err = p.catalog.Get(ctx, p.namespace, rev.Professor)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return stats, fmt.Errorf("failed to check catalog for %q: %w", rev.Professor, err)
			}
		}
		if existing != nil && existing.Hash == hash {
			logger.DebugContext(ctx, "skipping unchanged review", "professor", rev.Professor)
			stats.Skipped++
			continue
		}
		pending = append(pending, rev)
	}

	for start := 0; start < len(pending); start += p.batchSize {
		end := min(start+p.batchSize, len(pending))
		if err := p.indexBatch(ctx, pending[start:end], hashes); err != nil {
			return stats, err
		}
		stats.Indexed += end - start
		logger.InfoContext(ctx, "indexed batch", "indexed", stats.Indexed, "pending", len(pending))
	}

	if opts.Prune {
		pruned, err := p.prune(ctx, hashes)
		stats.Pruned = pruned
		if err != nil {
			return stats, err
		}
	}

	logger.InfoContext(ctx, "indexing complete",
		"collection", p.collection,
		"namespace", p.namespace,
		"total", stats.Total,
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"pruned", stats.Pruned,
	)
	return stats, nil
}

func (p *Pipeline) indexBatch(ctx context.Context, batch []Review, hashes map[string]string) error {
	texts := make([]string, len(batch))
	for i, rev := range batch {
		texts[i] = rev.Review
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
	}

	points := make([]vectorstore.Point, len(batch))
	for i, rev := range batch {
		points[i] = vectorstore.ProfessorPoint(p.namespace, rev.match(), embeddings[i])
	}
	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	// Catalog rows are written after the points so a failed upsert is retried next run.
	for i, rev := range batch {
		rec := &storage.ProfessorRecord{
			Namespace: p.namespace,
			Name:      rev.Professor,
			PointID:   points[i].ID,
			Subject:   rev.Subject,
			Stars:     rev.Stars,
			Hash:      hashes[rev.Professor],
		}
		if err := p.catalog.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("failed to record %q in catalog: %w", rev.Professor, err)
		}
	}
	return nil
}

// pointsMissing reports whether the vector store holds fewer points for the
// namespace than the catalog records, as happens when the collection was
// dropped or recreated. Catalog hashes cannot be trusted in that case.
func (p *Pipeline) pointsMissing(ctx context.Context) (bool, error) {
	logger := contextutil.LoggerFromContext(ctx)

	cataloged, err := p.catalog.Count(ctx, p.namespace)
	if err != nil {
		return false, fmt.Errorf("failed to count catalog: %w", err)
	}
	if cataloged == 0 {
		return false, nil
	}

	var filters map[string]any
	if p.namespace != "" {
		filters = map[string]any{vectorstore.PayloadNamespace: p.namespace}
	}
	stored, err := p.vectorStore.Count(ctx, p.collection, filters)
	if err != nil {
		return false, fmt.Errorf("failed to count stored points: %w", err)
	}

	if stored < cataloged {
		logger.WarnContext(ctx, "vector store is missing cataloged points, re-indexing all reviews",
			"cataloged", cataloged,
			"stored", stored,
		)
		return true, nil
	}
	return false, nil
}

// prune removes professors that are in the catalog but not in the current input.
func (p *Pipeline) prune(ctx context.Context, keep map[string]string) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	records, err := p.catalog.List(ctx, p.namespace)
	if err != nil {
		return 0, fmt.Errorf("failed to list catalog: %w", err)
	}

	var stale []storage.ProfessorRecord
	for _, rec := range records {
		if _, ok := keep[rec.Name]; !ok {
			stale = append(stale, rec)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]string, len(stale))
	for i, rec := range stale {
		ids[i] = rec.PointID
	}
	if err := p.vectorStore.Delete(ctx, p.collection, ids); err != nil {
		return 0, fmt.Errorf("failed to delete stale points: %w", err)
	}

	for i, rec := range stale {
		if err := p.catalog.Delete(ctx, p.namespace, rec.Name); err != nil {
			return i, fmt.Errorf("failed to remove %q from catalog: %w", rec.Name, err)
		}
		logger.InfoContext(ctx, "pruned professor", "professor", rec.Name)
	}
	return len(stale), nil
}

func (r Review) match() rag.Match {
	return rag.Match{
		Professor: r.Professor,
		Review:    r.Review,
		Subject:   r.Subject,
		Stars:     r.Stars,
	}
}

// hashReview returns the SHA256 hex digest of a review as it would be stored.
func hashReview(namespace string, rev Review) (string, error) {
	data, err := json.Marshal(struct {
		Namespace string `json:"namespace"`
		Review
	}{namespace, rev})
	if err != nil {
		return "", fmt.Errorf("failed to hash review: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
