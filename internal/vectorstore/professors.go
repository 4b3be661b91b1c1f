package vectorstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"rateprof-ai/internal/contextutil"
	"rateprof-ai/internal/rag"
)

// TopK is the number of professor records retrieved per query.
const TopK = 3

// Payload keys stored with every professor point.
const (
	PayloadProfessor = "professor"
	PayloadReviews   = "reviews"
	PayloadSubject   = "subject"
	PayloadStars     = "stars"
	PayloadNamespace = "namespace"
)

// professorIDSpace seeds the deterministic point IDs for professor records.
var professorIDSpace = uuid.MustParse("7b1f3a52-3c1e-4d55-9a0e-6f2d1c9b8e41")

// ProfessorIndex queries professor review records stored in a single
// collection and namespace of a VectorStore.
type ProfessorIndex struct {
	store      VectorStore
	collection string
	namespace  string
}

// NewProfessorIndex creates a ProfessorIndex. An empty namespace searches the
// whole collection.
func NewProfessorIndex(store VectorStore, collection, namespace string) *ProfessorIndex {
	return &ProfessorIndex{
		store:      store,
		collection: collection,
		namespace:  namespace,
	}
}

// Query returns up to TopK professor records nearest to vector, in the
// store's ranking order.
func (p *ProfessorIndex) Query(ctx context.Context, vector []float32) ([]rag.Match, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var filters map[string]any
	if p.namespace != "" {
		filters = map[string]any{PayloadNamespace: p.namespace}
	}

	results, err := p.store.Search(ctx, p.collection, vector, TopK, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to query professor index: %w", err)
	}

	matches := make([]rag.Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, MatchFromPayload(r.PointID, r.Meta))
	}

	logger.DebugContext(ctx, "professor index queried",
		"collection", p.collection,
		"namespace", p.namespace,
		"matches", len(matches),
	)
	return matches, nil
}

// ProfessorPointID returns the stable point ID for a professor within a namespace.
func ProfessorPointID(namespace, professor string) string {
	return uuid.NewSHA1(professorIDSpace, []byte(namespace+"\x00"+professor)).String()
}

// ProfessorPoint builds the point stored for a professor record.
func ProfessorPoint(namespace string, m rag.Match, vec []float32) Point {
	meta := map[string]any{
		PayloadProfessor: m.Professor,
		PayloadReviews:   m.Review,
		PayloadSubject:   m.Subject,
		PayloadStars:     m.Stars,
	}
	if namespace != "" {
		meta[PayloadNamespace] = namespace
	}

	return Point{
		ID:   ProfessorPointID(namespace, m.Professor),
		Vec:  vec,
		Meta: meta,
	}
}

// MatchFromPayload converts a stored payload into a Match. Missing fields are
// left empty; the point ID stands in for a missing professor name.
func MatchFromPayload(pointID string, meta map[string]any) rag.Match {
	m := rag.Match{Professor: pointID}
	if name, ok := meta[PayloadProfessor].(string); ok && name != "" {
		m.Professor = name
	}
	m.Review, _ = meta[PayloadReviews].(string)
	m.Subject, _ = meta[PayloadSubject].(string)
	m.Stars = toFloat(meta[PayloadStars])
	return m
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
