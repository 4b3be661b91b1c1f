package indexer_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"rateprof-ai/internal/indexer"
	"rateprof-ai/internal/indexer/mocks"
	"rateprof-ai/internal/storage"
	storage_mocks "rateprof-ai/internal/storage/mocks"
	"rateprof-ai/internal/vectorstore"
	vectorstore_mocks "rateprof-ai/internal/vectorstore/mocks"
)

// newCatalog opens a migrated SQLite catalog in a temp directory.
func newCatalog(t *testing.T) *storage.ProfessorRepo {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "ingest.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}
	return storage.NewProfessorRepo(db)
}

// fakeEmbeddings returns one small vector per text.
func fakeEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

var sampleReviews = []indexer.Review{
	{Professor: "Dr. Emily Johnson", Subject: "Computer Science", Stars: 5, Review: "Clear lectures."},
	{Professor: "Dr. Michael Brown", Subject: "Mathematics", Stars: 3.5, Review: "Tough but fair."},
	{Professor: "Dr. Sarah Lee", Subject: "Biology", Stars: 4, Review: "Great labs."},
}

func TestPipeline_IndexBatchesAndRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbedder(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	catalog := newCatalog(t)

	gomock.InOrder(
		embedder.EXPECT().EmbedTexts(gomock.Any(), []string{"Clear lectures.", "Tough but fair."}).DoAndReturn(fakeEmbeddings),
		store.EXPECT().Upsert(gomock.Any(), "rag", gomock.Len(2)).Return(nil),
		embedder.EXPECT().EmbedTexts(gomock.Any(), []string{"Great labs."}).DoAndReturn(fakeEmbeddings),
		store.EXPECT().Upsert(gomock.Any(), "rag", gomock.Len(1)).DoAndReturn(
			func(_ context.Context, _ string, points []vectorstore.Point) error {
				p := points[0]
				if p.ID != vectorstore.ProfessorPointID("ns1", "Dr. Sarah Lee") {
					t.Errorf("point ID = %q, want derived professor ID", p.ID)
				}
				if p.Meta[vectorstore.PayloadReviews] != "Great labs." || p.Meta[vectorstore.PayloadNamespace] != "ns1" {
					t.Errorf("point payload = %v", p.Meta)
				}
				return nil
			}),
	)

	pipeline := indexer.NewPipeline(embedder, store, catalog, "rag", "ns1", 2)
	stats, err := pipeline.Index(context.Background(), sampleReviews, indexer.Options{})
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	want := indexer.Stats{Total: 3, Indexed: 3}
	if *stats != want {
		t.Errorf("Index() stats = %+v, want %+v", *stats, want)
	}

	rec, err := catalog.Get(context.Background(), "ns1", "Dr. Michael Brown")
	if err != nil {
		t.Fatalf("catalog.Get() error = %v", err)
	}
	if rec.PointID != vectorstore.ProfessorPointID("ns1", "Dr. Michael Brown") || rec.Stars != 3.5 || rec.Hash == "" {
		t.Errorf("catalog record = %+v", rec)
	}
}

func TestPipeline_SkipsUnchangedReviews(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbedder(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	catalog := newCatalog(t)
	pipeline := indexer.NewPipeline(embedder, store, catalog, "rag", "ns1", 0)

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Len(3)).DoAndReturn(fakeEmbeddings)
	store.EXPECT().Upsert(gomock.Any(), "rag", gomock.Len(3)).Return(nil)

	if _, err := pipeline.Index(context.Background(), sampleReviews, indexer.Options{}); err != nil {
		t.Fatalf("first Index() error = %v", err)
	}

	// Only the edited review is embedded again
	edited := append([]indexer.Review(nil), sampleReviews...)
	edited[1].Review = "Tough but very fair."
	store.EXPECT().Count(gomock.Any(), "rag", map[string]any{vectorstore.PayloadNamespace: "ns1"}).Return(3, nil)
	embedder.EXPECT().EmbedTexts(gomock.Any(), []string{"Tough but very fair."}).DoAndReturn(fakeEmbeddings)
	store.EXPECT().Upsert(gomock.Any(), "rag", gomock.Len(1)).Return(nil)

	stats, err := pipeline.Index(context.Background(), edited, indexer.Options{})
	if err != nil {
		t.Fatalf("second Index() error = %v", err)
	}
	want := indexer.Stats{Total: 3, Indexed: 1, Skipped: 2}
	if *stats != want {
		t.Errorf("second Index() stats = %+v, want %+v", *stats, want)
	}
}

func TestPipeline_Prune(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbedder(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	catalog := newCatalog(t)
	pipeline := indexer.NewPipeline(embedder, store, catalog, "rag", "ns1", 0)

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeEmbeddings)
	store.EXPECT().Upsert(gomock.Any(), "rag", gomock.Any()).Return(nil)
	if _, err := pipeline.Index(context.Background(), sampleReviews, indexer.Options{}); err != nil {
		t.Fatalf("first Index() error = %v", err)
	}

	store.EXPECT().Count(gomock.Any(), "rag", gomock.Any()).Return(3, nil)
	store.EXPECT().Delete(gomock.Any(), "rag", []string{vectorstore.ProfessorPointID("ns1", "Dr. Sarah Lee")}).Return(nil)

	stats, err := pipeline.Index(context.Background(), sampleReviews[:2], indexer.Options{Prune: true})
	if err != nil {
		t.Fatalf("prune Index() error = %v", err)
	}
	want := indexer.Stats{Total: 2, Skipped: 2, Pruned: 1}
	if *stats != want {
		t.Errorf("prune Index() stats = %+v, want %+v", *stats, want)
	}

	if _, err := catalog.Get(context.Background(), "ns1", "Dr. Sarah Lee"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("pruned professor still in catalog: %v", err)
	}
}

func TestPipeline_ReindexesWhenStoreLostPoints(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbedder(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	catalog := newCatalog(t)
	pipeline := indexer.NewPipeline(embedder, store, catalog, "rag", "ns1", 0)

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Len(3)).DoAndReturn(fakeEmbeddings)
	store.EXPECT().Upsert(gomock.Any(), "rag", gomock.Len(3)).Return(nil)
	if _, err := pipeline.Index(context.Background(), sampleReviews, indexer.Options{}); err != nil {
		t.Fatalf("first Index() error = %v", err)
	}

	// Collection was recreated empty; the catalog still lists all three.
	store.EXPECT().Count(gomock.Any(), "rag", map[string]any{vectorstore.PayloadNamespace: "ns1"}).Return(0, nil)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Len(3)).DoAndReturn(fakeEmbeddings)
	store.EXPECT().Upsert(gomock.Any(), "rag", gomock.Len(3)).Return(nil)

	stats, err := pipeline.Index(context.Background(), sampleReviews, indexer.Options{})
	if err != nil {
		t.Fatalf("second Index() error = %v", err)
	}
	want := indexer.Stats{Total: 3, Indexed: 3}
	if *stats != want {
		t.Errorf("second Index() stats = %+v, want %+v", *stats, want)
	}
}

func TestPipeline_ForceReindexesUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := mocks.NewMockEmbedder(ctrl)
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	catalog := newCatalog(t)
	pipeline := indexer.NewPipeline(embedder, store, catalog, "rag", "ns1", 0)

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Len(3)).DoAndReturn(fakeEmbeddings).Times(2)
	store.EXPECT().Upsert(gomock.Any(), "rag", gomock.Len(3)).Return(nil).Times(2)

	if _, err := pipeline.Index(context.Background(), sampleReviews, indexer.Options{}); err != nil {
		t.Fatalf("first Index() error = %v", err)
	}

	// No Count call: forcing skips the store check.
	stats, err := pipeline.Index(context.Background(), sampleReviews, indexer.Options{Force: true})
	if err != nil {
		t.Fatalf("forced Index() error = %v", err)
	}
	want := indexer.Stats{Total: 3, Indexed: 3}
	if *stats != want {
		t.Errorf("forced Index() stats = %+v, want %+v", *stats, want)
	}
}

func TestPipeline_Errors(t *testing.T) {
	review := sampleReviews[:1]

	tests := []struct {
		name    string
		setup   func(*mocks.MockEmbedder, *vectorstore_mocks.MockVectorStore, *storage_mocks.MockProfessorStore)
		wantErr string
		want    indexer.Stats
	}{
		{
			name: "catalog count fails",
			setup: func(e *mocks.MockEmbedder, s *vectorstore_mocks.MockVectorStore, c *storage_mocks.MockProfessorStore) {
				c.EXPECT().Count(gomock.Any(), "ns1").Return(0, errors.New("disk I/O error"))
			},
			wantErr: "failed to count catalog",
			want:    indexer.Stats{Total: 1},
		},
		{
			name: "stored point count fails",
			setup: func(e *mocks.MockEmbedder, s *vectorstore_mocks.MockVectorStore, c *storage_mocks.MockProfessorStore) {
				c.EXPECT().Count(gomock.Any(), "ns1").Return(1, nil)
				s.EXPECT().Count(gomock.Any(), "rag", gomock.Any()).Return(0, errors.New("unavailable"))
			},
			wantErr: "failed to count stored points",
			want:    indexer.Stats{Total: 1},
		},
		{
			name: "catalog lookup fails",
			setup: func(e *mocks.MockEmbedder, s *vectorstore_mocks.MockVectorStore, c *storage_mocks.MockProfessorStore) {
				c.EXPECT().Get(gomock.Any(), "ns1", "Dr. Emily Johnson").Return(nil, errors.New("disk I/O error"))
			},
			wantErr: "failed to check catalog",
			want:    indexer.Stats{Total: 1},
		},
		{
			name: "embedding fails",
			setup: func(e *mocks.MockEmbedder, s *vectorstore_mocks.MockVectorStore, c *storage_mocks.MockProfessorStore) {
				c.EXPECT().Get(gomock.Any(), "ns1", gomock.Any()).Return(nil, storage.ErrNotFound)
				e.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(nil, errors.New("rate limited"))
			},
			wantErr: "failed to generate embeddings",
			want:    indexer.Stats{Total: 1},
		},
		{
			name: "embedding count mismatch",
			setup: func(e *mocks.MockEmbedder, s *vectorstore_mocks.MockVectorStore, c *storage_mocks.MockProfessorStore) {
				c.EXPECT().Get(gomock.Any(), "ns1", gomock.Any()).Return(nil, storage.ErrNotFound)
				e.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{}, nil)
			},
			wantErr: "embedding count mismatch",
			want:    indexer.Stats{Total: 1},
		},
		{
			name: "upsert fails leaves catalog untouched",
			setup: func(e *mocks.MockEmbedder, s *vectorstore_mocks.MockVectorStore, c *storage_mocks.MockProfessorStore) {
				c.EXPECT().Get(gomock.Any(), "ns1", gomock.Any()).Return(nil, storage.ErrNotFound)
				e.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeEmbeddings)
				s.EXPECT().Upsert(gomock.Any(), "rag", gomock.Any()).Return(errors.New("unavailable"))
				c.EXPECT().Upsert(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: "failed to upsert points",
			want:    indexer.Stats{Total: 1},
		},
		{
			name: "prune delete fails",
			setup: func(e *mocks.MockEmbedder, s *vectorstore_mocks.MockVectorStore, c *storage_mocks.MockProfessorStore) {
				c.EXPECT().Get(gomock.Any(), "ns1", gomock.Any()).Return(nil, storage.ErrNotFound)
				e.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeEmbeddings)
				s.EXPECT().Upsert(gomock.Any(), "rag", gomock.Any()).Return(nil)
				c.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
				c.EXPECT().List(gomock.Any(), "ns1").Return([]storage.ProfessorRecord{
					{Namespace: "ns1", Name: "Dr. Emily Johnson", PointID: "keep"},
					{Namespace: "ns1", Name: "Dr. Gone", PointID: "stale"},
				}, nil)
				s.EXPECT().Delete(gomock.Any(), "rag", []string{"stale"}).Return(errors.New("unavailable"))
			},
			wantErr: "failed to delete stale points",
			want:    indexer.Stats{Total: 1, Indexed: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			embedder := mocks.NewMockEmbedder(ctrl)
			store := vectorstore_mocks.NewMockVectorStore(ctrl)
			catalog := storage_mocks.NewMockProfessorStore(ctrl)
			tt.setup(embedder, store, catalog)
			// Cases that do not set up the catalog count start from an empty catalog.
			catalog.EXPECT().Count(gomock.Any(), "ns1").Return(0, nil).AnyTimes()

			pipeline := indexer.NewPipeline(embedder, store, catalog, "rag", "ns1", 0)
			stats, err := pipeline.Index(context.Background(), review, indexer.Options{Prune: true})

			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Index() error = %v, want containing %q", err, tt.wantErr)
			}
			if *stats != tt.want {
				t.Errorf("Index() stats = %+v, want %+v", *stats, tt.want)
			}
		})
	}
}
