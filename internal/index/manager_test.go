package index

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"faqsearch/internal/chunker"
	"faqsearch/internal/source"
	"faqsearch/internal/vectorstore"
)

// fakeStore is an in-memory VectorStore.
type fakeStore struct {
	collections map[string][]vectorstore.Point
	deleted     []string
	created     []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{collections: make(map[string][]vectorstore.Point)}
}

func (f *fakeStore) CreateCollection(_ context.Context, collection string, _ int) error {
	f.collections[collection] = nil
	f.created = append(f.created, collection)
	return nil
}

func (f *fakeStore) DeleteCollection(_ context.Context, collection string) error {
	if _, ok := f.collections[collection]; !ok {
		return fmt.Errorf("collection %s does not exist", collection)
	}
	delete(f.collections, collection)
	f.deleted = append(f.deleted, collection)
	return nil
}

func (f *fakeStore) ListCollections(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(f.collections))
	for name := range f.collections {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeStore) CollectionExists(_ context.Context, collection string) (bool, error) {
	_, ok := f.collections[collection]
	return ok, nil
}

func (f *fakeStore) Count(_ context.Context, collection string) (int, error) {
	points, ok := f.collections[collection]
	if !ok {
		return 0, fmt.Errorf("collection %s does not exist", collection)
	}
	return len(points), nil
}

func (f *fakeStore) Upsert(_ context.Context, collection string, points []vectorstore.Point) error {
	if _, ok := f.collections[collection]; !ok {
		return fmt.Errorf("collection %s does not exist", collection)
	}
	f.collections[collection] = append(f.collections[collection], points...)
	return nil
}

func (f *fakeStore) Search(_ context.Context, collection string, _ []float32, k int) ([]vectorstore.SearchResult, error) {
	points, ok := f.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}
	results := make([]vectorstore.SearchResult, 0, k)
	for i, p := range points {
		if i == k {
			break
		}
		results = append(results, vectorstore.SearchResult{
			PointID: p.ID,
			Score:   1 - float32(i)*0.1,
			Meta:    p.Meta,
		})
	}
	return results, nil
}

func (f *fakeStore) ListPoints(_ context.Context, collection string) ([]vectorstore.Point, error) {
	points, ok := f.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}
	return points, nil
}

// fakeEmbedder returns a fixed-size vector per text and counts calls.
type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func testChunks(n int) []chunker.Chunk {
	chunks := make([]chunker.Chunk, n)
	for i := range chunks {
		chunks[i] = chunker.Chunk{
			Record: source.Record{
				SourceIndex: i,
				Category:    1,
				Subcategory: 1,
				Slug:        fmt.Sprintf("slug-%d", i),
				Question:    fmt.Sprintf("question %d", i),
				Answer:      fmt.Sprintf("answer %d", i),
				Text:        fmt.Sprintf("question %d answer %d", i, i),
			},
			Text:     fmt.Sprintf("question %d answer %d", i, i),
			NthChunk: 0,
		}
	}
	return chunks
}

func TestCreateOrReplaceEmptyInput(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, &fakeEmbedder{}, 3, "test-embed")

	count, err := m.CreateOrReplace(context.Background(), "tenant", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 ingested, got %d", count)
	}
	if len(store.created) != 0 {
		t.Errorf("expected no collection created, got %v", store.created)
	}
}

func TestCreateOrReplaceReplacesExisting(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, &fakeEmbedder{}, 3, "test-embed")
	ctx := context.Background()

	if _, err := m.CreateOrReplace(ctx, "tenant", testChunks(5)); err != nil {
		t.Fatalf("first ingestion: %v", err)
	}
	if _, err := m.CreateOrReplace(ctx, "tenant", testChunks(2)); err != nil {
		t.Fatalf("second ingestion: %v", err)
	}

	count, err := m.Count(ctx, "tenant")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 points after replace, got %d", count)
	}
	if len(store.deleted) != 1 {
		t.Errorf("expected 1 delete during replace, got %d", len(store.deleted))
	}
}

func TestCreateOrReplaceEmbedFailure(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{err: errors.New("quota exceeded")}
	m := NewManager(store, embedder, 3, "test-embed")

	_, err := m.CreateOrReplace(context.Background(), "tenant", testChunks(1))
	if err == nil {
		t.Fatal("expected error")
	}
	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OpError, got %T", err)
	}
	if opErr.Op != "embed" {
		t.Errorf("expected op embed, got %s", opErr.Op)
	}
}

func TestGetUnknownIndex(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeEmbedder{}, 3, "test-embed")

	_, err := m.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetRefreshesFromStore(t *testing.T) {
	store := newFakeStore()
	store.collections["preexisting"] = nil
	m := NewManager(store, &fakeEmbedder{}, 3, "test-embed")

	idx, err := m.Get(context.Background(), "preexisting")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.IndexID != "preexisting" {
		t.Errorf("expected index id preexisting, got %s", idx.IndexID)
	}
}

func TestSearchUnknownIndex(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeEmbedder{}, 3, "test-embed")

	_, err := m.Search(context.Background(), "missing", "anything", 5)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchRejectsBadK(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeEmbedder{}, 3, "test-embed")

	if _, err := m.Search(context.Background(), "tenant", "q", 0); err == nil {
		t.Fatal("expected error for k=0")
	}
}

func TestSearchReturnsChunks(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, &fakeEmbedder{}, 3, "test-embed")
	ctx := context.Background()

	if _, err := m.CreateOrReplace(ctx, "tenant", testChunks(4)); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	results, err := m.Search(ctx, "tenant", "question 1", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.Slug != "slug-0" {
		t.Errorf("expected slug-0, got %s", results[0].Chunk.Slug)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("expected descending scores, got %v then %v", results[0].Score, results[1].Score)
	}
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, &fakeEmbedder{}, 3, "test-embed")
	ctx := context.Background()

	if _, err := m.CreateOrReplace(ctx, "tenant", testChunks(1)); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if err := m.Delete(ctx, "tenant"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.Get(ctx, "tenant"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteUnknownIndex(t *testing.T) {
	m := NewManager(newFakeStore(), &fakeEmbedder{}, 3, "test-embed")

	if err := m.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRecordsDedupsChunks(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, &fakeEmbedder{}, 3, "test-embed")
	ctx := context.Background()

	chunks := []chunker.Chunk{
		{Record: source.Record{SourceIndex: 1, Slug: "b", Question: "q1", Answer: "a1"}, Text: "part one", NthChunk: 0},
		{Record: source.Record{SourceIndex: 1, Slug: "b", Question: "q1", Answer: "a1"}, Text: "part two", NthChunk: 1},
		{Record: source.Record{SourceIndex: 0, Slug: "a", Question: "q0", Answer: "a0"}, Text: "whole", NthChunk: 0},
	}
	if _, err := m.CreateOrReplace(ctx, "tenant", chunks); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	records, err := m.ListRecords(ctx, "tenant")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Slug != "a" || records[1].Slug != "b" {
		t.Errorf("expected records ordered by source index, got %s then %s", records[0].Slug, records[1].Slug)
	}
}

func TestPointIDDeterministic(t *testing.T) {
	a := PointID("12_0")
	b := PointID("12_0")
	c := PointID("12_1")
	if a != b {
		t.Errorf("same key produced different ids: %s vs %s", a, b)
	}
	if a == c {
		t.Error("different keys produced the same id")
	}
	if len(a) != 36 {
		t.Errorf("expected UUID string, got %q", a)
	}
}
