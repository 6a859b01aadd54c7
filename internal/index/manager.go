// Package index manages the lifecycle of per-tenant embedding indices:
// create-or-replace ingestion, lookup, similarity search and deletion,
// multiplexed across many tenants over one vector service.
package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"faqsearch/internal/chunker"
	"faqsearch/internal/contextutil"
	"faqsearch/internal/source"
	"faqsearch/internal/vectorstore"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks faqsearch/internal/index Embedder

// embedBatchSize bounds one embedding request during ingestion.
const embedBatchSize = 64

// Embedder turns text into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TenantIndex is a handle on one tenant's embedding index.
type TenantIndex struct {
	IndexID        string
	EmbeddingModel string
}

// ScoredChunk is a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk chunker.Chunk
	Score float32
}

// Manager multiplexes index operations across tenant indices. It keeps a
// process-local registry of known indices, refreshed from the upstream
// listing on miss, and serializes mutations per index id so a reader never
// observes a half-replaced index. Operations on distinct indices do not
// block each other.
type Manager struct {
	store          vectorstore.VectorStore
	embedder       Embedder
	vectorSize     int
	embeddingModel string

	mu    sync.Mutex
	known map[string]struct{}
	locks map[string]*sync.RWMutex
}

// NewManager creates a Manager. vectorSize must match the embedder's output
// dimension; embeddingModel is stamped into every stored chunk.
func NewManager(store vectorstore.VectorStore, embedder Embedder, vectorSize int, embeddingModel string) *Manager {
	return &Manager{
		store:          store,
		embedder:       embedder,
		vectorSize:     vectorSize,
		embeddingModel: embeddingModel,
		known:          make(map[string]struct{}),
		locks:          make(map[string]*sync.RWMutex),
	}
}

// lockFor returns the mutex serializing operations on one index id.
func (m *Manager) lockFor(indexID string) *sync.RWMutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[indexID]
	if !ok {
		l = &sync.RWMutex{}
		m.locks[indexID] = l
	}
	return l
}

// CreateOrReplace ingests chunks into the tenant's index. A non-empty index
// is dropped and recreated first: ingestion is always a full replace, never
// a merge. Empty input leaves the index untouched and returns 0.
func (m *Manager) CreateOrReplace(ctx context.Context, indexID string, chunks []chunker.Chunk) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if indexID == "" {
		return 0, fmt.Errorf("empty index id")
	}
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "no chunks to ingest, index left untouched", "index_id", indexID)
		return 0, nil
	}

	lock := m.lockFor(indexID)
	lock.Lock()
	defer lock.Unlock()

	exists, err := m.store.CollectionExists(ctx, indexID)
	if err != nil {
		return 0, &OpError{IndexID: indexID, Op: "lookup", Err: err}
	}

	if exists {
		count, err := m.store.Count(ctx, indexID)
		if err != nil {
			return 0, &OpError{IndexID: indexID, Op: "count", Err: err}
		}
		if count > 0 {
			logger.InfoContext(ctx, "index already holds documents, replacing everything",
				"index_id", indexID, "count", count)
			if err := m.store.DeleteCollection(ctx, indexID); err != nil {
				return 0, &OpError{IndexID: indexID, Op: "delete", Err: err}
			}
			exists = false
		}
	}

	if !exists {
		if err := m.store.CreateCollection(ctx, indexID, m.vectorSize); err != nil {
			return 0, &OpError{IndexID: indexID, Op: "create", Err: err}
		}
	}

	// Not transactional: a failure below can leave the index partially
	// populated after the replace.
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := m.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return 0, &OpError{IndexID: indexID, Op: "embed", Err: err}
		}
		if len(vectors) != len(batch) {
			return 0, &OpError{IndexID: indexID, Op: "embed",
				Err: fmt.Errorf("expected %d vectors, got %d", len(batch), len(vectors))}
		}

		points := make([]vectorstore.Point, len(batch))
		for i, c := range batch {
			points[i] = vectorstore.Point{
				ID:   PointID(c.Key()),
				Vec:  vectors[i],
				Meta: chunkMeta(c, m.embeddingModel),
			}
		}
		if err := m.store.Upsert(ctx, indexID, points); err != nil {
			return 0, &OpError{IndexID: indexID, Op: "insert", Err: err}
		}
	}

	m.mu.Lock()
	m.known[indexID] = struct{}{}
	m.mu.Unlock()

	logger.InfoContext(ctx, "index populated", "index_id", indexID, "count", len(chunks))
	return len(chunks), nil
}

// Get returns a handle on an existing tenant index. The local registry is
// consulted first and refreshed from the upstream listing on miss.
func (m *Manager) Get(ctx context.Context, indexID string) (TenantIndex, error) {
	if err := m.ensureKnown(ctx, indexID); err != nil {
		return TenantIndex{}, err
	}
	return TenantIndex{IndexID: indexID, EmbeddingModel: m.embeddingModel}, nil
}

// Delete removes the tenant's index.
func (m *Manager) Delete(ctx context.Context, indexID string) error {
	lock := m.lockFor(indexID)
	lock.Lock()
	defer lock.Unlock()

	if err := m.ensureKnown(ctx, indexID); err != nil {
		return err
	}

	if err := m.store.DeleteCollection(ctx, indexID); err != nil {
		return &OpError{IndexID: indexID, Op: "delete", Err: err}
	}

	m.mu.Lock()
	delete(m.known, indexID)
	m.mu.Unlock()
	return nil
}

// Search embeds the query and returns the top-k chunks by cosine
// similarity, highest first. k must be at least 1.
func (m *Manager) Search(ctx context.Context, indexID, query string, k int) ([]ScoredChunk, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}
	if err := m.ensureKnown(ctx, indexID); err != nil {
		return nil, err
	}

	lock := m.lockFor(indexID)
	lock.RLock()
	defer lock.RUnlock()

	vectors, err := m.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, &OpError{IndexID: indexID, Op: "embed", Err: err}
	}
	if len(vectors) == 0 {
		return nil, &OpError{IndexID: indexID, Op: "embed", Err: fmt.Errorf("no embedding returned")}
	}

	results, err := m.store.Search(ctx, indexID, vectors[0], k)
	if err != nil {
		return nil, &OpError{IndexID: indexID, Op: "search", Err: err}
	}

	scored := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		scored = append(scored, ScoredChunk{
			Chunk: chunkFromMeta(r.Meta),
			Score: r.Score,
		})
	}
	return scored, nil
}

// Count returns the number of chunks stored in the tenant's index.
func (m *Manager) Count(ctx context.Context, indexID string) (int, error) {
	if err := m.ensureKnown(ctx, indexID); err != nil {
		return 0, err
	}

	lock := m.lockFor(indexID)
	lock.RLock()
	defer lock.RUnlock()

	count, err := m.store.Count(ctx, indexID)
	if err != nil {
		return 0, &OpError{IndexID: indexID, Op: "count", Err: err}
	}
	return count, nil
}

// ListRecords returns every source record present in the tenant's index,
// reconstructed from stored chunk metadata, deduplicated by source index
// and ordered by it.
func (m *Manager) ListRecords(ctx context.Context, indexID string) ([]source.Record, error) {
	if err := m.ensureKnown(ctx, indexID); err != nil {
		return nil, err
	}

	lock := m.lockFor(indexID)
	lock.RLock()
	defer lock.RUnlock()

	points, err := m.store.ListPoints(ctx, indexID)
	if err != nil {
		return nil, &OpError{IndexID: indexID, Op: "list", Err: err}
	}

	byIndex := make(map[int]source.Record)
	for _, p := range points {
		c := chunkFromMeta(p.Meta)
		if _, ok := byIndex[c.SourceIndex]; !ok {
			byIndex[c.SourceIndex] = c.Record
		}
	}

	records := make([]source.Record, 0, len(byIndex))
	for _, rec := range byIndex {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].SourceIndex < records[j].SourceIndex
	})
	return records, nil
}

// ensureKnown resolves indexID against the local registry, refreshing from
// the upstream collection listing on miss.
func (m *Manager) ensureKnown(ctx context.Context, indexID string) error {
	m.mu.Lock()
	_, ok := m.known[indexID]
	m.mu.Unlock()
	if ok {
		return nil
	}

	names, err := m.store.ListCollections(ctx)
	if err != nil {
		return &OpError{IndexID: indexID, Op: "list", Err: err}
	}

	m.mu.Lock()
	for _, name := range names {
		m.known[name] = struct{}{}
	}
	_, ok = m.known[indexID]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("index %s: %w", indexID, ErrNotFound)
	}
	return nil
}

// PointID derives the stable vector-service point id for a chunk key.
// The service requires UUID ids, so the key is hashed deterministically:
// the same chunk always maps to the same point.
func PointID(chunkKey string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(chunkKey)).String()
}
