package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ingest_service.go -package=mocks -mock_names=IngestService=MockIngestService faqsearch/internal/service IngestService

import (
	"context"

	"faqsearch/internal/chunker"
	"faqsearch/internal/contextutil"
	"faqsearch/internal/index"
	"faqsearch/internal/indexname"
	"faqsearch/internal/source"
)

// DocumentLoader loads tenant documents and prompts from a source.
// This interface is defined from the service layer's perspective
// (consumer-first).
type DocumentLoader interface {
	Load(ctx context.Context, typ source.Type, id string, data *source.Payload) ([]source.Record, error)
	ResolvePrompt(ctx context.Context, typ source.Type, id string, data *source.Payload) (string, bool)
}

// Splitter cuts records into token-bounded chunks.
type Splitter interface {
	Split(records []source.Record) []chunker.Chunk
}

// IndexManager is the slice of the index layer the services consume.
type IndexManager interface {
	CreateOrReplace(ctx context.Context, indexID string, chunks []chunker.Chunk) (int, error)
	Delete(ctx context.Context, indexID string) error
	Search(ctx context.Context, indexID, query string, k int) ([]index.ScoredChunk, error)
	ListRecords(ctx context.Context, indexID string) ([]source.Record, error)
}

// IngestRequest asks for a tenant's documents to be (re)indexed.
type IngestRequest struct {
	SourceID string
	Type     source.Type
	Data     *source.Payload
}

// IngestResult reports what an ingestion did.
type IngestResult struct {
	IndexID string
	Count   int
}

// IngestService builds and removes tenant indices.
type IngestService interface {
	// CreateVectorStore loads, chunks and indexes a tenant's documents,
	// replacing any previous index contents.
	CreateVectorStore(ctx context.Context, req IngestRequest) (IngestResult, error)
	// DeleteVectorStore removes a tenant's index and returns its id.
	DeleteVectorStore(ctx context.Context, sourceID string) (string, error)
}

// ingestService implements IngestService.
type ingestService struct {
	loader   DocumentLoader
	splitter Splitter
	manager  IndexManager
}

// NewIngestService creates a new IngestService.
func NewIngestService(loader DocumentLoader, splitter Splitter, manager IndexManager) IngestService {
	return &ingestService{
		loader:   loader,
		splitter: splitter,
		manager:  manager,
	}
}

// CreateVectorStore loads, chunks and indexes a tenant's documents.
func (s *ingestService) CreateVectorStore(ctx context.Context, req IngestRequest) (IngestResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	indexID := indexname.Normalize(req.SourceID)
	if indexID == "" {
		return IngestResult{}, &ValidationError{
			Field:   "sheetId",
			Message: "must contain at least one letter or digit",
		}
	}

	records, err := s.loader.Load(ctx, req.Type, req.SourceID, req.Data)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load documents", "source_id", req.SourceID, "error", err)
		return IngestResult{}, classifyLoadError(err)
	}

	chunks := s.splitter.Split(records)

	count, err := s.manager.CreateOrReplace(ctx, indexID, chunks)
	if err != nil {
		logger.ErrorContext(ctx, "failed to index documents", "index_id", indexID, "error", err)
		return IngestResult{}, classifyIndexError(err)
	}

	logger.InfoContext(ctx, "ingestion completed",
		"index_id", indexID, "records", len(records), "chunks", count)
	return IngestResult{IndexID: indexID, Count: count}, nil
}

// DeleteVectorStore removes a tenant's index.
func (s *ingestService) DeleteVectorStore(ctx context.Context, sourceID string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	indexID := indexname.Normalize(sourceID)
	if indexID == "" {
		return "", &ValidationError{
			Field:   "sheetId",
			Message: "must contain at least one letter or digit",
		}
	}

	if err := s.manager.Delete(ctx, indexID); err != nil {
		return "", classifyIndexError(err)
	}

	logger.InfoContext(ctx, "index deleted", "index_id", indexID)
	return indexID, nil
}
