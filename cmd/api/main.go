package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"faqsearch/internal/chunker"
	"faqsearch/internal/config"
	"faqsearch/internal/groundedness"
	"faqsearch/internal/http"
	"faqsearch/internal/index"
	"faqsearch/internal/llm"
	"faqsearch/internal/rag"
	"faqsearch/internal/service"
	"faqsearch/internal/source"
	"faqsearch/internal/storage"
	"faqsearch/internal/translate"
	"faqsearch/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers FAQ questions against per-tenant indexed spreadsheet
// content, with direct search alongside conversational retrieval-augmented
// answering.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: FAQ Search API
//   description: |
//     Multi-tenant FAQ question answering. Tenants load their question and
//     answer sheets into per-tenant vector indices and query them through
//     chat or direct search endpoints.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	messageRepo := storage.NewMessageRepo(db)

	// Initialize Qdrant vector store
	ctx := context.Background()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	indexManager := index.NewManager(vectorStore, embedder, cfg.QdrantVectorSize, cfg.EmbeddingModelName)

	// Document loading and chunking
	loader := source.NewLoader(cfg.SheetBaseURL)
	splitter, err := chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("Failed to create splitter: %v", err)
	}

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Translation is optional; without an endpoint everything is treated as
	// the working language.
	var translator rag.Translator = translate.Passthrough{Language: cfg.WorkingLanguage}
	if cfg.TranslatorEndpoint != "" {
		translator = translate.NewClient(cfg.TranslatorEndpoint, cfg.TranslatorKey, cfg.TranslatorRegion, cfg.WorkingLanguage)
		slog.Info("Translator configured", "endpoint", cfg.TranslatorEndpoint)
	}

	// Groundedness checking is optional as well
	var checker rag.Checker
	if cfg.SafetyEndpoint != "" {
		checker = groundedness.NewClient(cfg.SafetyEndpoint, cfg.SafetyKey, cfg.SafetyAPIVersion, cfg.LLMBaseURL, cfg.LLMModelName)
		slog.Info("Groundedness checking enabled", "threshold", cfg.RedactionThreshold)
	}

	// Create RAG engine
	ragEngine := rag.NewEngine(llmClient, indexManager, messageRepo, translator, checker, rag.EngineConfig{
		WorkingLanguage:    cfg.WorkingLanguage,
		RetrieveK:          cfg.ChatRetrieveK,
		HistoryWindow:      cfg.HistoryWindow,
		RedactionThreshold: cfg.RedactionThreshold,
	})
	slog.Info("RAG engine initialized")

	// Domain services
	chatService := service.NewChatService(ragEngine, loader, messageRepo)
	searchService := service.NewSearchService(indexManager, translator, cfg.WorkingLanguage, cfg.SearchK)
	ingestService := service.NewIngestService(loader, splitter, indexManager)

	// Create router with dependencies
	deps := &http.Deps{
		ChatService:     chatService,
		SearchService:   searchService,
		IngestService:   ingestService,
		ModelLister:     llmClient,
		VectorStore:     vectorStore,
		Provider:        cfg.LLMProvider,
		ChatModel:       cfg.LLMModelName,
		EmbeddingsModel: cfg.EmbeddingModelName,
		ReadAPIKey:      cfg.APIKey,
		WriteAPIKey:     cfg.APIKeyWrite,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
