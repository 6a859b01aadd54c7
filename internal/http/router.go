package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"faqsearch/internal/handlers"
	"faqsearch/internal/service"
	"faqsearch/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService   service.ChatService
	SearchService service.SearchService
	IngestService service.IngestService
	ModelLister   handlers.ModelLister
	VectorStore   vectorstore.VectorStore

	Provider        string
	ChatModel       string
	EmbeddingsModel string

	// ReadAPIKey guards query endpoints; WriteAPIKey guards index
	// management. Empty keys disable the respective check.
	ReadAPIKey  string
	WriteAPIKey string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)
	r.Use(Metrics)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	searchHandler := handlers.NewSearchHandler(deps.SearchService)
	createHandler := handlers.NewCreateVectorStoreHandler(deps.IngestService)
	deleteHandler := handlers.NewDeleteVectorStoreHandler(deps.IngestService)
	modelsHandler := handlers.NewModelsHandler(deps.ModelLister, deps.Provider, deps.ChatModel, deps.EmbeddingsModel)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore)

	// Query endpoints
	r.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(deps.ReadAPIKey))
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodPost, "/search", searchHandler)
		r.Method(http.MethodGet, "/get-models", modelsHandler)
	})

	// Index management endpoints
	r.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(deps.WriteAPIKey))
		r.Method(http.MethodPost, "/create-vector-store", createHandler)
		r.Method(http.MethodDelete, "/delete-vector-store", deleteHandler)
	})

	r.Method(http.MethodGet, "/healthz", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
