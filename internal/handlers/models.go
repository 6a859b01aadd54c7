package handlers

import (
	"context"
	"net/http"

	"faqsearch/internal/contextutil"
	"faqsearch/internal/llm"
)

// ModelLister lists the models the completion endpoint serves.
//
// This interface is defined from the handler's perspective
// (consumer-first).
type ModelLister interface {
	ListModels(ctx context.Context) ([]llm.ModelInfo, error)
}

// ModelsHandler handles HTTP requests for model configuration.
type ModelsHandler struct {
	lister          ModelLister
	provider        string
	chatModel       string
	embeddingsModel string
}

// NewModelsHandler creates a new ModelsHandler.
func NewModelsHandler(lister ModelLister, provider, chatModel, embeddingsModel string) *ModelsHandler {
	return &ModelsHandler{
		lister:          lister,
		provider:        provider,
		chatModel:       chatModel,
		embeddingsModel: embeddingsModel,
	}
}

// ModelsResponse represents the HTTP response payload for model
// configuration.
//
// swagger:model ModelsResponse
type ModelsResponse struct {
	Provider        string          `json:"provider"`
	ChatModel       string          `json:"chatModel"`
	EmbeddingsModel string          `json:"embeddingsModel"`
	Available       []llm.ModelInfo `json:"available,omitempty"`
}

// ServeHTTP handles HTTP requests for model configuration.
//
// swagger:route GET /get-models getModels
//
// # Model configuration
//
// Returns the configured provider and models, plus whatever models the
// completion endpoint reports as available. Listing failures are not
// fatal; the configured models are still returned.
//
// ---
// responses:
//
//	'200':
//	  description: Model configuration
//	  schema:
//	    "$ref": "#/definitions/ModelsResponse"
func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	resp := ModelsResponse{
		Provider:        h.provider,
		ChatModel:       h.chatModel,
		EmbeddingsModel: h.embeddingsModel,
	}

	available, err := h.lister.ListModels(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to list models", "error", err)
	} else {
		resp.Available = available
	}

	writeJSON(w, http.StatusOK, resp)
}
