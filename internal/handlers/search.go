package handlers

import (
	"encoding/json"
	"net/http"

	"faqsearch/internal/contextutil"
	"faqsearch/internal/rag"
	"faqsearch/internal/service"
)

// SearchHandler handles HTTP requests for direct index search.
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchRequest represents the HTTP request payload for search.
//
// swagger:model SearchRequest
type SearchRequest struct {
	Query   string `json:"query"`
	SheetID string `json:"sheetId"`
	K       int    `json:"k,omitempty"`
	Lang    string `json:"lang,omitempty"`
}

// SearchResponse represents the HTTP response payload for search.
//
// swagger:model SearchResponse
type SearchResponse struct {
	Results []rag.Result `json:"results"`
}

// ServeHTTP handles HTTP requests for direct index search.
//
// swagger:route POST /search search
//
// # Search an index
//
// Runs a similarity search over the tenant's index and returns results
// composed by topic, parents carrying their children.
//
// ---
// responses:
//
//	'200':
//	  description: Search results
//	  schema:
//	    "$ref": "#/definitions/SearchResponse"
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request body")
		return
	}

	results, err := h.searchService.Search(ctx, service.SearchRequest{
		Query:    req.Query,
		SourceID: req.SheetID,
		K:        req.K,
		Lang:     req.Lang,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to search index")
		return
	}

	if results == nil {
		results = []rag.Result{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
