package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"faqsearch/internal/contextutil"
	"faqsearch/internal/service"
	"faqsearch/internal/source"
)

// CreateVectorStoreHandler handles HTTP requests for building a tenant index.
type CreateVectorStoreHandler struct {
	ingestService service.IngestService
}

// NewCreateVectorStoreHandler creates a new CreateVectorStoreHandler.
func NewCreateVectorStoreHandler(ingestService service.IngestService) *CreateVectorStoreHandler {
	return &CreateVectorStoreHandler{ingestService: ingestService}
}

// CreateVectorStoreRequest represents the HTTP request payload for building
// a tenant index. When Data is present the rows are taken from the payload
// directly; otherwise they are fetched from the configured spreadsheet source.
//
// swagger:model CreateVectorStoreRequest
type CreateVectorStoreRequest struct {
	SheetID string          `json:"sheetId"`
	Data    *source.Payload `json:"data,omitempty"`
}

// CreateVectorStoreResponse represents the HTTP response payload for a
// completed index build.
//
// swagger:model CreateVectorStoreResponse
type CreateVectorStoreResponse struct {
	IndexID string `json:"indexId"`
	Count   int    `json:"count"`
}

// ServeHTTP handles HTTP requests for building a tenant index.
//
// swagger:route POST /create-vector-store createVectorStore
//
// # Build or rebuild an index
//
// Loads the tenant's rows, chunks them and writes the embeddings into a
// fresh collection. Rebuilding replaces the previous collection entirely.
//
// ---
// responses:
//
//	'200':
//	  description: Index built
//	  schema:
//	    "$ref": "#/definitions/CreateVectorStoreResponse"
func (h *CreateVectorStoreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req CreateVectorStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request body")
		return
	}

	sourceType := source.TypeSpreadsheet
	if req.Data != nil {
		sourceType = source.TypeJSON
	}

	result, err := h.ingestService.CreateVectorStore(ctx, service.IngestRequest{
		SourceID: req.SheetID,
		Type:     sourceType,
		Data:     req.Data,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to build index")
		return
	}

	logger.InfoContext(ctx, "index built", "index_id", result.IndexID, "count", result.Count)
	writeJSON(w, http.StatusOK, CreateVectorStoreResponse{
		IndexID: result.IndexID,
		Count:   result.Count,
	})
}

// DeleteVectorStoreHandler handles HTTP requests for deleting a tenant index.
type DeleteVectorStoreHandler struct {
	ingestService service.IngestService
}

// NewDeleteVectorStoreHandler creates a new DeleteVectorStoreHandler.
func NewDeleteVectorStoreHandler(ingestService service.IngestService) *DeleteVectorStoreHandler {
	return &DeleteVectorStoreHandler{ingestService: ingestService}
}

// DeleteVectorStoreRequest represents the HTTP request payload for deleting
// a tenant index.
//
// swagger:model DeleteVectorStoreRequest
type DeleteVectorStoreRequest struct {
	SheetID string `json:"sheetId"`
}

// DeleteVectorStoreResponse represents the HTTP response payload for a
// completed index deletion.
//
// swagger:model DeleteVectorStoreResponse
type DeleteVectorStoreResponse struct {
	Message string `json:"message"`
}

// ServeHTTP handles HTTP requests for deleting a tenant index.
//
// swagger:route DELETE /delete-vector-store deleteVectorStore
//
// # Delete an index
//
// Removes the tenant's collection. Returns 404 when no such index exists.
//
// ---
// responses:
//
//	'200':
//	  description: Index deleted
//	  schema:
//	    "$ref": "#/definitions/DeleteVectorStoreResponse"
func (h *DeleteVectorStoreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodDelete {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req DeleteVectorStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request body")
		return
	}

	indexID, err := h.ingestService.DeleteVectorStore(ctx, req.SheetID)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to delete index")
		return
	}

	logger.InfoContext(ctx, "index deleted", "index_id", indexID)
	writeJSON(w, http.StatusOK, DeleteVectorStoreResponse{
		Message: fmt.Sprintf("Deleted index %s", indexID),
	})
}
