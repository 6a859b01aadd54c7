package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"faqsearch/internal/contextutil"
	"faqsearch/internal/service"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest represents the HTTP request payload for chat.
//
// swagger:model ChatRequest
type ChatRequest struct {
	Message  string `json:"message"`
	SheetID  string `json:"sheetId"`
	ThreadID string `json:"threadId,omitempty"`
}

// ChatResponse represents the HTTP response payload for chat.
//
// swagger:model ChatResponse
type ChatResponse struct {
	Reply    string `json:"reply"`
	ThreadID string `json:"threadId"`
}

// ServeHTTP handles HTTP requests for chat.
//
// swagger:route POST /chat chat
//
// # Ask a question
//
// Answers the question against the tenant's index, keeping the conversation
// under the given thread. When no thread id is sent one is derived from the
// caller's address.
//
// ---
// responses:
//
//	'200':
//	  description: Answer produced
//	  schema:
//	    "$ref": "#/definitions/ChatResponse"
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid request body")
		return
	}

	resp, err := h.chatService.ProcessChat(ctx, service.ChatRequest{
		Message:    req.Message,
		SourceID:   req.SheetID,
		ThreadID:   strings.TrimSpace(req.ThreadID),
		ClientAddr: clientAddr(r),
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process chat")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Reply:    resp.Reply,
		ThreadID: resp.ThreadID,
	})
}

// clientAddr returns the caller's address without the ephemeral port, so
// derived thread ids stay stable across requests from the same client.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
