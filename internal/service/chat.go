package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService faqsearch/internal/service ChatService

import (
	"context"

	"github.com/google/uuid"

	"faqsearch/internal/contextutil"
	"faqsearch/internal/indexname"
	"faqsearch/internal/rag"
	"faqsearch/internal/source"
)

// Orchestrator runs one retrieval-augmented conversation turn.
// This interface is defined from the service layer's perspective
// (consumer-first).
type Orchestrator interface {
	Answer(ctx context.Context, req rag.ChatRequest) (rag.ChatResponse, error)
}

// ThreadLocker serializes conversation turns per thread.
type ThreadLocker interface {
	LockThread(threadID string) (unlock func())
}

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Message  string
	SourceID string
	// ThreadID identifies the conversation; blank derives one from
	// ClientAddr.
	ThreadID   string
	ClientAddr string
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Reply    string
	ThreadID string
}

// ChatService provides chat functionality.
type ChatService interface {
	// ProcessChat processes a chat request and returns a response.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// chatService implements ChatService.
type chatService struct {
	engine Orchestrator
	loader DocumentLoader
	locker ThreadLocker
}

// NewChatService creates a new ChatService.
func NewChatService(engine Orchestrator, loader DocumentLoader, locker ThreadLocker) ChatService {
	return &chatService{
		engine: engine,
		loader: loader,
		locker: locker,
	}
}

// ProcessChat processes a chat request. Turns on the same thread are
// serialized; the tenant's published system prompt is resolved fresh each
// turn and falls back to the default when absent.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Message == "" {
		logger.WarnContext(ctx, "empty message in chat request")
		return ChatResponse{}, &ValidationError{
			Field:   "message",
			Message: "cannot be empty",
		}
	}
	indexID := indexname.Normalize(req.SourceID)
	if indexID == "" {
		return ChatResponse{}, &ValidationError{
			Field:   "sheetId",
			Message: "must contain at least one letter or digit",
		}
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = deriveThreadID(req.ClientAddr)
	}

	prompt, ok := s.loader.ResolvePrompt(ctx, source.TypeSpreadsheet, req.SourceID, nil)
	if !ok {
		logger.DebugContext(ctx, "no tenant prompt published, using default", "source_id", req.SourceID)
	}

	unlock := s.locker.LockThread(threadID)
	defer unlock()

	resp, err := s.engine.Answer(ctx, rag.ChatRequest{
		IndexID:  indexID,
		ThreadID: threadID,
		Message:  req.Message,
		Prompt:   prompt,
	})
	if err != nil {
		logger.ErrorContext(ctx, "chat turn failed", "thread_id", threadID, "error", err)
		return ChatResponse{}, classifyIndexError(err)
	}

	return ChatResponse{Reply: resp.Answer, ThreadID: threadID}, nil
}

// deriveThreadID maps a client address onto a stable thread id.
func deriveThreadID(clientAddr string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(clientAddr)).String()
}
