package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_message_store.go -package=mocks faqsearch/internal/storage MessageStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"faqsearch/internal/llm"
	"faqsearch/internal/rag"
)

// MessageStore defines the interface for conversation history storage.
type MessageStore interface {
	// Read returns a thread's messages in append order. An unknown thread
	// reads as empty.
	Read(ctx context.Context, threadID string) ([]rag.Message, error)
	// Append atomically adds messages to the end of a thread, creating the
	// thread on first write.
	Append(ctx context.Context, threadID string, messages ...rag.Message) error
}

// MessageRepo persists conversation history in SQLite.
// It implements the MessageStore interface.
type MessageRepo struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{
		db:    db,
		locks: make(map[string]*sync.Mutex),
	}
}

// LockThread serializes turns on one thread. Callers hold the lock across a
// whole read-answer-append cycle so concurrent turns on the same thread do
// not interleave; distinct threads proceed in parallel.
func (r *MessageRepo) LockThread(threadID string) (unlock func()) {
	r.mu.Lock()
	l, ok := r.locks[threadID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[threadID] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Read returns a thread's messages in append order.
func (r *MessageRepo) Read(ctx context.Context, threadID string) ([]rag.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT role, content, tool_call_id, tool_calls FROM messages WHERE thread_id = ? ORDER BY position",
		threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []rag.Message
	for rows.Next() {
		var msg rag.Message
		var role, toolCalls string
		if err := rows.Scan(&role, &msg.Content, &msg.ToolCallID, &toolCalls); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = rag.Role(role)
		if toolCalls != "" {
			var calls []llm.ToolCall
			if err := json.Unmarshal([]byte(toolCalls), &calls); err != nil {
				return nil, fmt.Errorf("failed to decode tool calls: %w", err)
			}
			msg.ToolCalls = calls
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	return messages, nil
}

// Append atomically adds messages to the end of a thread.
func (r *MessageRepo) Append(ctx context.Context, threadID string, messages ...rag.Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO threads (id) VALUES (?)", threadID,
	); err != nil {
		return fmt.Errorf("failed to ensure thread: %w", err)
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM messages WHERE thread_id = ?", threadID,
	).Scan(&next); err != nil {
		return fmt.Errorf("failed to find next position: %w", err)
	}

	for i, msg := range messages {
		var toolCalls string
		if len(msg.ToolCalls) > 0 {
			raw, err := json.Marshal(msg.ToolCalls)
			if err != nil {
				return fmt.Errorf("failed to encode tool calls: %w", err)
			}
			toolCalls = string(raw)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO messages (thread_id, position, role, content, tool_call_id, tool_calls) VALUES (?, ?, ?, ?, ?, ?)",
			threadID, next+i, string(msg.Role), msg.Content, msg.ToolCallID, toolCalls,
		); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
