// Package rag orchestrates retrieval-augmented conversations: a small state
// machine decides per turn whether the model answers directly or retrieves
// reference chunks first, and composes search results into the parent/child
// shape clients expect.
package rag

import (
	"context"

	"faqsearch/internal/groundedness"
	"faqsearch/internal/index"
	"faqsearch/internal/llm"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mocks.go -package=mocks faqsearch/internal/rag LanguageModel,Retriever,MemoryStore,Translator,Checker

// Role identifies who produced a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one conversation message. Tool results carry the ToolCallID
// they answer; assistant messages that requested retrieval carry ToolCalls.
type Message struct {
	Role       Role           `json:"role"`
	Content    string         `json:"content"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []llm.ToolCall `json:"tool_calls,omitempty"`
}

// State is a phase of one conversation turn.
type State int

const (
	// StateAwaitingDecision: the model has not yet chosen between answering
	// directly and retrieving.
	StateAwaitingDecision State = iota
	// StateRetrieving: the model requested retrieval; the tool result is
	// still pending.
	StateRetrieving
	// StateResponding: retrieval results are in; the grounded answer is
	// still pending.
	StateResponding
	// StateDone: the turn produced its final assistant message.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitingDecision:
		return "awaiting_decision"
	case StateRetrieving:
		return "retrieving"
	case StateResponding:
		return "responding"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Next returns the state that follows cur after last was appended to the
// conversation. Unexpected messages leave the state unchanged.
func Next(cur State, last Message) State {
	switch cur {
	case StateAwaitingDecision:
		if last.Role == RoleAssistant {
			if len(last.ToolCalls) > 0 {
				return StateRetrieving
			}
			return StateDone
		}
	case StateRetrieving:
		if last.Role == RoleTool {
			return StateResponding
		}
	case StateResponding:
		if last.Role == RoleAssistant {
			return StateDone
		}
	}
	return cur
}

// lastRunOfRole returns the last contiguous run of messages with the given
// role, in original order.
func lastRunOfRole(messages []Message, role Role) []Message {
	end := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == role {
			end = i
			break
		}
	}
	if end == -1 {
		return nil
	}
	start := end
	for start > 0 && messages[start-1].Role == role {
		start--
	}
	return messages[start : end+1]
}

// LanguageModel is the chat completion surface the orchestrator needs.
type LanguageModel interface {
	Chat(ctx context.Context, messages []llm.Message) (string, error)
	ChatWithTools(ctx context.Context, messages []llm.Message, tools []llm.Tool) (llm.Completion, error)
}

// Retriever runs similarity search over a tenant index.
type Retriever interface {
	Search(ctx context.Context, indexID, query string, k int) ([]index.ScoredChunk, error)
}

// MemoryStore persists conversation history per thread. Implementations
// serialize concurrent turns on the same thread.
type MemoryStore interface {
	Read(ctx context.Context, threadID string) ([]Message, error)
	Append(ctx context.Context, threadID string, messages ...Message) error
}

// Translator detects languages and translates text.
type Translator interface {
	Detect(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Checker verifies an answer against its grounding sources.
type Checker interface {
	Check(ctx context.Context, answer, query string, sources []string) (groundedness.Report, error)
}
