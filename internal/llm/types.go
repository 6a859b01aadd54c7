package llm

import "github.com/sashabaranov/go-openai/jsonschema"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a single message in a chat conversation.
// Tool results carry the ToolCallID they answer; assistant messages that
// requested tools carry ToolCalls.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is the model's request to invoke a tool. Arguments is the raw
// JSON the model produced.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool describes a function the model may call.
type Tool struct {
	Name        string
	Description string
	Parameters  jsonschema.Definition
}

// Completion is one chat completion turn. Either Content is set, or
// ToolCalls is non-empty when the model chose to invoke tools.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}
