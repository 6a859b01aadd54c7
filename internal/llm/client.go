// Package llm wraps an OpenAI-compatible completions and embeddings API.
package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Client is a client for an OpenAI-compatible chat completions API.
type Client struct {
	Model  string
	client *openai.Client
}

// NewClient creates a new LLM client. baseURL may point at any
// OpenAI-compatible server; it must include the /v1 prefix.
func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		Model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

// Chat sends a chat completion request without tools and returns the
// assistant's reply.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	completion, err := c.complete(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

// ChatWithTools sends a chat completion request offering the given tools.
// The model either answers directly or requests tool invocations.
func (c *Client) ChatWithTools(ctx context.Context, messages []Message, tools []Tool) (Completion, error) {
	return c.complete(ctx, messages, tools)
}

func (c *Client) complete(ctx context.Context, messages []Message, tools []Tool) (Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.Model,
		Messages: toOpenAIMessages(messages),
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Completion{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("no choices returned")
	}

	msg := resp.Choices[0].Message
	completion := Completion{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return completion, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		om := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			om.ToolCalls = append(om.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out[i] = om
	}
	return out
}
