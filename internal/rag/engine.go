package rag

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"faqsearch/internal/contextutil"
	"faqsearch/internal/groundedness"
	"faqsearch/internal/llm"
)

//go:embed prompt.txt
var defaultPrompt string

// DefaultPrompt is the system prompt used when a tenant has not published
// one of its own.
func DefaultPrompt() string {
	return strings.TrimSpace(defaultPrompt)
}

const retrieveToolName = "retrieve"

// Engine defaults.
const (
	DefaultRetrieveK     = 10
	DefaultHistoryWindow = 10
)

// EngineConfig tunes the orchestrator.
type EngineConfig struct {
	// WorkingLanguage is the language the indexed content is written in.
	WorkingLanguage string
	// RetrieveK is how many chunks the retrieval tool fetches.
	RetrieveK int
	// HistoryWindow bounds how many prior human/assistant messages are
	// replayed to the model.
	HistoryWindow int
	// RedactionThreshold is the ungrounded fraction at or above which
	// flagged spans are removed from the answer.
	RedactionThreshold float64
}

// ChatRequest is one conversation turn.
type ChatRequest struct {
	IndexID  string
	ThreadID string
	Message  string
	// Prompt is the tenant's system prompt; blank falls back to the
	// default.
	Prompt string
}

// ChatResponse is the outcome of one turn.
type ChatResponse struct {
	Answer   string
	Language string
	// Retrieved reports whether the model consulted the index this turn.
	Retrieved bool
}

// Engine runs one conversation turn at a time. It holds no per-thread
// state; per-thread serialization is the memory store's contract.
type Engine struct {
	model      LanguageModel
	retriever  Retriever
	memory     MemoryStore
	translator Translator
	checker    Checker // nil disables groundedness checking
	cfg        EngineConfig
}

// NewEngine creates an orchestrator. checker may be nil to disable the
// groundedness stage.
func NewEngine(model LanguageModel, retriever Retriever, memory MemoryStore, translator Translator, checker Checker, cfg EngineConfig) *Engine {
	if cfg.WorkingLanguage == "" {
		cfg.WorkingLanguage = "en"
	}
	if cfg.RetrieveK == 0 {
		cfg.RetrieveK = DefaultRetrieveK
	}
	if cfg.HistoryWindow == 0 {
		cfg.HistoryWindow = DefaultHistoryWindow
	}
	if cfg.RedactionThreshold == 0 {
		cfg.RedactionThreshold = groundedness.DefaultThreshold
	}
	return &Engine{
		model:      model,
		retriever:  retriever,
		memory:     memory,
		translator: translator,
		checker:    checker,
		cfg:        cfg,
	}
}

// Answer runs one turn: detect and translate the question into the working
// language, let the model decide between answering and retrieving, ground
// the answer in retrieved chunks, then translate back. History is stored in
// the working language.
func (e *Engine) Answer(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	lang, err := e.translator.Detect(ctx, req.Message)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("detect language: %w", err)
	}

	question, err := e.translator.Translate(ctx, req.Message, lang, e.cfg.WorkingLanguage)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("translate question: %w", err)
	}

	history, err := e.memory.Read(ctx, req.ThreadID)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("read history: %w", err)
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = DefaultPrompt()
	}

	messages := append(history, Message{Role: RoleHuman, Content: question})
	turnStart := len(history)
	state := StateAwaitingDecision
	retrieved := false

	for state != StateDone {
		switch state {
		case StateAwaitingDecision:
			completion, err := e.model.ChatWithTools(ctx,
				e.modelInput(prompt, messages), []llm.Tool{retrievalTool()})
			if err != nil {
				return ChatResponse{}, fmt.Errorf("retrieval decision: %w", err)
			}
			msg := Message{
				Role:      RoleAssistant,
				Content:   completion.Content,
				ToolCalls: completion.ToolCalls,
			}
			messages = append(messages, msg)
			state = Next(state, msg)

		case StateRetrieving:
			retrieved = true
			assistant := messages[len(messages)-1]
			for _, call := range assistant.ToolCalls {
				serialized, err := e.runRetrieval(ctx, req.IndexID, call)
				if err != nil {
					return ChatResponse{}, err
				}
				msg := Message{Role: RoleTool, Content: serialized, ToolCallID: call.ID}
				messages = append(messages, msg)
				state = Next(state, msg)
			}

		case StateResponding:
			grounding := groundingContent(messages)
			system := prompt + "\n\n" + strings.Join(grounding, "\n\n")
			convo := conversational(messages)
			input := append([]llm.Message{{Role: llm.RoleSystem, Content: system}},
				toLLM(window(convo, e.cfg.HistoryWindow))...)

			answer, err := e.model.Chat(ctx, input)
			if err != nil {
				return ChatResponse{}, fmt.Errorf("generate answer: %w", err)
			}

			if e.checker != nil {
				answer = e.checkGrounding(ctx, answer, question, grounding)
			}

			msg := Message{Role: RoleAssistant, Content: answer}
			messages = append(messages, msg)
			state = Next(state, msg)
		}
	}

	answer := messages[len(messages)-1].Content

	translated, err := e.translator.Translate(ctx, answer, e.cfg.WorkingLanguage, lang)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("translate answer: %w", err)
	}

	if err := e.memory.Append(ctx, req.ThreadID, messages[turnStart:]...); err != nil {
		return ChatResponse{}, fmt.Errorf("persist turn: %w", err)
	}

	logger.InfoContext(ctx, "chat turn completed",
		"thread_id", req.ThreadID,
		"index_id", req.IndexID,
		"language", lang,
		"retrieved", retrieved,
	)

	return ChatResponse{Answer: translated, Language: lang, Retrieved: retrieved}, nil
}

// modelInput builds the decision-phase input: system prompt plus the
// bounded conversational window.
func (e *Engine) modelInput(prompt string, messages []Message) []llm.Message {
	convo := conversational(messages)
	return append([]llm.Message{{Role: llm.RoleSystem, Content: prompt}},
		toLLM(window(convo, e.cfg.HistoryWindow))...)
}

// runRetrieval executes one retrieval tool call and serializes the chunks.
func (e *Engine) runRetrieval(ctx context.Context, indexID string, call llm.ToolCall) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return "", fmt.Errorf("parse tool arguments: %w", err)
	}

	scored, err := e.retriever.Search(ctx, indexID, args.Query, e.cfg.RetrieveK)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}

	logger.DebugContext(ctx, "retrieval tool executed",
		"index_id", indexID, "query", args.Query, "results", len(scored))

	parts := make([]string, len(scored))
	for i, s := range scored {
		parts[i] = fmt.Sprintf("Document: %s", s.Chunk.Text)
	}
	return strings.Join(parts, "\n\n"), nil
}

// checkGrounding redacts ungrounded spans; checker failure degrades to the
// unredacted answer.
func (e *Engine) checkGrounding(ctx context.Context, answer, question string, sources []string) string {
	logger := contextutil.LoggerFromContext(ctx)

	report, err := e.checker.Check(ctx, answer, question, sources)
	if err != nil {
		logger.WarnContext(ctx, "groundedness check failed, returning unredacted answer", "error", err)
		return answer
	}

	redacted := groundedness.ApplyRedactions(answer, report, e.cfg.RedactionThreshold)
	if redacted != answer {
		logger.InfoContext(ctx, "ungrounded content redacted",
			"fraction", report.UngroundedFraction, "spans", len(report.Spans))
	}
	return redacted
}

// groundingContent returns the texts of the last contiguous run of tool
// messages.
func groundingContent(messages []Message) []string {
	run := lastRunOfRole(messages, RoleTool)
	contents := make([]string, len(run))
	for i, m := range run {
		contents[i] = m.Content
	}
	return contents
}

// conversational keeps human messages and assistant messages that carry no
// tool calls.
func conversational(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleHuman || (m.Role == RoleAssistant && len(m.ToolCalls) == 0) {
			out = append(out, m)
		}
	}
	return out
}

// window returns the last n messages.
func window(messages []Message, n int) []Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

func toLLM(messages []Message) []llm.Message {
	out := make([]llm.Message, len(messages))
	for i, m := range messages {
		role := string(m.Role)
		if m.Role == RoleHuman {
			role = llm.RoleUser
		}
		out[i] = llm.Message{
			Role:       role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			ToolCalls:  m.ToolCalls,
		}
	}
	return out
}

func retrievalTool() llm.Tool {
	return llm.Tool{
		Name:        retrieveToolName,
		Description: "Retrieve reference material related to a query.",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"query": {
					Type:        jsonschema.String,
					Description: "The search query.",
				},
			},
			Required: []string{"query"},
		},
	}
}
