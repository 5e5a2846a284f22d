// Package assistant answers student theory questions in a running conversation.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/writgo/theorie/internal/ai"
	"github.com/writgo/theorie/internal/audit"
)

const (
	defaultCompactThreshold      = 20
	defaultCompactTokenThreshold = 20000
	defaultKeepRecent            = 6

	fallbackReply = "Sorry, er ging iets mis. Probeer het later opnieuw."
	newCommand    = "/nieuw"
)

// ErrEmptyMessage is returned when the student sends nothing.
var ErrEmptyMessage = errors.New("message is empty")

const systemPrompt = `Je bent een behulpzame AI-assistent voor het TheorieExamen platform. Je helpt Nederlandse studenten met vragen over autorijbewijs en motorrijbewijs theorie-examens. Geef korte, duidelijke antwoorden in het Nederlands. Focus op praktische tips en uitleg over verkeersregels, verkeersborden, en examen voorbereiding.`

const summaryPrompt = `Vat dit gesprek tussen een student en de theorie-assistent beknopt samen. Noem:
- De besproken onderwerpen en verkeersregels
- Waar de student moeite mee had
- Voorbeelden of examenvragen die behandeld zijn
Houd de samenvatting onder de 150 woorden.`

// EngineConfig holds dependencies for the engine.
type EngineConfig struct {
	Provider              ai.Provider
	Store                 ConversationStore
	Events                audit.Logger
	CompactThreshold      int // messages since the last summary before compaction (default 20)
	CompactTokenThreshold int // estimated tokens since the last summary before compaction (default 20000)
	KeepRecent            int // recent messages kept verbatim after compaction (default 6)
}

// Engine runs one assistant turn at a time per request.
type Engine struct {
	provider              ai.Provider
	store                 ConversationStore
	events                audit.Logger
	compactThreshold      int
	compactTokenThreshold int
	keepRecent            int
}

// Reply is the assistant's answer in a conversation.
type Reply struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// NewEngine creates an Engine.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		provider:              cfg.Provider,
		store:                 cfg.Store,
		events:                cfg.Events,
		compactThreshold:      cfg.CompactThreshold,
		compactTokenThreshold: cfg.CompactTokenThreshold,
		keepRecent:            cfg.KeepRecent,
	}
	if e.store == nil {
		e.store = NewMemoryStore()
	}
	if e.events == nil {
		e.events = audit.NopLogger{}
	}
	if e.compactThreshold == 0 {
		e.compactThreshold = defaultCompactThreshold
	}
	if e.compactTokenThreshold == 0 {
		e.compactTokenThreshold = defaultCompactTokenThreshold
	}
	if e.keepRecent == 0 {
		e.keepRecent = defaultKeepRecent
	}
	return e
}

// Store returns the conversation store.
func (e *Engine) Store() ConversationStore {
	return e.store
}

// Ask records the student's message and returns the assistant's answer.
// Upstream failures produce a fallback reply, not an error.
func (e *Engine) Ask(ctx context.Context, userID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}
	slog.Info("assistant message", "user_id", userID, "text_len", len(text))

	if text == newCommand {
		return e.restart(ctx, userID)
	}

	conv, err := e.activeConversation(ctx, userID)
	if err != nil {
		return Reply{}, err
	}

	if err := e.store.AddMessage(ctx, conv.ID, StoredMessage{Role: "user", Content: text}); err != nil {
		return Reply{}, fmt.Errorf("storing user message: %w", err)
	}
	conv, err = e.store.GetConversation(ctx, conv.ID)
	if err != nil {
		return Reply{}, err
	}

	e.maybeCompact(ctx, conv)

	messages := []ai.Message{{Role: "system", Content: systemPrompt}}
	messages = append(messages, contextMessages(conv)...)

	resp, err := e.provider.Complete(ctx, ai.CompletionRequest{
		Messages: messages,
		Task:     ai.TaskAssistant,
	})
	if err != nil {
		slog.Error("assistant completion failed", "user_id", userID, "error", err)
		return Reply{ConversationID: conv.ID, Content: fallbackReply}, nil
	}

	if err := e.store.AddMessage(ctx, conv.ID, StoredMessage{
		Role:         "assistant",
		Content:      resp.Content,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}); err != nil {
		slog.Error("failed to store assistant message", "error", err)
	}
	audit.Record(ctx, e.events, audit.Event{
		UserID:    userID,
		EventType: audit.AssistantReplied,
		Data: map[string]any{
			"conversation_id": conv.ID,
			"model":           resp.Model,
			"tokens":          resp.TotalTokens(),
		},
	})

	return Reply{ConversationID: conv.ID, Content: resp.Content}, nil
}

// History returns the student's active conversation, if any.
func (e *Engine) History(ctx context.Context, userID string) (*Conversation, bool, error) {
	return e.store.GetActiveConversation(ctx, userID)
}

func (e *Engine) restart(ctx context.Context, userID string) (Reply, error) {
	conv, found, err := e.store.GetActiveConversation(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	if found {
		if err := e.store.EndConversation(ctx, conv.ID); err != nil {
			slog.Error("failed to end conversation", "error", err)
		}
	}
	conv, err = e.store.CreateConversation(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	return Reply{
		ConversationID: conv.ID,
		Content:        "Nieuw gesprek gestart. Waar kan ik je mee helpen bij je theorie-examen?",
	}, nil
}

func (e *Engine) activeConversation(ctx context.Context, userID string) (*Conversation, error) {
	conv, found, err := e.store.GetActiveConversation(ctx, userID)
	if err != nil {
		return nil, err
	}
	if found {
		return conv, nil
	}
	return e.store.CreateConversation(ctx, userID)
}

// contextMessages returns the summary, if any, followed by the messages after it.
func contextMessages(conv *Conversation) []ai.Message {
	var messages []ai.Message
	if conv.Summary != "" {
		messages = append(messages,
			ai.Message{Role: "user", Content: "Samenvatting van ons eerdere gesprek:\n" + conv.Summary},
			ai.Message{Role: "assistant", Content: "Begrepen, ik ga verder op basis van ons eerdere gesprek."},
		)
	}
	for _, m := range conv.Messages[conv.CompactedAt:] {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}
	return messages
}

// estimateTokens is a rough count at four characters per token.
func estimateTokens(messages []StoredMessage) int {
	total := 0
	for _, m := range messages {
		total += len(m.Content) / 4
	}
	return total
}

// maybeCompact folds older messages into the summary once either threshold
// is passed, keeping the most recent ones verbatim.
func (e *Engine) maybeCompact(ctx context.Context, conv *Conversation) {
	uncompacted := conv.Messages[conv.CompactedAt:]
	if len(uncompacted) <= e.compactThreshold && estimateTokens(uncompacted) <= e.compactTokenThreshold {
		return
	}

	compactUpTo := len(conv.Messages) - e.keepRecent
	if compactUpTo <= conv.CompactedAt {
		return
	}

	var content strings.Builder
	if conv.Summary != "" {
		content.WriteString("Eerdere samenvatting:\n")
		content.WriteString(conv.Summary)
		content.WriteString("\n\nNieuwe berichten:\n")
	}
	for _, m := range conv.Messages[conv.CompactedAt:compactUpTo] {
		role := "Student"
		if m.Role == "assistant" {
			role = "Assistent"
		}
		fmt.Fprintf(&content, "%s: %s\n", role, m.Content)
	}

	resp, err := e.provider.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: summaryPrompt},
			{Role: "user", Content: content.String()},
		},
		Task: ai.TaskSummary,
	})
	if err != nil {
		slog.Warn("compaction failed, continuing without summary", "error", err)
		return
	}
	if err := e.store.SetSummary(ctx, conv.ID, resp.Content, compactUpTo); err != nil {
		slog.Warn("failed to save summary", "error", err)
		return
	}

	conv.Summary = resp.Content
	conv.CompactedAt = compactUpTo

	slog.Info("conversation compacted",
		"conversation_id", conv.ID,
		"compacted_messages", compactUpTo,
		"remaining_messages", len(conv.Messages)-compactUpTo,
	)
}
