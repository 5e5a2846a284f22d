package assistant_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/writgo/theorie/internal/ai"
	"github.com/writgo/theorie/internal/assistant"
	"github.com/writgo/theorie/internal/audit"
)

func TestEngine_Ask(t *testing.T) {
	mockAI := ai.NewMockProvider("Bij een gelijkwaardig kruispunt gaat verkeer van rechts voor.")
	events := audit.NewMemoryLogger()
	engine := assistant.NewEngine(assistant.EngineConfig{Provider: mockAI, Events: events})
	ctx := context.Background()

	reply, err := engine.Ask(ctx, "student-1", "Wie heeft voorrang?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if reply.ConversationID == "" || !strings.Contains(reply.Content, "rechts") {
		t.Errorf("Ask() = %+v", reply)
	}

	req := mockAI.LastRequest
	if req.Task != ai.TaskAssistant || req.MaxTokens != 1000 {
		t.Errorf("request task = %v, max tokens = %d", req.Task, req.MaxTokens)
	}
	if req.Messages[0].Role != "system" || !strings.Contains(req.Messages[0].Content, "TheorieExamen") {
		t.Errorf("system prompt = %q", req.Messages[0].Content)
	}

	conv, found, err := engine.History(ctx, "student-1")
	if err != nil || !found {
		t.Fatalf("History() = %v, %v", found, err)
	}
	if len(conv.Messages) != 2 || conv.Messages[1].Model != "mock" {
		t.Errorf("stored messages = %+v", conv.Messages)
	}
	if len(events.OfType(audit.AssistantReplied)) != 1 {
		t.Error("reply should be audited")
	}
}

func TestEngine_Ask_SameConversation(t *testing.T) {
	engine := assistant.NewEngine(assistant.EngineConfig{Provider: ai.NewMockProvider("ok")})
	ctx := context.Background()

	first, _ := engine.Ask(ctx, "s", "Vraag 1")
	second, _ := engine.Ask(ctx, "s", "Vraag 2")
	if first.ConversationID != second.ConversationID {
		t.Error("messages should continue the active conversation")
	}
	other, _ := engine.Ask(ctx, "t", "Vraag")
	if other.ConversationID == first.ConversationID {
		t.Error("students must not share conversations")
	}
}

func TestEngine_Ask_Empty(t *testing.T) {
	mockAI := ai.NewMockProvider("x")
	engine := assistant.NewEngine(assistant.EngineConfig{Provider: mockAI})

	if _, err := engine.Ask(context.Background(), "s", "   "); !errors.Is(err, assistant.ErrEmptyMessage) {
		t.Errorf("Ask() error = %v, want ErrEmptyMessage", err)
	}
	if mockAI.CallCount() != 0 {
		t.Error("empty message should not reach the provider")
	}
}

func TestEngine_Ask_ProviderError(t *testing.T) {
	mockAI := &ai.MockProvider{Err: ai.ErrUpstreamUnavailable}
	engine := assistant.NewEngine(assistant.EngineConfig{Provider: mockAI})

	reply, err := engine.Ask(context.Background(), "s", "Hallo")
	if err != nil {
		t.Fatalf("Ask() error = %v, want fallback reply", err)
	}
	if !strings.Contains(reply.Content, "Probeer het later opnieuw") {
		t.Errorf("fallback reply = %q", reply.Content)
	}
}

func TestEngine_NewCommand(t *testing.T) {
	mockAI := ai.NewMockProvider("ok")
	engine := assistant.NewEngine(assistant.EngineConfig{Provider: mockAI})
	ctx := context.Background()

	first, _ := engine.Ask(ctx, "s", "Vraag")
	restarted, err := engine.Ask(ctx, "s", "/nieuw")
	if err != nil {
		t.Fatalf("Ask(/nieuw) error = %v", err)
	}
	if restarted.ConversationID == first.ConversationID {
		t.Error("/nieuw should start a new conversation")
	}
	if mockAI.CallCount() != 1 {
		t.Errorf("calls = %d, /nieuw should not call the provider", mockAI.CallCount())
	}

	old, err := engine.Store().GetConversation(ctx, first.ConversationID)
	if err != nil || old.EndedAt == nil {
		t.Errorf("old conversation should be ended: %+v, %v", old, err)
	}
}

func TestEngine_Compaction(t *testing.T) {
	mockAI := ai.NewMockProvider("")
	mockAI.Responses = []string{"a1", "a2", "SAMENVATTING", "a3"}
	engine := assistant.NewEngine(assistant.EngineConfig{
		Provider:         mockAI,
		CompactThreshold: 4,
		KeepRecent:       2,
	})
	ctx := context.Background()

	for _, q := range []string{"u1", "u2", "u3"} {
		if _, err := engine.Ask(ctx, "s", q); err != nil {
			t.Fatalf("Ask(%q) error = %v", q, err)
		}
	}

	conv, _, _ := engine.History(ctx, "s")
	if conv.Summary != "SAMENVATTING" || conv.CompactedAt != 3 {
		t.Fatalf("summary = %q, compacted at %d", conv.Summary, conv.CompactedAt)
	}
	if mockAI.CallCount() != 4 {
		t.Errorf("calls = %d, want 4", mockAI.CallCount())
	}

	msgs := mockAI.LastRequest.Messages
	if len(msgs) != 5 {
		t.Fatalf("context messages = %d, want 5: %+v", len(msgs), msgs)
	}
	if !strings.Contains(msgs[1].Content, "SAMENVATTING") {
		t.Errorf("summary message = %q", msgs[1].Content)
	}
	if msgs[3].Content != "a2" || msgs[4].Content != "u3" {
		t.Errorf("recent messages = %q, %q", msgs[3].Content, msgs[4].Content)
	}
}
