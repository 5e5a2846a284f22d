package assistant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrConversationNotFound is returned for unknown conversation IDs.
var ErrConversationNotFound = errors.New("conversation not found")

// StoredMessage is one turn of a conversation.
type StoredMessage struct {
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	Model        string    `json:"model,omitempty"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Conversation is a student's assistant session.
type Conversation struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	State       string          `json:"state"`
	Messages    []StoredMessage `json:"messages"`
	Summary     string          `json:"summary,omitempty"`
	CompactedAt int             `json:"compacted_at,omitempty"` // number of messages folded into Summary
	StartedAt   time.Time       `json:"started_at"`
	EndedAt     *time.Time      `json:"ended_at,omitempty"`
}

// ConversationStore persists conversations and their messages.
type ConversationStore interface {
	CreateConversation(ctx context.Context, userID string) (*Conversation, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	GetActiveConversation(ctx context.Context, userID string) (*Conversation, bool, error)
	AddMessage(ctx context.Context, conversationID string, msg StoredMessage) error
	SetSummary(ctx context.Context, conversationID, summary string, compactedAt int) error
	EndConversation(ctx context.Context, id string) error
}

// MemoryStore keeps conversations in memory.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conversations: make(map[string]*Conversation)}
}

func (s *MemoryStore) CreateConversation(_ context.Context, userID string) (*Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := &Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		State:     "active",
		Messages:  []StoredMessage{},
		StartedAt: time.Now(),
	}
	s.conversations[conv.ID] = conv
	return clone(conv), nil
}

func (s *MemoryStore) GetConversation(_ context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return clone(conv), nil
}

func (s *MemoryStore) GetActiveConversation(_ context.Context, userID string) (*Conversation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Conversation
	for _, conv := range s.conversations {
		if conv.UserID != userID || conv.EndedAt != nil {
			continue
		}
		if latest == nil || conv.StartedAt.After(latest.StartedAt) {
			latest = conv
		}
	}
	if latest == nil {
		return nil, false, nil
	}
	return clone(latest), true, nil
}

func (s *MemoryStore) AddMessage(_ context.Context, conversationID string, msg StoredMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return ErrConversationNotFound
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	conv.Messages = append(conv.Messages, msg)
	return nil
}

func (s *MemoryStore) SetSummary(_ context.Context, conversationID, summary string, compactedAt int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return ErrConversationNotFound
	}
	conv.Summary = summary
	conv.CompactedAt = compactedAt
	return nil
}

func (s *MemoryStore) EndConversation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return ErrConversationNotFound
	}
	now := time.Now()
	conv.EndedAt = &now
	conv.State = "ended"
	return nil
}

func clone(c *Conversation) *Conversation {
	cp := *c
	cp.Messages = append([]StoredMessage{}, c.Messages...)
	return &cp
}
