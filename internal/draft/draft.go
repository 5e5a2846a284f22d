// Package draft keeps generated drafts for operator review until they are
// ingested or expire.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/writgo/theorie/internal/platform/cache"
)

// ErrNotFound is returned for unknown or expired drafts.
var ErrNotFound = errors.New("draft not found")

// Kinds of drafts.
const (
	KindCurriculum    = "curriculum"
	KindLessonContent = "lesson_content"
	KindLessons       = "lessons"
	KindQuiz          = "quiz"
)

// Draft is a generated payload waiting for review.
type Draft struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	UserID    string            `json:"user_id"`
	Payload   json.RawMessage   `json:"payload"`
	Meta      map[string]string `json:"meta,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Decode unmarshals the payload into v.
func (d Draft) Decode(v any) error {
	if err := json.Unmarshal(d.Payload, v); err != nil {
		return fmt.Errorf("decoding %s draft: %w", d.Kind, err)
	}
	return nil
}

// New builds a draft with a fresh ID from any JSON-encodable value.
func New(kind, userID string, payload any, meta map[string]string) (Draft, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Draft{}, fmt.Errorf("encoding %s draft: %w", kind, err)
	}
	return Draft{ID: uuid.NewString(), Kind: kind, UserID: userID, Payload: raw, Meta: meta}, nil
}

// Store persists drafts with a time to live.
type Store interface {
	Save(ctx context.Context, d Draft) (Draft, error)
	Get(ctx context.Context, id string) (Draft, error)
	// Replace swaps the payload of an edited draft and keeps its expiry.
	Replace(ctx context.Context, id string, payload json.RawMessage) (Draft, error)
	Delete(ctx context.Context, id string) error
}

type entry struct {
	draft     Draft
	expiresAt time.Time
}

// MemoryStore keeps drafts in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	drafts map[string]entry
	now    func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, drafts: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, d Draft) (Draft, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := s.now()
	d.CreatedAt, d.UpdatedAt = now, now

	s.mu.Lock()
	s.drafts[d.ID] = entry{draft: d, expiresAt: now.Add(s.ttl)}
	s.mu.Unlock()
	return d, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(id)
	if !ok {
		return Draft{}, ErrNotFound
	}
	return e.draft, nil
}

func (s *MemoryStore) Replace(_ context.Context, id string, payload json.RawMessage) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(id)
	if !ok {
		return Draft{}, ErrNotFound
	}
	e.draft.Payload = payload
	e.draft.UpdatedAt = s.now()
	s.drafts[id] = e
	return e.draft, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(id); !ok {
		return ErrNotFound
	}
	delete(s.drafts, id)
	return nil
}

// live must be called with mu held; it evicts an expired entry.
func (s *MemoryStore) live(id string) (entry, bool) {
	e, ok := s.drafts[id]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.drafts, id)
		return entry{}, false
	}
	return e, true
}

// RedisStore keeps drafts as JSON strings under theorie:draft:<id>.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func (s *RedisStore) Save(ctx context.Context, d Draft) (Draft, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := s.now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now

	data, err := json.Marshal(d)
	if err != nil {
		return Draft{}, fmt.Errorf("encoding draft: %w", err)
	}
	if err := s.client.Set(ctx, cache.Key("draft", d.ID), data, s.ttl).Err(); err != nil {
		return Draft{}, fmt.Errorf("saving draft: %w", err)
	}
	return d, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Draft, error) {
	data, err := s.client.Get(ctx, cache.Key("draft", id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("loading draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return Draft{}, fmt.Errorf("decoding draft: %w", err)
	}
	return d, nil
}

func (s *RedisStore) Replace(ctx context.Context, id string, payload json.RawMessage) (Draft, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	d.Payload = payload
	d.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(d)
	if err != nil {
		return Draft{}, fmt.Errorf("encoding draft: %w", err)
	}
	// XX: a draft that expired between Get and Set is not resurrected.
	err = s.client.SetArgs(ctx, cache.Key("draft", id), data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("replacing draft: %w", err)
	}
	return d, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, cache.Key("draft", id)).Result()
	if err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
