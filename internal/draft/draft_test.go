package draft

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/writgo/theorie/internal/platform/cache/cachetest"
)

func runStoreTests(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	d, err := New(KindQuiz, "admin-1", map[string]any{"questions": []string{"a"}}, map[string]string{"lesson_id": "l1"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	saved, err := s.Save(ctx, d)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID != d.ID || saved.CreatedAt.IsZero() {
		t.Errorf("saved draft = %+v", saved)
	}

	got, err := s.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Kind != KindQuiz || got.UserID != "admin-1" || got.Meta["lesson_id"] != "l1" {
		t.Errorf("Get() = %+v", got)
	}
	var payload struct {
		Questions []string `json:"questions"`
	}
	if err := got.Decode(&payload); err != nil || len(payload.Questions) != 1 {
		t.Errorf("Decode() = %+v, %v", payload, err)
	}

	replaced, err := s.Replace(ctx, d.ID, json.RawMessage(`{"questions":["a","b"]}`))
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if replaced.Kind != KindQuiz {
		t.Errorf("Replace() should keep the kind, got %q", replaced.Kind)
	}
	got, _ = s.Get(ctx, d.ID)
	if err := got.Decode(&payload); err != nil || len(payload.Questions) != 2 {
		t.Errorf("payload after Replace = %+v, %v", payload, err)
	}

	if err := s.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if _, err := s.Replace(ctx, "missing", json.RawMessage(`{}`)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Replace(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore(time.Hour))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	d, _ := New(KindCurriculum, "u", []string{}, nil)
	if _, err := s.Save(ctx, d); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	now = now.Add(59 * time.Minute)
	if _, err := s.Replace(ctx, d.ID, json.RawMessage(`[]`)); err != nil {
		t.Fatalf("Replace() before expiry error = %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := s.Get(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrNotFound", err)
	}
}

func TestRedisStore(t *testing.T) {
	client := cachetest.NewClient(t)
	runStoreTests(t, NewRedisStore(client, time.Hour))
}

func TestRedisStore_ReplaceKeepsTTL(t *testing.T) {
	client := cachetest.NewClient(t)
	ctx := context.Background()
	s := NewRedisStore(client, 10*time.Minute)

	d, _ := New(KindLessons, "u", map[string]any{"lessons": []any{}}, nil)
	if _, err := s.Save(ctx, d); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := s.Replace(ctx, d.ID, json.RawMessage(`{"lessons":[]}`)); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	ttl, err := client.TTL(ctx, "theorie:draft:"+d.ID).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > 10*time.Minute {
		t.Errorf("TTL = %v, want within (0, 10m]", ttl)
	}
}
