package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/writgo/theorie/internal/ai"
	"github.com/writgo/theorie/internal/assistant"
)

func fixedUser(id string) func(*http.Request) (string, bool) {
	return func(*http.Request) (string, bool) { return id, id != "" }
}

type failingAsker struct{}

func (failingAsker) Ask(context.Context, string, string) (assistant.Reply, error) {
	return assistant.Reply{}, errors.New("store down")
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) OutboundMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, InboundMessage{Message: msg}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	var out OutboundMessage
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return out
}

func TestHandler_Conversation(t *testing.T) {
	engine := assistant.NewEngine(assistant.EngineConfig{Provider: ai.NewMockProvider("Rechts gaat voor.")})
	srv := httptest.NewServer(NewHandler(engine, fixedUser("student-1")))
	defer srv.Close()

	conn := dial(t, srv)

	first := roundTrip(t, conn, "Wie heeft voorrang?")
	if first.Content != "Rechts gaat voor." || first.ConversationID == "" || first.Error != "" {
		t.Fatalf("first reply = %+v", first)
	}
	second := roundTrip(t, conn, "En trams?")
	if second.ConversationID != first.ConversationID {
		t.Error("replies on one socket should share the conversation")
	}

	empty := roundTrip(t, conn, "  ")
	if empty.Error != "Bericht is verplicht" {
		t.Errorf("empty message reply = %+v", empty)
	}
}

func TestHandler_AskError(t *testing.T) {
	srv := httptest.NewServer(NewHandler(failingAsker{}, fixedUser("s")))
	defer srv.Close()

	out := roundTrip(t, dial(t, srv), "Hallo")
	if out.Error == "" || out.Content != "" {
		t.Errorf("reply = %+v, want an error frame", out)
	}
}

func TestHandler_Unauthenticated(t *testing.T) {
	srv := httptest.NewServer(NewHandler(failingAsker{}, fixedUser("")))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err == nil {
		t.Fatal("Dial() should fail without a user")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("response = %+v, want 401", resp)
	}
}
