// Package chat serves the student assistant over WebSocket.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/writgo/theorie/internal/assistant"
)

const (
	readLimit   = 16 << 10
	turnTimeout = 2 * time.Minute
)

// Asker answers one student message.
type Asker interface {
	Ask(ctx context.Context, userID, text string) (assistant.Reply, error)
}

// InboundMessage is a frame sent by the client.
type InboundMessage struct {
	Message string `json:"message"`
}

// OutboundMessage is a frame sent to the client. Exactly one of Content and Error is set.
type OutboundMessage struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Handler upgrades authenticated requests and relays messages to the assistant.
type Handler struct {
	asker          Asker
	userID         func(*http.Request) (string, bool)
	originPatterns []string
}

// NewHandler creates a Handler. userID resolves the authenticated student.
func NewHandler(asker Asker, userID func(*http.Request) (string, bool), originPatterns ...string) *Handler {
	return &Handler{asker: asker, userID: userID, originPatterns: originPatterns}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(r)
	if !ok {
		http.Error(w, "Niet ingelogd", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	slog.Info("websocket connected", "user_id", userID)
	err = h.serve(r.Context(), conn, userID)

	status := websocket.CloseStatus(err)
	if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
		slog.Info("websocket closed", "user_id", userID)
		return
	}
	slog.Warn("websocket closed with error", "user_id", userID, "error", err)
	conn.Close(websocket.StatusInternalError, "interne fout")
}

func (h *Handler) serve(ctx context.Context, conn *websocket.Conn, userID string) error {
	for {
		var in InboundMessage
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			return err
		}

		out := h.turn(ctx, userID, in.Message)
		if err := wsjson.Write(ctx, conn, out); err != nil {
			return err
		}
	}
}

func (h *Handler) turn(ctx context.Context, userID, text string) OutboundMessage {
	ctx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()

	reply, err := h.asker.Ask(ctx, userID, text)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		return OutboundMessage{Error: "Bericht is verplicht"}
	}
	if err != nil {
		slog.Error("assistant turn failed", "user_id", userID, "error", err)
		return OutboundMessage{Error: "Er is een fout opgetreden"}
	}
	return OutboundMessage{ConversationID: reply.ConversationID, Content: reply.Content}
}
