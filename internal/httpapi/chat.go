package httpapi

import (
	"errors"
	"net/http"

	"github.com/writgo/theorie/internal/assistant"
)

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !bind(w, r, &req, fieldMessages{"": "Bericht is verplicht"}) {
		return
	}

	reply, err := s.assistant.Ask(r.Context(), currentUser(r), req.Message)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		writeError(w, http.StatusBadRequest, "Bericht is verplicht")
		return
	}
	if err != nil {
		fail(w, r, err, msgGeneric, msgGeneric)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// handleChatHistory returns the active conversation, or an empty one.
func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	conv, ok, err := s.assistant.History(r.Context(), currentUser(r))
	if err != nil {
		fail(w, r, err, msgGeneric, msgGeneric)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"messages": []assistant.StoredMessage{}})
		return
	}
	writeJSON(w, http.StatusOK, conv)
}
