package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

type errorBody struct {
	Error   string `json:"error"`
	Created *int   `json:"created,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// fieldMessages maps a struct field name to the message shown when it fails
// validation. The "" key is the fallback.
type fieldMessages map[string]string

func (m fieldMessages) message(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if msg, ok := m[fe.StructField()+"."+fe.Tag()]; ok {
				return msg
			}
			if msg, ok := m[fe.StructField()]; ok {
				return msg
			}
		}
	}
	if msg, ok := m[""]; ok {
		return msg
	}
	return "Ongeldige invoer"
}

// bind decodes a JSON body into v and validates it. On failure it writes a
// 400 response and returns false.
func bind(w http.ResponseWriter, r *http.Request, v any, msgs fieldMessages) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Ongeldige JSON")
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, msgs.message(err))
		return false
	}
	return true
}

// decode reads a JSON body without struct validation.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Ongeldige JSON")
		return false
	}
	return true
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
