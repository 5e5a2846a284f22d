package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/writgo/theorie/internal/ai"
	"github.com/writgo/theorie/internal/course"
	"github.com/writgo/theorie/internal/draft"
	"github.com/writgo/theorie/internal/generate"
	"github.com/writgo/theorie/internal/ingest"
)

const (
	msgGeneric        = "Er is een fout opgetreden"
	msgSlugTaken      = "Een cursus met deze slug bestaat al"
	msgDraftNotFound  = "Concept niet gevonden"
	msgUnparsable     = "AI response kon niet worden verwerkt. Probeer het opnieuw."
	msgEmptyContent   = "AI heeft geen content gegenereerd. Probeer het opnieuw."
	msgBudgetExceeded = "Dagelijks AI-tokenbudget bereikt. Probeer het morgen opnieuw."
)

// fail maps a content or ingestion error to a response. notFound is the
// message for a missing record; fallback is shown for unexpected errors.
func fail(w http.ResponseWriter, r *http.Request, err error, notFound, fallback string) {
	var verr *course.ValidationError
	var perr *ingest.PartialError

	switch {
	// A partial ingestion wraps its cause; it stays a 500 whatever that cause is.
	case errors.As(err, &perr):
		slog.Error("ingestion stopped", "path", r.URL.Path, "step", perr.Step, "created", perr.Created, "error", perr.Err)
		created := perr.Created
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: fallback, Created: &created})
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, course.ErrSlugTaken):
		writeError(w, http.StatusBadRequest, msgSlugTaken)
	case errors.Is(err, course.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, draft.ErrNotFound):
		writeError(w, http.StatusNotFound, msgDraftNotFound)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// failGeneration maps a generation error. Input errors are the caller's fault;
// everything else is a 500 with a retry hint.
func failGeneration(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var ierr *generate.InputError
	var perr *generate.ParseError

	switch {
	case errors.As(err, &ierr):
		writeError(w, http.StatusBadRequest, ierr.Message)
	case errors.Is(err, ai.ErrBudgetExceeded):
		writeError(w, http.StatusTooManyRequests, msgBudgetExceeded)
	case errors.As(err, &perr):
		slog.Warn("model response unparsable", "path", r.URL.Path, "kind", perr.Kind, "reason", perr.Reason)
		writeError(w, http.StatusInternalServerError, msgUnparsable)
	default:
		slog.Error("generation failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
