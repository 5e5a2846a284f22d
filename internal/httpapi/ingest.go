package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/writgo/theorie/internal/draft"
	"github.com/writgo/theorie/internal/generate"
)

const (
	msgIngestFailed = "Er is een fout opgetreden bij het opslaan van de gegenereerde content"
	msgWrongDraft   = "Concept heeft het verkeerde type"
)

// Ingestion requests carry either the (edited) payload inline or a draft id.
// An inline payload wins; the draft is only read when the payload is empty.

type ingestCurriculumRequest struct {
	CourseID string                  `json:"course_id" validate:"required"`
	Chapters []generate.ChapterDraft `json:"chapters"`
	DraftID  string                  `json:"draft_id"`
}

type ingestLessonsRequest struct {
	ChapterID string                 `json:"chapter_id"`
	Lessons   []generate.LessonDraft `json:"lessons"`
	Quiz      *generate.QuizDraft    `json:"quiz"`
	DraftID   string                 `json:"draft_id"`
}

type ingestQuizRequest struct {
	LessonID  string                   `json:"lesson_id" validate:"required"`
	Questions []generate.QuestionDraft `json:"questions"`
	DraftID   string                   `json:"draft_id"`
}

// loadDraft reads a draft of the expected kind into v. It writes the error
// response itself and returns false on failure.
func (s *Server) loadDraft(w http.ResponseWriter, r *http.Request, id, kind string, v any) (draft.Draft, bool) {
	d, err := s.drafts.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err, msgDraftNotFound, msgGeneric)
		return draft.Draft{}, false
	}
	if d.Kind != kind {
		writeError(w, http.StatusBadRequest, msgWrongDraft)
		return draft.Draft{}, false
	}
	if err := d.Decode(v); err != nil {
		fail(w, r, err, msgDraftNotFound, msgGeneric)
		return draft.Draft{}, false
	}
	return d, true
}

// consumeDraft removes a draft once its content is stored.
func (s *Server) consumeDraft(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := s.drafts.Delete(ctx, id); err != nil {
		slog.Warn("deleting ingested draft failed", "draft_id", id, "error", err)
	}
}

func (s *Server) handleIngestCurriculum(w http.ResponseWriter, r *http.Request) {
	var req ingestCurriculumRequest
	if !bind(w, r, &req, fieldMessages{"": "Cursus ID is verplicht"}) {
		return
	}
	if len(req.Chapters) == 0 && req.DraftID != "" {
		var c generate.Curriculum
		if _, ok := s.loadDraft(w, r, req.DraftID, draft.KindCurriculum, &c); !ok {
			return
		}
		req.Chapters = c.Chapters
	}
	if len(req.Chapters) == 0 {
		writeError(w, http.StatusBadRequest, "Geen hoofdstukken om op te slaan")
		return
	}

	res, err := s.ingest.Curriculum(r.Context(), currentUser(r), req.CourseID, req.Chapters)
	if err != nil {
		fail(w, r, err, "Cursus niet gevonden", msgIngestFailed)
		return
	}
	s.consumeDraft(r.Context(), req.DraftID)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleIngestLessons(w http.ResponseWriter, r *http.Request) {
	var req ingestLessonsRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Lessons) == 0 && req.Quiz == nil && req.DraftID != "" {
		var b generate.LessonBundle
		d, ok := s.loadDraft(w, r, req.DraftID, draft.KindLessons, &b)
		if !ok {
			return
		}
		req.Lessons, req.Quiz = b.Lessons, b.Quiz
		if req.ChapterID == "" {
			req.ChapterID = d.Meta["chapter_id"]
		}
	}
	if req.ChapterID == "" {
		writeError(w, http.StatusBadRequest, "Hoofdstuk ID is verplicht")
		return
	}
	if len(req.Lessons) == 0 && req.Quiz == nil {
		writeError(w, http.StatusBadRequest, "Geen lessen om op te slaan")
		return
	}

	bundle := generate.LessonBundle{Lessons: req.Lessons, Quiz: req.Quiz}
	res, err := s.ingest.LessonBundle(r.Context(), currentUser(r), req.ChapterID, bundle)
	if err != nil {
		fail(w, r, err, "Hoofdstuk niet gevonden", msgIngestFailed)
		return
	}
	s.consumeDraft(r.Context(), req.DraftID)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleIngestQuiz(w http.ResponseWriter, r *http.Request) {
	var req ingestQuizRequest
	if !bind(w, r, &req, fieldMessages{"": "Les ID is verplicht"}) {
		return
	}
	if len(req.Questions) == 0 && req.DraftID != "" {
		var q generate.Quiz
		if _, ok := s.loadDraft(w, r, req.DraftID, draft.KindQuiz, &q); !ok {
			return
		}
		req.Questions = q.Questions
	}
	if len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "Geen vragen om op te slaan")
		return
	}

	res, err := s.ingest.Quiz(r.Context(), currentUser(r), req.LessonID, req.Questions)
	if err != nil {
		fail(w, r, err, "Les niet gevonden", msgIngestFailed)
		return
	}
	s.consumeDraft(r.Context(), req.DraftID)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.drafts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err, msgDraftNotFound, msgGeneric)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleReplaceDraft stores an operator-edited payload. The body is the new
// payload itself, in the same shape the generation endpoint returned.
func (s *Server) handleReplaceDraft(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if !decode(w, r, &payload) {
		return
	}
	if len(payload) == 0 {
		writeError(w, http.StatusBadRequest, "Concept inhoud is verplicht")
		return
	}
	delete(payload, "draft_id")

	raw, err := json.Marshal(payload)
	if err != nil {
		fail(w, r, err, msgDraftNotFound, msgGeneric)
		return
	}
	d, err := s.drafts.Replace(r.Context(), r.PathValue("id"), raw)
	if err != nil {
		fail(w, r, err, msgDraftNotFound, msgGeneric)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.drafts.Delete(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err, msgDraftNotFound, msgGeneric)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
