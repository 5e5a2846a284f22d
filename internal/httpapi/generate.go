package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/writgo/theorie/internal/ai"
	"github.com/writgo/theorie/internal/auth"
	"github.com/writgo/theorie/internal/draft"
	"github.com/writgo/theorie/internal/generate"
)

func currentUser(r *http.Request) string {
	c, _ := auth.FromContext(r.Context())
	return c.UserID()
}

// saveDraft keeps a generation result for review. A failure is logged and
// the result is still returned to the operator, just without a draft id.
func (s *Server) saveDraft(ctx context.Context, kind, userID string, payload any, meta map[string]string) string {
	if s.drafts == nil {
		return ""
	}
	d, err := draft.New(kind, userID, payload, meta)
	if err == nil {
		d, err = s.drafts.Save(ctx, d)
	}
	if err != nil {
		slog.Warn("saving draft failed", "kind", kind, "user_id", userID, "error", err)
		return ""
	}
	return d.ID
}

func (s *Server) handleGenerateCurriculum(w http.ResponseWriter, r *http.Request) {
	var req generate.CurriculumRequest
	if !decode(w, r, &req) {
		return
	}
	userID := currentUser(r)

	res, err := s.generator.Curriculum(r.Context(), userID, req)
	if err != nil {
		failGeneration(w, r, err, "Er is een fout opgetreden bij het genereren van het curriculum")
		return
	}

	id := s.saveDraft(r.Context(), draft.KindCurriculum, userID, res, map[string]string{"course_title": req.CourseTitle})
	writeJSON(w, http.StatusOK, struct {
		generate.Curriculum
		DraftID string `json:"draft_id,omitempty"`
	}{res, id})
}

func (s *Server) handleGenerateLessonContent(w http.ResponseWriter, r *http.Request) {
	var req generate.LessonContentRequest
	if !decode(w, r, &req) {
		return
	}
	userID := currentUser(r)

	res, err := s.generator.LessonContent(r.Context(), userID, req)
	if errors.Is(err, ai.ErrEmptyCompletion) {
		writeError(w, http.StatusInternalServerError, msgEmptyContent)
		return
	}
	if err != nil {
		failGeneration(w, r, err, "Er is een fout opgetreden bij het genereren van de les content")
		return
	}

	id := s.saveDraft(r.Context(), draft.KindLessonContent, userID, res, map[string]string{"topic": req.Topic})
	writeJSON(w, http.StatusOK, struct {
		generate.LessonContent
		DraftID string `json:"draft_id,omitempty"`
	}{res, id})
}

func (s *Server) handleGenerateLessons(w http.ResponseWriter, r *http.Request) {
	var req generate.LessonsRequest
	if !decode(w, r, &req) {
		return
	}
	userID := currentUser(r)

	res, err := s.generator.Lessons(r.Context(), userID, req)
	if err != nil {
		failGeneration(w, r, err, "Er is een fout opgetreden bij het genereren van de lessen")
		return
	}

	id := s.saveDraft(r.Context(), draft.KindLessons, userID, res, map[string]string{"chapter_id": req.ChapterID})
	writeJSON(w, http.StatusOK, struct {
		generate.LessonBundle
		DraftID string `json:"draft_id,omitempty"`
	}{res, id})
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generate.QuizRequest
	if !decode(w, r, &req) {
		return
	}
	userID := currentUser(r)

	res, err := s.generator.Quiz(r.Context(), userID, req)
	if err != nil {
		failGeneration(w, r, err, "Er is een fout opgetreden bij het genereren van de quiz vragen")
		return
	}

	id := s.saveDraft(r.Context(), draft.KindQuiz, userID, res, map[string]string{"topic": req.Topic})
	writeJSON(w, http.StatusOK, struct {
		generate.Quiz
		DraftID string `json:"draft_id,omitempty"`
	}{res, id})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	var used, limit int64
	if s.budget != nil {
		var err error
		used, limit, err = s.budget.Usage(r.Context(), currentUser(r))
		if err != nil {
			fail(w, r, err, msgGeneric, msgGeneric)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]int64{"used": used, "limit": limit})
}
