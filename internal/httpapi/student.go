package httpapi

import (
	"net/http"

	"github.com/writgo/theorie/internal/course"
)

func (s *Server) handleListActiveCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.content.ListCourses(r.Context(), true)
	if err != nil {
		fail(w, r, err, msgCourseNotFound, "Er is een fout opgetreden bij het ophalen van cursussen")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(courses))
}

// handleCourseBySlug returns the published outline of an active course.
func (s *Server) handleCourseBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := s.content.GetCourseBySlug(r.Context(), r.PathValue("slug"))
	if err == nil && !c.IsActive {
		err = course.ErrNotFound
	}
	if err != nil {
		fail(w, r, err, msgCourseNotFound, "Er is een fout opgetreden bij het ophalen van de cursus")
		return
	}
	outline, err := s.content.Outline(r.Context(), c, true)
	if err != nil {
		fail(w, r, err, msgCourseNotFound, "Er is een fout opgetreden bij het ophalen van de cursus")
		return
	}
	writeJSON(w, http.StatusOK, outline)
}

// studentAnswer hides whether an option is correct.
type studentAnswer struct {
	ID     string `json:"id"`
	Answer string `json:"answer"`
}

type studentQuestion struct {
	ID         string          `json:"id"`
	Question   string          `json:"question"`
	ImageURL   string          `json:"image_url,omitempty"`
	OrderIndex int             `json:"order_index"`
	Answers    []studentAnswer `json:"answers"`
}

// publishedLesson loads a lesson students may see.
func (s *Server) publishedLesson(w http.ResponseWriter, r *http.Request) (course.Lesson, bool) {
	l, err := s.content.GetLesson(r.Context(), r.PathValue("id"))
	if err == nil && !l.IsPublished {
		err = course.ErrNotFound
	}
	if err != nil {
		fail(w, r, err, msgLessonNotFound, msgGeneric)
		return course.Lesson{}, false
	}
	return l, true
}

func (s *Server) handleLessonQuiz(w http.ResponseWriter, r *http.Request) {
	l, ok := s.publishedLesson(w, r)
	if !ok {
		return
	}
	questions, err := s.content.LessonQuiz(r.Context(), l.ID)
	if err != nil {
		fail(w, r, err, msgLessonNotFound, msgGeneric)
		return
	}

	out := make([]studentQuestion, 0, len(questions))
	for _, q := range questions {
		sq := studentQuestion{
			ID:         q.ID,
			Question:   q.Question,
			ImageURL:   q.ImageURL,
			OrderIndex: q.OrderIndex,
			Answers:    make([]studentAnswer, 0, len(q.Answers)),
		}
		for _, a := range q.Answers {
			sq.Answers = append(sq.Answers, studentAnswer{ID: a.ID, Answer: a.Answer})
		}
		out = append(out, sq)
	}
	writeJSON(w, http.StatusOK, map[string]any{"lesson": l, "questions": out})
}

type checkQuizRequest struct {
	// Answers maps question id to the chosen answer id.
	Answers map[string]string `json:"answers" validate:"required"`
}

func (s *Server) handleCheckQuiz(w http.ResponseWriter, r *http.Request) {
	l, ok := s.publishedLesson(w, r)
	if !ok {
		return
	}
	var req checkQuizRequest
	if !bind(w, r, &req, fieldMessages{"": "Antwoorden zijn verplicht"}) {
		return
	}
	res, err := s.content.CheckQuiz(r.Context(), l.ID, req.Answers)
	if err != nil {
		fail(w, r, err, msgLessonNotFound, msgGeneric)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
