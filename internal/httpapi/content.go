package httpapi

import (
	"net/http"

	"github.com/writgo/theorie/internal/course"
)

const (
	msgCourseNotFound   = "Cursus niet gevonden"
	msgChapterNotFound  = "Hoofdstuk niet gevonden"
	msgLessonNotFound   = "Les niet gevonden"
	msgQuestionNotFound = "Quiz vraag niet gevonden"
	msgAnswerNotFound   = "Quiz antwoord niet gevonden"
)

// --- courses ---

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.content.ListCourses(r.Context(), false)
	if err != nil {
		fail(w, r, err, msgCourseNotFound, "Er is een fout opgetreden bij het ophalen van cursussen")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(courses))
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var in course.CourseInput
	if !decode(w, r, &in) {
		return
	}
	c, err := s.content.CreateCourse(r.Context(), in)
	if err != nil {
		fail(w, r, err, msgCourseNotFound, "Er is een fout opgetreden bij het aanmaken van de cursus")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := s.content.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err, msgCourseNotFound, "Er is een fout opgetreden bij het ophalen van de cursus")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	var in course.CourseInput
	if !decode(w, r, &in) {
		return
	}
	c, err := s.content.UpdateCourse(r.Context(), r.PathValue("id"), in)
	if err != nil {
		fail(w, r, err, msgCourseNotFound, "Er is een fout opgetreden bij het bijwerken van de cursus")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := s.content.DeleteCourse(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err, msgCourseNotFound, "Er is een fout opgetreden bij het verwijderen van de cursus")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cursus verwijderd"})
}

// --- chapters ---

func (s *Server) handleListChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := s.content.ListChapters(r.Context(), r.URL.Query().Get("course_id"))
	if err != nil {
		fail(w, r, err, msgChapterNotFound, "Er is een fout opgetreden bij het ophalen van hoofdstukken")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(chapters))
}

func (s *Server) handleCreateChapter(w http.ResponseWriter, r *http.Request) {
	var in course.ChapterInput
	if !decode(w, r, &in) {
		return
	}
	ch, err := s.content.CreateChapter(r.Context(), in)
	if err != nil {
		fail(w, r, err, msgCourseNotFound, "Er is een fout opgetreden bij het aanmaken van het hoofdstuk")
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

func (s *Server) handleGetChapter(w http.ResponseWriter, r *http.Request) {
	ch, err := s.content.GetChapter(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err, msgChapterNotFound, "Er is een fout opgetreden bij het ophalen van het hoofdstuk")
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (s *Server) handleUpdateChapter(w http.ResponseWriter, r *http.Request) {
	var in course.ChapterInput
	if !decode(w, r, &in) {
		return
	}
	ch, err := s.content.UpdateChapter(r.Context(), r.PathValue("id"), in)
	if err != nil {
		fail(w, r, err, msgChapterNotFound, "Er is een fout opgetreden bij het bijwerken van het hoofdstuk")
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (s *Server) handleDeleteChapter(w http.ResponseWriter, r *http.Request) {
	if err := s.content.DeleteChapter(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err, msgChapterNotFound, "Er is een fout opgetreden bij het verwijderen van het hoofdstuk")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hoofdstuk verwijderd"})
}

// --- lessons ---

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lessons, err := s.content.ListLessons(r.Context(), course.LessonFilter{
		CourseID:  q.Get("course_id"),
		ChapterID: q.Get("chapter_id"),
	})
	if err != nil {
		fail(w, r, err, msgLessonNotFound, "Er is een fout opgetreden bij het ophalen van lessen")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(lessons))
}

func (s *Server) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	var in course.LessonInput
	if !decode(w, r, &in) {
		return
	}
	l, err := s.content.CreateLesson(r.Context(), in)
	if err != nil {
		fail(w, r, err, msgChapterNotFound, "Er is een fout opgetreden bij het aanmaken van de les")
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	l, err := s.content.GetLesson(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err, msgLessonNotFound, "Er is een fout opgetreden bij het ophalen van de les")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	var in course.LessonInput
	if !decode(w, r, &in) {
		return
	}
	l, err := s.content.UpdateLesson(r.Context(), r.PathValue("id"), in)
	if err != nil {
		fail(w, r, err, msgLessonNotFound, "Er is een fout opgetreden bij het bijwerken van de les")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := s.content.DeleteLesson(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err, msgLessonNotFound, "Er is een fout opgetreden bij het verwijderen van de les")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Les verwijderd"})
}

// --- quiz questions ---

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.content.ListQuestions(r.Context(), r.URL.Query().Get("lesson_id"))
	if err != nil {
		fail(w, r, err, msgQuestionNotFound, "Er is een fout opgetreden bij het ophalen van quiz vragen")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(questions))
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var in course.QuestionInput
	if !decode(w, r, &in) {
		return
	}
	q, err := s.content.CreateQuestion(r.Context(), in)
	if err != nil {
		fail(w, r, err, msgLessonNotFound, "Er is een fout opgetreden bij het aanmaken van de quiz vraag")
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := s.content.GetQuestion(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err, msgQuestionNotFound, "Er is een fout opgetreden bij het ophalen van de quiz vraag")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var in course.QuestionInput
	if !decode(w, r, &in) {
		return
	}
	q, err := s.content.UpdateQuestion(r.Context(), r.PathValue("id"), in)
	if err != nil {
		fail(w, r, err, msgQuestionNotFound, "Er is een fout opgetreden bij het bijwerken van de quiz vraag")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := s.content.DeleteQuestion(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err, msgQuestionNotFound, "Er is een fout opgetreden bij het verwijderen van de quiz vraag")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz vraag verwijderd"})
}

// --- quiz answers ---

func (s *Server) handleListAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := s.content.ListAnswers(r.Context(), r.URL.Query().Get("question_id"))
	if err != nil {
		fail(w, r, err, msgAnswerNotFound, "Er is een fout opgetreden bij het ophalen van quiz antwoorden")
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(answers))
}

func (s *Server) handleCreateAnswer(w http.ResponseWriter, r *http.Request) {
	var in course.AnswerInput
	if !decode(w, r, &in) {
		return
	}
	a, err := s.content.CreateAnswer(r.Context(), in)
	if err != nil {
		fail(w, r, err, msgQuestionNotFound, "Er is een fout opgetreden bij het aanmaken van het quiz antwoord")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGetAnswer(w http.ResponseWriter, r *http.Request) {
	a, err := s.content.GetAnswer(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err, msgAnswerNotFound, "Er is een fout opgetreden bij het ophalen van het quiz antwoord")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateAnswer(w http.ResponseWriter, r *http.Request) {
	var in course.AnswerInput
	if !decode(w, r, &in) {
		return
	}
	a, err := s.content.UpdateAnswer(r.Context(), r.PathValue("id"), in)
	if err != nil {
		fail(w, r, err, msgAnswerNotFound, "Er is een fout opgetreden bij het bijwerken van het quiz antwoord")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAnswer(w http.ResponseWriter, r *http.Request) {
	if err := s.content.DeleteAnswer(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err, msgAnswerNotFound, "Er is een fout opgetreden bij het verwijderen van het quiz antwoord")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz antwoord verwijderd"})
}
