package httpapi

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/writgo/theorie/internal/course"
	"github.com/writgo/theorie/internal/export"
)

const msgExportFailed = "Er is een fout opgetreden bij het exporteren"

// sendWorkbook writes a finished workbook as a download. The workbook is
// rendered to memory first so a failure can still become a JSON error.
func sendWorkbook(w http.ResponseWriter, name string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("writing workbook failed", "file", name, "error", err)
	}
}

func (s *Server) handleExportQuiz(w http.ResponseWriter, r *http.Request) {
	lesson, err := s.content.GetLesson(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err, msgLessonNotFound, msgExportFailed)
		return
	}
	questions, err := s.content.LessonQuiz(r.Context(), lesson.ID)
	if err != nil {
		fail(w, r, err, msgLessonNotFound, msgExportFailed)
		return
	}

	var buf bytes.Buffer
	if err := export.Quiz(&buf, lesson, questions); err != nil {
		fail(w, r, err, msgLessonNotFound, msgExportFailed)
		return
	}
	sendWorkbook(w, course.Slugify(lesson.Title)+"-quiz.xlsx", &buf)
}

func (s *Server) handleExportOutline(w http.ResponseWriter, r *http.Request) {
	c, err := s.content.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err, msgCourseNotFound, msgExportFailed)
		return
	}
	outline, err := s.content.Outline(r.Context(), c, false)
	if err != nil {
		fail(w, r, err, msgCourseNotFound, msgExportFailed)
		return
	}

	var buf bytes.Buffer
	if err := export.Outline(&buf, outline); err != nil {
		fail(w, r, err, msgCourseNotFound, msgExportFailed)
		return
	}
	sendWorkbook(w, c.Slug+"-curriculum.xlsx", &buf)
}
