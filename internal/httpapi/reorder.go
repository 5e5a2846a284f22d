package httpapi

import (
	"context"
	"net/http"

	"github.com/writgo/theorie/internal/course"
)

type moveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down UP DOWN"`
}

var moveMessages = fieldMessages{"": "Richting is verplicht. Kies up of down"}

type moveFunc func(ctx context.Context, id string, dir course.Direction) (bool, error)

// move swaps a row with its neighbour. Moving the first row up or the last
// row down is not an error; "moved" is false.
func move(w http.ResponseWriter, r *http.Request, fn moveFunc, notFound string) {
	var req moveRequest
	if !bind(w, r, &req, moveMessages) {
		return
	}
	dir, err := course.ParseDirection(req.Direction)
	if err != nil {
		fail(w, r, err, notFound, msgGeneric)
		return
	}
	moved, err := fn(r.Context(), r.PathValue("id"), dir)
	if err != nil {
		fail(w, r, err, notFound, "Er is een fout opgetreden bij het verplaatsen")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"moved": moved})
}

func (s *Server) handleMoveChapter(w http.ResponseWriter, r *http.Request) {
	move(w, r, s.content.MoveChapter, msgChapterNotFound)
}

func (s *Server) handleMoveLesson(w http.ResponseWriter, r *http.Request) {
	move(w, r, s.content.MoveLesson, msgLessonNotFound)
}

func (s *Server) handleMoveQuestion(w http.ResponseWriter, r *http.Request) {
	move(w, r, s.content.MoveQuestion, msgQuestionNotFound)
}
