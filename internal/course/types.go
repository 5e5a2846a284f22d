// Package course holds the content model (courses, chapters, lessons, quiz
// questions and answers) and the store and service that manage it.
package course

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlugTaken is returned when a course slug is already in use.
	ErrSlugTaken = errors.New("course slug already in use")
)

// ValidationError reports a missing or invalid field. Message is shown to the operator.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// LessonType is the kind of a lesson.
type LessonType string

const (
	LessonText  LessonType = "TEXT"
	LessonVideo LessonType = "VIDEO"
	LessonQuiz  LessonType = "QUIZ"
)

// ParseLessonType accepts exactly TEXT, VIDEO or QUIZ.
func ParseLessonType(s string) (LessonType, error) {
	switch t := LessonType(s); t {
	case LessonText, LessonVideo, LessonQuiz:
		return t, nil
	default:
		return "", &ValidationError{Message: "Ongeldig les type. Kies TEXT, VIDEO of QUIZ"}
	}
}

// Course owns chapters.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       *float64  `json:"price"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	IsActive    bool      `json:"is_active"`
	Slug        string    `json:"slug"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Chapter belongs to a course and owns lessons.
type Chapter struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OrderIndex  int       `json:"order_index"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Lesson belongs to a chapter. A QUIZ lesson owns quiz questions.
type Lesson struct {
	ID          string     `json:"id"`
	CourseID    string     `json:"course_id"`
	ChapterID   string     `json:"chapter_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	OrderIndex  int        `json:"order_index"`
	IsFree      bool       `json:"is_free"`
	Type        LessonType `json:"type"`
	VideoURL    string     `json:"video_url"`
	IsPublished bool       `json:"is_published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// QuizQuestion belongs to a QUIZ lesson.
type QuizQuestion struct {
	ID          string       `json:"id"`
	LessonID    string       `json:"lesson_id"`
	Question    string       `json:"question"`
	ImageURL    string       `json:"image_url"`
	Explanation string       `json:"explanation"`
	OrderIndex  int          `json:"order_index"`
	CreatedAt   time.Time    `json:"created_at"`
	Answers     []QuizAnswer `json:"answers,omitempty"`
}

// QuizAnswer is one option of a quiz question.
type QuizAnswer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	Answer     string    `json:"answer"`
	IsCorrect  bool      `json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
}

// CourseInput is the full set of writable course fields.
type CourseInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"image_url"`
	IsActive    *bool    `json:"is_active"`
	Slug        string   `json:"slug"`
}

// ChapterInput is the full set of writable chapter fields. On create a nil
// OrderIndex places the chapter after its last sibling; on update it means 0.
// Parent references are fixed at create time.
type ChapterInput struct {
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OrderIndex  *int   `json:"order_index"`
	IsPublished bool   `json:"is_published"`
}

// LessonInput is the full set of writable lesson fields.
type LessonInput struct {
	CourseID    string `json:"course_id"`
	ChapterID   string `json:"chapter_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	OrderIndex  *int   `json:"order_index"`
	IsFree      bool   `json:"is_free"`
	Type        string `json:"type"`
	VideoURL    string `json:"video_url"`
	IsPublished bool   `json:"is_published"`
}

// QuestionInput is the full set of writable quiz question fields.
type QuestionInput struct {
	LessonID    string `json:"lesson_id"`
	Question    string `json:"question"`
	ImageURL    string `json:"image_url"`
	Explanation string `json:"explanation"`
	OrderIndex  *int   `json:"order_index"`
}

// AnswerInput is the full set of writable quiz answer fields.
type AnswerInput struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
	IsCorrect  bool   `json:"is_correct"`
}

// Direction is a reorder direction.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(s)); d {
	case Up, Down:
		return d, nil
	default:
		return "", &ValidationError{Message: fmt.Sprintf("Ongeldige richting %q. Kies up of down", s)}
	}
}
