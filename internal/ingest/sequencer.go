// Package ingest persists reviewed drafts as course content.
//
// Ordered siblings are created one at a time because each create reads the
// parent's current max index. Answers of one question have no position and are
// created concurrently. The first failure stops the chain; nothing is rolled back.
package ingest

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/writgo/theorie/internal/audit"
	"github.com/writgo/theorie/internal/course"
	"github.com/writgo/theorie/internal/generate"
)

// Sequencer turns drafts into unpublished rows.
type Sequencer struct {
	svc    *course.Service
	events audit.Logger
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithEvents records ingestion outcomes.
func WithEvents(l audit.Logger) Option {
	return func(s *Sequencer) { s.events = l }
}

// NewSequencer creates a Sequencer over the content service.
func NewSequencer(svc *course.Service, opts ...Option) *Sequencer {
	s := &Sequencer{svc: svc, events: audit.NopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result lists the rows created by one ingestion.
type Result struct {
	Chapters   []course.Chapter      `json:"chapters,omitempty"`
	Lessons    []course.Lesson       `json:"lessons,omitempty"`
	QuizLesson *course.Lesson        `json:"quiz_lesson,omitempty"`
	Questions  []course.QuizQuestion `json:"questions,omitempty"`
}

func (r Result) rows() int {
	n := len(r.Chapters) + len(r.Lessons) + len(r.Questions)
	if r.QuizLesson != nil {
		n++
	}
	for _, q := range r.Questions {
		n += len(q.Answers)
	}
	return n
}

// Curriculum appends the chapters to the course after its current last chapter.
func (s *Sequencer) Curriculum(ctx context.Context, userID, courseID string, chapters []generate.ChapterDraft) (Result, error) {
	var res Result
	if _, err := s.svc.GetCourse(ctx, courseID); err != nil {
		return res, err
	}

	for _, d := range chapters {
		ch, err := s.svc.CreateChapter(ctx, course.ChapterInput{
			CourseID:    courseID,
			Title:       d.Title,
			Description: d.Description,
		})
		if err != nil {
			return res, s.fail(ctx, userID, "chapter", res, err)
		}
		res.Chapters = append(res.Chapters, ch)
	}

	s.done(ctx, userID, "curriculum", map[string]any{"course_id": courseID, "chapters": len(res.Chapters)})
	return res, nil
}

// LessonBundle appends the lessons to the chapter and, when the bundle has a
// quiz, one QUIZ lesson holding its questions.
func (s *Sequencer) LessonBundle(ctx context.Context, userID, chapterID string, b generate.LessonBundle) (Result, error) {
	var res Result
	ch, err := s.svc.GetChapter(ctx, chapterID)
	if err != nil {
		return res, err
	}

	for i, d := range b.Lessons {
		typ := course.LessonType(d.Type)
		if typ == "" {
			typ = course.LessonText
		}
		if typ == course.LessonQuiz {
			slog.Debug("skipping quiz lesson draft", "chapter_id", chapterID, "index", i)
			continue
		}
		l, err := s.svc.CreateLesson(ctx, course.LessonInput{
			CourseID:  ch.CourseID,
			ChapterID: ch.ID,
			Title:     d.Title,
			Content:   d.Content,
			Type:      string(typ),
		})
		if err != nil {
			return res, s.fail(ctx, userID, "lesson", res, err)
		}
		res.Lessons = append(res.Lessons, l)
	}

	if b.Quiz != nil {
		questions := usable(b.Quiz.Questions)
		if len(questions) > 0 {
			title := b.Quiz.Title
			if title == "" {
				title = "Quiz: " + ch.Title
			}
			quiz, err := s.svc.CreateLesson(ctx, course.LessonInput{
				CourseID:  ch.CourseID,
				ChapterID: ch.ID,
				Title:     title,
				Type:      string(course.LessonQuiz),
			})
			if err != nil {
				return res, s.fail(ctx, userID, "quiz lesson", res, err)
			}
			res.QuizLesson = &quiz
			if err := s.questions(ctx, quiz.ID, questions, &res); err != nil {
				return res, s.fail(ctx, userID, "quiz question", res, err)
			}
		}
	}

	data := map[string]any{"chapter_id": chapterID, "lessons": len(res.Lessons)}
	if res.QuizLesson != nil {
		data["questions"] = len(res.Questions)
	}
	s.done(ctx, userID, "lesson_bundle", data)
	return res, nil
}

// Quiz appends the questions to an existing QUIZ lesson.
func (s *Sequencer) Quiz(ctx context.Context, userID, lessonID string, questions []generate.QuestionDraft) (Result, error) {
	var res Result
	l, err := s.svc.GetLesson(ctx, lessonID)
	if err != nil {
		return res, err
	}
	if l.Type != course.LessonQuiz {
		return res, &course.ValidationError{Message: "Vragen kunnen alleen aan een quiz les worden toegevoegd"}
	}
	if err := s.questions(ctx, lessonID, usable(questions), &res); err != nil {
		return res, s.fail(ctx, userID, "quiz question", res, err)
	}
	s.done(ctx, userID, "quiz", map[string]any{"lesson_id": lessonID, "questions": len(res.Questions)})
	return res, nil
}

// questions creates each question in order, then its answers concurrently.
func (s *Sequencer) questions(ctx context.Context, lessonID string, drafts []generate.QuestionDraft, res *Result) error {
	for _, d := range drafts {
		q, err := s.svc.CreateQuestion(ctx, course.QuestionInput{
			LessonID:    lessonID,
			Question:    d.Question,
			Explanation: d.Explanation,
		})
		if err != nil {
			return err
		}

		answers := make([]course.QuizAnswer, len(d.Answers))
		g, gctx := errgroup.WithContext(ctx)
		for i, a := range d.Answers {
			g.Go(func() error {
				created, err := s.svc.CreateAnswer(gctx, course.AnswerInput{
					QuestionID: q.ID,
					Answer:     a.Answer,
					IsCorrect:  a.IsCorrect,
				})
				if err != nil {
					return err
				}
				answers[i] = created
				return nil
			})
		}
		err = g.Wait()
		for _, a := range answers {
			if a.ID != "" {
				q.Answers = append(q.Answers, a)
			}
		}
		res.Questions = append(res.Questions, q)
		if err != nil {
			return err
		}
	}
	return nil
}

// usable drops edited questions that would fail halfway through their creates:
// blank question text, a blank option, fewer than two options or no correct one.
func usable(drafts []generate.QuestionDraft) []generate.QuestionDraft {
	out := make([]generate.QuestionDraft, 0, len(drafts))
	for i, d := range drafts {
		if reason := unusable(d); reason != "" {
			slog.Debug("skipping question draft", "index", i, "reason", reason)
			continue
		}
		out = append(out, d)
	}
	return out
}

func unusable(d generate.QuestionDraft) string {
	if d.Question == "" {
		return "no question text"
	}
	if len(d.Answers) < 2 || !d.HasCorrectAnswer() {
		return "needs two answers and one correct"
	}
	for _, a := range d.Answers {
		if a.Answer == "" {
			return "blank answer"
		}
	}
	return ""
}

func (s *Sequencer) fail(ctx context.Context, userID, step string, res Result, err error) error {
	pe := &PartialError{Step: step, Created: res.rows(), Err: err}
	slog.Error("ingestion failed", "user_id", userID, "step", step, "created", pe.Created, "error", err)
	audit.Record(ctx, s.events, audit.Event{
		UserID:    userID,
		EventType: audit.IngestionFailed,
		Data:      map[string]any{"step": step, "created": pe.Created, "error": err.Error()},
	})
	return pe
}

func (s *Sequencer) done(ctx context.Context, userID, kind string, data map[string]any) {
	data["kind"] = kind
	slog.Info("ingestion completed", "user_id", userID, "kind", kind)
	audit.Record(ctx, s.events, audit.Event{
		UserID:    userID,
		EventType: audit.IngestionCompleted,
		Data:      data,
	})
}
