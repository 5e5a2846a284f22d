package course

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Service applies the content rules on top of a Store: required fields,
// next-available position indices, slug derivation and full-record updates.
type Service struct {
	store Store
}

// NewService creates a Service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Store returns the underlying store.
func (s *Service) Store() Store {
	return s.store
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// nextIndex is max+1 of the siblings, or 0 when there are none. The read and
// the following create are separate calls, so concurrent creators can collide.
func nextIndex(hi int, ok bool, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return hi + 1, nil
}

func indexOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// --- courses ---

func (s *Service) CreateCourse(ctx context.Context, in CourseInput) (Course, error) {
	if in.Title == "" {
		return Course{}, invalid("Titel en slug zijn verplicht")
	}
	c := courseFromInput(in)
	created, err := s.store.CreateCourse(ctx, c)
	if err != nil {
		return Course{}, err
	}
	slog.Info("course created", "course_id", created.ID, "slug", created.Slug)
	return created, nil
}

func (s *Service) UpdateCourse(ctx context.Context, id string, in CourseInput) (Course, error) {
	if in.Title == "" {
		return Course{}, invalid("Titel en slug zijn verplicht")
	}
	c := courseFromInput(in)
	c.ID = id
	return s.store.UpdateCourse(ctx, c)
}

func courseFromInput(in CourseInput) Course {
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = Slugify(in.Title)
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return Course{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		IsActive:    active,
		Slug:        slug,
	}
}

func (s *Service) GetCourse(ctx context.Context, id string) (Course, error) {
	return s.store.GetCourse(ctx, id)
}

func (s *Service) GetCourseBySlug(ctx context.Context, slug string) (Course, error) {
	return s.store.GetCourseBySlug(ctx, slug)
}

func (s *Service) ListCourses(ctx context.Context, activeOnly bool) ([]Course, error) {
	return s.store.ListCourses(ctx, activeOnly)
}

func (s *Service) DeleteCourse(ctx context.Context, id string) error {
	if err := s.store.DeleteCourse(ctx, id); err != nil {
		return err
	}
	slog.Info("course deleted", "course_id", id)
	return nil
}

// --- chapters ---

func (s *Service) CreateChapter(ctx context.Context, in ChapterInput) (Chapter, error) {
	if in.CourseID == "" || in.Title == "" {
		return Chapter{}, invalid("Cursus ID en titel zijn verplicht")
	}
	idx := 0
	if in.OrderIndex != nil {
		idx = *in.OrderIndex
	} else {
		var err error
		idx, err = nextIndex(s.store.MaxChapterIndex(ctx, in.CourseID))
		if err != nil {
			return Chapter{}, err
		}
	}
	return s.store.CreateChapter(ctx, Chapter{
		CourseID:    in.CourseID,
		Title:       in.Title,
		Description: in.Description,
		OrderIndex:  idx,
		IsPublished: in.IsPublished,
	})
}

func (s *Service) UpdateChapter(ctx context.Context, id string, in ChapterInput) (Chapter, error) {
	if in.Title == "" {
		return Chapter{}, invalid("Titel is verplicht")
	}
	existing, err := s.store.GetChapter(ctx, id)
	if err != nil {
		return Chapter{}, err
	}
	existing.Title = in.Title
	existing.Description = in.Description
	existing.OrderIndex = indexOrZero(in.OrderIndex)
	existing.IsPublished = in.IsPublished
	return s.store.UpdateChapter(ctx, existing)
}

func (s *Service) GetChapter(ctx context.Context, id string) (Chapter, error) {
	return s.store.GetChapter(ctx, id)
}

func (s *Service) ListChapters(ctx context.Context, courseID string) ([]Chapter, error) {
	return s.store.ListChapters(ctx, courseID)
}

func (s *Service) DeleteChapter(ctx context.Context, id string) error {
	return s.store.DeleteChapter(ctx, id)
}

// --- lessons ---

func (s *Service) CreateLesson(ctx context.Context, in LessonInput) (Lesson, error) {
	if in.CourseID == "" || in.ChapterID == "" || in.Title == "" || in.Type == "" {
		return Lesson{}, invalid("Cursus ID, hoofdstuk ID, titel en type zijn verplicht")
	}
	typ, err := ParseLessonType(in.Type)
	if err != nil {
		return Lesson{}, err
	}
	idx := 0
	if in.OrderIndex != nil {
		idx = *in.OrderIndex
	} else {
		idx, err = nextIndex(s.store.MaxLessonIndex(ctx, in.ChapterID))
		if err != nil {
			return Lesson{}, err
		}
	}
	return s.store.CreateLesson(ctx, Lesson{
		CourseID:    in.CourseID,
		ChapterID:   in.ChapterID,
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		OrderIndex:  idx,
		IsFree:      in.IsFree,
		Type:        typ,
		VideoURL:    in.VideoURL,
		IsPublished: in.IsPublished,
	})
}

func (s *Service) UpdateLesson(ctx context.Context, id string, in LessonInput) (Lesson, error) {
	if in.Title == "" || in.Type == "" {
		return Lesson{}, invalid("Titel en type zijn verplicht")
	}
	typ, err := ParseLessonType(in.Type)
	if err != nil {
		return Lesson{}, err
	}
	existing, err := s.store.GetLesson(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	existing.Title = in.Title
	existing.Description = in.Description
	existing.Content = in.Content
	existing.OrderIndex = indexOrZero(in.OrderIndex)
	existing.IsFree = in.IsFree
	existing.Type = typ
	existing.VideoURL = in.VideoURL
	existing.IsPublished = in.IsPublished
	return s.store.UpdateLesson(ctx, existing)
}

func (s *Service) GetLesson(ctx context.Context, id string) (Lesson, error) {
	return s.store.GetLesson(ctx, id)
}

func (s *Service) ListLessons(ctx context.Context, f LessonFilter) ([]Lesson, error) {
	// chapter_id wins over course_id.
	if f.ChapterID != "" {
		f.CourseID = ""
	}
	return s.store.ListLessons(ctx, f)
}

func (s *Service) DeleteLesson(ctx context.Context, id string) error {
	return s.store.DeleteLesson(ctx, id)
}

// --- quiz questions ---

func (s *Service) CreateQuestion(ctx context.Context, in QuestionInput) (QuizQuestion, error) {
	if in.LessonID == "" || in.Question == "" {
		return QuizQuestion{}, invalid("Les ID en vraag zijn verplicht")
	}
	idx := 0
	if in.OrderIndex != nil {
		idx = *in.OrderIndex
	} else {
		var err error
		idx, err = nextIndex(s.store.MaxQuestionIndex(ctx, in.LessonID))
		if err != nil {
			return QuizQuestion{}, err
		}
	}
	return s.store.CreateQuestion(ctx, QuizQuestion{
		LessonID:    in.LessonID,
		Question:    in.Question,
		ImageURL:    in.ImageURL,
		Explanation: in.Explanation,
		OrderIndex:  idx,
	})
}

func (s *Service) UpdateQuestion(ctx context.Context, id string, in QuestionInput) (QuizQuestion, error) {
	if in.Question == "" {
		return QuizQuestion{}, invalid("Vraag is verplicht")
	}
	existing, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return QuizQuestion{}, err
	}
	existing.Question = in.Question
	existing.ImageURL = in.ImageURL
	existing.Explanation = in.Explanation
	existing.OrderIndex = indexOrZero(in.OrderIndex)
	return s.store.UpdateQuestion(ctx, existing)
}

// GetQuestion returns a question with its answers.
func (s *Service) GetQuestion(ctx context.Context, id string) (QuizQuestion, error) {
	q, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return QuizQuestion{}, err
	}
	q.Answers, err = s.store.ListAnswers(ctx, q.ID)
	if err != nil {
		return QuizQuestion{}, err
	}
	return q, nil
}

func (s *Service) ListQuestions(ctx context.Context, lessonID string) ([]QuizQuestion, error) {
	return s.store.ListQuestions(ctx, lessonID)
}

func (s *Service) DeleteQuestion(ctx context.Context, id string) error {
	return s.store.DeleteQuestion(ctx, id)
}

// --- quiz answers ---

func (s *Service) CreateAnswer(ctx context.Context, in AnswerInput) (QuizAnswer, error) {
	if in.QuestionID == "" || in.Answer == "" {
		return QuizAnswer{}, invalid("Vraag ID en antwoord zijn verplicht")
	}
	return s.store.CreateAnswer(ctx, QuizAnswer{
		QuestionID: in.QuestionID,
		Answer:     in.Answer,
		IsCorrect:  in.IsCorrect,
	})
}

func (s *Service) UpdateAnswer(ctx context.Context, id string, in AnswerInput) (QuizAnswer, error) {
	if in.Answer == "" {
		return QuizAnswer{}, invalid("Antwoord is verplicht")
	}
	existing, err := s.store.GetAnswer(ctx, id)
	if err != nil {
		return QuizAnswer{}, err
	}
	existing.Answer = in.Answer
	existing.IsCorrect = in.IsCorrect
	return s.store.UpdateAnswer(ctx, existing)
}

func (s *Service) GetAnswer(ctx context.Context, id string) (QuizAnswer, error) {
	return s.store.GetAnswer(ctx, id)
}

func (s *Service) ListAnswers(ctx context.Context, questionID string) ([]QuizAnswer, error) {
	return s.store.ListAnswers(ctx, questionID)
}

func (s *Service) DeleteAnswer(ctx context.Context, id string) error {
	return s.store.DeleteAnswer(ctx, id)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
