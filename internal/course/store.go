package course

import "context"

// LessonFilter selects lessons by equality on the set fields.
type LessonFilter struct {
	CourseID  string
	ChapterID string
}

// Store persists the content model. It offers no transactions: every call is
// an independent write, and MaxXIndex followed by CreateX is not atomic.
type Store interface {
	CreateCourse(ctx context.Context, c Course) (Course, error)
	GetCourse(ctx context.Context, id string) (Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (Course, error)
	ListCourses(ctx context.Context, activeOnly bool) ([]Course, error)
	UpdateCourse(ctx context.Context, c Course) (Course, error)
	DeleteCourse(ctx context.Context, id string) error

	CreateChapter(ctx context.Context, ch Chapter) (Chapter, error)
	GetChapter(ctx context.Context, id string) (Chapter, error)
	ListChapters(ctx context.Context, courseID string) ([]Chapter, error)
	UpdateChapter(ctx context.Context, ch Chapter) (Chapter, error)
	SetChapterIndex(ctx context.Context, id string, index int) error
	DeleteChapter(ctx context.Context, id string) error
	// MaxChapterIndex returns the highest order_index in the course, or ok=false when it has none.
	MaxChapterIndex(ctx context.Context, courseID string) (index int, ok bool, err error)

	CreateLesson(ctx context.Context, l Lesson) (Lesson, error)
	GetLesson(ctx context.Context, id string) (Lesson, error)
	ListLessons(ctx context.Context, f LessonFilter) ([]Lesson, error)
	UpdateLesson(ctx context.Context, l Lesson) (Lesson, error)
	SetLessonIndex(ctx context.Context, id string, index int) error
	DeleteLesson(ctx context.Context, id string) error
	MaxLessonIndex(ctx context.Context, chapterID string) (index int, ok bool, err error)

	CreateQuestion(ctx context.Context, q QuizQuestion) (QuizQuestion, error)
	GetQuestion(ctx context.Context, id string) (QuizQuestion, error)
	ListQuestions(ctx context.Context, lessonID string) ([]QuizQuestion, error)
	UpdateQuestion(ctx context.Context, q QuizQuestion) (QuizQuestion, error)
	SetQuestionIndex(ctx context.Context, id string, index int) error
	DeleteQuestion(ctx context.Context, id string) error
	MaxQuestionIndex(ctx context.Context, lessonID string) (index int, ok bool, err error)

	CreateAnswer(ctx context.Context, a QuizAnswer) (QuizAnswer, error)
	GetAnswer(ctx context.Context, id string) (QuizAnswer, error)
	ListAnswers(ctx context.Context, questionID string) ([]QuizAnswer, error)
	UpdateAnswer(ctx context.Context, a QuizAnswer) (QuizAnswer, error)
	DeleteAnswer(ctx context.Context, id string) error
}
