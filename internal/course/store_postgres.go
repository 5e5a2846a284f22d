package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02" // malformed uuid
	foreignKeyViolation       = "23503"
)

// PostgresStore is a PostgreSQL-backed Store. Cascades are declared in the schema.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store on an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

const courseColumns = `id::text, title, COALESCE(description, ''), price::float8, COALESCE(category, ''),
	COALESCE(image_url, ''), is_active, slug, created_at, updated_at`

func scanCourse(row pgx.Row) (Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Price, &c.Category,
		&c.ImageURL, &c.IsActive, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const chapterColumns = `id::text, course_id::text, title, COALESCE(description, ''), order_index,
	is_published, created_at, updated_at`

func scanChapter(row pgx.Row) (Chapter, error) {
	var ch Chapter
	err := row.Scan(&ch.ID, &ch.CourseID, &ch.Title, &ch.Description, &ch.OrderIndex,
		&ch.IsPublished, &ch.CreatedAt, &ch.UpdatedAt)
	return ch, err
}

const lessonColumns = `id::text, course_id::text, chapter_id::text, title, COALESCE(description, ''),
	COALESCE(content, ''), order_index, is_free, type, COALESCE(video_url, ''), is_published,
	created_at, updated_at`

func scanLesson(row pgx.Row) (Lesson, error) {
	var l Lesson
	var typ string
	err := row.Scan(&l.ID, &l.CourseID, &l.ChapterID, &l.Title, &l.Description,
		&l.Content, &l.OrderIndex, &l.IsFree, &typ, &l.VideoURL, &l.IsPublished,
		&l.CreatedAt, &l.UpdatedAt)
	l.Type = LessonType(typ)
	return l, err
}

const questionColumns = `id::text, lesson_id::text, question, COALESCE(image_url, ''),
	COALESCE(explanation, ''), order_index, created_at`

func scanQuestion(row pgx.Row) (QuizQuestion, error) {
	var q QuizQuestion
	err := row.Scan(&q.ID, &q.LessonID, &q.Question, &q.ImageURL,
		&q.Explanation, &q.OrderIndex, &q.CreatedAt)
	return q, err
}

const answerColumns = `id::text, question_id::text, answer, is_correct, created_at`

func scanAnswer(row pgx.Row) (QuizAnswer, error) {
	var a QuizAnswer
	err := row.Scan(&a.ID, &a.QuestionID, &a.Answer, &a.IsCorrect, &a.CreatedAt)
	return a, err
}

// one maps pgx.ErrNoRows and malformed ids to ErrNotFound.
func one[T any](kind, id string, v T, err error) (T, error) {
	if errors.Is(err, pgx.ErrNoRows) || hasCode(err, invalidTextRepresentation) {
		var zero T
		return zero, notFound(kind, id)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", kind, id, err)
	}
	return v, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolation)
}

// createErr maps a failed insert whose parent does not exist to ErrNotFound.
func createErr(kind, parentID string, err error) error {
	if hasCode(err, foreignKeyViolation) || hasCode(err, invalidTextRepresentation) {
		return notFound(kind, parentID)
	}
	return fmt.Errorf("create %s: %w", kind, err)
}

// execOne runs an UPDATE or DELETE and reports ErrNotFound when no row matched.
func (s *PostgresStore) execOne(ctx context.Context, kind, id, sql string, args ...any) error {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if hasCode(err, invalidTextRepresentation) {
		return notFound(kind, id)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(kind, id)
	}
	return nil
}

func (s *PostgresStore) maxIndex(ctx context.Context, table, parentCol, parentID string) (int, bool, error) {
	var idx int
	err := s.pool.QueryRow(ctx,
		`SELECT order_index FROM `+table+` WHERE `+parentCol+` = $1::uuid ORDER BY order_index DESC LIMIT 1`,
		parentID,
	).Scan(&idx)
	if errors.Is(err, pgx.ErrNoRows) || hasCode(err, invalidTextRepresentation) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("max %s index: %w", table, err)
	}
	return idx, true, nil
}

// --- courses ---

func (s *PostgresStore) CreateCourse(ctx context.Context, c Course) (Course, error) {
	created, err := scanCourse(s.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, price, category, image_url, is_active, slug)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+courseColumns,
		c.Title, nullIfEmpty(c.Description), c.Price, nullIfEmpty(c.Category),
		nullIfEmpty(c.ImageURL), c.IsActive, c.Slug,
	))
	if isUniqueViolation(err) {
		return Course{}, ErrSlugTaken
	}
	if err != nil {
		return Course{}, fmt.Errorf("create course: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) GetCourse(ctx context.Context, id string) (Course, error) {
	c, err := scanCourse(s.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1::uuid`, id))
	return one("course", id, c, err)
}

func (s *PostgresStore) GetCourseBySlug(ctx context.Context, slug string) (Course, error) {
	c, err := scanCourse(s.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE slug = $1`, slug))
	return one("course", slug, c, err)
}

func (s *PostgresStore) ListCourses(ctx context.Context, activeOnly bool) ([]Course, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses
		 WHERE ($1 = FALSE OR is_active)
		 ORDER BY created_at DESC`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return collect(rows, scanCourse)
}

func (s *PostgresStore) UpdateCourse(ctx context.Context, c Course) (Course, error) {
	updated, err := scanCourse(s.pool.QueryRow(ctx,
		`UPDATE courses
		 SET title = $2, description = $3, price = $4, category = $5, image_url = $6,
		     is_active = $7, slug = $8, updated_at = NOW()
		 WHERE id = $1::uuid
		 RETURNING `+courseColumns,
		c.ID, c.Title, nullIfEmpty(c.Description), c.Price, nullIfEmpty(c.Category),
		nullIfEmpty(c.ImageURL), c.IsActive, c.Slug,
	))
	if isUniqueViolation(err) {
		return Course{}, ErrSlugTaken
	}
	return one("course", c.ID, updated, err)
}

func (s *PostgresStore) DeleteCourse(ctx context.Context, id string) error {
	return s.execOne(ctx, "course", id, `DELETE FROM courses WHERE id = $1::uuid`, id)
}

// --- chapters ---

func (s *PostgresStore) CreateChapter(ctx context.Context, ch Chapter) (Chapter, error) {
	created, err := scanChapter(s.pool.QueryRow(ctx,
		`INSERT INTO chapters (course_id, title, description, order_index, is_published)
		 VALUES ($1::uuid, $2, $3, $4, $5)
		 RETURNING `+chapterColumns,
		ch.CourseID, ch.Title, nullIfEmpty(ch.Description), ch.OrderIndex, ch.IsPublished,
	))
	if err != nil {
		return Chapter{}, createErr("course", ch.CourseID, err)
	}
	return created, nil
}

func (s *PostgresStore) GetChapter(ctx context.Context, id string) (Chapter, error) {
	ch, err := scanChapter(s.pool.QueryRow(ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE id = $1::uuid`, id))
	return one("chapter", id, ch, err)
}

func (s *PostgresStore) ListChapters(ctx context.Context, courseID string) ([]Chapter, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+chapterColumns+` FROM chapters
		 WHERE ($1 = '' OR course_id::text = $1)
		 ORDER BY order_index ASC, created_at ASC`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return collect(rows, scanChapter)
}

func (s *PostgresStore) UpdateChapter(ctx context.Context, ch Chapter) (Chapter, error) {
	updated, err := scanChapter(s.pool.QueryRow(ctx,
		`UPDATE chapters
		 SET course_id = $2::uuid, title = $3, description = $4, order_index = $5,
		     is_published = $6, updated_at = NOW()
		 WHERE id = $1::uuid
		 RETURNING `+chapterColumns,
		ch.ID, ch.CourseID, ch.Title, nullIfEmpty(ch.Description), ch.OrderIndex, ch.IsPublished,
	))
	return one("chapter", ch.ID, updated, err)
}

func (s *PostgresStore) SetChapterIndex(ctx context.Context, id string, index int) error {
	return s.execOne(ctx, "chapter", id,
		`UPDATE chapters SET order_index = $2, updated_at = NOW() WHERE id = $1::uuid`, id, index)
}

func (s *PostgresStore) DeleteChapter(ctx context.Context, id string) error {
	return s.execOne(ctx, "chapter", id, `DELETE FROM chapters WHERE id = $1::uuid`, id)
}

func (s *PostgresStore) MaxChapterIndex(ctx context.Context, courseID string) (int, bool, error) {
	return s.maxIndex(ctx, "chapters", "course_id", courseID)
}

// --- lessons ---

func (s *PostgresStore) CreateLesson(ctx context.Context, l Lesson) (Lesson, error) {
	created, err := scanLesson(s.pool.QueryRow(ctx,
		`INSERT INTO lessons (course_id, chapter_id, title, description, content, order_index,
		                      is_free, type, video_url, is_published)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+lessonColumns,
		l.CourseID, l.ChapterID, l.Title, nullIfEmpty(l.Description), nullIfEmpty(l.Content),
		l.OrderIndex, l.IsFree, string(l.Type), nullIfEmpty(l.VideoURL), l.IsPublished,
	))
	if err != nil {
		return Lesson{}, createErr("chapter", l.ChapterID, err)
	}
	return created, nil
}

func (s *PostgresStore) GetLesson(ctx context.Context, id string) (Lesson, error) {
	l, err := scanLesson(s.pool.QueryRow(ctx,
		`SELECT `+lessonColumns+` FROM lessons WHERE id = $1::uuid`, id))
	return one("lesson", id, l, err)
}

func (s *PostgresStore) ListLessons(ctx context.Context, f LessonFilter) ([]Lesson, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+lessonColumns+` FROM lessons
		 WHERE ($1 = '' OR course_id::text = $1)
		   AND ($2 = '' OR chapter_id::text = $2)
		 ORDER BY order_index ASC, created_at ASC`, f.CourseID, f.ChapterID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return collect(rows, scanLesson)
}

func (s *PostgresStore) UpdateLesson(ctx context.Context, l Lesson) (Lesson, error) {
	updated, err := scanLesson(s.pool.QueryRow(ctx,
		`UPDATE lessons
		 SET course_id = $2::uuid, chapter_id = $3::uuid, title = $4, description = $5,
		     content = $6, order_index = $7, is_free = $8, type = $9, video_url = $10,
		     is_published = $11, updated_at = NOW()
		 WHERE id = $1::uuid
		 RETURNING `+lessonColumns,
		l.ID, l.CourseID, l.ChapterID, l.Title, nullIfEmpty(l.Description), nullIfEmpty(l.Content),
		l.OrderIndex, l.IsFree, string(l.Type), nullIfEmpty(l.VideoURL), l.IsPublished,
	))
	return one("lesson", l.ID, updated, err)
}

func (s *PostgresStore) SetLessonIndex(ctx context.Context, id string, index int) error {
	return s.execOne(ctx, "lesson", id,
		`UPDATE lessons SET order_index = $2, updated_at = NOW() WHERE id = $1::uuid`, id, index)
}

func (s *PostgresStore) DeleteLesson(ctx context.Context, id string) error {
	return s.execOne(ctx, "lesson", id, `DELETE FROM lessons WHERE id = $1::uuid`, id)
}

func (s *PostgresStore) MaxLessonIndex(ctx context.Context, chapterID string) (int, bool, error) {
	return s.maxIndex(ctx, "lessons", "chapter_id", chapterID)
}

// --- quiz questions ---

func (s *PostgresStore) CreateQuestion(ctx context.Context, q QuizQuestion) (QuizQuestion, error) {
	created, err := scanQuestion(s.pool.QueryRow(ctx,
		`INSERT INTO quiz_questions (lesson_id, question, image_url, explanation, order_index)
		 VALUES ($1::uuid, $2, $3, $4, $5)
		 RETURNING `+questionColumns,
		q.LessonID, q.Question, nullIfEmpty(q.ImageURL), nullIfEmpty(q.Explanation), q.OrderIndex,
	))
	if err != nil {
		return QuizQuestion{}, createErr("lesson", q.LessonID, err)
	}
	return created, nil
}

func (s *PostgresStore) GetQuestion(ctx context.Context, id string) (QuizQuestion, error) {
	q, err := scanQuestion(s.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM quiz_questions WHERE id = $1::uuid`, id))
	return one("quiz question", id, q, err)
}

func (s *PostgresStore) ListQuestions(ctx context.Context, lessonID string) ([]QuizQuestion, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM quiz_questions
		 WHERE ($1 = '' OR lesson_id::text = $1)
		 ORDER BY order_index ASC, created_at ASC`, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list quiz questions: %w", err)
	}
	return collect(rows, scanQuestion)
}

func (s *PostgresStore) UpdateQuestion(ctx context.Context, q QuizQuestion) (QuizQuestion, error) {
	updated, err := scanQuestion(s.pool.QueryRow(ctx,
		`UPDATE quiz_questions
		 SET lesson_id = $2::uuid, question = $3, image_url = $4, explanation = $5, order_index = $6
		 WHERE id = $1::uuid
		 RETURNING `+questionColumns,
		q.ID, q.LessonID, q.Question, nullIfEmpty(q.ImageURL), nullIfEmpty(q.Explanation), q.OrderIndex,
	))
	return one("quiz question", q.ID, updated, err)
}

func (s *PostgresStore) SetQuestionIndex(ctx context.Context, id string, index int) error {
	return s.execOne(ctx, "quiz question", id,
		`UPDATE quiz_questions SET order_index = $2 WHERE id = $1::uuid`, id, index)
}

func (s *PostgresStore) DeleteQuestion(ctx context.Context, id string) error {
	return s.execOne(ctx, "quiz question", id, `DELETE FROM quiz_questions WHERE id = $1::uuid`, id)
}

func (s *PostgresStore) MaxQuestionIndex(ctx context.Context, lessonID string) (int, bool, error) {
	return s.maxIndex(ctx, "quiz_questions", "lesson_id", lessonID)
}

// --- quiz answers ---

func (s *PostgresStore) CreateAnswer(ctx context.Context, a QuizAnswer) (QuizAnswer, error) {
	created, err := scanAnswer(s.pool.QueryRow(ctx,
		`INSERT INTO quiz_answers (question_id, answer, is_correct)
		 VALUES ($1::uuid, $2, $3)
		 RETURNING `+answerColumns,
		a.QuestionID, a.Answer, a.IsCorrect,
	))
	if err != nil {
		return QuizAnswer{}, createErr("quiz question", a.QuestionID, err)
	}
	return created, nil
}

func (s *PostgresStore) GetAnswer(ctx context.Context, id string) (QuizAnswer, error) {
	a, err := scanAnswer(s.pool.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM quiz_answers WHERE id = $1::uuid`, id))
	return one("quiz answer", id, a, err)
}

func (s *PostgresStore) ListAnswers(ctx context.Context, questionID string) ([]QuizAnswer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+answerColumns+` FROM quiz_answers
		 WHERE ($1 = '' OR question_id::text = $1)
		 ORDER BY created_at ASC`, questionID)
	if err != nil {
		return nil, fmt.Errorf("list quiz answers: %w", err)
	}
	return collect(rows, scanAnswer)
}

func (s *PostgresStore) UpdateAnswer(ctx context.Context, a QuizAnswer) (QuizAnswer, error) {
	updated, err := scanAnswer(s.pool.QueryRow(ctx,
		`UPDATE quiz_answers SET question_id = $2::uuid, answer = $3, is_correct = $4
		 WHERE id = $1::uuid
		 RETURNING `+answerColumns,
		a.ID, a.QuestionID, a.Answer, a.IsCorrect,
	))
	return one("quiz answer", a.ID, updated, err)
}

func (s *PostgresStore) DeleteAnswer(ctx context.Context, id string) error {
	return s.execOne(ctx, "quiz answer", id, `DELETE FROM quiz_answers WHERE id = $1::uuid`, id)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
