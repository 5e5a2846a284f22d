package course

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store. Deletes cascade the way the SQL schema does.
type MemoryStore struct {
	mu        sync.RWMutex
	courses   map[string]Course
	chapters  map[string]Chapter
	lessons   map[string]Lesson
	questions map[string]QuizQuestion
	answers   map[string]QuizAnswer
	seq       map[string]int // id -> insertion order, breaks index ties
	next      int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		courses:   make(map[string]Course),
		chapters:  make(map[string]Chapter),
		lessons:   make(map[string]Lesson),
		questions: make(map[string]QuizQuestion),
		answers:   make(map[string]QuizAnswer),
		seq:       make(map[string]int),
	}
}

func (s *MemoryStore) newID() string {
	id := uuid.NewString()
	s.next++
	s.seq[id] = s.next
	return id
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// --- courses ---

func (s *MemoryStore) CreateCourse(_ context.Context, c Course) (Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.courses {
		if existing.Slug == c.Slug {
			return Course{}, ErrSlugTaken
		}
	}
	now := time.Now()
	c.ID = s.newID()
	c.CreatedAt, c.UpdatedAt = now, now
	s.courses[c.ID] = c
	return c, nil
}

func (s *MemoryStore) GetCourse(_ context.Context, id string) (Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[id]
	if !ok {
		return Course{}, notFound("course", id)
	}
	return c, nil
}

func (s *MemoryStore) GetCourseBySlug(_ context.Context, slug string) (Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.courses {
		if c.Slug == slug {
			return c, nil
		}
	}
	return Course{}, notFound("course", slug)
}

func (s *MemoryStore) ListCourses(_ context.Context, activeOnly bool) ([]Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Course, 0, len(s.courses))
	for _, c := range s.courses {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] > s.seq[out[j].ID] })
	return out, nil
}

func (s *MemoryStore) UpdateCourse(_ context.Context, c Course) (Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.courses[c.ID]
	if !ok {
		return Course{}, notFound("course", c.ID)
	}
	for _, existing := range s.courses {
		if existing.ID != c.ID && existing.Slug == c.Slug {
			return Course{}, ErrSlugTaken
		}
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = time.Now()
	s.courses[c.ID] = c
	return c, nil
}

func (s *MemoryStore) DeleteCourse(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return notFound("course", id)
	}
	delete(s.courses, id)
	for chID, ch := range s.chapters {
		if ch.CourseID == id {
			s.deleteChapterLocked(chID)
		}
	}
	// Lessons reference the course directly as well.
	for lID, l := range s.lessons {
		if l.CourseID == id {
			s.deleteLessonLocked(lID)
		}
	}
	return nil
}

// --- chapters ---

func (s *MemoryStore) CreateChapter(_ context.Context, ch Chapter) (Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[ch.CourseID]; !ok {
		return Chapter{}, notFound("course", ch.CourseID)
	}
	now := time.Now()
	ch.ID = s.newID()
	ch.CreatedAt, ch.UpdatedAt = now, now
	s.chapters[ch.ID] = ch
	return ch, nil
}

func (s *MemoryStore) GetChapter(_ context.Context, id string) (Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := s.chapters[id]
	if !ok {
		return Chapter{}, notFound("chapter", id)
	}
	return ch, nil
}

func (s *MemoryStore) ListChapters(_ context.Context, courseID string) ([]Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Chapter
	for _, ch := range s.chapters {
		if courseID == "" || ch.CourseID == courseID {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}

func (s *MemoryStore) UpdateChapter(_ context.Context, ch Chapter) (Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.chapters[ch.ID]
	if !ok {
		return Chapter{}, notFound("chapter", ch.ID)
	}
	ch.CreatedAt = old.CreatedAt
	ch.UpdatedAt = time.Now()
	s.chapters[ch.ID] = ch
	return ch, nil
}

func (s *MemoryStore) SetChapterIndex(_ context.Context, id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.chapters[id]
	if !ok {
		return notFound("chapter", id)
	}
	ch.OrderIndex = index
	ch.UpdatedAt = time.Now()
	s.chapters[id] = ch
	return nil
}

func (s *MemoryStore) DeleteChapter(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chapters[id]; !ok {
		return notFound("chapter", id)
	}
	s.deleteChapterLocked(id)
	return nil
}

func (s *MemoryStore) deleteChapterLocked(id string) {
	delete(s.chapters, id)
	for lID, l := range s.lessons {
		if l.ChapterID == id {
			s.deleteLessonLocked(lID)
		}
	}
}

func (s *MemoryStore) MaxChapterIndex(_ context.Context, courseID string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hi, found := 0, false
	for _, ch := range s.chapters {
		if ch.CourseID == courseID && (!found || ch.OrderIndex > hi) {
			hi, found = ch.OrderIndex, true
		}
	}
	return hi, found, nil
}

// --- lessons ---

func (s *MemoryStore) CreateLesson(_ context.Context, l Lesson) (Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chapters[l.ChapterID]; !ok {
		return Lesson{}, notFound("chapter", l.ChapterID)
	}
	now := time.Now()
	l.ID = s.newID()
	l.CreatedAt, l.UpdatedAt = now, now
	s.lessons[l.ID] = l
	return l, nil
}

func (s *MemoryStore) GetLesson(_ context.Context, id string) (Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lessons[id]
	if !ok {
		return Lesson{}, notFound("lesson", id)
	}
	return l, nil
}

func (s *MemoryStore) ListLessons(_ context.Context, f LessonFilter) ([]Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Lesson
	for _, l := range s.lessons {
		if f.CourseID != "" && l.CourseID != f.CourseID {
			continue
		}
		if f.ChapterID != "" && l.ChapterID != f.ChapterID {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}

func (s *MemoryStore) UpdateLesson(_ context.Context, l Lesson) (Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.lessons[l.ID]
	if !ok {
		return Lesson{}, notFound("lesson", l.ID)
	}
	l.CreatedAt = old.CreatedAt
	l.UpdatedAt = time.Now()
	s.lessons[l.ID] = l
	return l, nil
}

func (s *MemoryStore) SetLessonIndex(_ context.Context, id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lessons[id]
	if !ok {
		return notFound("lesson", id)
	}
	l.OrderIndex = index
	l.UpdatedAt = time.Now()
	s.lessons[id] = l
	return nil
}

func (s *MemoryStore) DeleteLesson(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessons[id]; !ok {
		return notFound("lesson", id)
	}
	s.deleteLessonLocked(id)
	return nil
}

func (s *MemoryStore) deleteLessonLocked(id string) {
	delete(s.lessons, id)
	for qID, q := range s.questions {
		if q.LessonID == id {
			s.deleteQuestionLocked(qID)
		}
	}
}

func (s *MemoryStore) MaxLessonIndex(_ context.Context, chapterID string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hi, found := 0, false
	for _, l := range s.lessons {
		if l.ChapterID == chapterID && (!found || l.OrderIndex > hi) {
			hi, found = l.OrderIndex, true
		}
	}
	return hi, found, nil
}

// --- quiz questions ---

func (s *MemoryStore) CreateQuestion(_ context.Context, q QuizQuestion) (QuizQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessons[q.LessonID]; !ok {
		return QuizQuestion{}, notFound("lesson", q.LessonID)
	}
	q.ID = s.newID()
	q.CreatedAt = time.Now()
	q.Answers = nil
	s.questions[q.ID] = q
	return q, nil
}

func (s *MemoryStore) GetQuestion(_ context.Context, id string) (QuizQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return QuizQuestion{}, notFound("quiz question", id)
	}
	return q, nil
}

func (s *MemoryStore) ListQuestions(_ context.Context, lessonID string) ([]QuizQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []QuizQuestion
	for _, q := range s.questions {
		if lessonID == "" || q.LessonID == lessonID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}

func (s *MemoryStore) UpdateQuestion(_ context.Context, q QuizQuestion) (QuizQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.questions[q.ID]
	if !ok {
		return QuizQuestion{}, notFound("quiz question", q.ID)
	}
	q.CreatedAt = old.CreatedAt
	q.Answers = nil
	s.questions[q.ID] = q
	return q, nil
}

func (s *MemoryStore) SetQuestionIndex(_ context.Context, id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[id]
	if !ok {
		return notFound("quiz question", id)
	}
	q.OrderIndex = index
	s.questions[id] = q
	return nil
}

func (s *MemoryStore) DeleteQuestion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[id]; !ok {
		return notFound("quiz question", id)
	}
	s.deleteQuestionLocked(id)
	return nil
}

func (s *MemoryStore) deleteQuestionLocked(id string) {
	delete(s.questions, id)
	for aID, a := range s.answers {
		if a.QuestionID == id {
			delete(s.answers, aID)
		}
	}
}

func (s *MemoryStore) MaxQuestionIndex(_ context.Context, lessonID string) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hi, found := 0, false
	for _, q := range s.questions {
		if q.LessonID == lessonID && (!found || q.OrderIndex > hi) {
			hi, found = q.OrderIndex, true
		}
	}
	return hi, found, nil
}

// --- quiz answers ---

func (s *MemoryStore) CreateAnswer(_ context.Context, a QuizAnswer) (QuizAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[a.QuestionID]; !ok {
		return QuizAnswer{}, notFound("quiz question", a.QuestionID)
	}
	a.ID = s.newID()
	a.CreatedAt = time.Now()
	s.answers[a.ID] = a
	return a, nil
}

func (s *MemoryStore) GetAnswer(_ context.Context, id string) (QuizAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.answers[id]
	if !ok {
		return QuizAnswer{}, notFound("quiz answer", id)
	}
	return a, nil
}

func (s *MemoryStore) ListAnswers(_ context.Context, questionID string) ([]QuizAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []QuizAnswer
	for _, a := range s.answers {
		if questionID == "" || a.QuestionID == questionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out, nil
}

func (s *MemoryStore) UpdateAnswer(_ context.Context, a QuizAnswer) (QuizAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.answers[a.ID]
	if !ok {
		return QuizAnswer{}, notFound("quiz answer", a.ID)
	}
	a.CreatedAt = old.CreatedAt
	s.answers[a.ID] = a
	return a, nil
}

func (s *MemoryStore) DeleteAnswer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.answers[id]; !ok {
		return notFound("quiz answer", id)
	}
	delete(s.answers, id)
	return nil
}
