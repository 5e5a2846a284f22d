package course

import (
	"context"
	"fmt"
)

// ChapterOutline is a chapter with its lessons.
type ChapterOutline struct {
	Chapter
	Lessons []Lesson `json:"lessons"`
}

// Outline is a course with its chapters and lessons in order.
type Outline struct {
	Course   Course           `json:"course"`
	Chapters []ChapterOutline `json:"chapters"`
}

// LessonCount returns the number of lessons across all chapters.
func (o Outline) LessonCount() int {
	n := 0
	for _, ch := range o.Chapters {
		n += len(ch.Lessons)
	}
	return n
}

// Outline loads the chapter and lesson tree of a course. With publishedOnly
// set, unpublished chapters and lessons are left out.
func (s *Service) Outline(ctx context.Context, c Course, publishedOnly bool) (Outline, error) {
	chapters, err := s.store.ListChapters(ctx, c.ID)
	if err != nil {
		return Outline{}, err
	}
	lessons, err := s.store.ListLessons(ctx, LessonFilter{CourseID: c.ID})
	if err != nil {
		return Outline{}, err
	}

	byChapter := make(map[string][]Lesson)
	for _, l := range lessons {
		if publishedOnly && !l.IsPublished {
			continue
		}
		byChapter[l.ChapterID] = append(byChapter[l.ChapterID], l)
	}

	out := Outline{Course: c, Chapters: []ChapterOutline{}}
	for _, ch := range chapters {
		if publishedOnly && !ch.IsPublished {
			continue
		}
		ls := byChapter[ch.ID]
		if ls == nil {
			ls = []Lesson{}
		}
		out.Chapters = append(out.Chapters, ChapterOutline{Chapter: ch, Lessons: ls})
	}
	return out, nil
}

// LessonQuiz returns the questions of a lesson with their answers.
func (s *Service) LessonQuiz(ctx context.Context, lessonID string) ([]QuizQuestion, error) {
	if _, err := s.store.GetLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	questions, err := s.store.ListQuestions(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		answers, err := s.store.ListAnswers(ctx, questions[i].ID)
		if err != nil {
			return nil, fmt.Errorf("answers for question %s: %w", questions[i].ID, err)
		}
		questions[i].Answers = answers
	}
	return questions, nil
}

// QuestionResult is the outcome for one submitted question.
type QuestionResult struct {
	QuestionID      string `json:"question_id"`
	Correct         bool   `json:"correct"`
	CorrectAnswerID string `json:"correct_answer_id,omitempty"`
	Explanation     string `json:"explanation,omitempty"`
}

// QuizResult scores a submission.
type QuizResult struct {
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Results []QuestionResult `json:"results"`
}

// CheckQuiz scores chosen answers (question id -> answer id) for a lesson.
// Unanswered questions count as wrong.
func (s *Service) CheckQuiz(ctx context.Context, lessonID string, chosen map[string]string) (QuizResult, error) {
	questions, err := s.LessonQuiz(ctx, lessonID)
	if err != nil {
		return QuizResult{}, err
	}

	res := QuizResult{Total: len(questions), Results: make([]QuestionResult, 0, len(questions))}
	for _, q := range questions {
		r := QuestionResult{QuestionID: q.ID, Explanation: q.Explanation}
		for _, a := range q.Answers {
			if a.IsCorrect {
				if r.CorrectAnswerID == "" {
					r.CorrectAnswerID = a.ID
				}
				if chosen[q.ID] == a.ID {
					r.Correct = true
				}
			}
		}
		if r.Correct {
			res.Score++
		}
		res.Results = append(res.Results, r)
	}
	return res, nil
}
