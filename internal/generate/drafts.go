package generate

// ChapterDraft is one generated curriculum entry.
type ChapterDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AnswerDraft is one answer option.
type AnswerDraft struct {
	Answer    string `json:"answer"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionDraft is a multiple-choice question with its options.
type QuestionDraft struct {
	Question    string        `json:"question"`
	Explanation string        `json:"explanation"`
	Answers     []AnswerDraft `json:"answers"`
}

// HasCorrectAnswer reports whether at least one option is marked correct.
func (q QuestionDraft) HasCorrectAnswer() bool {
	for _, a := range q.Answers {
		if a.IsCorrect {
			return true
		}
	}
	return false
}

// LessonDraft is a generated lesson. Content is Markdown for TEXT lessons.
type LessonDraft struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// QuizDraft is the quiz part of a lesson bundle.
type QuizDraft struct {
	Title     string          `json:"title"`
	Questions []QuestionDraft `json:"questions"`
}

// LessonBundle is the generated set of lessons for one chapter plus an optional quiz.
type LessonBundle struct {
	Lessons []LessonDraft `json:"lessons"`
	Quiz    *QuizDraft    `json:"quiz,omitempty"`
}

// Curriculum is the result of a curriculum generation.
type Curriculum struct {
	Chapters []ChapterDraft `json:"chapters"`
}

// LessonContent is the result of a single lesson body generation.
type LessonContent struct {
	Content string `json:"content"`
}

// Quiz is the result of a standalone quiz generation.
type Quiz struct {
	Questions []QuestionDraft `json:"questions"`
}
