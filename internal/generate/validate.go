package generate

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// outcome is the validation result for one element of a model response.
type outcome[T any] struct {
	value  T
	ok     bool
	reason string
}

// fold validates each element on its own and keeps the ones that pass.
// Dropped elements are logged at debug level and never reported to the caller.
func fold[T any](kind string, elems []any, schema *gojsonschema.Schema, project func(map[string]any) outcome[T]) []T {
	kept := make([]T, 0, len(elems))
	for i, elem := range elems {
		o := check(elem, schema, project)
		if !o.ok {
			slog.Debug("dropped generated element", "kind", kind, "index", i, "reason", o.reason)
			continue
		}
		kept = append(kept, o.value)
	}
	return kept
}

func check[T any](elem any, schema *gojsonschema.Schema, project func(map[string]any) outcome[T]) outcome[T] {
	obj, isObj := elem.(map[string]any)
	if !isObj {
		return outcome[T]{reason: "not an object"}
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(obj))
	if err != nil {
		return outcome[T]{reason: err.Error()}
	}
	if !res.Valid() {
		reasons := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			reasons = append(reasons, e.String())
		}
		return outcome[T]{reason: strings.Join(reasons, "; ")}
	}
	return project(obj)
}

// parseTree decodes sanitized text into an untyped tree.
func parseTree(kind, raw string) (any, error) {
	var tree any
	if err := json.Unmarshal([]byte(Sanitize(raw)), &tree); err != nil {
		return nil, &ParseError{Kind: kind, Reason: err.Error(), Raw: raw}
	}
	return tree, nil
}

func str(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func truthy(obj map[string]any, key string) bool {
	b, _ := obj[key].(bool)
	return b
}

// ParseCurriculum extracts chapter drafts from a model response. The response
// must be a JSON array; elements without a title are dropped. An array with no
// usable chapter is an error.
func ParseCurriculum(raw string) (Curriculum, error) {
	tree, err := parseTree("curriculum", raw)
	if err != nil {
		return Curriculum{}, err
	}
	elems, isArr := tree.([]any)
	if !isArr {
		return Curriculum{}, &ParseError{Kind: "curriculum", Reason: "response is not an array", Raw: raw}
	}

	chapters := fold("curriculum", elems, chapterSchema, projectChapter)
	if len(chapters) == 0 {
		return Curriculum{}, &ParseError{Kind: "curriculum", Reason: "no chapters in response", Raw: raw}
	}
	return Curriculum{Chapters: chapters}, nil
}

func projectChapter(obj map[string]any) outcome[ChapterDraft] {
	return outcome[ChapterDraft]{
		value: ChapterDraft{Title: str(obj, "title"), Description: str(obj, "description")},
		ok:    true,
	}
}

// ParseQuiz extracts question drafts from a model response. The response must
// be a JSON array. Questions need text, at least two answers and one correct answer.
func ParseQuiz(raw string) (Quiz, error) {
	tree, err := parseTree("quiz", raw)
	if err != nil {
		return Quiz{}, err
	}
	elems, isArr := tree.([]any)
	if !isArr {
		return Quiz{}, &ParseError{Kind: "quiz", Reason: "response is not an array", Raw: raw}
	}
	return Quiz{Questions: fold("quiz", elems, questionSchema, projectQuestion)}, nil
}

// projectQuestion normalizes {text, isCorrect} and {answer, is_correct} options.
func projectQuestion(obj map[string]any) outcome[QuestionDraft] {
	q := QuestionDraft{
		Question:    str(obj, "question"),
		Explanation: str(obj, "explanation"),
	}
	items, _ := obj["answers"].([]any)
	for _, item := range items {
		a, _ := item.(map[string]any)
		text := str(a, "answer")
		if text == "" {
			text = str(a, "text")
		}
		q.Answers = append(q.Answers, AnswerDraft{
			Answer:    text,
			IsCorrect: truthy(a, "is_correct") || truthy(a, "isCorrect"),
		})
	}
	if len(q.Answers) < 2 || !q.HasCorrectAnswer() {
		return outcome[QuestionDraft]{reason: "needs two answers and one correct"}
	}
	return outcome[QuestionDraft]{value: q, ok: true}
}

// ParseLessonBundle extracts lesson and quiz drafts from a model response. The
// response must be an object with a lessons array. A quiz without a questions
// array, or with no valid question left, is dropped.
func ParseLessonBundle(raw string) (LessonBundle, error) {
	tree, err := parseTree("lesson bundle", raw)
	if err != nil {
		return LessonBundle{}, err
	}
	obj, isObj := tree.(map[string]any)
	if !isObj {
		return LessonBundle{}, &ParseError{Kind: "lesson bundle", Reason: "response is not an object", Raw: raw}
	}
	elems, isArr := obj["lessons"].([]any)
	if !isArr {
		return LessonBundle{}, &ParseError{Kind: "lesson bundle", Reason: "response does not contain a lessons array", Raw: raw}
	}

	bundle := LessonBundle{Lessons: fold("lesson", elems, lessonSchema, projectLesson)}

	if quiz, isObj := obj["quiz"].(map[string]any); isObj {
		if questions, isArr := quiz["questions"].([]any); isArr {
			kept := fold("bundle quiz", questions, questionSchema, projectQuestion)
			if len(kept) > 0 {
				bundle.Quiz = &QuizDraft{Title: str(quiz, "title"), Questions: kept}
			}
		}
	}
	return bundle, nil
}

func projectLesson(obj map[string]any) outcome[LessonDraft] {
	return outcome[LessonDraft]{
		value: LessonDraft{Title: str(obj, "title"), Type: str(obj, "type"), Content: str(obj, "content")},
		ok:    true,
	}
}
