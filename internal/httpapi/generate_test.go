package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/writgo/theorie/internal/ai"
	"github.com/writgo/theorie/internal/course"
	"github.com/writgo/theorie/internal/draft"
	"github.com/writgo/theorie/internal/generate"
	"github.com/writgo/theorie/internal/ingest"
)

const curriculumJSON = `[
  {"title": "Voorrang", "description": "Wie gaat eerst"},
  {"title": "Rotondes", "description": "In- en uitvoegen"}
]`

const quizJSON = "```json\n" + `[
  {"question": "Wie heeft voorrang?", "explanation": "Rechts gaat voor.",
   "answers": [{"answer": "Verkeer van rechts", "is_correct": true}, {"answer": "Verkeer van links", "is_correct": false}]}
]` + "\n```"

const bundleJSON = `{"lessons": [
  {"title": "Wat is een rotonde", "type": "TEXT", "content": "# Rotondes"},
  {"title": "Uitvoegen", "type": "TEXT", "content": "Richting aangeven"}
], "quiz": {"title": "Quiz: Rotondes", "questions": [
  {"question": "Wanneer geef je richting aan?", "explanation": "Bij het verlaten.",
   "answers": [{"answer": "Bij het verlaten", "is_correct": true}, {"answer": "Nooit", "is_correct": false}]}
]}}`

type generated struct {
	DraftID string `json:"draft_id"`
}

func TestGenerateCurriculum_SavesDraft(t *testing.T) {
	h := newHarness(t, nil)
	h.provider.Response = curriculumJSON

	status, body := h.do(t, http.MethodPost, "/api/admin/ai/generate-curriculum", h.admin, map[string]string{
		"prompt": "Auto theorie voor beginners", "courseTitle": "Auto Theorie",
	})
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", status, body)
	}
	got := decodeAs[struct {
		generate.Curriculum
		generated
	}](t, body)
	if len(got.Chapters) != 2 || got.Chapters[0].Title != "Voorrang" {
		t.Fatalf("chapters = %+v", got.Chapters)
	}
	if got.DraftID == "" {
		t.Fatal("draft_id missing")
	}

	d, err := h.drafts.Get(context.Background(), got.DraftID)
	if err != nil {
		t.Fatalf("draft Get() error = %v", err)
	}
	if d.Kind != draft.KindCurriculum || d.UserID != h.adminID || d.Meta["course_title"] != "Auto Theorie" {
		t.Errorf("draft = %+v", d)
	}
}

func TestGenerate_ResponsesPerEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		response string
		body     map[string]any
		check    func(t *testing.T, raw []byte)
	}{
		{
			name:     "lesson content verbatim",
			path:     "/api/admin/ai/generate-lesson-content",
			response: "## Voorrang\n\nVerkeer van rechts gaat voor.",
			body:     map[string]any{"topic": "Voorrang"},
			check: func(t *testing.T, raw []byte) {
				if got := decodeAs[generate.LessonContent](t, raw); got.Content != "## Voorrang\n\nVerkeer van rechts gaat voor." {
					t.Errorf("content = %q", got.Content)
				}
			},
		},
		{
			name:     "lessons with quiz",
			path:     "/api/admin/ai/generate-lessons",
			response: bundleJSON,
			body:     map[string]any{"chapterId": "c1", "chapterTitle": "Rotondes", "includeQuiz": true},
			check: func(t *testing.T, raw []byte) {
				got := decodeAs[generate.LessonBundle](t, raw)
				if len(got.Lessons) != 2 || got.Quiz == nil || len(got.Quiz.Questions) != 1 {
					t.Errorf("bundle = %+v", got)
				}
			},
		},
		{
			name:     "fenced quiz",
			path:     "/api/admin/ai/generate-quiz",
			response: quizJSON,
			body:     map[string]any{"topic": "Voorrang", "numberOfQuestions": 1},
			check: func(t *testing.T, raw []byte) {
				got := decodeAs[generate.Quiz](t, raw)
				if len(got.Questions) != 1 || len(got.Questions[0].Answers) != 2 {
					t.Errorf("quiz = %+v", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.provider.Response = tt.response

			status, raw := h.do(t, http.MethodPost, tt.path, h.admin, tt.body)
			if status != http.StatusOK {
				t.Fatalf("status = %d, want 200 (%s)", status, raw)
			}
			tt.check(t, raw)
			if decodeAs[generated](t, raw).DraftID == "" {
				t.Error("draft_id missing")
			}
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	upstream := fmt.Errorf("%w: send request: connection reset", ai.ErrUpstreamUnavailable)
	empty := fmt.Errorf("%w: %w from openai", ai.ErrUpstreamUnavailable, ai.ErrEmptyCompletion)

	tests := []struct {
		name       string
		path       string
		body       map[string]any
		response   string
		err        error
		wantStatus int
		wantError  string
		wantCalls  int
	}{
		{"missing prompt", "/api/admin/ai/generate-curriculum", map[string]any{}, "", nil,
			http.StatusBadRequest, "Prompt is verplicht", 0},
		{"missing topic", "/api/admin/ai/generate-lesson-content", map[string]any{"topic": ""}, "", nil,
			http.StatusBadRequest, "Onderwerp is verplicht", 0},
		{"missing chapter", "/api/admin/ai/generate-lessons", map[string]any{"chapterTitle": "Rotondes"}, "", nil,
			http.StatusBadRequest, "Hoofdstuk ID en titel zijn verplicht", 0},
		{"missing quiz topic", "/api/admin/ai/generate-quiz", map[string]any{}, "", nil,
			http.StatusBadRequest, "Onderwerp is verplicht", 0},
		{"unparsable curriculum", "/api/admin/ai/generate-curriculum", map[string]any{"prompt": "x"}, "Sorry, dat kan ik niet.", nil,
			http.StatusInternalServerError, "AI response kon niet worden verwerkt. Probeer het opnieuw.", 1},
		{"upstream down", "/api/admin/ai/generate-curriculum", map[string]any{"prompt": "x"}, "", upstream,
			http.StatusInternalServerError, "Er is een fout opgetreden bij het genereren van het curriculum", 1},
		{"missing credential", "/api/admin/ai/generate-quiz", map[string]any{"topic": "x"}, "", ai.ErrMissingCredential,
			http.StatusInternalServerError, "Er is een fout opgetreden bij het genereren van de quiz vragen", 1},
		{"empty lesson content", "/api/admin/ai/generate-lesson-content", map[string]any{"topic": "x"}, "", empty,
			http.StatusInternalServerError, "AI heeft geen content gegenereerd. Probeer het opnieuw.", 1},
		{"lessons upstream error", "/api/admin/ai/generate-lessons", map[string]any{"chapterId": "c1", "chapterTitle": "x"}, "", upstream,
			http.StatusInternalServerError, "Er is een fout opgetreden bij het genereren van de lessen", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.provider.Response = tt.response
			h.provider.Err = tt.err

			status, raw := h.do(t, http.MethodPost, tt.path, h.admin, tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", status, tt.wantStatus, raw)
			}
			if got := errorMessage(t, raw); got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
			if got := h.provider.CallCount(); got != tt.wantCalls {
				t.Errorf("provider calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestGenerate_BudgetExceeded(t *testing.T) {
	h := newHarness(t, nil)
	h.provider.Response = curriculumJSON
	if err := h.budget.Record(context.Background(), h.adminID, testBudget); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	status, raw := h.do(t, http.MethodPost, "/api/admin/ai/generate-curriculum", h.admin, map[string]string{"prompt": "x"})
	if status != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", status)
	}
	if got := errorMessage(t, raw); got != msgBudgetExceeded {
		t.Errorf("error = %q", got)
	}
	if h.provider.CallCount() != 0 {
		t.Errorf("provider calls = %d, want 0", h.provider.CallCount())
	}

	status, raw = h.do(t, http.MethodGet, "/api/admin/ai/usage", h.admin, nil)
	if status != http.StatusOK {
		t.Fatalf("usage status = %d", status)
	}
	usage := decodeAs[map[string]int64](t, raw)
	if usage["used"] != testBudget || usage["limit"] != testBudget {
		t.Errorf("usage = %v", usage)
	}
}

func seedCourse(t *testing.T, svc *course.Service) (course.Course, course.Chapter) {
	t.Helper()
	ctx := context.Background()
	c, err := svc.CreateCourse(ctx, course.CourseInput{Title: "Auto Theorie"})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	ch, err := svc.CreateChapter(ctx, course.ChapterInput{CourseID: c.ID, Title: "Rotondes"})
	if err != nil {
		t.Fatalf("CreateChapter() error = %v", err)
	}
	return c, ch
}

func TestIngestCurriculum_FromDraft(t *testing.T) {
	h := newHarness(t, nil)
	h.provider.Response = curriculumJSON
	c, _ := seedCourse(t, h.content)

	_, raw := h.do(t, http.MethodPost, "/api/admin/ai/generate-curriculum", h.admin, map[string]string{"prompt": "x"})
	draftID := decodeAs[generated](t, raw).DraftID

	status, raw := h.do(t, http.MethodPost, "/api/admin/ai/ingest-curriculum", h.admin, map[string]string{
		"course_id": c.ID, "draft_id": draftID,
	})
	if status != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", status, raw)
	}
	res := decodeAs[ingest.Result](t, raw)
	if len(res.Chapters) != 2 {
		t.Fatalf("chapters = %d, want 2", len(res.Chapters))
	}
	// The seeded chapter holds index 0.
	for i, ch := range res.Chapters {
		if ch.OrderIndex != i+1 || ch.IsPublished {
			t.Errorf("chapter %d = index %d published %v", i, ch.OrderIndex, ch.IsPublished)
		}
	}

	status, raw = h.do(t, http.MethodGet, "/api/admin/drafts/"+draftID, h.admin, nil)
	if status != http.StatusNotFound {
		t.Errorf("draft after ingest status = %d, want 404", status)
	}
	if got := errorMessage(t, raw); got != "Concept niet gevonden" {
		t.Errorf("error = %q", got)
	}
}

func TestIngestLessons_EditedInline(t *testing.T) {
	h := newHarness(t, nil)
	_, ch := seedCourse(t, h.content)

	status, raw := h.do(t, http.MethodPost, "/api/admin/ai/ingest-lessons", h.admin, map[string]any{
		"chapter_id": ch.ID,
		"lessons":    []map[string]string{{"title": "Aangepaste les", "type": "TEXT", "content": "Tekst"}},
		"quiz": map[string]any{"title": "", "questions": []map[string]any{{
			"question": "Vraag", "answers": []map[string]any{{"answer": "Ja", "is_correct": true}, {"answer": "Nee"}},
		}}},
	})
	if status != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", status, raw)
	}
	res := decodeAs[ingest.Result](t, raw)
	if len(res.Lessons) != 1 || res.Lessons[0].Title != "Aangepaste les" {
		t.Errorf("lessons = %+v", res.Lessons)
	}
	if res.QuizLesson == nil || res.QuizLesson.Title != "Quiz: Rotondes" || res.QuizLesson.Type != course.LessonQuiz {
		t.Errorf("quiz lesson = %+v", res.QuizLesson)
	}
	if len(res.Questions) != 1 || len(res.Questions[0].Answers) != 2 {
		t.Errorf("questions = %+v", res.Questions)
	}
}

func TestIngest_Errors(t *testing.T) {
	h := newHarness(t, nil)
	h.provider.Response = quizJSON
	c, ch := seedCourse(t, h.content)

	_, raw := h.do(t, http.MethodPost, "/api/admin/ai/generate-quiz", h.admin, map[string]string{"topic": "Voorrang"})
	quizDraft := decodeAs[generated](t, raw).DraftID
	if quizDraft == "" {
		t.Fatalf("quiz generation returned no draft: %s", raw)
	}
	text, err := h.content.CreateLesson(context.Background(), course.LessonInput{
		CourseID: c.ID, ChapterID: ch.ID, Title: "Tekst", Type: "TEXT",
	})
	if err != nil {
		t.Fatalf("CreateLesson() error = %v", err)
	}

	question := []map[string]any{{
		"question": "Vraag", "answers": []map[string]any{{"answer": "Ja", "is_correct": true}, {"answer": "Nee"}},
	}}

	tests := []struct {
		name       string
		path       string
		body       map[string]any
		wantStatus int
		wantError  string
	}{
		{"missing course id", "/api/admin/ai/ingest-curriculum", map[string]any{"chapters": []map[string]string{{"title": "x"}}},
			http.StatusBadRequest, "Cursus ID is verplicht"},
		{"no chapters", "/api/admin/ai/ingest-curriculum", map[string]any{"course_id": c.ID},
			http.StatusBadRequest, "Geen hoofdstukken om op te slaan"},
		{"unknown course", "/api/admin/ai/ingest-curriculum", map[string]any{"course_id": "missing", "chapters": []map[string]string{{"title": "x"}}},
			http.StatusNotFound, "Cursus niet gevonden"},
		{"wrong draft kind", "/api/admin/ai/ingest-curriculum", map[string]any{"course_id": c.ID, "draft_id": quizDraft},
			http.StatusBadRequest, "Concept heeft het verkeerde type"},
		{"unknown draft", "/api/admin/ai/ingest-quiz", map[string]any{"lesson_id": "l1", "draft_id": "missing"},
			http.StatusNotFound, "Concept niet gevonden"},
		{"missing chapter id", "/api/admin/ai/ingest-lessons", map[string]any{"lessons": []map[string]string{{"title": "x"}}},
			http.StatusBadRequest, "Hoofdstuk ID is verplicht"},
		{"no lessons", "/api/admin/ai/ingest-lessons", map[string]any{"chapter_id": ch.ID},
			http.StatusBadRequest, "Geen lessen om op te slaan"},
		{"missing lesson id", "/api/admin/ai/ingest-quiz", map[string]any{"questions": question},
			http.StatusBadRequest, "Les ID is verplicht"},
		{"unknown lesson", "/api/admin/ai/ingest-quiz", map[string]any{"lesson_id": "missing", "questions": question},
			http.StatusNotFound, "Les niet gevonden"},
		{"wrong lesson type", "/api/admin/ai/ingest-quiz", map[string]any{"lesson_id": text.ID, "questions": question},
			http.StatusBadRequest, "Vragen kunnen alleen aan een quiz les worden toegevoegd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := h.do(t, http.MethodPost, tt.path, h.admin, tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", status, tt.wantStatus, raw)
			}
			if got := errorMessage(t, raw); got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
		})
	}

	// A rejected ingestion keeps the draft.
	if _, err := h.drafts.Get(context.Background(), quizDraft); err != nil {
		t.Errorf("quiz draft should survive failed ingestion: %v", err)
	}
}

func TestIngest_PartialFailureIsGeneric(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		body        func(c course.Course, ch course.Chapter) map[string]any
		wantCreated int
	}{
		{
			name: "blank second chapter",
			path: "/api/admin/ai/ingest-curriculum",
			body: func(c course.Course, _ course.Chapter) map[string]any {
				return map[string]any{"course_id": c.ID, "chapters": []map[string]string{
					{"title": "Eerste"}, {"title": ""}, {"title": "Derde"},
				}}
			},
			wantCreated: 1,
		},
		{
			name: "invalid second lesson type",
			path: "/api/admin/ai/ingest-lessons",
			body: func(_ course.Course, ch course.Chapter) map[string]any {
				return map[string]any{"chapter_id": ch.ID, "lessons": []map[string]string{
					{"title": "A", "type": "TEXT"}, {"title": "B", "type": "text"},
				}}
			},
			wantCreated: 1,
		},
		{
			name: "blank first chapter",
			path: "/api/admin/ai/ingest-curriculum",
			body: func(c course.Course, _ course.Chapter) map[string]any {
				return map[string]any{"course_id": c.ID, "chapters": []map[string]string{{"title": ""}}}
			},
			wantCreated: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			c, ch := seedCourse(t, h.content)

			status, raw := h.do(t, http.MethodPost, tt.path, h.admin, tt.body(c, ch))
			if status != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500 (%s)", status, raw)
			}
			body := decodeAs[errorBody](t, raw)
			if body.Error != msgIngestFailed {
				t.Errorf("error = %q, want generic message", body.Error)
			}
			if body.Created == nil || *body.Created != tt.wantCreated {
				t.Errorf("created = %v, want %d", body.Created, tt.wantCreated)
			}
		})
	}

	// Rows written before the failure stay.
	h := newHarness(t, nil)
	c, _ := seedCourse(t, h.content)
	h.do(t, http.MethodPost, "/api/admin/ai/ingest-curriculum", h.admin, map[string]any{"course_id": c.ID, "chapters": []map[string]string{
		{"title": "Eerste"}, {"title": ""}, {"title": "Derde"},
	}})
	chapters, err := h.content.ListChapters(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("ListChapters() error = %v", err)
	}
	if len(chapters) != 2 || chapters[1].Title != "Eerste" {
		t.Errorf("chapters = %+v, want seeded chapter plus Eerste", chapters)
	}
}

func TestDrafts_ReplaceAndDelete(t *testing.T) {
	h := newHarness(t, nil)
	h.provider.Response = curriculumJSON
	c, _ := seedCourse(t, h.content)

	_, raw := h.do(t, http.MethodPost, "/api/admin/ai/generate-curriculum", h.admin, map[string]string{"prompt": "x"})
	id := decodeAs[generated](t, raw).DraftID

	edited := map[string]any{
		"chapters": []map[string]string{{"title": "Verkeersborden", "description": "Bewerkt"}},
		"draft_id": id,
	}
	status, raw := h.do(t, http.MethodPut, "/api/admin/drafts/"+id, h.admin, edited)
	if status != http.StatusOK {
		t.Fatalf("PUT status = %d (%s)", status, raw)
	}

	status, raw = h.do(t, http.MethodGet, "/api/admin/drafts/"+id, h.admin, nil)
	if status != http.StatusOK {
		t.Fatalf("GET status = %d", status)
	}
	var cur generate.Curriculum
	if err := decodeAs[draft.Draft](t, raw).Decode(&cur); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(cur.Chapters) != 1 || cur.Chapters[0].Title != "Verkeersborden" {
		t.Fatalf("edited draft = %+v", cur)
	}

	status, raw = h.do(t, http.MethodPost, "/api/admin/ai/ingest-curriculum", h.admin, map[string]string{"course_id": c.ID, "draft_id": id})
	if status != http.StatusCreated {
		t.Fatalf("ingest status = %d (%s)", status, raw)
	}
	if res := decodeAs[ingest.Result](t, raw); len(res.Chapters) != 1 || res.Chapters[0].Title != "Verkeersborden" {
		t.Errorf("ingested = %+v", res.Chapters)
	}

	status, _ = h.do(t, http.MethodDelete, "/api/admin/drafts/"+id, h.admin, nil)
	if status != http.StatusNotFound {
		t.Errorf("DELETE consumed draft status = %d, want 404", status)
	}

	status, _ = h.do(t, http.MethodPut, "/api/admin/drafts/missing", h.admin, edited)
	if status != http.StatusNotFound {
		t.Errorf("PUT unknown draft status = %d, want 404", status)
	}
}
