package course

import (
	"context"
	"errors"
	"testing"
)

func newTestService(t *testing.T) (*Service, Course, Chapter) {
	t.Helper()
	ctx := context.Background()
	svc := NewService(NewMemoryStore())
	c, err := svc.CreateCourse(ctx, CourseInput{Title: "Rijbewijs B"})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	ch, err := svc.CreateChapter(ctx, ChapterInput{CourseID: c.ID, Title: "Verkeersregels"})
	if err != nil {
		t.Fatalf("CreateChapter() error = %v", err)
	}
	return svc, c, ch
}

func intPtr(i int) *int { return &i }

func TestService_CreateCourse(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore())

	c, err := svc.CreateCourse(ctx, CourseInput{Title: "Theorie-examen Bromfiets"})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	if c.Slug != "theorie-examen-bromfiets" {
		t.Errorf("Slug = %q, want derived slug", c.Slug)
	}
	if !c.IsActive {
		t.Error("IsActive should default to true")
	}

	_, err = svc.CreateCourse(ctx, CourseInput{Title: "Ander", Slug: "theorie-examen-bromfiets"})
	if !errors.Is(err, ErrSlugTaken) {
		t.Errorf("duplicate slug error = %v, want ErrSlugTaken", err)
	}

	_, err = svc.CreateCourse(ctx, CourseInput{})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Message != "Titel en slug zijn verplicht" {
		t.Errorf("empty title error = %v, want ValidationError", err)
	}
}

func TestService_NextIndex(t *testing.T) {
	ctx := context.Background()
	svc, c, ch := newTestService(t)

	if ch.OrderIndex != 0 {
		t.Errorf("first chapter index = %d, want 0", ch.OrderIndex)
	}

	ch2, err := svc.CreateChapter(ctx, ChapterInput{CourseID: c.ID, Title: "Borden"})
	if err != nil {
		t.Fatalf("CreateChapter() error = %v", err)
	}
	if ch2.OrderIndex != 1 {
		t.Errorf("second chapter index = %d, want 1", ch2.OrderIndex)
	}

	// Explicit index is used as-is and next-available continues from the max.
	ch3, _ := svc.CreateChapter(ctx, ChapterInput{CourseID: c.ID, Title: "Gevaar", OrderIndex: intPtr(7)})
	ch4, _ := svc.CreateChapter(ctx, ChapterInput{CourseID: c.ID, Title: "Snelweg"})
	if ch3.OrderIndex != 7 || ch4.OrderIndex != 8 {
		t.Errorf("indices = %d, %d; want 7, 8", ch3.OrderIndex, ch4.OrderIndex)
	}

	l1, _ := svc.CreateLesson(ctx, LessonInput{CourseID: c.ID, ChapterID: ch.ID, Title: "Intro", Type: "TEXT"})
	l2, _ := svc.CreateLesson(ctx, LessonInput{CourseID: c.ID, ChapterID: ch.ID, Title: "Video", Type: "VIDEO"})
	other, _ := svc.CreateLesson(ctx, LessonInput{CourseID: c.ID, ChapterID: ch2.ID, Title: "Elders", Type: "TEXT"})
	if l1.OrderIndex != 0 || l2.OrderIndex != 1 || other.OrderIndex != 0 {
		t.Errorf("lesson indices = %d, %d, %d; want 0, 1, 0", l1.OrderIndex, l2.OrderIndex, other.OrderIndex)
	}
}

func TestService_Validation(t *testing.T) {
	ctx := context.Background()
	svc, c, ch := newTestService(t)

	tests := []struct {
		name    string
		call    func() error
		wantMsg string
	}{
		{"chapter without course", func() error {
			_, err := svc.CreateChapter(ctx, ChapterInput{Title: "x"})
			return err
		}, "Cursus ID en titel zijn verplicht"},
		{"lesson without type", func() error {
			_, err := svc.CreateLesson(ctx, LessonInput{CourseID: c.ID, ChapterID: ch.ID, Title: "x"})
			return err
		}, "Cursus ID, hoofdstuk ID, titel en type zijn verplicht"},
		{"lesson bad type", func() error {
			_, err := svc.CreateLesson(ctx, LessonInput{CourseID: c.ID, ChapterID: ch.ID, Title: "x", Type: "AUDIO"})
			return err
		}, "Ongeldig les type. Kies TEXT, VIDEO of QUIZ"},
		{"lesson lowercase type", func() error {
			_, err := svc.CreateLesson(ctx, LessonInput{CourseID: c.ID, ChapterID: ch.ID, Title: "x", Type: "text"})
			return err
		}, "Ongeldig les type. Kies TEXT, VIDEO of QUIZ"},
		{"question without text", func() error {
			_, err := svc.CreateQuestion(ctx, QuestionInput{LessonID: "l"})
			return err
		}, "Les ID en vraag zijn verplicht"},
		{"answer without text", func() error {
			_, err := svc.CreateAnswer(ctx, AnswerInput{QuestionID: "q"})
			return err
		}, "Vraag ID en antwoord zijn verplicht"},
		{"chapter update without title", func() error {
			_, err := svc.UpdateChapter(ctx, ch.ID, ChapterInput{})
			return err
		}, "Titel is verplicht"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if ve.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", ve.Message, tt.wantMsg)
			}
			if !IsValidation(err) {
				t.Error("IsValidation() = false")
			}
		})
	}
}

func TestService_UpdateIsFullReplace(t *testing.T) {
	ctx := context.Background()
	svc, _, ch := newTestService(t)

	if _, err := svc.UpdateChapter(ctx, ch.ID, ChapterInput{Title: "Nieuw", Description: "d", OrderIndex: intPtr(3), IsPublished: true}); err != nil {
		t.Fatalf("UpdateChapter() error = %v", err)
	}
	// Omitted fields are reset, not kept.
	updated, err := svc.UpdateChapter(ctx, ch.ID, ChapterInput{Title: "Nieuw"})
	if err != nil {
		t.Fatalf("UpdateChapter() error = %v", err)
	}
	if updated.Description != "" || updated.OrderIndex != 0 || updated.IsPublished {
		t.Errorf("UpdateChapter() kept omitted fields: %+v", updated)
	}
	if updated.CourseID != ch.CourseID {
		t.Errorf("CourseID changed to %q", updated.CourseID)
	}

	if _, err := svc.UpdateChapter(ctx, "missing", ChapterInput{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateChapter(missing) error = %v, want ErrNotFound", err)
	}
}

func TestService_OutlineAndQuiz(t *testing.T) {
	ctx := context.Background()
	svc, c, ch := newTestService(t)

	hidden, _ := svc.CreateChapter(ctx, ChapterInput{CourseID: c.ID, Title: "Concept"})
	_, _ = svc.UpdateChapter(ctx, ch.ID, ChapterInput{Title: ch.Title, IsPublished: true})
	pub, _ := svc.CreateLesson(ctx, LessonInput{CourseID: c.ID, ChapterID: ch.ID, Title: "Quiz", Type: "QUIZ", IsPublished: true})
	_, _ = svc.CreateLesson(ctx, LessonInput{CourseID: c.ID, ChapterID: ch.ID, Title: "Draft", Type: "TEXT"})
	_, _ = svc.CreateLesson(ctx, LessonInput{CourseID: c.ID, ChapterID: hidden.ID, Title: "Verborgen", Type: "TEXT", IsPublished: true})

	full, err := svc.Outline(ctx, c, false)
	if err != nil {
		t.Fatalf("Outline() error = %v", err)
	}
	if len(full.Chapters) != 2 || full.LessonCount() != 3 {
		t.Errorf("full outline = %d chapters / %d lessons, want 2 / 3", len(full.Chapters), full.LessonCount())
	}

	published, _ := svc.Outline(ctx, c, true)
	if len(published.Chapters) != 1 || published.LessonCount() != 1 {
		t.Errorf("published outline = %d chapters / %d lessons, want 1 / 1", len(published.Chapters), published.LessonCount())
	}

	q, _ := svc.CreateQuestion(ctx, QuestionInput{LessonID: pub.ID, Question: "Wat betekent een rood verkeerslicht?", Explanation: "Stoppen."})
	wrong, _ := svc.CreateAnswer(ctx, AnswerInput{QuestionID: q.ID, Answer: "Doorrijden"})
	right, _ := svc.CreateAnswer(ctx, AnswerInput{QuestionID: q.ID, Answer: "Stoppen", IsCorrect: true})
	q2, _ := svc.CreateQuestion(ctx, QuestionInput{LessonID: pub.ID, Question: "Tweede"})
	_, _ = svc.CreateAnswer(ctx, AnswerInput{QuestionID: q2.ID, Answer: "Ja", IsCorrect: true})

	questions, err := svc.LessonQuiz(ctx, pub.ID)
	if err != nil {
		t.Fatalf("LessonQuiz() error = %v", err)
	}
	if len(questions) != 2 || len(questions[0].Answers) != 2 {
		t.Fatalf("LessonQuiz() = %+v", questions)
	}

	res, err := svc.CheckQuiz(ctx, pub.ID, map[string]string{q.ID: right.ID})
	if err != nil {
		t.Fatalf("CheckQuiz() error = %v", err)
	}
	if res.Score != 1 || res.Total != 2 {
		t.Errorf("CheckQuiz() = %d/%d, want 1/2", res.Score, res.Total)
	}
	if res.Results[0].CorrectAnswerID != right.ID {
		t.Errorf("CorrectAnswerID = %q, want %q", res.Results[0].CorrectAnswerID, right.ID)
	}

	res, _ = svc.CheckQuiz(ctx, pub.ID, map[string]string{q.ID: wrong.ID})
	if res.Score != 0 {
		t.Errorf("CheckQuiz(wrong) score = %d, want 0", res.Score)
	}
}
