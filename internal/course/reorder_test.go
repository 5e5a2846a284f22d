package course

import (
	"context"
	"errors"
	"testing"
)

func TestService_MoveChapter(t *testing.T) {
	ctx := context.Background()
	svc, c, first := newTestService(t)
	second, _ := svc.CreateChapter(ctx, ChapterInput{CourseID: c.ID, Title: "Tweede"})
	third, _ := svc.CreateChapter(ctx, ChapterInput{CourseID: c.ID, Title: "Derde"})

	moved, err := svc.MoveChapter(ctx, third.ID, Up)
	if err != nil || !moved {
		t.Fatalf("MoveChapter(up) = %v, %v", moved, err)
	}
	chapters, _ := svc.ListChapters(ctx, c.ID)
	got := []string{chapters[0].ID, chapters[1].ID, chapters[2].ID}
	want := []string{first.ID, third.ID, second.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order after move = %v, want %v", got, want)
		}
	}

	moved, err = svc.MoveChapter(ctx, first.ID, Up)
	if err != nil || moved {
		t.Errorf("MoveChapter(first, up) = %v, %v; want false, nil", moved, err)
	}
	moved, err = svc.MoveChapter(ctx, second.ID, Down)
	if err != nil || moved {
		t.Errorf("MoveChapter(last, down) = %v, %v; want false, nil", moved, err)
	}
}

func TestService_MoveLessonAndQuestion(t *testing.T) {
	ctx := context.Background()
	svc, c, ch := newTestService(t)
	a, _ := svc.CreateLesson(ctx, LessonInput{CourseID: c.ID, ChapterID: ch.ID, Title: "A", Type: "QUIZ"})
	b, _ := svc.CreateLesson(ctx, LessonInput{CourseID: c.ID, ChapterID: ch.ID, Title: "B", Type: "TEXT"})

	if moved, err := svc.MoveLesson(ctx, a.ID, Down); err != nil || !moved {
		t.Fatalf("MoveLesson() = %v, %v", moved, err)
	}
	gotA, _ := svc.GetLesson(ctx, a.ID)
	gotB, _ := svc.GetLesson(ctx, b.ID)
	if gotA.OrderIndex != 1 || gotB.OrderIndex != 0 {
		t.Errorf("indices after swap = %d, %d; want 1, 0", gotA.OrderIndex, gotB.OrderIndex)
	}

	q1, _ := svc.CreateQuestion(ctx, QuestionInput{LessonID: a.ID, Question: "1"})
	q2, _ := svc.CreateQuestion(ctx, QuestionInput{LessonID: a.ID, Question: "2"})
	if moved, err := svc.MoveQuestion(ctx, q2.ID, Up); err != nil || !moved {
		t.Fatalf("MoveQuestion() = %v, %v", moved, err)
	}
	questions, _ := svc.ListQuestions(ctx, a.ID)
	if questions[0].ID != q2.ID || questions[1].ID != q1.ID {
		t.Error("questions not swapped")
	}

	if _, err := svc.MoveLesson(ctx, "missing", Up); !errors.Is(err, ErrNotFound) {
		t.Errorf("MoveLesson(missing) error = %v, want ErrNotFound", err)
	}
}

// failingIndexStore fails index writes for one id.
type failingIndexStore struct {
	*MemoryStore
	failID string
}

func (s *failingIndexStore) SetChapterIndex(ctx context.Context, id string, index int) error {
	if id == s.failID {
		return errors.New("write failed")
	}
	return s.MemoryStore.SetChapterIndex(ctx, id, index)
}

func TestService_MovePartialFailureLeavesDuplicateIndex(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	svc := NewService(mem)
	c, _ := svc.CreateCourse(ctx, CourseInput{Title: "C"})
	first, _ := svc.CreateChapter(ctx, ChapterInput{CourseID: c.ID, Title: "1"})
	second, _ := svc.CreateChapter(ctx, ChapterInput{CourseID: c.ID, Title: "2"})

	failing := NewService(&failingIndexStore{MemoryStore: mem, failID: first.ID})
	if _, err := failing.MoveChapter(ctx, second.ID, Up); err == nil {
		t.Fatal("MoveChapter() should report the failed write")
	}

	// No compensation: second took index 0, first kept index 0.
	gotFirst, _ := mem.GetChapter(ctx, first.ID)
	gotSecond, _ := mem.GetChapter(ctx, second.ID)
	if gotFirst.OrderIndex != 0 || gotSecond.OrderIndex != 0 {
		t.Errorf("indices = %d, %d; want 0, 0", gotFirst.OrderIndex, gotSecond.OrderIndex)
	}
}

func TestParseDirection(t *testing.T) {
	for _, in := range []string{"up", "UP", "down"} {
		if _, err := ParseDirection(in); err != nil {
			t.Errorf("ParseDirection(%q) error = %v", in, err)
		}
	}
	if _, err := ParseDirection("left"); !IsValidation(err) {
		t.Errorf("ParseDirection(left) error = %v, want ValidationError", err)
	}
}
