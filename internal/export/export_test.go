package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/writgo/theorie/internal/course"
)

func readRows(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	return rows
}

func TestQuiz(t *testing.T) {
	questions := []course.QuizQuestion{
		{
			Question:    "Wie heeft voorrang?",
			Explanation: "Rechts gaat voor.",
			Answers: []course.QuizAnswer{
				{Answer: "Links"}, {Answer: "Rechts", IsCorrect: true}, {Answer: "Niemand"},
			},
		},
		{
			Question: "Mag je hier parkeren?",
			Answers:  []course.QuizAnswer{{Answer: "Ja", IsCorrect: true}, {Answer: "Nee"}},
		},
	}

	var buf bytes.Buffer
	if err := Quiz(&buf, course.Lesson{Title: "Quiz: Voorrang"}, questions); err != nil {
		t.Fatalf("Quiz() error = %v", err)
	}

	rows := readRows(t, &buf, QuizSheet)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	wantHeader := []string{"Nr", "Vraag", "Juist", "Uitleg", "Antwoord A", "Antwoord B", "Antwoord C"}
	for i, want := range wantHeader {
		if rows[0][i] != want {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], want)
		}
	}
	if rows[1][1] != "Wie heeft voorrang?" || rows[1][2] != "B" || rows[1][5] != "Rechts" {
		t.Errorf("first question row = %v", rows[1])
	}
	if rows[2][2] != "A" || len(rows[2]) != 6 {
		t.Errorf("second question row = %v", rows[2])
	}
}

func TestOutline(t *testing.T) {
	o := course.Outline{
		Course: course.Course{Title: "Auto theorie"},
		Chapters: []course.ChapterOutline{
			{
				Chapter: course.Chapter{Title: "Borden", IsPublished: true},
				Lessons: []course.Lesson{
					{Title: "Gebodsborden", Type: course.LessonText, IsFree: true, IsPublished: true},
					{Title: "Quiz", Type: course.LessonQuiz},
				},
			},
			{Chapter: course.Chapter{Title: "Leeg"}},
		},
	}

	var buf bytes.Buffer
	if err := Outline(&buf, o); err != nil {
		t.Fatalf("Outline() error = %v", err)
	}

	rows := readRows(t, &buf, OutlineSheet)
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4: %v", len(rows), rows)
	}
	want := []string{"1", "Borden", "ja", "1", "Gebodsborden", "TEXT", "ja", "ja"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("row 1 col %d = %q, want %q", i, rows[1][i], v)
		}
	}
	if rows[2][5] != "QUIZ" || rows[2][7] != "nee" {
		t.Errorf("quiz row = %v", rows[2])
	}
	if rows[3][1] != "Leeg" || len(rows[3]) != 3 {
		t.Errorf("empty chapter row = %v", rows[3])
	}
}
