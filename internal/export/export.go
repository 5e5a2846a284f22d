// Package export writes course content to spreadsheets for offline review.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/writgo/theorie/internal/course"
)

const (
	QuizSheet    = "Quiz"
	OutlineSheet = "Curriculum"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func newWorkbook(sheet string) (*excelize.File, int, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("naming sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E7FF"}},
	})
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("creating header style: %w", err)
	}
	return f, header, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleHeader(f *excelize.File, sheet string, style, cols int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// Quiz writes one row per question with its options in order and the correct
// options listed by letter.
func Quiz(w io.Writer, lesson course.Lesson, questions []course.QuizQuestion) error {
	f, header, err := newWorkbook(QuizSheet)
	if err != nil {
		return err
	}
	defer f.Close()

	maxAnswers := 0
	for _, q := range questions {
		maxAnswers = max(maxAnswers, len(q.Answers))
	}

	cols := []any{"Nr", "Vraag", "Juist", "Uitleg"}
	for i := range maxAnswers {
		cols = append(cols, "Antwoord "+letter(i))
	}
	if err := writeRow(f, QuizSheet, 1, cols); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, q := range questions {
		var correct []string
		row := []any{i + 1, q.Question, "", q.Explanation}
		for j, a := range q.Answers {
			row = append(row, a.Answer)
			if a.IsCorrect {
				correct = append(correct, letter(j))
			}
		}
		row[2] = strings.Join(correct, ", ")
		if err := writeRow(f, QuizSheet, i+2, row); err != nil {
			return fmt.Errorf("writing question %d: %w", i+1, err)
		}
	}

	if err := styleHeader(f, QuizSheet, header, len(cols)); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetColWidth(QuizSheet, "B", "B", 60); err != nil {
		return err
	}
	if err := f.SetColWidth(QuizSheet, "D", "D", 50); err != nil {
		return err
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: lesson.Title, Subject: "Quiz"}); err != nil {
		return err
	}
	return f.Write(w)
}

// Outline writes one row per lesson, chapters in order. Chapters without
// lessons still get a row.
func Outline(w io.Writer, o course.Outline) error {
	f, header, err := newWorkbook(OutlineSheet)
	if err != nil {
		return err
	}
	defer f.Close()

	cols := []any{"Hoofdstuk", "Titel hoofdstuk", "Hoofdstuk gepubliceerd", "Les", "Titel les", "Type", "Gratis", "Les gepubliceerd"}
	if err := writeRow(f, OutlineSheet, 1, cols); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for i, ch := range o.Chapters {
		prefix := []any{i + 1, ch.Title, yesNo(ch.IsPublished)}
		if len(ch.Lessons) == 0 {
			if err := writeRow(f, OutlineSheet, row, prefix); err != nil {
				return err
			}
			row++
			continue
		}
		for j, l := range ch.Lessons {
			values := append(append([]any{}, prefix...), j+1, l.Title, string(l.Type), yesNo(l.IsFree), yesNo(l.IsPublished))
			if err := writeRow(f, OutlineSheet, row, values); err != nil {
				return fmt.Errorf("writing lesson %q: %w", l.Title, err)
			}
			row++
		}
	}

	if err := styleHeader(f, OutlineSheet, header, len(cols)); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetColWidth(OutlineSheet, "B", "B", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(OutlineSheet, "E", "E", 50); err != nil {
		return err
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: o.Course.Title, Subject: "Curriculum"}); err != nil {
		return err
	}
	return f.Write(w)
}

func letter(i int) string {
	return string(rune('A' + i))
}

func yesNo(b bool) string {
	if b {
		return "ja"
	}
	return "nee"
}
