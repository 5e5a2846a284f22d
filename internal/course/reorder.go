package course

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// sibling is the part of an ordered record the swap needs.
type sibling struct {
	id    string
	index int
}

// neighbour finds the sibling to swap with. siblings must be sorted by index.
func neighbour(siblings []sibling, id string, dir Direction) (self, other sibling, ok bool) {
	for i, s := range siblings {
		if s.id != id {
			continue
		}
		j := i - 1
		if dir == Down {
			j = i + 1
		}
		if j < 0 || j >= len(siblings) {
			return s, sibling{}, false
		}
		return s, siblings[j], true
	}
	return sibling{}, sibling{}, false
}

// swap writes both indices concurrently. There is no transaction: if one
// write fails the other may already have landed, leaving the two siblings
// with the same index. The first error is returned.
func swap(ctx context.Context, set func(context.Context, string, int) error, a, b sibling) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return set(gctx, a.id, b.index) })
	g.Go(func() error { return set(gctx, b.id, a.index) })
	if err := g.Wait(); err != nil {
		slog.Error("reorder swap failed, sibling indices may be inconsistent",
			"a", a.id, "b", b.id, "error", err)
		return fmt.Errorf("swap order index: %w", err)
	}
	return nil
}

// MoveChapter swaps a chapter with its previous (up) or next (down) sibling.
// It returns false when the chapter is already first or last.
func (s *Service) MoveChapter(ctx context.Context, id string, dir Direction) (bool, error) {
	ch, err := s.store.GetChapter(ctx, id)
	if err != nil {
		return false, err
	}
	chapters, err := s.store.ListChapters(ctx, ch.CourseID)
	if err != nil {
		return false, err
	}
	siblings := make([]sibling, len(chapters))
	for i, c := range chapters {
		siblings[i] = sibling{id: c.ID, index: c.OrderIndex}
	}
	return s.move(ctx, s.store.SetChapterIndex, siblings, id, dir)
}

// MoveLesson swaps a lesson with its neighbour in the same chapter.
func (s *Service) MoveLesson(ctx context.Context, id string, dir Direction) (bool, error) {
	l, err := s.store.GetLesson(ctx, id)
	if err != nil {
		return false, err
	}
	lessons, err := s.store.ListLessons(ctx, LessonFilter{ChapterID: l.ChapterID})
	if err != nil {
		return false, err
	}
	siblings := make([]sibling, len(lessons))
	for i, x := range lessons {
		siblings[i] = sibling{id: x.ID, index: x.OrderIndex}
	}
	return s.move(ctx, s.store.SetLessonIndex, siblings, id, dir)
}

// MoveQuestion swaps a quiz question with its neighbour in the same lesson.
func (s *Service) MoveQuestion(ctx context.Context, id string, dir Direction) (bool, error) {
	q, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return false, err
	}
	questions, err := s.store.ListQuestions(ctx, q.LessonID)
	if err != nil {
		return false, err
	}
	siblings := make([]sibling, len(questions))
	for i, x := range questions {
		siblings[i] = sibling{id: x.ID, index: x.OrderIndex}
	}
	return s.move(ctx, s.store.SetQuestionIndex, siblings, id, dir)
}

func (s *Service) move(ctx context.Context, set func(context.Context, string, int) error, siblings []sibling, id string, dir Direction) (bool, error) {
	self, other, ok := neighbour(siblings, id, dir)
	if !ok {
		return false, nil
	}
	if err := swap(ctx, set, self, other); err != nil {
		return false, err
	}
	return true, nil
}
