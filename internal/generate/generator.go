// Package generate turns operator prompts into validated curriculum, lesson
// and quiz drafts using the hosted text-generation service.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/writgo/theorie/internal/ai"
	"github.com/writgo/theorie/internal/audit"
)

// Generator runs prompt building, completion, sanitizing and validation.
// It never retries: a failed step is returned to the operator.
type Generator struct {
	provider ai.Provider
	budget   ai.BudgetChecker
	events   audit.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithBudget enforces a daily token budget per operator.
func WithBudget(b ai.BudgetChecker) Option {
	return func(g *Generator) { g.budget = b }
}

// WithEvents records generation outcomes.
func WithEvents(l audit.Logger) Option {
	return func(g *Generator) { g.events = l }
}

// New creates a Generator.
func New(provider ai.Provider, opts ...Option) *Generator {
	g := &Generator{provider: provider, events: audit.NopLogger{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Curriculum generates a chapter outline.
func (g *Generator) Curriculum(ctx context.Context, userID string, req CurriculumRequest) (Curriculum, error) {
	msgs, err := CurriculumPrompt(req)
	if err != nil {
		return Curriculum{}, err
	}
	raw, err := g.complete(ctx, userID, ai.TaskCurriculum, msgs)
	if err != nil {
		return Curriculum{}, err
	}
	out, err := ParseCurriculum(raw)
	if err != nil {
		return Curriculum{}, g.parseFailed(ctx, userID, ai.TaskCurriculum, err)
	}
	g.completed(ctx, userID, ai.TaskCurriculum, map[string]any{"chapters": len(out.Chapters)})
	return out, nil
}

// LessonContent generates one Markdown lesson body. The text is returned as produced.
func (g *Generator) LessonContent(ctx context.Context, userID string, req LessonContentRequest) (LessonContent, error) {
	msgs, err := LessonContentPrompt(req)
	if err != nil {
		return LessonContent{}, err
	}
	raw, err := g.complete(ctx, userID, ai.TaskLessonContent, msgs)
	if err != nil {
		return LessonContent{}, err
	}
	g.completed(ctx, userID, ai.TaskLessonContent, map[string]any{"chars": len(raw)})
	return LessonContent{Content: raw}, nil
}

// Lessons generates the lessons of a chapter and, when asked, a quiz.
func (g *Generator) Lessons(ctx context.Context, userID string, req LessonsRequest) (LessonBundle, error) {
	msgs, err := LessonBundlePrompt(req)
	if err != nil {
		return LessonBundle{}, err
	}
	raw, err := g.complete(ctx, userID, ai.TaskLessonBundle, msgs)
	if err != nil {
		return LessonBundle{}, err
	}
	out, err := ParseLessonBundle(raw)
	if err != nil {
		return LessonBundle{}, g.parseFailed(ctx, userID, ai.TaskLessonBundle, err)
	}
	data := map[string]any{"chapter_id": req.ChapterID, "lessons": len(out.Lessons)}
	if out.Quiz != nil {
		data["questions"] = len(out.Quiz.Questions)
	}
	g.completed(ctx, userID, ai.TaskLessonBundle, data)
	return out, nil
}

// Quiz generates standalone multiple-choice questions.
func (g *Generator) Quiz(ctx context.Context, userID string, req QuizRequest) (Quiz, error) {
	msgs, err := QuizPrompt(req)
	if err != nil {
		return Quiz{}, err
	}
	raw, err := g.complete(ctx, userID, ai.TaskQuiz, msgs)
	if err != nil {
		return Quiz{}, err
	}
	out, err := ParseQuiz(raw)
	if err != nil {
		return Quiz{}, g.parseFailed(ctx, userID, ai.TaskQuiz, err)
	}
	g.completed(ctx, userID, ai.TaskQuiz, map[string]any{"questions": len(out.Questions)})
	return out, nil
}

func (g *Generator) complete(ctx context.Context, userID string, task ai.TaskType, msgs []ai.Message) (string, error) {
	if g.budget != nil {
		ok, err := g.budget.Check(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("checking token budget: %w", err)
		}
		if !ok {
			return "", ai.ErrBudgetExceeded
		}
	}

	start := time.Now()
	resp, err := g.provider.Complete(ctx, ai.CompletionRequest{Messages: msgs, Task: task})
	if err != nil {
		slog.Error("generation failed", "kind", task.String(), "user_id", userID, "error", err)
		audit.Record(ctx, g.events, audit.Event{
			UserID:    userID,
			EventType: audit.GenerationFailed,
			Data:      map[string]any{"kind": task.String(), "error": err.Error()},
		})
		return "", err
	}

	slog.Info("generation completed",
		"kind", task.String(),
		"user_id", userID,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if g.budget != nil {
		if err := g.budget.Record(ctx, userID, resp.TotalTokens()); err != nil {
			slog.Warn("failed to record token usage", "user_id", userID, "error", err)
		}
	}
	return resp.Content, nil
}

// parseFailed logs the raw model output server-side; the caller only sees a generic error.
func (g *Generator) parseFailed(ctx context.Context, userID string, task ai.TaskType, err error) error {
	raw := ""
	var pe *ParseError
	if errors.As(err, &pe) {
		raw = pe.Raw
	}
	slog.Error("failed to parse AI response", "kind", task.String(), "error", err, "raw", raw)
	audit.Record(ctx, g.events, audit.Event{
		UserID:    userID,
		EventType: audit.GenerationFailed,
		Data:      map[string]any{"kind": task.String(), "error": err.Error()},
	})
	return err
}

func (g *Generator) completed(ctx context.Context, userID string, task ai.TaskType, data map[string]any) {
	data["kind"] = task.String()
	audit.Record(ctx, g.events, audit.Event{
		UserID:    userID,
		EventType: audit.GenerationCompleted,
		Data:      data,
	})
}
