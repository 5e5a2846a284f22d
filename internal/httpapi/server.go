// Package httpapi exposes the admin, student and assistant HTTP API.
package httpapi

import (
	"context"
	"net/http"

	"github.com/writgo/theorie/internal/ai"
	"github.com/writgo/theorie/internal/assistant"
	"github.com/writgo/theorie/internal/auth"
	"github.com/writgo/theorie/internal/chat"
	"github.com/writgo/theorie/internal/course"
	"github.com/writgo/theorie/internal/draft"
	"github.com/writgo/theorie/internal/generate"
	"github.com/writgo/theorie/internal/ingest"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the services behind the API. Budget and Checks are optional.
type Deps struct {
	Content        *course.Service
	Generator      *generate.Generator
	Ingest         *ingest.Sequencer
	Drafts         draft.Store
	Auth           *auth.Service
	Assistant      *assistant.Engine
	Budget         ai.BudgetChecker
	Checks         map[string]HealthCheck
	AllowedOrigins []string
}

// Server routes requests to the services.
type Server struct {
	content   *course.Service
	generator *generate.Generator
	ingest    *ingest.Sequencer
	drafts    draft.Store
	auth      *auth.Service
	assistant *assistant.Engine
	budget    ai.BudgetChecker
	checks    map[string]HealthCheck
	ws        *chat.Handler
}

// New creates a Server.
func New(d Deps) *Server {
	s := &Server{
		content:   d.Content,
		generator: d.Generator,
		ingest:    d.Ingest,
		drafts:    d.Drafts,
		auth:      d.Auth,
		assistant: d.Assistant,
		budget:    d.Budget,
		checks:    d.Checks,
	}
	s.ws = chat.NewHandler(d.Assistant, userFromRequest, d.AllowedOrigins...)
	return s
}

// Handler returns the routed API with request logging and token parsing.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	// Accounts.
	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.Handle("GET /api/me", s.requireUser(s.handleMe))

	// Student dashboard.
	mux.HandleFunc("GET /api/courses", s.handleListActiveCourses)
	mux.HandleFunc("GET /api/courses/{slug}", s.handleCourseBySlug)
	mux.Handle("GET /api/lessons/{id}/quiz", s.requireUser(s.handleLessonQuiz))
	mux.Handle("POST /api/lessons/{id}/quiz/check", s.requireUser(s.handleCheckQuiz))

	// Assistant.
	mux.Handle("POST /api/chat", s.requireUser(s.handleChat))
	mux.Handle("GET /api/chat/history", s.requireUser(s.handleChatHistory))
	mux.Handle("GET /api/chat/ws", s.ws)

	// Generation and ingestion.
	mux.Handle("POST /api/admin/ai/generate-curriculum", s.requireAdmin(s.handleGenerateCurriculum))
	mux.Handle("POST /api/admin/ai/generate-lesson-content", s.requireAdmin(s.handleGenerateLessonContent))
	mux.Handle("POST /api/admin/ai/generate-lessons", s.requireAdmin(s.handleGenerateLessons))
	mux.Handle("POST /api/admin/ai/generate-quiz", s.requireAdmin(s.handleGenerateQuiz))
	mux.Handle("POST /api/admin/ai/ingest-curriculum", s.requireAdmin(s.handleIngestCurriculum))
	mux.Handle("POST /api/admin/ai/ingest-lessons", s.requireAdmin(s.handleIngestLessons))
	mux.Handle("POST /api/admin/ai/ingest-quiz", s.requireAdmin(s.handleIngestQuiz))
	mux.Handle("GET /api/admin/ai/usage", s.requireAdmin(s.handleUsage))

	mux.Handle("GET /api/admin/drafts/{id}", s.requireAdmin(s.handleGetDraft))
	mux.Handle("PUT /api/admin/drafts/{id}", s.requireAdmin(s.handleReplaceDraft))
	mux.Handle("DELETE /api/admin/drafts/{id}", s.requireAdmin(s.handleDeleteDraft))

	// Content administration.
	mux.Handle("GET /api/admin/courses", s.requireAdmin(s.handleListCourses))
	mux.Handle("POST /api/admin/courses", s.requireAdmin(s.handleCreateCourse))
	mux.Handle("GET /api/admin/courses/{id}", s.requireAdmin(s.handleGetCourse))
	mux.Handle("PUT /api/admin/courses/{id}", s.requireAdmin(s.handleUpdateCourse))
	mux.Handle("DELETE /api/admin/courses/{id}", s.requireAdmin(s.handleDeleteCourse))
	mux.Handle("GET /api/admin/courses/{id}/outline.xlsx", s.requireAdmin(s.handleExportOutline))

	mux.Handle("GET /api/admin/chapters", s.requireAdmin(s.handleListChapters))
	mux.Handle("POST /api/admin/chapters", s.requireAdmin(s.handleCreateChapter))
	mux.Handle("GET /api/admin/chapters/{id}", s.requireAdmin(s.handleGetChapter))
	mux.Handle("PUT /api/admin/chapters/{id}", s.requireAdmin(s.handleUpdateChapter))
	mux.Handle("DELETE /api/admin/chapters/{id}", s.requireAdmin(s.handleDeleteChapter))
	mux.Handle("POST /api/admin/chapters/{id}/move", s.requireAdmin(s.handleMoveChapter))

	mux.Handle("GET /api/admin/lessons", s.requireAdmin(s.handleListLessons))
	mux.Handle("POST /api/admin/lessons", s.requireAdmin(s.handleCreateLesson))
	mux.Handle("GET /api/admin/lessons/{id}", s.requireAdmin(s.handleGetLesson))
	mux.Handle("PUT /api/admin/lessons/{id}", s.requireAdmin(s.handleUpdateLesson))
	mux.Handle("DELETE /api/admin/lessons/{id}", s.requireAdmin(s.handleDeleteLesson))
	mux.Handle("POST /api/admin/lessons/{id}/move", s.requireAdmin(s.handleMoveLesson))
	mux.Handle("GET /api/admin/lessons/{id}/quiz.xlsx", s.requireAdmin(s.handleExportQuiz))

	mux.Handle("GET /api/admin/quiz-questions", s.requireAdmin(s.handleListQuestions))
	mux.Handle("POST /api/admin/quiz-questions", s.requireAdmin(s.handleCreateQuestion))
	mux.Handle("GET /api/admin/quiz-questions/{id}", s.requireAdmin(s.handleGetQuestion))
	mux.Handle("PUT /api/admin/quiz-questions/{id}", s.requireAdmin(s.handleUpdateQuestion))
	mux.Handle("DELETE /api/admin/quiz-questions/{id}", s.requireAdmin(s.handleDeleteQuestion))
	mux.Handle("POST /api/admin/quiz-questions/{id}/move", s.requireAdmin(s.handleMoveQuestion))

	mux.Handle("GET /api/admin/quiz-answers", s.requireAdmin(s.handleListAnswers))
	mux.Handle("POST /api/admin/quiz-answers", s.requireAdmin(s.handleCreateAnswer))
	mux.Handle("GET /api/admin/quiz-answers/{id}", s.requireAdmin(s.handleGetAnswer))
	mux.Handle("PUT /api/admin/quiz-answers/{id}", s.requireAdmin(s.handleUpdateAnswer))
	mux.Handle("DELETE /api/admin/quiz-answers/{id}", s.requireAdmin(s.handleDeleteAnswer))

	return logRequests(s.authenticate(mux))
}
