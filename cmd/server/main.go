package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/writgo/theorie/internal/ai"
	"github.com/writgo/theorie/internal/assistant"
	"github.com/writgo/theorie/internal/audit"
	"github.com/writgo/theorie/internal/auth"
	"github.com/writgo/theorie/internal/course"
	"github.com/writgo/theorie/internal/draft"
	"github.com/writgo/theorie/internal/generate"
	"github.com/writgo/theorie/internal/httpapi"
	"github.com/writgo/theorie/internal/ingest"
	"github.com/writgo/theorie/internal/platform/cache"
	"github.com/writgo/theorie/internal/platform/config"
	"github.com/writgo/theorie/internal/platform/database"
	"github.com/writgo/theorie/internal/platform/logging"
	"github.com/writgo/theorie/internal/seed"
)

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "reading .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.New(os.Stdout, cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	handler, cleanup, err := build(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// No read or write timeout: generation calls take minutes and WebSocket
	// connections stay open.
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// stores are the persistence backends chosen at startup.
type stores struct {
	content       course.Store
	users         auth.Store
	conversations assistant.ConversationStore
	events        audit.Logger
	drafts        draft.Store
	budget        ai.BudgetChecker
}

// build wires the services and returns the API handler and a cleanup func.
func build(ctx context.Context, cfg *config.Config) (http.Handler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	checks := map[string]httpapi.HealthCheck{}

	st, err := openStores(ctx, cfg, checks, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	if !cfg.HasAIProvider() {
		slog.Warn("THEORIE_AI_OPENAI_API_KEY not set; generation and assistant requests will fail")
	}
	provider := ai.NewOpenAIProvider(cfg.AI.APIKey,
		ai.WithBaseURL(cfg.AI.BaseURL),
		ai.WithModel(cfg.AI.Model),
	)

	content := course.NewService(st.content)
	users := auth.NewService(st.users, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.AccessTokenTTL)*time.Minute)

	if cfg.Seed.Enabled {
		if err := applySeed(ctx, cfg.Seed.Path, users, content); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	api := httpapi.New(httpapi.Deps{
		Content:   content,
		Generator: generate.New(provider, generate.WithBudget(st.budget), generate.WithEvents(st.events)),
		Ingest:    ingest.NewSequencer(content, ingest.WithEvents(st.events)),
		Drafts:    st.drafts,
		Auth:      users,
		Assistant: assistant.NewEngine(assistant.EngineConfig{
			Provider: provider,
			Store:    st.conversations,
			Events:   st.events,
		}),
		Budget: st.budget,
		Checks: checks,
	})
	return api.Handler(), cleanup, nil
}

func openStores(ctx context.Context, cfg *config.Config, checks map[string]httpapi.HealthCheck, closers *[]func()) (stores, error) {
	var st stores

	if cfg.UsesMemoryStore() {
		slog.Warn("using in-memory storage; data is lost on restart")
		st.content = course.NewMemoryStore()
		st.users = auth.NewMemoryStore()
		st.conversations = assistant.NewMemoryStore()
		st.events = audit.NopLogger{}
	} else {
		db, err := database.New(ctx, cfg.Database.URL, database.PoolSize{
			Max: cfg.Database.MaxConns,
			Min: cfg.Database.MinConns,
		})
		if err != nil {
			return st, fmt.Errorf("connecting to database: %w", err)
		}
		*closers = append(*closers, db.Close)
		checks["database"] = db.HealthCheck
		slog.Info("database connected")

		if cfg.Database.Migrate {
			if err := db.Migrate(ctx); err != nil {
				return st, fmt.Errorf("migrating database: %w", err)
			}
		}
		if st.content, err = course.NewPostgresStore(db.Pool); err != nil {
			return st, err
		}
		if st.users, err = auth.NewPostgresStore(db.Pool); err != nil {
			return st, err
		}
		if st.conversations, err = assistant.NewPostgresStore(db.Pool); err != nil {
			return st, err
		}
		st.events = audit.NewPostgresLogger(db.Pool)
	}

	limit := int64(cfg.Budget.DailyTokens)
	if cfg.HasCache() {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err == nil {
			*closers = append(*closers, func() { _ = c.Close() })
			checks["cache"] = c.HealthCheck
			st.drafts = draft.NewRedisStore(c.Client, cfg.Drafts.TTL)
			st.budget = ai.NewRedisBudget(c.Client, limit)
			slog.Info("cache connected")
			return st, nil
		}
		slog.Warn("cache unavailable, keeping drafts and budgets in memory", "error", err)
	}
	st.drafts = draft.NewMemoryStore(cfg.Drafts.TTL)
	st.budget = ai.NewInMemoryBudget(limit)
	return st, nil
}

func applySeed(ctx context.Context, dir string, users *auth.Service, content *course.Service) error {
	f, err := seed.Load(dir)
	if err != nil {
		return fmt.Errorf("loading seed data: %w", err)
	}
	stats, err := seed.Apply(ctx, f, users, content)
	if err != nil {
		return fmt.Errorf("applying seed data: %w", err)
	}
	slog.Info("seed data applied",
		"path", dir,
		"users", stats.Users,
		"courses", stats.Courses,
		"chapters", stats.Chapters,
		"lessons", stats.Lessons,
		"questions", stats.Questions,
	)
	return nil
}
