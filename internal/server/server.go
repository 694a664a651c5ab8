// Package server wires the analysis pipeline into an HTTP service and manages
// its lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/analysis"
	"github.com/scrypster/insight/internal/chat"
	"github.com/scrypster/insight/internal/config"
	"github.com/scrypster/insight/internal/llm"
	"github.com/scrypster/insight/internal/memory"
	"github.com/scrypster/insight/internal/metrics"
	"github.com/scrypster/insight/internal/nlp"
	"github.com/scrypster/insight/web/handlers"
)

// Server timeouts. Request bodies and responses are bounded by
// RequestTimeout instead, since a response waits on the language model.
const (
	ShutdownTimeout   = 5 * time.Second
	ReadHeaderTimeout = 15 * time.Second
	IdleTimeout       = 60 * time.Second

	// requestMargin covers extraction, embedding and encoding around the
	// model calls.
	requestMargin = 30 * time.Second
)

// App holds every long-lived component of the service.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Metrics      *metrics.Collector
	Model        *llm.Client
	Memory       *memory.Store
	Persister    *analysis.Persister
	Orchestrator *analysis.Orchestrator
	Chat         *chat.Engine
	Hub          *handlers.WebSocketHub

	embedder llm.Embedder
}

// NewApp builds the component graph described by cfg. The language model is
// contacted once for a connectivity check but an unreachable model does not
// fail startup. Storage errors do.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	collector := metrics.NewCollector("insight")

	backend, err := llm.NewBackend(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("language model: %w", err)
	}
	model := llm.NewClient(ctx, backend, llm.ClientConfig{
		MaxAttempts: cfg.LLM.MaxAttempts,
		RetryWait:   cfg.LLM.RetryWait,
		CallTimeout: cfg.LLM.CallTimeout,
		Logger:      logger,
		Metrics:     collector,
	})

	embedder, err := llm.NewEmbedder(ctx, cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	index, err := memory.OpenIndex(ctx, cfg.Storage, logger)
	if err != nil {
		closeEmbedder(embedder)
		return nil, fmt.Errorf("vector index: %w", err)
	}
	store := memory.New(embedder, index, logger, collector)

	hub := handlers.NewWebSocketHub(cfg.Server.AllowedOrigins, logger)
	go hub.Run()

	persister := analysis.NewPersister(store, analysis.PersisterConfig{
		QueueSize:   cfg.Analysis.PersistQueue,
		Workers:     cfg.Analysis.PersistWorkers,
		SaveTimeout: cfg.Analysis.SaveTimeout,
		OnSaved:     hub.BroadcastMemorySaved,
		Logger:      logger,
		Metrics:     collector,
	})

	orchestrator := analysis.NewOrchestrator(nlp.NewExtractor(), model, persister, analysis.Config{
		MinInputLength: cfg.Analysis.MinInputLength,
		Logger:         logger,
		Metrics:        collector,
	})

	engine := chat.NewEngine(store, model,
		chat.WithSearchK(cfg.Analysis.SearchK),
		chat.WithLogger(logger),
		chat.WithMetrics(collector),
	)

	logger.Info("application initialized",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("model", model.Model()),
		zap.String("embedding_model", embedder.GetModel()),
		zap.String("storage_engine", cfg.Storage.Engine))

	return &App{
		Config:       cfg,
		Logger:       logger,
		Metrics:      collector,
		Model:        model,
		Memory:       store,
		Persister:    persister,
		Orchestrator: orchestrator,
		Chat:         engine,
		Hub:          hub,
		embedder:     embedder,
	}, nil
}

// Shutdown drains pending memory writes, then stops the hub and closes the
// store. Writes still queued when ctx expires are abandoned.
func (a *App) Shutdown(ctx context.Context) error {
	var errs error
	if err := a.Persister.Shutdown(ctx); err != nil {
		a.Logger.Warn("memory writes abandoned at shutdown", zap.Error(err))
		errs = multierr.Append(errs, fmt.Errorf("drain persister: %w", err))
	}
	a.Hub.Stop()
	if err := a.Memory.Close(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("close memory store: %w", err))
	}
	closeEmbedder(a.embedder)
	return errs
}

func closeEmbedder(e llm.Embedder) {
	if c, ok := e.(interface{ Close() }); ok {
		c.Close()
	}
}

// NewRouter builds the HTTP routes. The analysis, memory, report and model
// endpoints sit behind RequireAuth; status, health, metrics and the
// WebSocket stream do not.
func NewRouter(app *App) http.Handler {
	cfg := app.Config.Server

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(handlers.RequestLogger(app.Logger, app.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(handlers.SecurityHeaders)
	if cfg.RateLimit > 0 {
		limiter := handlers.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
		r.Use(func(next http.Handler) http.Handler {
			return handlers.RateLimitMiddleware(next, limiter)
		})
	}

	health := handlers.NewHealthHandler(app.Model, app.Model.Backend(), app.Memory)
	analyses := handlers.NewAnalysisHandlers(app.Orchestrator, app.Logger)
	memories := handlers.NewMemoryHandlers(app.Chat, app.Memory, app.Logger)
	reports := handlers.NewReportHandler(app.Logger)

	r.Get("/", health.Root)
	r.Get("/healthz", health.Health)
	r.Handle("/metrics", app.Metrics.Handler())
	r.Handle("/ws", app.Hub)

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return handlers.RequireAuth(next, cfg)
		})
		r.Post("/analyze", analyses.Analyze)
		r.Post("/analyze/file", analyses.AnalyzeFile)
		r.Post("/memory/chat", memories.Chat)
		r.Get("/memory/search", memories.Search)
		r.Post("/report/pdf", reports.RenderPDF)
		r.Get("/llm/models", health.Models)
	})

	return r
}

// RequestTimeout returns the configured request timeout, or the model's
// retry budget plus a margin when none is set.
func RequestTimeout(app *App) time.Duration {
	if t := app.Config.Server.RequestTimeout; t > 0 {
		return t
	}
	return app.Model.Budget() + requestMargin
}

// NewHTTPServer returns the http.Server for app. The read timeout matches
// the write timeout so large uploads and slow models both fit; slow clients
// are still cut off by ReadHeaderTimeout.
func NewHTTPServer(app *App) *http.Server {
	timeout := RequestTimeout(app)
	return &http.Server{
		Addr:              app.Config.Server.Addr(),
		Handler:           NewRouter(app),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       IdleTimeout,
	}
}

// Start listens on the configured address and serves until ctx is
// cancelled. It returns the bound address, useful with port 0, and a channel
// closed once the server has shut down.
func Start(ctx context.Context, app *App) (string, <-chan struct{}, error) {
	server := NewHTTPServer(app)

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen on %s: %w", server.Addr, err)
	}
	addr := listener.Addr().String()
	app.Logger.Info("http server listening",
		zap.String("addr", addr),
		zap.Duration("request_timeout", server.WriteTimeout))

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("http server error", zap.Error(err))
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("http server shutdown error", zap.Error(err))
		}
	}()

	return addr, done, nil
}
