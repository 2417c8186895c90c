// Agentic Honeypot - Scam Engagement Server
package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/api"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/config"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/defense"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/engine"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/extract"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/llm"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/middleware"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/planner"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/report"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/scorer"
	"github.com/abuzarsid7/Agentic-Honeypot/internal/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "model_enabled", cfg.ModelEnabled())

	// Initialize dependencies.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("Invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(redisOpts)
	defer func() {
		if closeErr := rdb.Close(); closeErr != nil {
			slog.Error("Failed to close redis client", "error", closeErr)
		}
	}()

	store := session.NewRedisStore(rdb)
	if err := store.Healthy(context.Background()); err != nil {
		slog.Error("Redis health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Redis connected")

	archive, err := report.NewArchive(cfg.ArchiveDBPath)
	if err != nil {
		slog.Error("Failed to initialize report archive", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := archive.Close(); closeErr != nil {
			slog.Error("Failed to close report archive", "error", closeErr)
		}
	}()
	slog.Info("Report archive ready", "path", cfg.ArchiveDBPath)

	// Model wiring is optional. Without it the scorer reweights its
	// pattern signals and replies come from templates.
	var analyzer scorer.Analyzer
	var gen planner.Generator
	var extractor extract.Extractor
	if cfg.ModelEnabled() {
		client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)
		model := llm.NewEngine(client, llm.NewRedisCache(rdb), cfg.LLM.CacheTTL, cfg.LLM.AnalysisTemperature, logger)
		analyzer = model
		gen = model
		extractor = model
		slog.Info("Model client initialized", "model", cfg.LLM.Model)
	} else {
		slog.Info("Model disabled (LLM_BASE_URL or LLM_API_KEY not set)")
	}

	var plannerRng, defenseRng *rand.Rand
	if cfg.RandomSeed > 0 {
		plannerRng = rand.New(rand.NewSource(cfg.RandomSeed))
		defenseRng = rand.New(rand.NewSource(cfg.RandomSeed + 1))
	}

	var sink report.Sink = report.NopSink{}
	if cfg.CallbackURL != "" {
		sink = report.NewCallbackSink(cfg.CallbackURL, cfg.CallbackTimeout)
		slog.Info("Report callback enabled", "url", cfg.CallbackURL)
	}

	eng := engine.New(
		store,
		scorer.New(analyzer, logger),
		planner.New(gen, planner.Options{
			HardCeiling:          cfg.HardCeiling,
			ConfirmMinCategories: cfg.ConfirmMinCategories,
			ReplyTemperature:     cfg.LLM.ReplyTemperature,
			Rand:                 plannerRng,
			Log:                  logger,
		}),
		defense.New(defenseRng),
		sink,
		archive,
		engine.Options{
			SessionTTL:  cfg.SessionTTL,
			HardCeiling: cfg.HardCeiling,
			Extractor:   extractor,
			Log:         logger,
		},
	)

	handler := api.NewHoneypotHandler(eng, store.Healthy)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Public routes.
	handler.RegisterHealth(r)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKey(cfg.APIKey))
		handler.RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
