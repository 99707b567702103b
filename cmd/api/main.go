package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/automaton-ux/internal/application"
	appanalysis "github.com/bryanwahyu/automaton-ux/internal/application/analysis"
	"github.com/bryanwahyu/automaton-ux/internal/config"
	"github.com/bryanwahyu/automaton-ux/internal/domain/upload"
	"github.com/bryanwahyu/automaton-ux/internal/infra/ai/gemini"
	"github.com/bryanwahyu/automaton-ux/internal/infra/ai/prompt"
	"github.com/bryanwahyu/automaton-ux/internal/infra/httpserver"
	"github.com/bryanwahyu/automaton-ux/internal/infra/storage"
	"github.com/bryanwahyu/automaton-ux/internal/logger"
	"github.com/bryanwahyu/automaton-ux/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx := context.Background()

	// init gemini
	ai, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		lg.Fatal("gemini init error", zap.Error(err))
	}

	// init scratch storage
	store, err := newScratchStore(ctx, cfg)
	if err != nil {
		lg.Fatal("scratch storage init error", zap.Error(err), zap.String("backend", cfg.Scratch.Backend))
	}

	metrics := middleware.NewMetrics()

	// init service
	svc := &appanalysis.Service{
		Scratch:         store,
		AI:              ai,
		Clock:           application.SystemClock{},
		Logger:          lg,
		Observer:        metrics,
		Prompt:          prompt.GetAnalystPrompt(),
		PollInterval:    cfg.Gemini.PollInterval,
		MaxPollAttempts: cfg.Gemini.MaxPollAttempts,
		Timeout:         cfg.Gemini.AnalysisTimeout,
	}

	// init router
	handler := httpserver.NewRouter(svc, httpserver.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Checkers: map[string]middleware.HealthChecker{
			"scratch": store,
			"ai":      middleware.WithTimeout(ai, 3*time.Second),
		},
		Metrics: metrics,
		Logger:  lg,
	})

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// run server
	go func() {
		lg.Info("server listening",
			zap.String("addr", addr),
			zap.String("model", cfg.Gemini.Model),
			zap.String("scratch_backend", cfg.Scratch.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	lg.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		lg.Error("shutdown error", zap.Error(err))
	}
}

func newScratchStore(ctx context.Context, cfg *config.Config) (upload.ScratchStore, error) {
	if cfg.Scratch.Backend == config.ScratchBackendMinio {
		s, err := storage.NewMinio(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := storage.NewLocal(cfg.Scratch.Dir)
	if err != nil {
		return nil, err
	}
	return s, nil
}
