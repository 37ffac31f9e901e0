package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/recitevault/recitevault/internal/config"
	"github.com/recitevault/recitevault/internal/ffmpeg"
	logpkg "github.com/recitevault/recitevault/internal/logger"
	"github.com/recitevault/recitevault/internal/metrics"
	dailyrepo "github.com/recitevault/recitevault/internal/repository/daily"
	inboxrepo "github.com/recitevault/recitevault/internal/repository/inbox"
	libraryrepo "github.com/recitevault/recitevault/internal/repository/library"
	taxonomyrepo "github.com/recitevault/recitevault/internal/repository/taxonomy"
	"github.com/recitevault/recitevault/internal/repository/vault"
	chiTransport "github.com/recitevault/recitevault/internal/transport/chi"
	openaiASR "github.com/recitevault/recitevault/internal/transport/openai"
	stubASR "github.com/recitevault/recitevault/internal/transport/stub"
	classifyuc "github.com/recitevault/recitevault/internal/usecase/classify"
	commanduc "github.com/recitevault/recitevault/internal/usecase/command"
	dailyuc "github.com/recitevault/recitevault/internal/usecase/daily"
	intakeuc "github.com/recitevault/recitevault/internal/usecase/intake"
	libraryuc "github.com/recitevault/recitevault/internal/usecase/library"
	scopeuc "github.com/recitevault/recitevault/internal/usecase/scope"
	"github.com/recitevault/recitevault/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting recitevault API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("vault_root", cfg.Vault.Root),
		zap.String("asr_engine", cfg.ASR.Engine),
		zap.String("asr_scope", cfg.ASR.Scope),
	)

	layout := vault.NewLayout(cfg.Vault.Root)
	if err := layout.EnsureTree(); err != nil {
		logger.Fatal("Failed to create vault tree", zap.Error(err))
	}

	// Register domain metrics explicitly (no init())
	metrics.RegisterASRMetrics()

	// Repositories
	taxonomyRepo := taxonomyrepo.New(layout)
	recordLog := inboxrepo.New(layout)
	inboxFiles := inboxrepo.NewFiles(layout)
	libraryRepo := libraryrepo.New(layout)
	dailyRepo := dailyrepo.New(layout)
	instructionLog := vault.NewInstructionLog(layout)

	// Transcription engine — composition root
	var engine scopeuc.Transcriber
	switch cfg.ASR.Engine {
	case "openai":
		engine = openaiASR.NewTranscriber(&openaiASR.Config{
			APIKey:   cfg.ASR.OpenAI.APIKey,
			BaseURL:  cfg.ASR.OpenAI.BaseURL,
			Model:    cfg.ASR.OpenAI.Model,
			Language: cfg.ASR.Language,
			Logger:   logger,
		})
	case "stub":
		engine = stubASR.New()
	default:
		logger.Fatal("Unknown ASR engine", zap.String("engine", cfg.ASR.Engine))
	}

	// Pass nil interface when ffmpeg is missing; head scopes then fall
	// back to full-file transcription.
	var clipper scopeuc.ClipExtractor
	if ffmpeg.Available() {
		clipper = ffmpeg.Clipper{}
	} else {
		logger.Warn("ffmpeg not found, head clip extraction disabled")
	}

	// Use case services
	scopeSvc := scopeuc.New(engine, clipper, logger)
	classifier := classifyuc.New()
	intakeSvc := intakeuc.New(
		taxonomyRepo, recordLog, inboxFiles, libraryRepo, scopeSvc, classifier,
		intakeuc.Options{
			ScopeMode:       scopeuc.NormalizeMode(cfg.ASR.Scope),
			TagWindowSec:    cfg.ASR.TagWindowSec,
			ReviewThreshold: cfg.ASR.ReviewThreshold,
		},
		logger,
	)
	librarySvc := libraryuc.New(taxonomyRepo, libraryRepo)
	commandSvc := commanduc.New(taxonomyRepo, instructionLog)
	dailySvc := dailyuc.New(taxonomyRepo, libraryRepo, dailyRepo, logger)

	server := chiTransport.NewServer(
		intakeSvc, librarySvc, commandSvc, dailySvc, taxonomyRepo,
		cfg.ASR.Engine, cfg.ASR.Scope, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
