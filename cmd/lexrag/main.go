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

	"github.com/kailas-cloud/lexrag/internal/config"
	"github.com/kailas-cloud/lexrag/internal/domain/answer"
	logpkg "github.com/kailas-cloud/lexrag/internal/logger"
	"github.com/kailas-cloud/lexrag/internal/metrics"
	"github.com/kailas-cloud/lexrag/internal/repository/loader"
	chiTransport "github.com/kailas-cloud/lexrag/internal/transport/chi"
	healthuc "github.com/kailas-cloud/lexrag/internal/usecase/health"
	searchuc "github.com/kailas-cloud/lexrag/internal/usecase/search"
	"github.com/kailas-cloud/lexrag/internal/usecase/store"
	"github.com/kailas-cloud/lexrag/internal/version"
	"github.com/kailas-cloud/lexrag/internal/watch"
)

func main() {
	// .env first so ENV and ${VAR} expansion see it
	if err := config.LoadDotEnv(); err != nil {
		panic("failed to load .env: " + err.Error())
	}

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lexrag API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("source_type", cfg.Source.Type),
	)

	// Register retrieval metrics explicitly (no init())
	metrics.RegisterRetrievalMetrics()

	// Open fails only on configuration errors; unreachable backends load as empty.
	src, err := loader.Open(cfg.Source, logger)
	if err != nil {
		logger.Fatal("Failed to open document source", zap.Error(err))
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Error("Failed to close document source", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// An unreachable source is not fatal: the store serves an empty collection until a refresh succeeds.
	readiness := time.Duration(cfg.Source.Redis.ReadinessTimeout) * time.Second
	if err := src.WaitForReady(ctx, readiness); err != nil {
		logger.Warn("Document source not ready", zap.Error(err))
	}

	docStore := store.New(src.Loader, logger).
		WithLoadTimeout(time.Duration(cfg.Source.LoadTimeoutSec) * time.Second)
	docStore.Load(ctx)

	if cfg.Source.Watch && src.File != nil {
		debounce := time.Duration(cfg.Source.WatchDebounceMs) * time.Millisecond
		w, err := watch.New(src.File, docStore, debounce, logger)
		if err != nil {
			logger.Warn("File watcher disabled", zap.Error(err))
		} else {
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Error("File watcher stopped", zap.Error(err))
				}
			}()
			logger.Info("Watching document source", zap.Strings("dirs", w.Dirs()))
		}
	}

	// Create use case services
	searchSvc := searchuc.New(docStore, answer.NewSynthesizer(cfg.Query.SnippetChars))

	var pinger healthuc.SourcePinger
	if p, ok := src.Loader.(healthuc.SourcePinger); ok {
		pinger = p
	}
	healthSvc := healthuc.New(docStore, pinger)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, docStore, healthSvc, logger).
		WithQueryLimits(chiTransport.QueryLimits{
			DefaultTopK:      cfg.Query.DefaultTopK,
			MaxTopK:          cfg.Query.MaxTopK,
			MinQuestionChars: cfg.Query.MinQuestionChars,
			MaxQuestionChars: cfg.Query.MaxQuestionChars,
		})

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
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
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorResponseCodeInternalError,
						Message: "internal error",
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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

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
				zap.String("snapshot_id", ww.Header().Get("X-Snapshot-ID")),
			)
		})
	}
}
