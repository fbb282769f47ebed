package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandscope/brandscope/internal/api"
	"github.com/brandscope/brandscope/internal/config"
	"github.com/brandscope/brandscope/internal/crawler"
	"github.com/brandscope/brandscope/internal/queue"
	"github.com/brandscope/brandscope/internal/store"
	"github.com/brandscope/brandscope/internal/workflow"
	"github.com/brandscope/brandscope/pkg/logging"
	"github.com/brandscope/brandscope/pkg/tracing"
)

func main() {
	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("brandscope api initializing", "version", "1.0.0")

	cfg := config.Load()

	// Initialize tracing
	tp, err := tracing.InitTracer("brandscope-api")
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
		logger.Info("tracing initialized successfully")
	}

	var (
		port      = flag.String("port", cfg.Port, "Server port (env: PORT)")
		dbPath    = flag.String("db", cfg.DBPath, "Database file path (env: DB_PATH)")
		redisAddr = flag.String("redis", cfg.RedisAddr, "Redis address for the task queue (env: REDIS_ADDR)")
	)
	flag.Parse()

	// Initialize database
	db, err := store.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "database_path", *dbPath)
		os.Exit(1)
	}
	defer db.Close()

	// Queue client for enqueueing workflow tasks
	queueClient := queue.NewClient(queue.ClientConfig{RedisAddr: *redisAddr})
	defer queueClient.Close()

	// The API only creates runs and reads state; the chat and search
	// providers live in the worker process.
	engine := workflow.NewEngine(db, crawler.New(logger), nil, nil, logger)

	apiHandler := api.NewHandler(db, engine, queueClient)

	// Middleware chain: HTTP logging -> tracing -> handlers
	handler := logging.HTTPLoggingMiddleware(logger)(
		tracing.HTTPMiddleware("brandscope-api")(apiHandler),
	)

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("brandscope api starting",
			"port", *port,
			"database", *dbPath,
			"redis", *redisAddr,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
