package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brandscope/brandscope/internal/config"
	"github.com/brandscope/brandscope/internal/crawler"
	"github.com/brandscope/brandscope/internal/llm"
	"github.com/brandscope/brandscope/internal/metrics"
	"github.com/brandscope/brandscope/internal/queue"
	"github.com/brandscope/brandscope/internal/store"
	"github.com/brandscope/brandscope/internal/workflow"
	"github.com/brandscope/brandscope/pkg/tracing"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("brandscope worker initializing", "version", "1.0.0")

	cfg := config.Load()

	tp, err := tracing.InitTracer("brandscope-worker")
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
		dbPath      = flag.String("db", cfg.DBPath, "Database file path (env: DB_PATH)")
		redisAddr   = flag.String("redis", cfg.RedisAddr, "Redis address for the task queue (env: REDIS_ADDR)")
		concurrency = flag.Int("concurrency", cfg.Concurrency, "Concurrent task handlers (env: WORKER_CONCURRENCY)")
	)
	flag.Parse()

	db, err := store.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "error", err, "database_path", *dbPath)
		os.Exit(1)
	}
	defer db.Close()

	generator := buildGenerator(cfg, logger)
	search := buildSearch(cfg, logger)

	queueClient := queue.NewClient(queue.ClientConfig{RedisAddr: *redisAddr})
	defer queueClient.Close()

	engine := workflow.NewEngine(db, crawler.New(logger), generator, search, logger)

	businessMetrics := metrics.New("brandscope")
	worker := queue.NewWorker(queue.WorkerConfig{
		RedisAddr:   *redisAddr,
		Concurrency: *concurrency,
	}, engine, queueClient, businessMetrics, logger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		worker.Shutdown()
	}()

	if err := worker.Start(); err != nil {
		logger.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("worker stopped")
}

// buildGenerator picks the chat provider for category and question
// generation. A missing or unusable provider is not fatal: the engine
// falls back to the deterministic generators.
func buildGenerator(cfg *config.Config, logger *slog.Logger) *llm.Generator {
	switch cfg.ChatProvider {
	case "openai":
		chat, err := llm.NewOpenAIChat(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
		if err != nil {
			logger.Warn("openai unavailable, using deterministic generators", "error", err)
			return nil
		}
		logger.Info("chat provider initialized", "provider", "openai")
		return llm.NewGenerator(chat, logger)
	case "ollama":
		chat, err := llm.NewOllamaChat(cfg.OllamaURL, cfg.OllamaModel, logger)
		if err != nil {
			logger.Warn("ollama unavailable, using deterministic generators", "error", err, "ollama_url", cfg.OllamaURL)
			return nil
		}
		logger.Info("chat provider initialized", "provider", "ollama", "model", cfg.OllamaModel)
		return llm.NewGenerator(chat, logger)
	default:
		logger.Info("no chat provider configured, using deterministic generators")
		return nil
	}
}

// buildSearch constructs the web-search client executing prompts. Without
// it the execution step fails, so a missing key is logged loudly.
func buildSearch(cfg *config.Config, logger *slog.Logger) llm.SearchClient {
	search, err := llm.NewPerplexityClient(cfg.PerplexityAPIKey, cfg.PerplexityModel, logger)
	if err != nil {
		logger.Error("perplexity unavailable, prompt execution will fail", "error", err)
		return nil
	}
	logger.Info("search provider initialized", "provider", "perplexity")
	return search
}
