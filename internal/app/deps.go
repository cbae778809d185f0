package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"smart-docs/internal/cache"
	"smart-docs/internal/config"
	"smart-docs/internal/history"
	"smart-docs/internal/ingest"
	"smart-docs/internal/logger"
	"smart-docs/internal/queue"
	"smart-docs/internal/source"
	"smart-docs/internal/store"
	"smart-docs/internal/summary"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config     config.Config
	Log        *slog.Logger
	Store      store.Store
	Queue      queue.Queue // nil when QUEUE_PROVIDER=none
	Cache      cache.Cache
	Summarizer summary.Client
	Fetcher    source.Fetcher
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	if err := LoadEnv(); err != nil {
		return Deps{}, err
	}
	cfg := config.Load()
	log := logger.NewWithWriter(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	return Assemble(context.Background(), cfg, log)
}

// LoadEnv reads a .env file from the working directory if there is one.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

// Assemble wires providers selected by cfg. On error, anything already opened
// is closed.
func Assemble(ctx context.Context, cfg config.Config, log *slog.Logger) (deps Deps, err error) {
	deps = Deps{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			deps.Close()
			deps = Deps{}
		}
	}()

	if deps.Cache, err = buildCache(cfg, log); err != nil {
		return deps, fmt.Errorf("failed to initialize cache: %w", err)
	}
	if deps.Store, err = buildStore(cfg, log); err != nil {
		return deps, fmt.Errorf("failed to initialize store: %w", err)
	}
	if deps.Queue, err = buildQueue(cfg, log); err != nil {
		return deps, fmt.Errorf("failed to initialize queue: %w", err)
	}
	if deps.Summarizer, err = buildSummarizer(ctx, cfg, log, deps.Cache); err != nil {
		return deps, fmt.Errorf("failed to initialize summarizer: %w", err)
	}
	if deps.Fetcher, err = buildFetcher(cfg, log, deps.Cache); err != nil {
		return deps, fmt.Errorf("failed to initialize fetcher: %w", err)
	}
	return deps, nil
}

// Recorder publishes history to the queue when one is configured and writes
// to the store otherwise.
func (d Deps) Recorder() ingest.Recorder {
	if d.Queue != nil {
		return history.NewQueueRecorder(d.Queue)
	}
	return history.StoreRecorder{Store: d.Store}
}

// NewCoordinator builds a coordinator whose summary requests live as long as ctx.
func (d Deps) NewCoordinator(ctx context.Context) *ingest.Coordinator {
	return ingest.New(d.Summarizer,
		ingest.WithLogger(d.Log),
		ingest.WithRecorder(d.Recorder()),
		ingest.WithBaseContext(ctx),
		ingest.WithSummaryTimeout(d.Config.SummaryTimeout),
	)
}

// Close releases connections held by the dependencies.
func (d Deps) Close() {
	if d.Queue != nil {
		if err := d.Queue.Close(); err != nil {
			d.Log.Warn("failed to close queue", "err", err)
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Log.Warn("failed to close store", "err", err)
		}
	}
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Log.Warn("failed to close cache", "err", err)
		}
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "none", "":
		return cache.NewNoOpCache(), nil
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("using Redis cache", "addr", cfg.RedisAddr)
		return c, nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: none, redis)", cfg.CacheProvider)
	}
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "memory", "":
		return store.NewMemory(), nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	case "sqlite":
		db, err := store.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		log.Info("using SQLite store", "path", cfg.SQLitePath)
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid options: memory, postgres, sqlite)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "none", "":
		return nil, nil
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL, nats.Name("smart-docs"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc, queue.NATSOptions{MaxAttempts: cfg.QueueMaxAttempts}), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: none, nats)", cfg.QueueProvider)
	}
}

func buildSummarizer(ctx context.Context, cfg config.Config, log *slog.Logger, c cache.Cache) (summary.Client, error) {
	policy, err := summary.ParsePolicy(cfg.OversizePolicy)
	if err != nil {
		return nil, err
	}

	var client summary.Client
	switch cfg.SummaryProvider {
	case "stub", "":
		stub := summary.NewStub(cfg.StubSummaryLatency)
		if cfg.StubSummaryFixture != "" {
			if stub.Payload, err = summary.LoadFixture(cfg.StubSummaryFixture); err != nil {
				return nil, err
			}
		}
		log.Info("using stub summarizer", "latency", cfg.StubSummaryLatency)
		client = stub
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when SUMMARY_PROVIDER=openai")
		}
		if client, err = summary.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel)); err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI summarizer", "model", cfg.LLMModel)
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when SUMMARY_PROVIDER=gemini")
		}
		if client, err = summary.NewGeminiClient(ctx, cfg.GeminiKey, cfg.GeminiModel); err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		log.Info("using Gemini summarizer", "model", cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("invalid SUMMARY_PROVIDER: %s (valid options: stub, openai, gemini)", cfg.SummaryProvider)
	}

	client = summary.WithInputLimit(client, cfg.MaxSummaryInputChars, policy)
	if _, noop := c.(*cache.NoOpCache); !noop {
		client = summary.WithCache(client, c, cacheTTL(cfg), log)
	}
	return client, nil
}

func buildFetcher(cfg config.Config, log *slog.Logger, c cache.Cache) (source.Fetcher, error) {
	var f source.Fetcher
	switch cfg.RepoProvider {
	case "github", "":
		f = source.NewGitHubFetcher(log, source.GitHubConfig{
			APIBaseURL: cfg.GitHubAPIURL,
			Token:      cfg.GitHubToken,
			Timeout:    cfg.FetchTimeout,
			MaxRetries: 2,
		})
	case "stub":
		f = source.StubFetcher{Latency: cfg.StubFetchLatency}
	default:
		return nil, fmt.Errorf("invalid REPO_PROVIDER: %s (valid options: github, stub)", cfg.RepoProvider)
	}
	if _, noop := c.(*cache.NoOpCache); !noop {
		f = source.NewCachedFetcher(f, c, cacheTTL(cfg), log)
	}
	return f, nil
}

func cacheTTL(cfg config.Config) time.Duration {
	return time.Duration(cfg.CacheTTL) * time.Second
}
