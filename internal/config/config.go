package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for the gateway, archiver and CLI.
type Config struct {
	// Server
	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "text"

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Repository README source
	RepoProvider     string        `env:"REPO_PROVIDER" envDefault:"github"` // "github" or "stub"
	GitHubAPIURL     string        `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	GitHubToken      string        `env:"GITHUB_TOKEN"`
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	StubFetchLatency time.Duration `env:"STUB_FETCH_LATENCY" envDefault:"1s"`

	// Summaries
	SummaryProvider      string        `env:"SUMMARY_PROVIDER" envDefault:"stub"` // "stub", "openai" or "gemini"
	SummaryTimeout       time.Duration `env:"SUMMARY_TIMEOUT" envDefault:"60s"`
	MaxSummaryInputChars int           `env:"MAX_SUMMARY_INPUT_CHARS" envDefault:"100000"`
	OversizePolicy       string        `env:"SUMMARY_OVERSIZE_POLICY" envDefault:"reject"` // "reject" or "truncate"
	StubSummaryLatency   time.Duration `env:"STUB_SUMMARY_LATENCY" envDefault:"2s"`
	StubSummaryFixture   string        `env:"STUB_SUMMARY_FIXTURE"`
	OpenAIKey            string        `env:"OPENAI_API_KEY"`
	LLMModel             string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	GeminiKey            string        `env:"GEMINI_API_KEY"`
	GeminiModel          string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	// Cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none"` // "none" or "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"memory"` // "memory", "postgres" or "sqlite"
	DBURL         string `env:"DB_URL"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"smart-docs.db"`

	// Queue
	QueueProvider    string `env:"QUEUE_PROVIDER" envDefault:"none"` // "none" or "nats"
	QueueURL         string `env:"QUEUE_URL"`
	QueueMaxAttempts int    `env:"QUEUE_MAX_ATTEMPTS" envDefault:"5"`

	// Presentation
	Theme string `env:"THEME" envDefault:"auto"` // "plain", "auto", "dark", "light", "notty"
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
