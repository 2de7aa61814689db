package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	GinMode     string   `env:"GIN_MODE" envDefault:"debug"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Chat model
	ChatProvider  string        `env:"CHAT_PROVIDER" envDefault:"gemini"` // "gemini" or "openai"
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	ModelTimeout  time.Duration `env:"MODEL_TIMEOUT" envDefault:"60s"`
	ModelRPM      int           `env:"MODEL_RPM" envDefault:"60"`

	// Reference document and retrieval
	DocumentPath  string `env:"DOCUMENT_PATH" envDefault:"./data/document.txt"`
	ChunkSize     int    `env:"CHUNK_SIZE" envDefault:"800"`
	RetrievalTopK int    `env:"RETRIEVAL_TOP_K" envDefault:"3"`

	// Redis Configuration (rate limiting, disabled when empty)
	RedisURL        string `env:"REDIS_URL"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	RateLimitReqs   int    `env:"RATE_LIMIT_REQUESTS" envDefault:"60"`
	RateLimitWindow int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`
	MaxRequestSize  int64  `env:"MAX_REQUEST_SIZE" envDefault:"65536"`

	// MongoDB audit log (disabled when empty)
	MongoURI string `env:"MONGO_URI"`
	DBName   string `env:"DB_NAME" envDefault:"docqa_chatbot"`

	// Tracing (disabled when empty)
	OTLPEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TraceSampleRatio float64 `env:"OTEL_TRACE_SAMPLE_RATIO" envDefault:"0.1"`

	// Session growth report
	SessionStatsInterval time.Duration `env:"SESSION_STATS_INTERVAL" envDefault:"5m"`
	SessionWarnTurns     int           `env:"SESSION_WARN_TURNS" envDefault:"1000"`
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	switch c.ChatProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when CHAT_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown CHAT_PROVIDER %q (expected gemini or openai)", c.ChatProvider)
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.RetrievalTopK)
	}
	if c.ModelRPM <= 0 {
		return fmt.Errorf("MODEL_RPM must be positive, got %d", c.ModelRPM)
	}

	return nil
}
