package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/config.yaml"

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	Narrative NarrativeConfig `yaml:"narrative"`
	Signals   SignalsConfig   `yaml:"signals"`
	Lottery   LotteryConfig   `yaml:"lottery"`
	Luck      LuckConfig      `yaml:"luck"`
	Cache     CacheConfig     `yaml:"cache"`
	History   HistoryConfig   `yaml:"history"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Auth      AuthConfig      `yaml:"auth"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address" env:"HTTP_ADDRESS"`
	ReadTimeout  time.Duration   `yaml:"readTimeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout time.Duration   `yaml:"writeTimeout" env:"HTTP_WRITE_TIMEOUT"`
	CORSOrigins  []string        `yaml:"corsOrigins" env:"HTTP_CORS_ORIGINS" envSeparator:","`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Retry        RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" env:"HTTP_RATE_LIMIT_ENABLED"`
	RequestsPerMinute int  `yaml:"requestsPerMinute" env:"HTTP_RATE_LIMIT_RPM"`
	Burst             int  `yaml:"burst" env:"HTTP_RATE_LIMIT_BURST"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" env:"HTTP_RETRY_ENABLED"`
	MaxAttempts int           `yaml:"maxAttempts" env:"HTTP_RETRY_MAX_ATTEMPTS"`
	BaseBackoff time.Duration `yaml:"baseBackoff" env:"HTTP_RETRY_BASE_BACKOFF"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains settings for the OpenAI compatible chat endpoint.
type LLMConfig struct {
	APIKey          string        `yaml:"apiKey" env:"LLM_API_KEY"`
	BaseURL         string        `yaml:"baseUrl" env:"LLM_BASE_URL"`
	Model           string        `yaml:"model" env:"LLM_MODEL"`
	Temperature     float32       `yaml:"temperature" env:"LLM_TEMPERATURE"`
	MaxTokens       int           `yaml:"maxTokens" env:"LLM_MAX_TOKENS"`
	Timeout         time.Duration `yaml:"timeout" env:"LLM_TIMEOUT"`
	MaxPromptTokens int           `yaml:"maxPromptTokens" env:"LLM_MAX_PROMPT_TOKENS"`
}

// NarrativeConfig controls explanation generation.
type NarrativeConfig struct {
	Prompt   string        `yaml:"prompt" env:"NARRATIVE_PROMPT"`
	CacheTTL time.Duration `yaml:"cacheTtl" env:"NARRATIVE_CACHE_TTL"`
	Workers  int           `yaml:"workers" env:"NARRATIVE_WORKERS"`
	Locale   string        `yaml:"locale" env:"NARRATIVE_LOCALE"`
}

// SignalsConfig points at the environmental data providers.
type SignalsConfig struct {
	OpenWeatherAPIKey  string        `yaml:"openWeatherApiKey" env:"OPENWEATHER_API_KEY"`
	OpenWeatherBaseURL string        `yaml:"openWeatherBaseUrl" env:"OPENWEATHER_BASE_URL"`
	NOAAKpURL          string        `yaml:"noaaKpUrl" env:"NOAA_KP_URL"`
	FetchTimeout       time.Duration `yaml:"fetchTimeout" env:"SIGNALS_FETCH_TIMEOUT"`
}

// LotteryConfig controls the Powerball data source and generator.
type LotteryConfig struct {
	SourceURL          string            `yaml:"sourceUrl" env:"LOTTERY_SOURCE_URL"`
	DrawLimit          int               `yaml:"drawLimit" env:"LOTTERY_DRAW_LIMIT"`
	StatsDriver        string            `yaml:"statsDriver" env:"LOTTERY_STATS_DRIVER"`
	StatsPath          string            `yaml:"statsPath" env:"LOTTERY_STATS_PATH"`
	MaxBalanceAttempts int               `yaml:"maxBalanceAttempts" env:"LOTTERY_MAX_BALANCE_ATTEMPTS"`
	FetchTimeout       time.Duration     `yaml:"fetchTimeout" env:"LOTTERY_FETCH_TIMEOUT"`
	FailureBackoff     time.Duration     `yaml:"failureBackoff" env:"LOTTERY_FAILURE_BACKOFF"`
	ObjectStore        ObjectStoreConfig `yaml:"objectStore"`
}

// ObjectStoreConfig configures an S3 compatible bucket for the statistics snapshot.
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint" env:"LOTTERY_S3_ENDPOINT"`
	AccessKey string `yaml:"accessKey" env:"LOTTERY_S3_ACCESS_KEY"`
	SecretKey string `yaml:"secretKey" env:"LOTTERY_S3_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"LOTTERY_S3_BUCKET"`
	Object    string `yaml:"object" env:"LOTTERY_S3_OBJECT"`
	Region    string `yaml:"region" env:"LOTTERY_S3_REGION"`
}

// LuckConfig tunes the luck service.
type LuckConfig struct {
	ResponseTTL    time.Duration `yaml:"responseTtl" env:"LUCK_RESPONSE_TTL"`
	HistoryDays    int           `yaml:"historyDays" env:"LUCK_HISTORY_DAYS"`
	MaxHistoryDays int           `yaml:"maxHistoryDays" env:"LUCK_MAX_HISTORY_DAYS"`
}

// CacheConfig selects the key/value cache backend.
type CacheConfig struct {
	Driver   string `yaml:"driver" env:"CACHE_DRIVER"`
	Addr     string `yaml:"addr" env:"CACHE_ADDR"`
	Password string `yaml:"password" env:"CACHE_PASSWORD"`
	DB       int    `yaml:"db" env:"CACHE_DB"`
	Prefix   string `yaml:"prefix" env:"CACHE_PREFIX"`
}

// HistoryConfig contains the luck history database settings.
type HistoryConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn" env:"HISTORY_POSTGRES_DSN"`
	MaxConns int32  `yaml:"maxConns" env:"HISTORY_POSTGRES_MAX_CONNS"`
	MinConns int32  `yaml:"minConns" env:"HISTORY_POSTGRES_MIN_CONNS"`
}

// JobsConfig selects the background job queue.
type JobsConfig struct {
	Driver   string `yaml:"driver" env:"JOBS_DRIVER"`
	QueueKey string `yaml:"queueKey" env:"JOBS_QUEUE_KEY"`
}

// AuthConfig controls bearer token verification on the luck endpoints.
type AuthConfig struct {
	Mode     string `yaml:"mode" env:"AUTH_MODE"`
	Secret   string `yaml:"secret" env:"AUTH_SECRET"`
	Issuer   string `yaml:"issuer" env:"AUTH_ISSUER"`
	Audience string `yaml:"audience" env:"AUTH_AUDIENCE"`
	Required bool   `yaml:"required" env:"AUTH_REQUIRED"`
}

// TelemetryConfig controls OTLP trace export.
type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled" env:"OTEL_ENABLED"`
	OTLPEndpoint string `yaml:"otlpEndpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `yaml:"serviceName" env:"OTEL_SERVICE_NAME"`
}

// Load reads configuration from a .env file, a YAML file and environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		if err := hydrateFromFile(cfg, defaultConfigPath); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			CORSOrigins:  []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/luck/calculate",
				},
			},
		},
		LLM: LLMConfig{
			Model:           "gpt-4o-mini",
			Temperature:     0.7,
			MaxTokens:       500,
			Timeout:         15 * time.Second,
			MaxPromptTokens: 1200,
		},
		Narrative: NarrativeConfig{
			CacheTTL: 24 * time.Hour,
			Workers:  4,
			Locale:   "en",
		},
		Signals: SignalsConfig{
			OpenWeatherBaseURL: "https://api.openweathermap.org/data/2.5/weather",
			NOAAKpURL:          "https://services.swpc.noaa.gov/json/planetary_k_index_1m.json",
			FetchTimeout:       5 * time.Second,
		},
		Lottery: LotteryConfig{
			SourceURL:          "https://data.ny.gov/resource/d6yy-54nr.json",
			DrawLimit:          100,
			StatsDriver:        "memory",
			StatsPath:          "data/lottery_stats.db",
			MaxBalanceAttempts: 50,
			FetchTimeout:       10 * time.Second,
			FailureBackoff:     5 * time.Minute,
			ObjectStore: ObjectStoreConfig{
				Object: "lottery/stats.json",
				Region: "auto",
			},
		},
		Luck: LuckConfig{
			ResponseTTL:    time.Hour,
			HistoryDays:    30,
			MaxHistoryDays: 365,
		},
		Cache: CacheConfig{
			Driver: "memory",
			Prefix: "omniluck",
		},
		History: HistoryConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Jobs: JobsConfig{
			Driver:   "immediate",
			QueueKey: "omniluck:jobs",
		},
		Auth: AuthConfig{
			Mode: "none",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "omniluck",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.Timeout < 0 {
		return errors.New("llm.timeout cannot be negative")
	}
	if c.Narrative.CacheTTL < 0 {
		return errors.New("narrative.cacheTtl cannot be negative")
	}
	if c.Narrative.Workers < 0 {
		return errors.New("narrative.workers cannot be negative")
	}
	if c.Signals.FetchTimeout <= 0 {
		return errors.New("signals.fetchTimeout must be positive")
	}
	if strings.TrimSpace(c.Lottery.SourceURL) == "" {
		return errors.New("lottery.sourceUrl cannot be empty")
	}
	if c.Lottery.DrawLimit <= 0 {
		return errors.New("lottery.drawLimit must be positive")
	}
	switch c.Lottery.StatsDriver {
	case "memory":
	case "sqlite":
		if strings.TrimSpace(c.Lottery.StatsPath) == "" {
			return errors.New("lottery.statsPath cannot be empty when statsDriver is sqlite")
		}
	case "s3":
		if c.Lottery.ObjectStore.Endpoint == "" || c.Lottery.ObjectStore.Bucket == "" {
			return errors.New("lottery.objectStore.endpoint and bucket are required when statsDriver is s3")
		}
	default:
		return fmt.Errorf("lottery.statsDriver %q is not supported", c.Lottery.StatsDriver)
	}
	if c.Luck.MaxHistoryDays < c.Luck.HistoryDays {
		return errors.New("luck.maxHistoryDays cannot be less than luck.historyDays")
	}
	switch c.Cache.Driver {
	case "memory":
	case "valkey", "redis":
		if strings.TrimSpace(c.Cache.Addr) == "" {
			return fmt.Errorf("cache.addr cannot be empty when cache.driver is %s", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver %q is not supported", c.Cache.Driver)
	}
	switch c.Jobs.Driver {
	case "immediate":
	case "valkey":
		if c.Cache.Driver != "valkey" {
			return errors.New("jobs.driver valkey requires cache.driver valkey")
		}
	default:
		return fmt.Errorf("jobs.driver %q is not supported", c.Jobs.Driver)
	}
	switch c.Auth.Mode {
	case "none":
	case "hmac":
		if c.Auth.Secret == "" {
			return errors.New("auth.secret cannot be empty when auth.mode is hmac")
		}
	case "oidc":
		if c.Auth.Issuer == "" || c.Auth.Audience == "" {
			return errors.New("auth.issuer and auth.audience are required when auth.mode is oidc")
		}
	default:
		return fmt.Errorf("auth.mode %q is not supported", c.Auth.Mode)
	}
	if c.Telemetry.Enabled && strings.TrimSpace(c.Telemetry.OTLPEndpoint) == "" {
		return errors.New("telemetry.otlpEndpoint cannot be empty when telemetry is enabled")
	}
	return nil
}
