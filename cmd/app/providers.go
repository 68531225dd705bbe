package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/omniluck/internal/domain/auth"
	"github.com/yanqian/omniluck/internal/domain/lottery"
	"github.com/yanqian/omniluck/internal/domain/luck"
	"github.com/yanqian/omniluck/internal/domain/narrative"
	"github.com/yanqian/omniluck/internal/domain/signals"
	"github.com/yanqian/omniluck/internal/infra/config"
	"github.com/yanqian/omniluck/internal/infra/historyrepo"
	"github.com/yanqian/omniluck/internal/infra/jobqueue"
	"github.com/yanqian/omniluck/internal/infra/kvcache"
	"github.com/yanqian/omniluck/internal/infra/llm/chatgpt"
	"github.com/yanqian/omniluck/internal/infra/lotterydata/nygov"
	"github.com/yanqian/omniluck/internal/infra/spaceweather/noaa"
	"github.com/yanqian/omniluck/internal/infra/statsstore"
	"github.com/yanqian/omniluck/internal/infra/telemetry"
	"github.com/yanqian/omniluck/internal/infra/weather/openweather"
)

func provideTracing(cfg *config.Config, logger *slog.Logger) (telemetry.Shutdown, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Telemetry.Enabled {
		logger.Info("otlp tracing enabled", "endpoint", cfg.Telemetry.OTLPEndpoint)
	}
	return shutdown, nil
}

func provideSignalsConfig(cfg *config.Config) signals.Config {
	return signals.Config{FetchTimeout: cfg.Signals.FetchTimeout}
}

// provideWeatherSource returns a nil interface, not a typed nil, when no API
// key is configured so the signals service falls back to default weather.
func provideWeatherSource(cfg *config.Config, logger *slog.Logger) signals.WeatherSource {
	client := openweather.NewClient(cfg.Signals.OpenWeatherAPIKey, cfg.Signals.OpenWeatherBaseURL, cfg.Signals.FetchTimeout)
	if client == nil {
		logger.Info("openweather api key not set, using default weather")
		return nil
	}
	return client
}

func provideGeomagneticSource(cfg *config.Config) signals.GeomagneticSource {
	return noaa.NewClient(cfg.Signals.NOAAKpURL, cfg.Signals.FetchTimeout)
}

func provideLotteryConfig(cfg *config.Config) lottery.Config {
	return lottery.Config{
		DrawLimit:      cfg.Lottery.DrawLimit,
		FetchTimeout:   cfg.Lottery.FetchTimeout,
		FailureBackoff: cfg.Lottery.FailureBackoff,
	}
}

func provideGenerator(cfg *config.Config) *lottery.Generator {
	return lottery.NewGenerator(lottery.GeneratorConfig{MaxBalanceAttempts: cfg.Lottery.MaxBalanceAttempts})
}

func provideDrawSource(cfg *config.Config) lottery.DrawSource {
	return nygov.NewClient(cfg.Lottery.SourceURL)
}

func provideStatsStore(cfg *config.Config, logger *slog.Logger) (lottery.StatsStore, func()) {
	noop := func() {}
	switch cfg.Lottery.StatsDriver {
	case "sqlite":
		store, err := statsstore.OpenSQLite(cfg.Lottery.StatsPath)
		if err != nil {
			logger.Error("failed to open sqlite stats store, using memory store", "path", cfg.Lottery.StatsPath, "error", err)
			return statsstore.NewMemoryStore(), noop
		}
		logger.Info("lottery stats persisted to sqlite", "path", cfg.Lottery.StatsPath)
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("sqlite stats store close failed", "error", err)
			}
		}
	case "s3":
		o := cfg.Lottery.ObjectStore
		store, err := statsstore.NewObjectStore(o.Endpoint, o.AccessKey, o.SecretKey, o.Bucket, o.Object, o.Region, logger)
		if err != nil {
			logger.Error("failed to configure object store, using memory store", "endpoint", o.Endpoint, "error", err)
			return statsstore.NewMemoryStore(), noop
		}
		logger.Info("lottery stats persisted to object storage", "bucket", o.Bucket, "object", o.Object)
		return store, noop
	default:
		return statsstore.NewMemoryStore(), noop
	}
}

func provideChatClient(cfg *config.Config, logger *slog.Logger) narrative.ChatClient {
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	if err != nil {
		logger.Info("llm client disabled, narratives use the template fallback", "reason", err)
		return nil
	}
	return client
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) narrative.TokenCounter {
	counter, err := chatgpt.NewTokenCounter(cfg.LLM.Model)
	if err != nil {
		logger.Warn("token counter unavailable, prompt budget not enforced", "error", err)
		return nil
	}
	return counter
}

func provideNarrativeConfig(cfg *config.Config) narrative.Config {
	return narrative.Config{
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		MaxTokens:       cfg.LLM.MaxTokens,
		Prompt:          cfg.Narrative.Prompt,
		Timeout:         cfg.LLM.Timeout,
		CacheTTL:        cfg.Narrative.CacheTTL,
		Workers:         cfg.Narrative.Workers,
		MaxPromptTokens: cfg.LLM.MaxPromptTokens,
		DefaultLocale:   cfg.Narrative.Locale,
	}
}

func provideLuckConfig(cfg *config.Config) luck.Config {
	return luck.Config{
		ResponseTTL:    cfg.Luck.ResponseTTL,
		HistoryDays:    cfg.Luck.HistoryDays,
		MaxHistoryDays: cfg.Luck.MaxHistoryDays,
	}
}

func provideAuthService(cfg *config.Config, logger *slog.Logger) (auth.Service, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return auth.NewService(ctx, auth.Config{
		Mode:     cfg.Auth.Mode,
		Secret:   cfg.Auth.Secret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		Required: cfg.Auth.Required,
	}, logger)
}

// provideValkeyClient dials Valkey when the cache driver asks for it. A nil
// client makes the cache and the job queue fall back to in-process backends.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func()) {
	noop := func() {}
	if cfg.Cache.Driver != "valkey" {
		return nil, noop
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory backends", "error", err)
		return nil, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory backends", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory backends", "error", err)
		client.Close()
		return nil, noop
	}
	logger.Info("valkey connected", "addr", cfg.Cache.Addr)
	return client, client.Close
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}, Password: cfg.Cache.Password, SelectDB: cfg.Cache.DB}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideCache(cfg *config.Config, client valkey.Client, logger *slog.Logger) (kvcache.Cache, func()) {
	noop := func() {}
	switch cfg.Cache.Driver {
	case "valkey":
		if client == nil {
			return kvcache.NewMemoryCache(), noop
		}
		logger.Info("valkey cache enabled", "prefix", cfg.Cache.Prefix)
		return kvcache.NewValkeyCache(client, cfg.Cache.Prefix), noop
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis ping failed, falling back to memory cache", "addr", cfg.Cache.Addr, "error", err)
			_ = rdb.Close()
			return kvcache.NewMemoryCache(), noop
		}
		logger.Info("redis cache enabled", "addr", cfg.Cache.Addr, "prefix", cfg.Cache.Prefix)
		return kvcache.NewRedisCache(rdb, cfg.Cache.Prefix), func() { _ = rdb.Close() }
	default:
		return kvcache.NewMemoryCache(), noop
	}
}

func provideNarrativeCache(cache kvcache.Cache) narrative.Cache {
	return cache
}

func provideResponseCache(cache kvcache.Cache) luck.ResponseCache {
	return cache
}

func provideHistoryRepository(cfg *config.Config, logger *slog.Logger) (luck.HistoryRepository, func()) {
	noop := func() {}
	fallback := historyrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.History.Postgres.DSN)
	if dsn == "" {
		logger.Info("history postgres dsn not set, using memory repository")
		return fallback, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback, noop
	}
	if cfg.History.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.History.Postgres.MaxConns
	}
	if cfg.History.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.History.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	logger.Info("history postgres repository enabled")
	return historyrepo.NewPostgresRepository(pool), pool.Close
}

// provideJobQueue wires the history writer as the queue's only consumer.
func provideJobQueue(cfg *config.Config, client valkey.Client, repo luck.HistoryRepository, logger *slog.Logger) jobqueue.HandlerQueue {
	handler := jobqueue.Handler(luck.HistoryJobHandler(repo, logger))
	if cfg.Jobs.Driver == "valkey" && client != nil {
		queue := jobqueue.NewValkeyQueue(client, cfg.Jobs.QueueKey, logger)
		queue.SetHandler(handler)
		logger.Info("valkey job queue enabled", "key", cfg.Jobs.QueueKey)
		return queue
	}
	return jobqueue.NewImmediateQueue(handler)
}

func provideLuckJobQueue(queue jobqueue.HandlerQueue) luck.JobQueue {
	return queue
}
