// Package narrative turns computed luck factors into reading text through an
// OpenAI compatible model, with a deterministic localized fallback.
package narrative

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/yanqian/omniluck/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/omniluck/pkg/errors"
	"github.com/yanqian/omniluck/pkg/metrics"
)

// Service writes the narrative for one luck result. Explain never fails.
type Service interface {
	Explain(ctx context.Context, in Input) Result
}

// ChatClient is the subset of the chat API used here.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// TokenCounter measures prompts against the configured budget.
type TokenCounter interface {
	Count(text string) int
}

// Cache stores rendered narratives per user and day.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type service struct {
	cfg      Config
	client   ChatClient
	tokens   TokenCounter
	cache    Cache
	fallback *fallbackWriter
	workers  *semaphore.Weighted
	logger   *slog.Logger
}

// NewService wires the narrative writer. client, tokens and cache are optional;
// without a client every call uses the fallback.
func NewService(cfg Config, client ChatClient, tokens TokenCounter, cache Cache, logger *slog.Logger) (Service, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	fallback, err := newFallbackWriter(cfg.DefaultLocale)
	if err != nil {
		return nil, err
	}
	return &service{
		cfg:      cfg,
		client:   client,
		tokens:   tokens,
		cache:    cache,
		fallback: fallback,
		workers:  semaphore.NewWeighted(int64(cfg.Workers)),
		logger:   logger.With("component", "narrative.service"),
	}, nil
}

func (s *service) Explain(ctx context.Context, in Input) Result {
	key := cacheKey(in)
	if cached, ok := s.lookup(ctx, key); ok {
		return cached
	}
	if s.client == nil {
		return s.fallback.write(in)
	}

	res, err := s.generate(ctx, in)
	if err != nil {
		s.logger.Warn("narrative generation failed, using fallback", "uid", in.UID, "date", in.Date, "error", err)
		return s.fallback.write(in)
	}
	s.store(ctx, key, res)
	return res
}

func (s *service) generate(ctx context.Context, in Input) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if err := s.workers.Acquire(ctx, 1); err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeLLMError, "no narrative worker available", err)
	}
	defer s.workers.Release(1)

	system := s.buildSystemPrompt()
	prompt := s.buildUserPrompt(in)
	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []chatgpt.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature:    s.cfg.Temperature,
		MaxTokens:      s.cfg.MaxTokens,
		ResponseFormat: chatgpt.JSONObject,
	})
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeLLMError, "chatgpt request failed", err)
	}
	content, err := completion.Content()
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeLLMError, "chatgpt reply unusable", err)
	}

	res, err := parseResult(content)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeLLMError, "chatgpt response malformed", err)
	}
	res.Source = SourceLLM
	res.Usage = metrics.TokenUsage{
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
	}.Estimated(s.countTokens(system + prompt))
	s.logger.Info("narrative generated", "uid", in.UID, "date", in.Date, "total_tokens", res.Usage.TotalTokens)
	return res, nil
}

func (s *service) lookup(ctx context.Context, key string) (Result, bool) {
	if key == "" || s.cache == nil {
		return Result{}, false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("narrative cache read failed", "key", key, "error", err)
		return Result{}, false
	}
	if !ok {
		return Result{}, false
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		s.logger.Warn("narrative cache entry corrupt", "key", key, "error", err)
		return Result{}, false
	}
	res.Source = SourceCache
	return res, true
}

func (s *service) store(ctx context.Context, key string, res Result) {
	if key == "" || s.cache == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("narrative cache write failed", "key", key, "error", err)
	}
}

func (s *service) countTokens(text string) int {
	if s.tokens == nil {
		return 0
	}
	return s.tokens.Count(text)
}

// cacheKey is empty for anonymous requests, which are never cached.
func cacheKey(in Input) string {
	uid := strings.TrimSpace(in.UID)
	if uid == "" || in.Date == "" {
		return ""
	}
	locale := strings.ToLower(strings.TrimSpace(in.Locale))
	return "narrative:" + uid + ":" + in.Date + ":" + locale
}
