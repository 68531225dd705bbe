package kvcache

import (
	"context"
	"time"

	"github.com/yanqian/omniluck/internal/domain/luck"
	"github.com/yanqian/omniluck/internal/domain/narrative"
)

// Cache is the contract shared by every backend.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*ValkeyCache)(nil)
	_ Cache = (*RedisCache)(nil)

	_ narrative.Cache    = Cache(nil)
	_ luck.ResponseCache = Cache(nil)
)
