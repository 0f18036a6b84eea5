package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"companymcp/internal/models"

	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Tenant AI config caching
	GetAIConfig(ctx context.Context, tenantID int64) (*models.TenantAIConfig, error)
	SetAIConfig(ctx context.Context, cfg *models.TenantAIConfig, ttl time.Duration) error
	DeleteAIConfig(ctx context.Context, tenantID int64) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisCacheService accepts either host:port or a redis:// URL
func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	return NewCacheServiceFromClient(redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	}))
}

// NewCacheServiceFromClient wraps an existing client
func NewCacheServiceFromClient(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func aiConfigKey(tenantID int64) string {
	return fmt.Sprintf("mcp:ai_config:%d", tenantID)
}

// GetAIConfig returns nil, nil on a cache miss
func (r *redisCacheService) GetAIConfig(ctx context.Context, tenantID int64) (*models.TenantAIConfig, error) {
	data, err := r.client.Get(ctx, aiConfigKey(tenantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cfg models.TenantAIConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	// a cached entry must never answer for another tenant
	if cfg.TenantID != tenantID {
		return nil, nil
	}
	return &cfg, nil
}

func (r *redisCacheService) SetAIConfig(ctx context.Context, cfg *models.TenantAIConfig, ttl time.Duration) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, aiConfigKey(cfg.TenantID), data, ttl).Err()
}

func (r *redisCacheService) DeleteAIConfig(ctx context.Context, tenantID int64) error {
	return r.client.Del(ctx, aiConfigKey(tenantID)).Err()
}

// IsRateLimited counts a hit against key and reports whether the limit for the
// current window has been exceeded
func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("mcp:ratelimit:%s", key)

	var count *redis.IntCmd
	var ttl *redis.DurationCmd
	if _, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, cacheKey)
		ttl = pipe.PTTL(ctx, cacheKey)
		return nil
	}); err != nil {
		return false, err
	}

	// a counter without expiry opens the window, including one left behind
	// by a failed EXPIRE
	if ttl.Val() < 0 {
		if err := r.client.Expire(ctx, cacheKey, window).Err(); err != nil {
			return false, err
		}
	}

	return count.Val() > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}
