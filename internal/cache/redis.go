package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ecomcore/storefront/internal/domain"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, buyerID string) ([]*domain.Order, error) {
	key := cacheKey(buyerID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var orders []*domain.Order
	if err2 := json.Unmarshal(data, &orders); err2 != nil {
		return nil, fmt.Errorf("unmarshal orders failed: %w", err2)
	}

	return orders, nil
}

func (r RedisCache) Set(ctx context.Context, buyerID string, orders []*domain.Order) error {
	key := cacheKey(buyerID)
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("marshal orders failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if ret := r.client.Set(ctx, key, string(data), ttl); ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, buyerID string) error {
	key := cacheKey(buyerID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cacheKey(buyerID string) string {
	return fmt.Sprintf("orders:%s", buyerID)
}
