package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"chainfly/internal/config"
	"chainfly/internal/domain"
	"chainfly/internal/port"
)

type tariffCache struct {
	client goredis.Cmdable
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewTariffCache creates a Redis-backed TariffCache storing structures as JSON.
func NewTariffCache(client goredis.Cmdable) port.TariffCache {
	return &tariffCache{client: client}
}

func (c *tariffCache) Get(ctx context.Context, key string) (*domain.TariffStructure, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("tariffCache.Get %s: %w", key, err)
	}
	var s domain.TariffStructure
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("tariffCache.Get %s decode: %w", key, err)
	}
	return &s, nil
}

func (c *tariffCache) Set(ctx context.Context, key string, s *domain.TariffStructure, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("tariffCache.Set %s encode: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("tariffCache.Set %s: %w", key, err)
	}
	return nil
}
