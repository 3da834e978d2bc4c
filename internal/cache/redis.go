package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "buspulse:"

// RedisCache stores JSON response payloads, optionally gzipped for the
// larger shape bodies. All methods degrade cleanly: a miss is (false, nil),
// never an error the handler has to branch on.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisCache(addr, password string, db int, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{
		client: client,
		logger: logger.With("component", "redis_cache"),
	}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return c.store(ctx, key, data, ttl)
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, hit, err := c.load(ctx, key)
	if err != nil || !hit {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("json unmarshal: %w", err)
	}
	return true, nil
}

func (c *RedisCache) SetJSONCompressed(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	c.logger.Debug("compressed payload", "key", key, "raw_bytes", len(data), "stored_bytes", buf.Len())
	return c.store(ctx, key, buf.Bytes(), ttl)
}

func (c *RedisCache) GetJSONCompressed(ctx context.Context, key string, dest interface{}) (bool, error) {
	stored, hit, err := c.load(ctx, key)
	if err != nil || !hit {
		return false, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(stored))
	if err != nil {
		return false, fmt.Errorf("decompress: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return false, fmt.Errorf("decompress: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("json unmarshal: %w", err)
	}
	return true, nil
}

// DeletePattern removes every key matching the glob pattern. Used by the
// invalidator after a GTFS refresh.
func (c *RedisCache) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+pattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	deleted, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return err
	}
	c.logger.Debug("cache keys deleted", "pattern", pattern, "count", deleted)
	return nil
}

func (c *RedisCache) store(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		c.logger.Error("cache write failed", "key", key, "error", err)
		return err
	}
	c.logger.Debug("cache write", "key", key, "bytes", len(data), "ttl", ttl)
	return nil
}

func (c *RedisCache) load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	switch {
	case err == redis.Nil:
		c.logger.Debug("cache miss", "key", key)
		return nil, false, nil
	case err != nil:
		c.logger.Error("cache read failed", "key", key, "error", err)
		return nil, false, err
	}
	c.logger.Debug("cache hit", "key", key, "bytes", len(data))
	return data, true, nil
}
