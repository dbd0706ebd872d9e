package subjectcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	KeyPrefix   string
	TTL         time.Duration
	DialTimeout time.Duration
}

// DefaultRedisConfig returns a sensible default configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:        "localhost:6379",
		KeyPrefix:   "kanjisync:",
		TTL:         10 * time.Minute,
		DialTimeout: 5 * time.Second,
	}
}

// RedisMemo is a Memo shared between processes through Redis.
type RedisMemo struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisMemo connects to Redis and verifies the connection with a ping.
func NewRedisMemo(cfg RedisConfig, logger *slog.Logger) (*RedisMemo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis memo: connection failed: %w", err)
	}

	return &RedisMemo{client: client, prefix: cfg.KeyPrefix, ttl: cfg.TTL, logger: logger}, nil
}

func (m *RedisMemo) Close() error {
	return m.client.Close()
}

func (m *RedisMemo) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := m.client.Get(ctx, m.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			m.logger.Warn("redis memo get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

func (m *RedisMemo) Set(ctx context.Context, key string, value []byte) {
	if err := m.client.Set(ctx, m.prefix+key, value, m.ttl).Err(); err != nil {
		m.logger.Warn("redis memo set failed", "key", key, "error", err)
	}
}

func (m *RedisMemo) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = m.prefix + k
	}
	if err := m.client.Del(ctx, full...).Err(); err != nil {
		m.logger.Warn("redis memo delete failed", "keys", len(keys), "error", err)
	}
}

// DeletePrefix removes every key under prefix using SCAN, in batches of 100.
func (m *RedisMemo) DeletePrefix(ctx context.Context, prefix string) {
	iter := m.client.Scan(ctx, 0, m.prefix+prefix+"*", 100).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := m.client.Del(ctx, keys...).Err(); err != nil {
				m.logger.Warn("redis memo prefix delete failed", "prefix", prefix, "error", err)
				return
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		m.logger.Warn("redis memo scan failed", "prefix", prefix, "error", err)
		return
	}
	if len(keys) > 0 {
		if err := m.client.Del(ctx, keys...).Err(); err != nil {
			m.logger.Warn("redis memo prefix delete failed", "prefix", prefix, "error", err)
		}
	}
}
