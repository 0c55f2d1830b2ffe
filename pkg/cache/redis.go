package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/university-admin-api/pkg/config"
)

const defaultDialTimeout = 5 * time.Second

// Options maps the Redis settings onto client options. The dial timeout also
// bounds reads and writes so a stalled cache cannot hold up a list request.
func Options(cfg config.RedisConfig) *redis.Options {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
}

// KeyPrefix returns the namespace for view cache keys, always ending in ':'.
func KeyPrefix(cfg config.RedisConfig) string {
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		return ""
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix
}

// NewRedis connects to Redis and verifies the connection before returning.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts := Options(cfg)
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s db %d: %w", opts.Addr, opts.DB, err)
	}

	return client, nil
}
