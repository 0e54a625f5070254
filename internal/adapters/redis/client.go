// Package redis opens the shared go-redis client used by the Redis adapters.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewClient parses url, connects and pings once.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
