package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/campusforge/timetable-engine/pkg/config"
)

// Connect returns a Redis client for the run job store, verified within the
// caller's deadline.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}
