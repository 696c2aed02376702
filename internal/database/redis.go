package database

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/thanghienlanh/web33/config"
)

// ConnectRedis dials the shared rate limit backend and verifies it with PING.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisFullAddr(),
		Password: cfg.RedisPassword,
		DB:       0, // use default DB
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisFullAddr(), err)
	}

	return client, nil
}
