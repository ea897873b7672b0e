package stream

import (
	"context"
	"fmt"

	redisconn "github.com/Reics/MAGI-01/internal/redis"
	"github.com/Reics/MAGI-01/internal/stream/redis"
	"github.com/rs/zerolog"
)

type StreamConfig struct {
	Provider    string // redis, kafka, sqs, etc
	RedisConfig *redis.RedisStreamConfig
}

func NewStreamConsumer(
	ctx context.Context,
	cfg *StreamConfig,
	runner redis.DebateRunner,
	logger *zerolog.Logger,
) (StreamConsumer, error) {

	// If provider is empty, fallback to the default configuration.
	provider := cfg.Provider
	if provider == "" {
		provider = "redis"
	}

	switch provider {
	case "redis":
		if cfg.RedisConfig == nil {
			return nil, fmt.Errorf("redis config required")
		}

		client, err := redisconn.ConnectRedis(
			ctx,
			cfg.RedisConfig.RedisAddr,
			cfg.RedisConfig.RedisPassword,
			5,
		)
		if err != nil {
			return nil, err
		}

		return redis.NewConsumer(
			client,
			cfg.RedisConfig.Stream,
			cfg.RedisConfig.VerdictStream,
			cfg.RedisConfig.Group,
			cfg.RedisConfig.ConsumerName,
			runner,
			logger,
		), nil

	default:
		return nil, fmt.Errorf("unsupported stream provider: %s", cfg.Provider)
	}
}
