package infra

import (
	"context"
	"time"

	"github.com/EdinMesanovic/postinfo/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedis dials the Redis instance backing the job queues and verifies it
// answers before the worker pool starts consuming. The ping is bounded so a
// wrong address fails startup fast instead of hanging.
func NewRedis(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Info().Str("addr", opts.Addr).Msg("connected to redis")
	return rdb, nil
}
