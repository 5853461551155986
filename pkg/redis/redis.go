// Package redis provides the shared go-redis client.
package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tenantry/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New builds a redis client from configuration and registers lifecycle hooks.
func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *goredis.Client {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if lc != nil {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					return err
				}
				log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				_ = ctx
				return client.Close()
			},
		})
	}

	return client
}

// Module wires the redis client.
var Module = fx.Module("redis",
	fx.Provide(New),
)
