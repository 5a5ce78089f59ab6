package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/taskhub-backend/config"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/storage/postgres"
	"github.com/redis/go-redis/v9"
)

type DBOptions struct {
	Config    *config.DatabaseConfig
	Migrate   bool
	MigrateTO time.Duration
}

// OpenDB connects to Postgres and, when asked, applies the embedded schema.
func OpenDB(ctx context.Context, opt DBOptions) (*postgres.DB, error) {
	if opt.Config == nil {
		return nil, fmt.Errorf("database config is not set")
	}
	if opt.MigrateTO == 0 {
		opt.MigrateTO = 30 * time.Second
	}

	db, err := postgres.Open(ctx, opt.Config)
	if err != nil {
		return nil, err
	}

	if opt.Migrate {
		mctx, cancel := context.WithTimeout(ctx, opt.MigrateTO)
		defer cancel()
		if err := postgres.Migrate(mctx, db.DB); err != nil {
			db.Close()
			return nil, fmt.Errorf("db migrate: %w", err)
		}
	}

	return db, nil
}

// OpenRedis returns nil without error when no address is configured; callers
// treat a nil client as "no cache".
func OpenRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
