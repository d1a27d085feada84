package persistence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/classbook-backend/internal/config"
	"github.com/stemsi/classbook-backend/internal/database"
)

// Backend is the adapter selected by STORAGE_DRIVER with the connections
// it opened.
type Backend struct {
	Port Port
	// Redis is set when the redis driver is used so callers can share it.
	Redis *redis.Client

	closers []func()
}

// Open connects the adapter named by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	switch cfg.StorageDriver {
	case config.StorageFile:
		log.Info().Str("path", cfg.DataFile).Msg("Using file storage")
		return &Backend{Port: NewFileStore(cfg.DataFile)}, nil

	case config.StorageRedis:
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Port:    NewRedisStore(rdb, cfg.RedisStateKey),
			Redis:   rdb,
			closers: []func(){func() { _ = rdb.Close() }},
		}, nil

	case config.StoragePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Port:    NewPostgresStore(pool),
			closers: []func(){pool.Close},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// Close releases the connections opened by Open.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}
