package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
	"github.com/vladislavdragonenkov/sweetcart/internal/storage/memory"
	"github.com/vladislavdragonenkov/sweetcart/internal/storage/postgres"
	"github.com/vladislavdragonenkov/sweetcart/internal/storage/redis"
	"github.com/vladislavdragonenkov/sweetcart/internal/storage/sqlite"
)

// kvBackend — открытое хранилище вместе с проверкой доступности и закрытием.
type kvBackend struct {
	kv    domain.KVStore
	ping  func(ctx context.Context) error
	close func() error
}

func initKVStore(ctx context.Context, cfg Config, logger *log.Entry) (kvBackend, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory:
		logger.Warn("in-memory storage selected, cart will not survive restart")
		return kvBackend{
			kv:    memory.NewKVStore(),
			ping:  func(context.Context) error { return nil },
			close: func() error { return nil },
		}, nil

	case StorageDriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return kvBackend{}, fmt.Errorf("open sqlite storage: %w", err)
		}
		logger.WithField("path", cfg.SQLitePath).Debug("sqlite storage opened")
		return kvBackend{kv: store, ping: store.Ping, close: store.Close}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return kvBackend{}, fmt.Errorf("postgres storage requires a DSN")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return kvBackend{}, fmt.Errorf("open postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return kvBackend{}, fmt.Errorf("migrate postgres storage: %w", err)
			}
		}
		return kvBackend{kv: postgres.NewKVStore(store), ping: store.Ping, close: store.Close}, nil

	case StorageDriverRedis:
		store := redis.New(redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return kvBackend{}, fmt.Errorf("open redis storage: %w", err)
		}
		return kvBackend{kv: store, ping: store.Ping, close: store.Close}, nil

	default:
		return kvBackend{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
