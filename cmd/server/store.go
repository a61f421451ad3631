package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/maxviazov/hoops-tagging-service/internal/config"
	"github.com/maxviazov/hoops-tagging-service/internal/handler"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
	"github.com/maxviazov/hoops-tagging-service/internal/repository/memory"
	"github.com/maxviazov/hoops-tagging-service/internal/repository/postgres"
	"github.com/maxviazov/hoops-tagging-service/internal/repository/redisstore"
	"github.com/maxviazov/hoops-tagging-service/internal/repository/s3store"
	"github.com/maxviazov/hoops-tagging-service/internal/repository/sqlite"
)

// backend is the save store selected by storage.driver plus what readiness
// pings and what shutdown releases.
type backend struct {
	store  repository.SaveStore
	pinger handler.Pinger
	close  func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (backend, error) {
	l := logger.With().Str("module", "storage").Str("driver", cfg.Storage.Driver).Logger()
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := repository.NewPool(ctx, cfg.Postgres, logger)
		if err != nil {
			return backend{}, err
		}
		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, logger); err != nil {
				pool.Close()
				return backend{}, err
			}
		}
		return backend{store: postgres.NewSaveStore(pool), pinger: postgres.NewPinger(pool), close: pool.Close}, nil

	case config.DriverSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLite.Path, logger)
		if err != nil {
			return backend{}, err
		}
		return backend{store: st, pinger: st, close: func() {
			if err := st.Close(); err != nil {
				l.Error().Err(err).Msg("sqlite close failed")
			}
		}}, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		st := redisstore.New(client, cfg.Redis.KeyPrefix)
		if err := st.Ping(ctx); err != nil {
			_ = client.Close()
			return backend{}, err
		}
		return backend{store: st, pinger: st, close: func() {
			if err := client.Close(); err != nil {
				l.Error().Err(err).Msg("redis close failed")
			}
		}}, nil

	case config.DriverS3:
		st, err := s3store.New(ctx, cfg.S3)
		if err != nil {
			return backend{}, err
		}
		return backend{store: st, pinger: st, close: func() {}}, nil

	case config.DriverMemory:
		st := memory.NewSaveStore()
		l.Warn().Msg("saves are kept in memory and lost on restart")
		return backend{store: st, pinger: st.(repository.Pinger), close: func() {}}, nil

	default:
		return backend{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
