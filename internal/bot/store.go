package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/hxnx/kampita/config"
	"github.com/hxnx/kampita/internal/database"
	"github.com/hxnx/kampita/internal/localstore"
	"github.com/hxnx/kampita/internal/music"
	"github.com/hxnx/kampita/internal/redis"
)

// OpenStateStore opens the player state backend named by STATE_BACKEND. The
// returned close func releases only what OpenStateStore itself opened; the
// shared Postgres connection is closed by CloseBackends.
func OpenStateStore(cfg *config.Config) (music.StateStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StateBackend {
	case config.StateBackendSQLite:
		store, err := localstore.Open(cfg.StatePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite state at %s: %w", cfg.StatePath, err)
		}
		return store, store.Close, nil
	case config.StateBackendRedis:
		if !cfg.HasRedis() {
			return nil, nil, errors.New("redis state backend selected but REDIS_HOST is not set")
		}
		redisCfg := cfg.GetRedisConfig()
		store, err := redis.OpenStateStore(context.Background(), redis.Config{
			Host:     redisCfg.Host,
			Port:     redisCfg.Port,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.StateBackendPostgres:
		if database.GetDB() == nil {
			return nil, nil, errors.New("postgres state backend selected but the database is not connected")
		}
		return database.NewPlayerStateRepository(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}

// ConnectBackends initializes Postgres when it is configured. A failure is
// logged and skipped unless the state store needs it.
func ConnectBackends(cfg *config.Config) error {
	if cfg.HasDatabase() {
		dbCfg := cfg.GetDBConfig()
		err := database.Initialize(&database.Config{
			Host:     dbCfg.Host,
			Port:     dbCfg.Port,
			User:     dbCfg.User,
			Password: dbCfg.Password,
			DBName:   dbCfg.Name,
			SSLMode:  dbCfg.SSLMode,
		})
		if err != nil {
			if cfg.StateBackend == config.StateBackendPostgres {
				return fmt.Errorf("connecting to postgres: %w", err)
			}
			logger.WithError(err).Warn("database initialization failed, dashboard entries will not persist")
		}
	}
	return nil
}

// CloseBackends closes whatever ConnectBackends opened.
func CloseBackends() {
	if err := database.Close(); err != nil {
		logger.WithError(err).Warn("failed to close database")
	}
}
