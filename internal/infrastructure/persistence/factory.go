package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/internal/domain/repository"
	"github.com/turtacn/cyberrisk/internal/infrastructure/persistence/memory"
	redisstore "github.com/turtacn/cyberrisk/internal/infrastructure/persistence/redis"
	"github.com/turtacn/cyberrisk/internal/infrastructure/persistence/sqlite"
	"github.com/turtacn/cyberrisk/pkg/constants"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

const redisPingTimeout = 2 * time.Second

// NewStore builds the configured backend wrapped in a FailSoftStore.
func NewStore(ctx context.Context, storeCfg config.StoreConfig, redisCfg config.RedisConfig, log logger.Logger) (repository.KeyValueStore, error) {
	var backend repository.KeyValueStore

	switch constants.StoreDriver(storeCfg.Driver) {
	case constants.StoreDriverMemory, "":
		backend = memory.NewKVStore()

	case constants.StoreDriverSQLite:
		s, err := sqlite.Open(storeCfg.Path)
		if err != nil {
			return nil, err
		}
		backend = s

	case constants.StoreDriverRedis:
		client, err := redisstore.NewClient(redisCfg)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		// An unreachable server is not fatal: FailSoftStore degrades reads to "absent".
		_ = redisstore.Ping(pingCtx, client, redisCfg, log)
		backend = redisstore.NewKVStore(client, storeCfg.Namespace)

	default:
		return nil, fmt.Errorf("unknown store driver %q", storeCfg.Driver)
	}

	log.Debug(ctx, "key/value store ready", logger.String("driver", storeCfg.Driver))
	return NewFailSoftStore(backend, log), nil
}
