package redis

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

// ConnectionMode defines Redis deployment mode
type ConnectionMode string

const (
	// ModeStandalone represents single Redis instance
	ModeStandalone ConnectionMode = "standalone"
	// ModeCluster represents Redis cluster mode
	ModeCluster ConnectionMode = "cluster"
	// ModeSentinel represents Redis sentinel mode for high availability
	ModeSentinel ConnectionMode = "sentinel"
)

// NewClient builds the client for cfg.Mode without dialing. Standalone uses
// cfg.Address; cluster and sentinel use cfg.Addresses.
func NewClient(cfg config.RedisConfig) (redis.UniversalClient, error) {
	var tlsConfig *tls.Config
	if cfg.TLS {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.TLSSkipVerify, //nolint:gosec // opt-in for self-signed test servers
		}
	}

	switch ConnectionMode(cfg.Mode) {
	case ModeStandalone, "":
		if cfg.Address == "" {
			return nil, fmt.Errorf("redis address not configured")
		}
		return redis.NewClient(&redis.Options{
			Addr:        cfg.Address,
			Password:    cfg.Password,
			DB:          cfg.DB,
			PoolSize:    cfg.PoolSize,
			DialTimeout: cfg.DialTimeout,
			TLSConfig:   tlsConfig,
		}), nil

	case ModeCluster:
		if len(cfg.Addresses) == 0 {
			return nil, fmt.Errorf("cluster addresses not configured")
		}
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:       cfg.Addresses,
			Password:    cfg.Password,
			PoolSize:    cfg.PoolSize,
			DialTimeout: cfg.DialTimeout,
			TLSConfig:   tlsConfig,
		}), nil

	case ModeSentinel:
		if len(cfg.Addresses) == 0 {
			return nil, fmt.Errorf("sentinel addresses not configured")
		}
		if cfg.MasterName == "" {
			return nil, fmt.Errorf("sentinel master name not configured")
		}
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    cfg.MasterName,
			SentinelAddrs: cfg.Addresses,
			Password:      cfg.Password,
			DB:            cfg.DB,
			PoolSize:      cfg.PoolSize,
			DialTimeout:   cfg.DialTimeout,
			TLSConfig:     tlsConfig,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported Redis mode: %s", cfg.Mode)
	}
}

// Ping checks connectivity and logs the outcome. The error is returned for
// the caller to decide whether an unreachable server is fatal.
func Ping(ctx context.Context, client redis.UniversalClient, cfg config.RedisConfig, log logger.Logger) error {
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn(ctx, "redis unreachable",
			logger.String("mode", modeOf(cfg)), logger.String("address", cfg.Address), logger.Err(err))
		return err
	}
	log.Debug(ctx, "redis connection established", logger.String("mode", modeOf(cfg)))
	return nil
}

func modeOf(cfg config.RedisConfig) string {
	if cfg.Mode == "" {
		return string(ModeStandalone)
	}
	return cfg.Mode
}
