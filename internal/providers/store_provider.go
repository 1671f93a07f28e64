package providers

import (
	"context"
	"fmt"
	"portal/internal/structures"
	"portal/internal/treestore"

	"github.com/redis/go-redis/v9"
)

// NewTreeStore picks the tree backend named by store.driver. The returned
// cleanup releases backend connections.
func NewTreeStore(conf *structures.Config, logger Logger) (treestore.Store, func(), error) {
	switch conf.Store.Driver {
	case "redis":
		client, err := newRedisClient(conf.Store.Redis)
		if err != nil {
			return nil, nil, err
		}
		store := treestore.NewRedisStore(client, conf.Store.Redis.KeyPrefix, conf.Store.Redis.MaxRetries, conf.Store.Redis.ShardedRoots...)
		logger.Infof(TypeApp, "Tree store: redis (prefix %q)", conf.Store.Redis.KeyPrefix)
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Errorf(TypeApp, "close redis: %v", err)
			}
		}, nil
	case "memory", "":
		logger.Infof(TypeApp, "Tree store: memory")
		return treestore.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", conf.Store.Driver)
	}
}

func newRedisClient(cfg structures.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
