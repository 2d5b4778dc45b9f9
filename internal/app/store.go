package app

import (
	"context"
	"fmt"
	"time"

	"formbuilder/internal/cache"
	"formbuilder/internal/config"
	"formbuilder/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Stores bundles the persistence collaborators chosen by configuration
type Stores struct {
	KV       repository.KVStore
	Sessions cache.FillSessionCache
	closers  []func()
}

// Close releases every open connection
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStores connects the configured backend. Fill sessions go to Redis
// when Redis is the backend and stay in memory otherwise.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory store, state is lost on exit")
		return &Stores{
			KV:       repository.NewMemoryKV(),
			Sessions: cache.NewMemoryFillSessionCache(),
		}, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if _, err := rdb.Ping(pingCtx).Result(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to ping Redis: %w", err)
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
		return &Stores{
			KV:       cache.NewRedisKV(rdb),
			Sessions: cache.NewFillSessionCache(rdb),
			closers:  []func(){func() { rdb.Close() }},
		}, nil

	case config.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		logger.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))
		return &Stores{
			KV:       repository.NewMongoKV(client.Database(cfg.Mongo.Database)),
			Sessions: cache.NewMemoryFillSessionCache(),
			closers: []func(){func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				client.Disconnect(disconnectCtx)
			}},
		}, nil

	case config.BackendSQL:
		db, err := gorm.Open(mysql.Open(cfg.SQL.DSN), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		kv, err := repository.NewSQLKV(db)
		if err != nil {
			return nil, fmt.Errorf("failed to migrate kv table: %w", err)
		}
		logger.Info("connected to SQL database")
		stores := &Stores{
			KV:       kv,
			Sessions: cache.NewMemoryFillSessionCache(),
		}
		if sqlDB, err := db.DB(); err == nil {
			stores.closers = append(stores.closers, func() { sqlDB.Close() })
		}
		return stores, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
