package kvstore

import (
	"context"
	"fmt"
	"log"

	"socialnexus/internal/domain/social"
	"socialnexus/internal/infrastructure/memory"
	"socialnexus/internal/infrastructure/redis"
	"socialnexus/internal/infrastructure/sqldb"
	"socialnexus/internal/shared/config"
)

// Store is a social.KVStore that can also enumerate its keys.
type Store interface {
	social.KVStore
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Open builds the backend named by STORE_BACKEND. The returned close
// function releases its connections.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		log.Println("Link store: in-memory (links are lost on restart)")
		return memory.NewKVStore(), func() error { return nil }, nil

	case config.StorePostgres:
		db, err := sqldb.OpenPostgres(ctx, cfg.Database.ConnectionString())
		if err != nil {
			return nil, nil, err
		}
		log.Println("Link store: connected to PostgreSQL")
		return withSchema(ctx, db)

	case config.StoreSQLite:
		db, err := sqldb.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Link store: opened SQLite at %s", cfg.Store.SQLitePath)
		return withSchema(ctx, db)

	case config.StoreRedis:
		store, err := redis.Open(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Link store: connected to Redis at %s", cfg.Redis.Addr)
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func withSchema(ctx context.Context, db *sqldb.DB) (Store, func() error, error) {
	store := sqldb.NewKVStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db.Close, nil
}
