package model

import (
	"context"
	"fmt"
)

const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type StoreConfig struct {
	Kind          string
	Dir           string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	PostgresDSN   string
}

// OpenStore builds the store selected by cfg.Kind. The returned close function
// releases its connections.
func OpenStore(ctx context.Context, cfg StoreConfig) (BlobStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Kind {
	case "", StoreFile:
		return NewFileStore(cfg.Dir), noop, nil
	case StoreSQLite:
		s, err := OpenSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case StoreRedis:
		s, err := DialRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case StorePostgres:
		s, err := OpenPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown store %q", cfg.Kind)
}
