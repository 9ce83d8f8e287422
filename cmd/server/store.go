package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/small-engineer/go-web-serv/recipe/internal/config"
	"github.com/small-engineer/go-web-serv/recipe/internal/infra/db"
	"github.com/small-engineer/go-web-serv/recipe/internal/infra/mem"
	"github.com/small-engineer/go-web-serv/recipe/internal/infra/redis"
	"github.com/small-engineer/go-web-serv/recipe/internal/storage"
)

// openStore connects the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, err
		}
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(conn, db.SQLite); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return storage.WithPrefix(db.NewStore(conn, db.SQLite), cfg.StorePrefix), func() { conn.Close() }, nil

	case config.DriverMySQL:
		conn, err := db.OpenMySQL(cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(conn, db.MySQL); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return storage.WithPrefix(db.NewStore(conn, db.MySQL), cfg.StorePrefix), func() { conn.Close() }, nil

	case config.DriverRedis:
		rs, err := redis.Open(ctx, cfg.RedisURL, cfg.StorePrefix)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil

	default:
		return mem.NewStore(), func() {}, nil
	}
}
