package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/timebox/internal/config"
	"github.com/taoyao-code/timebox/internal/migrate"
	"github.com/taoyao-code/timebox/internal/storage"
	pgstorage "github.com/taoyao-code/timebox/internal/storage/pg"
)

// ConnectDBAndMigrate 建立数据库连接并执行内置迁移；DSN 为空时返回 nil
func ConnectDBAndMigrate(ctx context.Context, cfg cfgpkg.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		log.Info("database dsn empty, command history kept in memory")
		return nil, nil
	}
	dbpool, err := pgstorage.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error("db connect error", zap.Error(err))
		return nil, err
	}
	if err = (migrate.Runner{}).Up(ctx, dbpool); err != nil {
		log.Error("db migrate error", zap.Error(err))
		dbpool.Close()
		return nil, err
	}
	log.Info("db migrations applied")
	return dbpool, nil
}

// NewCommandLog 有数据库时写入 command_log 表，否则使用内存环形缓冲
func NewCommandLog(dbpool *pgxpool.Pool) storage.CommandLog {
	if dbpool == nil {
		return storage.NewMemoryCommandLog(0)
	}
	return &pgstorage.CommandLog{Pool: dbpool}
}
