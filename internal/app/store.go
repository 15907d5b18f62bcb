package app

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/timebox/internal/config"
	"github.com/taoyao-code/timebox/internal/storage"
	boltstorage "github.com/taoyao-code/timebox/internal/storage/bolt"
	"github.com/taoyao-code/timebox/internal/storage/gormrepo"
)

// OpenKnownDevices 按 knownDevices.backend 打开已知设备存储。
// postgres 后端复用 database.dsn
func OpenKnownDevices(cfg cfgpkg.KnownDevicesConfig, db cfgpkg.DatabaseConfig, logger *zap.Logger) (storage.KnownDeviceStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "bolt":
		s, err := boltstorage.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open known devices %s: %w", cfg.Path, err)
		}
		logger.Info("known devices store opened", zap.String("backend", "bolt"), zap.String("path", cfg.Path))
		return s, nil
	case "postgres":
		if db.DSN == "" {
			return nil, fmt.Errorf("known devices backend postgres requires database.dsn")
		}
		gdb, err := gormrepo.Open(db.DSN)
		if err != nil {
			return nil, err
		}
		logger.Info("known devices store opened", zap.String("backend", "postgres"))
		return gormrepo.New(gdb), nil
	case "none", "memory":
		logger.Info("known devices kept in memory")
		return storage.NewMemoryKnownDevices(), nil
	default:
		return nil, fmt.Errorf("unknown known devices backend %q", cfg.Backend)
	}
}
