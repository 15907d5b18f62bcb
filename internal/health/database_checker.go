package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taoyao-code/timebox/internal/migrate"
)

// DatabaseChecker 下发历史库检查：连通性与迁移版本
type DatabaseChecker struct {
	pool   *pgxpool.Pool
	latest int64
}

// NewDatabaseChecker 以内置迁移脚本的最高版本作为期望版本
func NewDatabaseChecker(pool *pgxpool.Pool) *DatabaseChecker {
	latest, _ := migrate.Latest(migrate.Embedded())
	return &DatabaseChecker{pool: pool, latest: latest}
}

func (c *DatabaseChecker) Name() string { return "database" }

func (c *DatabaseChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	var applied int64
	err := c.pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&applied)
	if err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("query failed: %v", err),
			Latency: time.Since(start),
		}
	}

	status := StatusHealthy
	message := "ok"
	if applied < c.latest {
		// 历史写入可能因缺表失败，下发本身不受影响
		status = StatusDegraded
		message = fmt.Sprintf("schema at version %d, want %d", applied, c.latest)
	}

	stats := c.pool.Stat()
	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"schema_version": applied,
			"acquired_conns": stats.AcquiredConns(),
			"max_conns":      stats.MaxConns(),
		},
		Latency: time.Since(start),
	}
}
