package health

import (
	"context"
	"fmt"
	"time"

	redisstorage "github.com/taoyao-code/timebox/internal/storage/redis"
)

// 共享队列往返超过该值视为降级
const redisSlowRTT = 100 * time.Millisecond

// RedisChecker 共享下发队列检查：连通性与队列键类型
type RedisChecker struct {
	client *redisstorage.Client
}

func NewRedisChecker(client *redisstorage.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	if err := c.client.HealthCheck(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
			Latency: time.Since(start),
		}
	}
	rtt := time.Since(start)

	// 其他程序误写同名键会导致 ZPOPMIN 永久失败
	if err := redisstorage.CheckQueueKeys(ctx, c.client); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: err.Error(),
			Latency: time.Since(start),
		}
	}

	status := StatusHealthy
	message := "ok"
	if rtt > redisSlowRTT {
		status = StatusDegraded
		message = "slow round trip"
	}

	pool := c.client.PoolStats()
	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"rtt_ms":     rtt.Milliseconds(),
			"conns":      pool.TotalConns,
			"idle_conns": pool.IdleConns,
			"timeouts":   pool.Timeouts,
		},
		Latency: time.Since(start),
	}
}
