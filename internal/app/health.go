package app

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taoyao-code/timebox/internal/health"
	"github.com/taoyao-code/timebox/internal/outbound"
	redisstorage "github.com/taoyao-code/timebox/internal/storage/redis"
)

// NewHealthAggregator 设备与队列检查总是存在，redis/数据库按是否启用添加。worker 可为 nil
func NewHealthAggregator(link health.LinkReporter, throttle health.ThrottleReporter, q outbound.Queue, capacity int, worker *outbound.Worker, redisClient *redisstorage.Client, dbpool *pgxpool.Pool) *health.Aggregator {
	queueChecker := health.NewQueueChecker(q, capacity)
	if worker != nil {
		queueChecker.WithWorker(worker)
	}
	agg := health.NewAggregator(
		health.NewDeviceChecker(link, throttle),
		queueChecker,
	)
	if redisClient != nil {
		agg.AddChecker(health.NewRedisChecker(redisClient))
	}
	if dbpool != nil {
		agg.AddChecker(health.NewDatabaseChecker(dbpool))
	}
	return agg
}
