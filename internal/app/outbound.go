package app

import (
	"context"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/timebox/internal/config"
	"github.com/taoyao-code/timebox/internal/metrics"
	"github.com/taoyao-code/timebox/internal/outbound"
	"github.com/taoyao-code/timebox/internal/storage"
)

// StartWorker 启动下发 Worker 并返回取消函数
func StartWorker(q outbound.Queue, dev outbound.Deliverer, cfg cfgpkg.QueueConfig, history storage.CommandLog, appm *metrics.AppMetrics, logger *zap.Logger) (context.CancelFunc, *outbound.Worker) {
	wctx, wcancel := context.WithCancel(context.Background())
	w := outbound.NewWorker(q, dev, outbound.WorkerOptions{
		Interval: cfg.PollInterval,
		History:  history,
		Metrics:  appm,
	}, logger)
	go w.Run(wctx)
	return wcancel, w
}
