package outbound

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/timebox/internal/device"
	"github.com/taoyao-code/timebox/internal/metrics"
	"github.com/taoyao-code/timebox/internal/storage"
)

// Deliverer 下发任务的设备端
type Deliverer interface {
	Do(ctx context.Context, req device.Request) error
	Address() string
}

// WorkerOptions 可选依赖
type WorkerOptions struct {
	// Interval 队列为空时的轮询间隔
	Interval time.Duration
	History  storage.CommandLog
	Metrics  *metrics.AppMetrics
}

// Worker 单消费者：按优先级取任务交给设备，失败直接进入死信，不重试
type Worker struct {
	queue    Queue
	dev      Deliverer
	history  storage.CommandLog
	metrics  *metrics.AppMetrics
	logger   *zap.Logger
	interval time.Duration

	sent   atomic.Int64
	failed atomic.Int64
}

// NewWorker 创建 Worker
func NewWorker(q Queue, dev Deliverer, opts WorkerOptions, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Interval <= 0 {
		opts.Interval = 200 * time.Millisecond
	}
	return &Worker{
		queue:    q,
		dev:      dev,
		history:  opts.History,
		metrics:  opts.Metrics,
		logger:   logger,
		interval: opts.Interval,
	}
}

// Run 阻塞运行直到 ctx 取消
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("outbound worker started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbound worker stopped")
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain 处理到队列为空或 ctx 取消，返回处理的任务数
func (w *Worker) Drain(ctx context.Context) int {
	n := 0
	for ctx.Err() == nil {
		ok, err := w.ProcessOne(ctx)
		if err != nil {
			w.logger.Error("dequeue failed", zap.Error(err))
			break
		}
		if !ok {
			break
		}
		n++
	}
	w.updateDepth(ctx)
	return n
}

// ProcessOne 处理一个任务，队列为空时返回 false
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	job, err := w.queue.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	start := time.Now()
	sendErr := w.dev.Do(ctx, job.Request())
	elapsed := time.Since(start)

	rec := storage.CommandRecord{
		JobID:      job.ID,
		Kind:       job.Kind,
		Address:    w.dev.Address(),
		Frames:     len(job.Frames),
		Bytes:      job.Bytes(),
		Success:    sendErr == nil,
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  start,
	}

	if sendErr != nil {
		rec.Error = sendErr.Error()
		w.failed.Add(1)
		if err := w.queue.Fail(ctx, *job, sendErr.Error()); err != nil {
			w.logger.Error("mark failed error", zap.String("job_id", job.ID), zap.Error(err))
		}
		if w.metrics != nil {
			w.metrics.DeadJobsTotal.Inc()
		}
		w.logger.Warn("job moved to dead queue",
			zap.String("job_id", job.ID),
			zap.String("kind", job.Kind),
			zap.Error(sendErr))
	} else {
		w.sent.Add(1)
		if err := w.queue.Done(ctx, *job); err != nil {
			w.logger.Error("mark done error", zap.String("job_id", job.ID), zap.Error(err))
		}
		w.logger.Info("job delivered",
			zap.String("job_id", job.ID),
			zap.String("kind", job.Kind),
			zap.Int("frames", len(job.Frames)),
			zap.Duration("elapsed", elapsed))
	}

	if w.history != nil {
		if err := w.history.Record(ctx, rec); err != nil {
			w.logger.Warn("record command history failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	return true, nil
}

func (w *Worker) updateDepth(ctx context.Context) {
	if w.metrics == nil {
		return
	}
	st, err := w.queue.Stats(ctx)
	if err != nil {
		return
	}
	w.metrics.QueueDepth.Set(float64(st.Pending))
}

// WorkerStats Worker 统计
type WorkerStats struct {
	Sent   int64 `json:"sent"`
	Failed int64 `json:"failed"`
	Queue  Stats `json:"queue"`
}

// Stats 获取统计信息
func (w *Worker) Stats(ctx context.Context) WorkerStats {
	st, _ := w.queue.Stats(ctx)
	return WorkerStats{
		Sent:   w.sent.Load(),
		Failed: w.failed.Load(),
		Queue:  st,
	}
}
