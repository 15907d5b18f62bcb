package health

import (
	"context"
	"fmt"
	"time"

	"github.com/taoyao-code/timebox/internal/outbound"
)

// WorkerReporter 下发 Worker 统计来源（outbound.Worker）
type WorkerReporter interface {
	Stats(ctx context.Context) outbound.WorkerStats
}

// QueueChecker 下发队列积压检查
type QueueChecker struct {
	queue    outbound.Queue
	capacity int
	worker   WorkerReporter
}

// NewQueueChecker capacity<=0 时只报告统计
func NewQueueChecker(q outbound.Queue, capacity int) *QueueChecker {
	return &QueueChecker{queue: q, capacity: capacity}
}

// WithWorker 在结果中附带 Worker 的成功/失败计数
func (c *QueueChecker) WithWorker(w WorkerReporter) *QueueChecker {
	c.worker = w
	return c
}

func (c *QueueChecker) Name() string { return "queue" }

func (c *QueueChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	st, err := c.queue.Stats(ctx)
	if err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("stats failed: %v", err),
			Latency: time.Since(start),
		}
	}

	details := map[string]interface{}{
		"pending":    st.Pending,
		"processing": st.Processing,
		"dead":       st.Dead,
	}
	if c.worker != nil {
		ws := c.worker.Stats(ctx)
		details["sent"] = ws.Sent
		details["failed"] = ws.Failed
	}
	status := StatusHealthy
	message := "ok"
	if c.capacity > 0 {
		utilization := float64(st.Pending) / float64(c.capacity)
		details["utilization"] = fmt.Sprintf("%.1f%%", utilization*100)
		if utilization > 0.8 {
			status = StatusDegraded
			message = "queue backlog high"
		}
		if st.Pending >= int64(c.capacity) {
			status = StatusUnhealthy
			message = "queue full"
		}
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: details,
		Latency: time.Since(start),
	}
}
