package transport

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Throttle 基于 Token Bucket 的写入节流，nil 表示不限制
type Throttle struct {
	limiter *rate.Limiter
	perSec  int
	burst   int
	passed  atomic.Int64
	aborted atomic.Int64
}

// NewThrottle 创建写入节流器
// framesPerSec: 每秒允许写入的帧数，<=0 时返回 nil（不限制）
// burst: 突发容量，<=0 时为1
func NewThrottle(framesPerSec, burst int) *Throttle {
	if framesPerSec <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &Throttle{
		limiter: rate.NewLimiter(rate.Limit(framesPerSec), burst),
		perSec:  framesPerSec,
		burst:   burst,
	}
}

// Wait 等待下一个写入许可
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return ctx.Err()
	}
	if err := t.limiter.Wait(ctx); err != nil {
		t.aborted.Add(1)
		return err
	}
	t.passed.Add(1)
	return nil
}

// Stats 获取统计信息
func (t *Throttle) Stats() ThrottleStats {
	if t == nil {
		return ThrottleStats{}
	}
	return ThrottleStats{
		FramesPerSecond: t.perSec,
		Burst:           t.burst,
		PassedTotal:     t.passed.Load(),
		AbortedTotal:    t.aborted.Load(),
	}
}

// ThrottleStats 节流统计信息
type ThrottleStats struct {
	FramesPerSecond int   `json:"frames_per_second"`
	Burst           int   `json:"burst"`
	PassedTotal     int64 `json:"passed_total"`
	AbortedTotal    int64 `json:"aborted_total"`
}
