package device

import (
	"context"
	"errors"
	"sync"
	"time"
)

// BreakerState 链路熔断状态
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // 正常发送
	BreakerOpen                         // 拒绝发送
	BreakerHalfOpen                     // 允许一次试探
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrLinkOpen 连续发送失败后熔断，暂不访问设备
var ErrLinkOpen = errors.New("device link breaker is open")

// Breaker 设备链路熔断器：连续失败达到阈值后在 timeout 内快速失败，
// 之后放行一次试探，成功即恢复
type Breaker struct {
	mu           sync.Mutex
	state        BreakerState
	failures     int
	lastFailTime time.Time
	tripCount    int64

	threshold int
	timeout   time.Duration
	now       func() time.Time

	onStateChange func(from, to BreakerState)
}

// NewBreaker 创建熔断器，threshold<=0 时返回 nil（不熔断）
func NewBreaker(threshold int, timeout time.Duration) *Breaker {
	if threshold <= 0 {
		return nil
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Breaker{
		threshold: threshold,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Call 在熔断器保护下执行 fn
func (b *Breaker) Call(fn func() error) error {
	if b == nil {
		return fn()
	}
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	b.after(err)
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.lastFailTime) < b.timeout {
			return ErrLinkOpen
		}
		b.transitionTo(BreakerHalfOpen)
		return nil
	case BreakerHalfOpen:
		// 试探进行中
		return ErrLinkOpen
	default:
		return nil
	}
}

func (b *Breaker) after(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		b.transitionTo(BreakerClosed)
		return
	}

	// 调用方取消不代表链路故障
	if errors.Is(err, context.Canceled) {
		if b.state == BreakerHalfOpen {
			b.transitionTo(BreakerOpen)
		}
		return
	}

	b.failures++
	b.lastFailTime = b.now()
	if b.state == BreakerHalfOpen || b.failures >= b.threshold {
		if b.state != BreakerOpen {
			b.tripCount++
		}
		b.transitionTo(BreakerOpen)
	}
}

func (b *Breaker) transitionTo(s BreakerState) {
	if b.state == s {
		return
	}
	from := b.state
	b.state = s
	if b.onStateChange != nil {
		go b.onStateChange(from, s)
	}
}

// State 当前状态
func (b *Breaker) State() BreakerState {
	if b == nil {
		return BreakerClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SetStateChangeCallback 状态变化回调（异步执行）
func (b *Breaker) SetStateChangeCallback(fn func(from, to BreakerState)) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStateChange = fn
}

// Reset 手动恢复
func (b *Breaker) Reset() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.transitionTo(BreakerClosed)
}

// Stats 获取统计信息
func (b *Breaker) Stats() BreakerStats {
	if b == nil {
		return BreakerStats{State: BreakerClosed.String()}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerStats{
		State:     b.state.String(),
		Failures:  b.failures,
		TripCount: b.tripCount,
	}
}

// BreakerStats 熔断器统计信息
type BreakerStats struct {
	State     string `json:"state"`
	Failures  int    `json:"failures"`
	TripCount int64  `json:"trip_count"`
}
