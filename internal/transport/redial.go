package transport

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

var _ Transport = (*Redialer)(nil)

// Redialer 首次发送时才建立连接，发送失败后丢弃连接，下次发送重新拨号。
// 守护进程启动时设备可以不在线
type Redialer struct {
	mu      sync.Mutex
	dial    DialFunc
	address string
	stream  *Stream
	stats   ThrottleStats
	logger  *zap.Logger
}

// NewRedialer address 为空时使用 dial 的默认地址
func NewRedialer(dial DialFunc, address string, logger *zap.Logger) *Redialer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redialer{dial: dial, address: address, logger: logger}
}

func (r *Redialer) conn(ctx context.Context) (*Stream, error) {
	if r.stream != nil {
		return r.stream, nil
	}
	s, err := r.dial(ctx, r.address)
	if err != nil {
		return nil, err
	}
	r.logger.Info("device link established", zap.String("address", r.address))
	r.stream = s
	return s, nil
}

// drop 关闭出错的连接，保留节流统计
func (r *Redialer) drop(err error) {
	if r.stream == nil {
		return
	}
	r.stats = r.stream.ThrottleStats()
	_ = r.stream.Close()
	r.stream = nil
	r.logger.Warn("device link dropped", zap.String("address", r.address), zap.Error(err))
}

func (r *Redialer) Send(ctx context.Context, frame []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.Send(ctx, frame)
	if err != nil {
		r.drop(err)
	}
	return resp, err
}

func (r *Redialer) SendNoWait(ctx context.Context, frame []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := s.SendNoWait(ctx, frame); err != nil {
		r.drop(err)
		return err
	}
	return nil
}

// Connected 当前是否持有连接
func (r *Redialer) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream != nil
}

// ThrottleStats 当前连接的节流统计，未连接时返回上一次连接的统计
func (r *Redialer) ThrottleStats() ThrottleStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream != nil {
		return r.stream.ThrottleStats()
	}
	return r.stats
}

func (r *Redialer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream == nil {
		return nil
	}
	err := r.stream.Close()
	r.stream = nil
	return err
}
