package transport

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/timebox/internal/protocol/timebox"
)

// ResponseBufferSize 单次读取响应的最大字节数
const ResponseBufferSize = 256

var (
	// ErrBadHello 连接后收到的问候报文不正确
	ErrBadHello = errors.New("unexpected hello from device")
	// ErrClosed 连接已关闭
	ErrClosed = errors.New("transport closed")
)

// readDeadliner 支持读超时的连接（socket、非阻塞 fd）
type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// Options 流参数
type Options struct {
	ReadTimeout time.Duration
	Throttle    *Throttle
}

// Transport 设备传输通道，假定可靠、有序、保持字节流
type Transport interface {
	Send(ctx context.Context, frame []byte) ([]byte, error)
	SendNoWait(ctx context.Context, frame []byte) error
	Close() error
}

var _ Transport = (*Stream)(nil)

// Stream 设备字节流：写入帧、读取响应。非并发安全，由上层串行化
type Stream struct {
	rw          io.ReadWriteCloser
	readTimeout time.Duration
	throttle    *Throttle
	logger      *zap.Logger
	buf         [ResponseBufferSize]byte
	closed      bool
}

// NewStream 包装任意 io.ReadWriteCloser
func NewStream(rw io.ReadWriteCloser, opts Options, logger *zap.Logger) *Stream {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stream{
		rw:          rw,
		readTimeout: opts.ReadTimeout,
		throttle:    opts.Throttle,
		logger:      logger,
	}
}

// Write 写入一段完整数据（一帧或原始字节）
func (s *Stream) Write(ctx context.Context, p []byte) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.throttle.Wait(ctx); err != nil {
		return fmt.Errorf("throttle: %w", err)
	}
	if ce := s.logger.Check(zap.DebugLevel, "->"); ce != nil {
		ce.Write(zap.String("hex", hex.EncodeToString(p)))
	}
	n, err := s.rw.Write(p)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if n != len(p) {
		return fmt.Errorf("write: %w", io.ErrShortWrite)
	}
	return nil
}

// Read 读取一次响应（最多 ResponseBufferSize 字节）
func (s *Stream) Read(ctx context.Context) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if d, ok := s.rw.(readDeadliner); ok {
		deadline := time.Time{}
		if s.readTimeout > 0 {
			deadline = time.Now().Add(s.readTimeout)
		}
		if ctxDeadline, ok := ctx.Deadline(); ok && (deadline.IsZero() || ctxDeadline.Before(deadline)) {
			deadline = ctxDeadline
		}
		if err := d.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}
		// 取消时立即让阻塞中的读返回
		stop := context.AfterFunc(ctx, func() { _ = d.SetReadDeadline(time.Unix(1, 0)) })
		defer stop()
	}

	n, err := s.rw.Read(s.buf[:])
	if n == 0 && err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("read: %w", err)
	}
	out := make([]byte, n)
	copy(out, s.buf[:n])
	if ce := s.logger.Check(zap.DebugLevel, "<-"); ce != nil {
		ce.Write(zap.String("hex", hex.EncodeToString(out)))
	}
	return out, nil
}

// Send 写入一帧并等待设备响应
func (s *Stream) Send(ctx context.Context, frame []byte) ([]byte, error) {
	if err := s.Write(ctx, frame); err != nil {
		return nil, err
	}
	return s.Read(ctx)
}

// SendNoWait 只写入，不读取响应
func (s *Stream) SendNoWait(ctx context.Context, frame []byte) error {
	return s.Write(ctx, frame)
}

// Close 关闭底层连接，可重复调用
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.rw.Close()
}

// ThrottleStats 写入节流统计
func (s *Stream) ThrottleStats() ThrottleStats {
	return s.throttle.Stats()
}

// ReadHello 读取并校验设备的问候报文
func ReadHello(ctx context.Context, s *Stream) error {
	var got []byte
	for len(got) < len(timebox.Hello) {
		b, err := s.Read(ctx)
		if err != nil {
			return fmt.Errorf("read hello: %w", err)
		}
		got = append(got, b...)
	}
	if !timebox.IsHello(got) {
		return fmt.Errorf("%w: %s", ErrBadHello, hex.EncodeToString(got))
	}
	return nil
}
