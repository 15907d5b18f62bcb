package device

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/timebox/internal/metrics"
	"github.com/taoyao-code/timebox/internal/protocol/timebox"
	"github.com/taoyao-code/timebox/internal/transport"
)

// Options 客户端可选项
type Options struct {
	Address string
	Breaker *Breaker
	Metrics *metrics.AppMetrics
}

// Client 设备客户端：串行化对传输通道的访问，避免不同命令的帧交错
type Client struct {
	mu      sync.Mutex
	tr      transport.Transport
	breaker *Breaker
	metrics *metrics.AppMetrics
	logger  *zap.Logger
	address string
	// 响应可能跨多次读取，未完成的部分留在解码器中
	decoder *timebox.StreamDecoder
}

// NewClient 创建客户端
func NewClient(tr transport.Transport, logger *zap.Logger, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		tr:      tr,
		breaker: opts.Breaker,
		metrics: opts.Metrics,
		logger:  logger,
		address: opts.Address,
		decoder: timebox.NewStreamDecoder(),
	}
	if c.metrics != nil {
		opts.Breaker.SetStateChangeCallback(func(from, to BreakerState) {
			open := 0.0
			if to != BreakerClosed {
				open = 1
			}
			c.metrics.LinkOpen.Set(open)
			logger.Warn("device link breaker state changed",
				zap.String("from", from.String()), zap.String("to", to.String()))
		})
	}
	return c
}

// Address 设备地址（未知时为空）
func (c *Client) Address() string { return c.address }

// BreakerStats 链路熔断统计
func (c *Client) BreakerStats() BreakerStats { return c.breaker.Stats() }

// Deliver 按顺序下发帧：除最后一帧外都不等待响应，最后一帧等待设备响应。
// 任一帧失败即中止，不重发
func (c *Client) Deliver(ctx context.Context, mode string, frames [][]byte) error {
	if len(frames) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.breaker.Call(func() error {
		for i, f := range frames {
			var err error
			if i == len(frames)-1 {
				var resp []byte
				if resp, err = c.tr.Send(ctx, f); err == nil {
					c.decodeResponse(resp)
					if c.metrics != nil {
						c.metrics.ResponsesReceived.Inc()
					}
				}
			} else {
				err = c.tr.SendNoWait(ctx, f)
			}
			if err != nil {
				if c.metrics != nil {
					c.metrics.SendErrors.Inc()
				}
				return fmt.Errorf("deliver frame %d/%d: %w", i+1, len(frames), err)
			}
			if c.metrics != nil {
				c.metrics.FramesSent.WithLabelValues(mode).Inc()
				c.metrics.BytesSent.Add(float64(len(f)))
			}
		}
		return nil
	})
}

// 响应帧头部只有两字节长度字段
const responseHeaderLen = 2

// decodeResponse 切分并校验设备响应，返回校验通过的帧
func (c *Client) decodeResponse(resp []byte) []timebox.Command {
	var out []timebox.Command
	for _, raw := range c.decoder.Feed(resp) {
		f, err := timebox.Parse(raw, responseHeaderLen)
		if err != nil {
			c.logger.Debug("invalid device response", zap.String("raw", hex.EncodeToString(raw)), zap.Error(err))
			continue
		}
		cmd := f.Command()
		declared, _ := timebox.DeclaredLength(cmd.Header)
		c.logger.Debug("device response",
			zap.Int("declared_len", declared),
			zap.Int("body_len", len(cmd.Header)+len(cmd.Payload)),
			zap.String("payload", hex.EncodeToString(cmd.Payload)))
		out = append(out, cmd)
	}
	if n := c.decoder.Buffered(); n > 0 {
		c.logger.Debug("partial device response buffered", zap.Int("bytes", n))
	}
	return out
}

// Do 下发一次已编码的操作并记录结果
func (c *Client) Do(ctx context.Context, req Request) error {
	start := time.Now()
	err := c.Deliver(ctx, req.Mode(), req.Frames)
	if c.metrics != nil {
		c.metrics.ObserveCommand(req.Kind, err)
	}
	if err != nil {
		c.logger.Warn("command failed", zap.String("kind", req.Kind), zap.Int("frames", len(req.Frames)), zap.Error(err))
		return err
	}
	c.logger.Debug("command delivered",
		zap.String("kind", req.Kind),
		zap.Int("frames", len(req.Frames)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// SwitchView 切换视图
func (c *Client) SwitchView(ctx context.Context, v timebox.ViewType) error {
	return c.Do(ctx, ViewRequest(v))
}

// ShowClock 显示时钟；color 为 nil 时只切换视图
func (c *Client) ShowClock(ctx context.Context, color *timebox.RGB, h24 bool) error {
	return c.Do(ctx, ClockRequest(color, h24))
}

// ShowTemperature 显示温度；color 为 nil 时只切换视图
func (c *Client) ShowTemperature(ctx context.Context, color *timebox.RGB, fahrenheit bool) error {
	return c.Do(ctx, TempRequest(color, fahrenheit))
}

// SetTemperatureUnit 设置温度单位
func (c *Client) SetTemperatureUnit(ctx context.Context, fahrenheit bool) error {
	return c.Do(ctx, TempUnitRequest(fahrenheit))
}

// SetVolume 设置音量，超出范围时不发送
func (c *Client) SetVolume(ctx context.Context, level int) error {
	req, err := VolumeRequest(level)
	if err != nil {
		return err
	}
	return c.Do(ctx, req)
}

// SetClock 设置设备时钟
func (c *Client) SetClock(ctx context.Context, t time.Time) error {
	return c.Do(ctx, SetClockRequest(t))
}

// FMRadio 打开或关闭 FM 收音机
func (c *Client) FMRadio(ctx context.Context, on bool) error {
	return c.Do(ctx, RadioRequest(on))
}

// SendRaw 发送原始字节
func (c *Client) SendRaw(ctx context.Context, data []byte, mask, frame bool) error {
	return c.Do(ctx, RawRequest(data, mask, frame))
}

// ShowImage 显示静态图片
func (c *Client) ShowImage(ctx context.Context, p timebox.PixelFrame) error {
	return c.Do(ctx, ImageRequest(p))
}

// PlayAnimation 播放动画
func (c *Client) PlayAnimation(ctx context.Context, frames []timebox.PixelFrame, delay byte) error {
	req, err := AnimationRequest(frames, delay)
	if err != nil {
		return err
	}
	return c.Do(ctx, req)
}

// Close 关闭传输通道
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tr.Close()
}
