package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/timebox/internal/config"
)

var (
	// ErrUnknownTransport 未知的传输类型
	ErrUnknownTransport = errors.New("unknown transport")
	// ErrNoAddress 未配置设备地址
	ErrNoAddress = errors.New("no device address")
)

// DialFunc 按地址建立到设备的流，地址为空时使用配置中的地址
type DialFunc func(ctx context.Context, address string) (*Stream, error)

// Dial 按配置建立连接；启用 verifyHello 时校验问候报文
func Dial(ctx context.Context, cfg cfgpkg.DeviceConfig, logger *zap.Logger) (*Stream, error) {
	return Dialer(cfg, logger)(ctx, "")
}

// Dialer 返回绑定了配置的 DialFunc
func Dialer(cfg cfgpkg.DeviceConfig, logger *zap.Logger) DialFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	throttle := NewThrottle(cfg.MaxFramesPerSecond, cfg.FrameBurst)

	return func(ctx context.Context, address string) (*Stream, error) {
		if address == "" {
			address = cfg.Address
		}

		dialCtx := ctx
		if cfg.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
			defer cancel()
		}

		var (
			rw     io.ReadWriteCloser
			err    error
			target string
		)
		switch strings.ToLower(cfg.Transport) {
		case "", "rfcomm":
			if address == "" {
				return nil, ErrNoAddress
			}
			target = address
			rw, err = DialRFCOMM(dialCtx, address, cfg.Channel)
		case "serial":
			target = cfg.SerialPort
			rw, err = OpenSerial(cfg.SerialPort, cfg.Baud, cfg.ReadTimeout)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Transport)
		}
		if err != nil {
			return nil, err
		}

		s := NewStream(rw, Options{ReadTimeout: cfg.ReadTimeout, Throttle: throttle}, logger.With(zap.String("device", target)))
		if cfg.VerifyHello {
			if err := ReadHello(dialCtx, s); err != nil {
				_ = s.Close()
				return nil, err
			}
		}
		logger.Debug("device connected", zap.String("transport", cfg.Transport), zap.String("target", target))
		return s, nil
	}
}
