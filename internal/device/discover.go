package device

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/taoyao-code/timebox/internal/transport"
)

// ErrNoDevice 候选地址中没有可用设备
var ErrNoDevice = errors.New("could not find a timebox")

// Discover 依次连接候选地址，返回第一个回应正确问候报文的设备。
// dial 需要自行校验问候报文（transport.Dialer 在 verifyHello 开启时会校验）
func Discover(ctx context.Context, candidates []string, dial transport.DialFunc, logger *zap.Logger) (string, *transport.Stream, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(candidates) == 0 {
		return "", nil, fmt.Errorf("%w: no candidates", ErrNoDevice)
	}

	var errs []error
	for _, addr := range candidates {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		logger.Info("checking device", zap.String("address", addr))
		s, err := dial(ctx, addr)
		if err != nil {
			logger.Debug("device not usable", zap.String("address", addr), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		return addr, s, nil
	}
	return "", nil, fmt.Errorf("%w: %w", ErrNoDevice, errors.Join(errs...))
}
