package app

import (
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/timebox/internal/config"
	"github.com/taoyao-code/timebox/internal/device"
	"github.com/taoyao-code/timebox/internal/metrics"
	"github.com/taoyao-code/timebox/internal/transport"
)

// NewDeviceClient 创建按需拨号的设备客户端，带熔断与指标
func NewDeviceClient(cfg cfgpkg.DeviceConfig, appm *metrics.AppMetrics, logger *zap.Logger) (*device.Client, *transport.Redialer) {
	link := transport.NewRedialer(transport.Dialer(cfg, logger), cfg.Address, logger)
	client := device.NewClient(link, logger, device.Options{
		Address: cfg.Address,
		Breaker: device.NewBreaker(cfg.Breaker.Threshold, cfg.Breaker.Timeout),
		Metrics: appm,
	})
	return client, link
}
