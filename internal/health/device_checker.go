package health

import (
	"context"
	"time"

	"github.com/taoyao-code/timebox/internal/device"
	"github.com/taoyao-code/timebox/internal/transport"
)

// LinkReporter 设备链路状态来源（device.Client）
type LinkReporter interface {
	Address() string
	BreakerStats() device.BreakerStats
}

// ThrottleReporter 写入节流统计来源（transport.Stream）
type ThrottleReporter interface {
	ThrottleStats() transport.ThrottleStats
}

// DeviceChecker 设备链路检查：熔断打开时降级，任务仍可入队
type DeviceChecker struct {
	link     LinkReporter
	throttle ThrottleReporter
}

// NewDeviceChecker throttle 可为 nil
func NewDeviceChecker(link LinkReporter, throttle ThrottleReporter) *DeviceChecker {
	return &DeviceChecker{link: link, throttle: throttle}
}

func (c *DeviceChecker) Name() string { return "device" }

func (c *DeviceChecker) Check(_ context.Context) CheckResult {
	start := time.Now()
	stats := c.link.BreakerStats()

	status := StatusHealthy
	message := "ok"
	switch stats.State {
	case device.BreakerOpen.String():
		status = StatusDegraded
		message = "device link breaker open"
	case device.BreakerHalfOpen.String():
		status = StatusDegraded
		message = "device link probing"
	}

	details := map[string]interface{}{
		"address":       c.link.Address(),
		"breaker_state": stats.State,
		"failures":      stats.Failures,
		"trip_count":    stats.TripCount,
	}
	if c.throttle != nil {
		ts := c.throttle.ThrottleStats()
		details["throttle_passed"] = ts.PassedTotal
		details["throttle_aborted"] = ts.AbortedTotal
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: details,
		Latency: time.Since(start),
	}
}
