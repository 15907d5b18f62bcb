package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/timebox/internal/device"
	"github.com/taoyao-code/timebox/internal/outbound"
	"github.com/taoyao-code/timebox/internal/transport"
)

// mockChecker 模拟检查器
type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }

func (m *mockChecker) Check(_ context.Context) CheckResult {
	return CheckResult{Status: m.status, Message: "mock", Latency: time.Millisecond}
}

func TestAggregator(t *testing.T) {
	ctx := context.Background()

	t.Run("全部健康", func(t *testing.T) {
		agg := NewAggregator(&mockChecker{"device", StatusHealthy}, &mockChecker{"queue", StatusHealthy})
		assert.Equal(t, StatusHealthy, agg.OverallStatus(ctx))
		assert.True(t, agg.Ready(ctx))
	})

	t.Run("部分降级仍就绪", func(t *testing.T) {
		agg := NewAggregator(&mockChecker{"device", StatusDegraded}, &mockChecker{"queue", StatusHealthy})
		assert.Equal(t, StatusDegraded, agg.OverallStatus(ctx))
		assert.True(t, agg.Ready(ctx))
	})

	t.Run("部分不健康", func(t *testing.T) {
		agg := NewAggregator(&mockChecker{"device", StatusDegraded}, &mockChecker{"queue", StatusUnhealthy})
		assert.Equal(t, StatusUnhealthy, agg.OverallStatus(ctx))
		assert.False(t, agg.Ready(ctx))
	})

	t.Run("动态添加检查器", func(t *testing.T) {
		agg := NewAggregator(&mockChecker{"initial", StatusHealthy})
		agg.AddChecker(&mockChecker{"added", StatusHealthy})
		report := agg.Report(ctx)
		assert.Len(t, report.Checks, 2)
		assert.Equal(t, StatusHealthy, report.Status)
		assert.False(t, report.Timestamp.IsZero())
	})

	t.Run("没有检查器视为健康", func(t *testing.T) {
		assert.Equal(t, StatusHealthy, NewAggregator().OverallStatus(ctx))
	})
}

func TestReadiness(t *testing.T) {
	r := New()
	assert.False(t, r.Ready())
	r.SetStoreReady(true)
	assert.False(t, r.Ready())
	r.SetQueueReady(true)
	assert.True(t, r.Ready())
}

type fakeLink struct {
	stats device.BreakerStats
}

func (f fakeLink) Address() string                   { return "AA:BB:CC:DD:EE:FF" }
func (f fakeLink) BreakerStats() device.BreakerStats { return f.stats }

type fakeThrottle struct{}

func (fakeThrottle) ThrottleStats() transport.ThrottleStats {
	return transport.ThrottleStats{PassedTotal: 12, AbortedTotal: 1}
}

func TestDeviceChecker(t *testing.T) {
	ctx := context.Background()

	t.Run("链路正常", func(t *testing.T) {
		c := NewDeviceChecker(fakeLink{stats: device.BreakerStats{State: "closed"}}, fakeThrottle{})
		res := c.Check(ctx)
		assert.Equal(t, "device", c.Name())
		assert.Equal(t, StatusHealthy, res.Status)
		assert.Equal(t, "AA:BB:CC:DD:EE:FF", res.Details["address"])
		assert.Equal(t, int64(12), res.Details["throttle_passed"])
	})

	t.Run("熔断打开时降级", func(t *testing.T) {
		c := NewDeviceChecker(fakeLink{stats: device.BreakerStats{State: "open", Failures: 5, TripCount: 1}}, nil)
		res := c.Check(ctx)
		assert.Equal(t, StatusDegraded, res.Status)
		assert.Equal(t, 5, res.Details["failures"])
		assert.NotContains(t, res.Details, "throttle_passed")
	})
}

type brokenQueue struct{ outbound.Queue }

func (brokenQueue) Stats(context.Context) (outbound.Stats, error) {
	return outbound.Stats{}, errors.New("connection refused")
}

type fakeWorker struct{ sent, failed int64 }

func (f fakeWorker) Stats(context.Context) outbound.WorkerStats {
	return outbound.WorkerStats{Sent: f.sent, Failed: f.failed}
}

func TestQueueChecker(t *testing.T) {
	ctx := context.Background()

	t.Run("积压比例", func(t *testing.T) {
		q := outbound.NewMemoryQueue(0)
		c := NewQueueChecker(q, 10)
		assert.Equal(t, StatusHealthy, c.Check(ctx).Status)

		for i := 0; i < 9; i++ {
			require.NoError(t, q.Enqueue(ctx, outbound.Job{ID: string(rune('a' + i))}))
		}
		assert.Equal(t, StatusDegraded, c.Check(ctx).Status)

		require.NoError(t, q.Enqueue(ctx, outbound.Job{ID: "z"}))
		res := c.Check(ctx)
		assert.Equal(t, StatusUnhealthy, res.Status)
		assert.Equal(t, int64(10), res.Details["pending"])
	})

	t.Run("附带 Worker 计数", func(t *testing.T) {
		c := NewQueueChecker(outbound.NewMemoryQueue(0), 0).WithWorker(fakeWorker{sent: 7, failed: 2})
		res := c.Check(ctx)
		assert.Equal(t, StatusHealthy, res.Status)
		assert.Equal(t, int64(7), res.Details["sent"])
		assert.Equal(t, int64(2), res.Details["failed"])
	})

	t.Run("统计失败", func(t *testing.T) {
		res := NewQueueChecker(brokenQueue{}, 0).Check(ctx)
		assert.Equal(t, StatusUnhealthy, res.Status)
		assert.Contains(t, res.Message, "connection refused")
	})
}

func TestHTTPRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("降级返回 200", func(t *testing.T) {
		r := gin.New()
		RegisterHTTPRoutes(r, NewAggregator(&mockChecker{"device", StatusDegraded}))

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var report HealthReport
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
		assert.Equal(t, StatusDegraded, report.Status)
		assert.Contains(t, report.Checks, "device")
	})

	t.Run("不健康返回 503", func(t *testing.T) {
		r := gin.New()
		RegisterHTTPRoutes(r, NewAggregator(&mockChecker{"queue", StatusUnhealthy}))

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

		rr = httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
