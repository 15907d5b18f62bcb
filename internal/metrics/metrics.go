package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	FramesSent        *prometheus.CounterVec // labels: mode=command|image|animation|raw
	BytesSent         prometheus.Counter
	ResponsesReceived prometheus.Counter
	SendErrors        prometheus.Counter
	CommandsTotal     *prometheus.CounterVec // labels: kind, result=ok|error
	QueueDepth        prometheus.Gauge
	DeadJobsTotal     prometheus.Counter
	LinkOpen          prometheus.Gauge // 熔断打开时为1
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	m := &AppMetrics{
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timebox_frames_sent_total",
			Help: "Frames written to the device by send mode.",
		}, []string{"mode"}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timebox_bytes_sent_total",
			Help: "Total bytes written to the device.",
		}),
		ResponsesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timebox_responses_total",
			Help: "Responses read from the device.",
		}),
		SendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timebox_send_errors_total",
			Help: "Transport errors while sending or awaiting a response.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timebox_commands_total",
			Help: "Delivered commands by kind and result.",
		}, []string{"kind", "result"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timebox_queue_depth",
			Help: "Jobs waiting in the outbound queue.",
		}),
		DeadJobsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timebox_dead_jobs_total",
			Help: "Jobs moved to the dead list after a failed delivery.",
		}),
		LinkOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timebox_link_breaker_open",
			Help: "1 while the device link breaker rejects sends.",
		}),
	}
	reg.MustRegister(m.FramesSent, m.BytesSent, m.ResponsesReceived, m.SendErrors, m.CommandsTotal, m.QueueDepth, m.DeadJobsTotal, m.LinkOpen)
	return m
}

// ObserveCommand 记录一次命令下发结果
func (m *AppMetrics) ObserveCommand(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CommandsTotal.WithLabelValues(kind, result).Inc()
}
