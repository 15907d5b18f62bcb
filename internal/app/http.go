package app

import (
	"net/http"

	cfgpkg "github.com/taoyao-code/timebox/internal/config"
	"github.com/taoyao-code/timebox/internal/httpserver"
)

// NewHTTPServer 根据配置创建 HTTP 服务器，metrics 未启用时不暴露指标路径
func NewHTTPServer(cfg cfgpkg.HTTPConfig, metricsCfg cfgpkg.MetricsConfig, metricsHandler http.Handler, readyFn func() bool) *httpserver.Server {
	if !metricsCfg.Enable {
		metricsHandler = nil
	}
	return httpserver.New(cfg, metricsCfg.Path, metricsHandler, readyFn)
}
