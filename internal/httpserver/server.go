package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"

	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/timebox/internal/config"
)

// Server HTTP 服务封装
type Server struct {
	engine *gin.Engine
	srv    *http.Server
}

// New 创建 Gin + HTTP Server，注册存活/就绪探针与指标路由
func New(cfg config.HTTPConfig, metricsPath string, metricsHandler http.Handler, readyFn func() bool) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/readyz", func(c *gin.Context) {
		if readyFn == nil || readyFn() {
			c.String(http.StatusOK, "ready")
			return
		}
		c.String(http.StatusServiceUnavailable, "not-ready")
	})
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	if metricsHandler != nil {
		r.GET(metricsPath, gin.WrapH(metricsHandler))
	}
	if cfg.Pprof.Enable {
		registerPprof(r, cfg.Pprof.Prefix)
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return &Server{engine: r, srv: srv}
}

// Register 追加业务路由
func (s *Server) Register(fn func(r *gin.Engine)) {
	fn(s.engine)
}

// Handler 供测试直接驱动
func (s *Server) Handler() http.Handler { return s.engine }

// Start 启动 HTTP 服务（阻塞），正常关闭时返回 nil
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func registerPprof(r *gin.Engine, prefix string) {
	if prefix == "" {
		prefix = "/debug/pprof"
	}
	g := r.Group(prefix)
	g.GET("/", gin.WrapF(pprof.Index))
	g.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	g.GET("/profile", gin.WrapF(pprof.Profile))
	g.GET("/symbol", gin.WrapF(pprof.Symbol))
	g.POST("/symbol", gin.WrapF(pprof.Symbol))
	g.GET("/trace", gin.WrapF(pprof.Trace))
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		g.GET("/"+name, gin.WrapH(pprof.Handler(name)))
	}
}
