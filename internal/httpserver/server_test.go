package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/taoyao-code/timebox/internal/config"
	appmetrics "github.com/taoyao-code/timebox/internal/metrics"
)

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestHealthzReadyzMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.HTTPConfig{Addr: ":0", ReadTimeout: time.Second, WriteTimeout: time.Second}
	reg := appmetrics.NewRegistry()
	srv := New(cfg, "/metrics", appmetrics.Handler(reg), func() bool { return true })

	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/readyz").Code)

	rr := serve(srv, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")

	// 未开启 pprof
	assert.Equal(t, http.StatusNotFound, serve(srv, http.MethodGet, "/debug/pprof/").Code)
}

func TestReadyzNotReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.HTTPConfig{Addr: ":0"}
	srv := New(cfg, "", nil, func() bool { return false })

	assert.Equal(t, http.StatusServiceUnavailable, serve(srv, http.MethodGet, "/readyz").Code)
	assert.Equal(t, http.StatusNotFound, serve(srv, http.MethodGet, "/metrics").Code)
}

func TestRegisterAndPprof(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.HTTPConfig{Addr: ":0", Pprof: config.HTTPPprof{Enable: true, Prefix: "/debug/pprof"}}
	srv := New(cfg, "", nil, nil)
	srv.Register(func(r *gin.Engine) {
		r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	})

	rr := serve(srv, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())

	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/debug/pprof/cmdline").Code)
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, "/readyz").Code)
}
