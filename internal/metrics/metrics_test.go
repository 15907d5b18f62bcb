package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewAppMetrics(reg)

	m.FramesSent.WithLabelValues("image").Inc()
	m.BytesSent.Add(190)
	m.ObserveCommand("view", nil)
	m.ObserveCommand("view", errors.New("boom"))
	m.ObserveCommand("view", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FramesSent.WithLabelValues("image")))
	assert.Equal(t, 190.0, testutil.ToFloat64(m.BytesSent))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("view", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("view", "error")))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "timebox_bytes_sent_total 190")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
