package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/record-server/internal/config"
	"github.com/taoyao-code/record-server/internal/recordstore"
	"github.com/taoyao-code/record-server/internal/session"
)

func TestNewHTTPServer_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := recordstore.New()
	store.Add("12345", "Alice")
	sess := session.New(time.Minute)
	sess.OnOpen("1", "127.0.0.1:5000", time.Now())

	get := func(t *testing.T, cfg *cfgpkg.Config, path string) *httptest.ResponseRecorder {
		t.Helper()
		ready := NewReady()
		ready.SetStoreReady(true)
		ready.SetTCPReady(true)
		srv := NewHTTPServer(cfg, NewMetrics(cfg.Metrics), ready, NewHealthAggregator(store), store, sess, zap.NewNop())
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	enabled := &cfgpkg.Config{Metrics: cfgpkg.MetricsConfig{Enable: true, Path: "/metrics"}}

	t.Run("记录查询", func(t *testing.T) {
		w := get(t, enabled, "/api/records/Alice")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "12345")
	})

	t.Run("会话列表", func(t *testing.T) {
		w := get(t, enabled, "/api/sessions")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "127.0.0.1:5000")
	})

	t.Run("健康检查", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(t, enabled, "/health/ready").Code)
		assert.Equal(t, http.StatusOK, get(t, enabled, "/readyz").Code)
	})

	t.Run("指标启用", func(t *testing.T) {
		w := get(t, enabled, "/metrics")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "record_store_records")
	})

	t.Run("指标关闭时不挂载", func(t *testing.T) {
		disabled := &cfgpkg.Config{Metrics: cfgpkg.MetricsConfig{Enable: false, Path: "/metrics"}}
		assert.Equal(t, http.StatusNotFound, get(t, disabled, "/metrics").Code)
	})
}
