package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/record-server/internal/tcpserver"
)

type fakeConnStats struct {
	active, max int
}

func (f fakeConnStats) ActiveConnections() int { return f.active }
func (f fakeConnStats) MaxConnections() int    { return f.max }
func (f fakeConnStats) GetLimiterStats() *tcpserver.LimiterStats {
	if f.max == 0 {
		return nil
	}
	return &tcpserver.LimiterStats{MaxConnections: f.max, ActiveConnections: f.active, RejectedTotal: 3}
}
func (f fakeConnStats) GetRateLimiterStats() *tcpserver.RateLimiterStats { return nil }

type fakeCounter int

func (f fakeCounter) Len() int { return int(f) }

func TestTCPChecker(t *testing.T) {
	cases := []struct {
		name   string
		stats  fakeConnStats
		status Status
	}{
		{"未启用限流", fakeConnStats{active: 5}, StatusHealthy},
		{"占用正常", fakeConnStats{active: 5, max: 100}, StatusHealthy},
		{"占用偏高", fakeConnStats{active: 85, max: 100}, StatusDegraded},
		{"接近耗尽", fakeConnStats{active: 99, max: 100}, StatusUnhealthy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := NewTCPChecker(tc.stats).Check(context.Background())
			assert.Equal(t, tc.status, res.Status)
			assert.Equal(t, tc.stats.active, res.Details["active_connections"])
		})
	}
}

func TestStoreChecker(t *testing.T) {
	res := NewStoreChecker(fakeCounter(3)).Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, 3, res.Details["records"])

	res = NewStoreChecker(nil).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
}

func TestHTTPRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	do := func(agg *Aggregator, path string) *httptest.ResponseRecorder {
		r := gin.New()
		RegisterHTTPRoutes(r, agg)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("健康报告", func(t *testing.T) {
		w := do(NewAggregator(NewStoreChecker(fakeCounter(2))), "/health")
		require.Equal(t, http.StatusOK, w.Code)
		var report HealthReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, StatusHealthy, report.Status)
		assert.Contains(t, report.Checks, "record_store")
	})

	t.Run("不健康返回503", func(t *testing.T) {
		agg := NewAggregator(&mockChecker{"tcp", StatusUnhealthy})
		assert.Equal(t, http.StatusServiceUnavailable, do(agg, "/health").Code)
		assert.Equal(t, http.StatusServiceUnavailable, do(agg, "/health/ready").Code)
		assert.Equal(t, http.StatusOK, do(agg, "/health/live").Code)
	})

	t.Run("降级仍就绪", func(t *testing.T) {
		agg := NewAggregator(&mockChecker{"redis", StatusDegraded})
		w := do(agg, "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","ready":true}`, w.Body.String())
	})
}
