package app

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/record-server/internal/config"
	"github.com/taoyao-code/record-server/internal/metrics"
	"github.com/taoyao-code/record-server/internal/session"
)

// DefaultGaugeRefreshInterval 记录数/在线数指标的默认刷新周期
const DefaultGaugeRefreshInterval = 15 * time.Second

// Metrics 指标注册表、业务指标与暴露处理器
type Metrics struct {
	Registry *prometheus.Registry
	App      *metrics.AppMetrics
	// Handler 指标未启用时为 nil，HTTP 服务不挂载指标路由
	Handler http.Handler
}

// NewMetrics 初始化注册表与应用指标
func NewMetrics(cfg cfgpkg.MetricsConfig) *Metrics {
	reg := metrics.NewRegistry()
	m := &Metrics{Registry: reg, App: metrics.NewAppMetrics(reg)}
	if cfg.Enable {
		m.Handler = metrics.Handler(reg)
	}
	return m
}

// RecordCounter 记录表计数
type RecordCounter interface {
	Len() int
}

// StartGaugeRefresher 周期刷新记录数与在线数指标，ctx 结束时退出。
// 会话登记表过期清理不经过连接回调，在线数依赖此处校正。
func StartGaugeRefresher(ctx context.Context, appm *metrics.AppMetrics, store RecordCounter, sess session.SessionManager, interval time.Duration, log *zap.Logger) {
	if appm == nil {
		return
	}
	if interval <= 0 {
		interval = DefaultGaugeRefreshInterval
	}
	refresh := func() {
		if store != nil {
			appm.RecordsGauge.Set(float64(store.Len()))
		}
		if sess != nil {
			appm.OnlineGauge.Set(float64(sess.OnlineCount(time.Now())))
		}
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		refresh()
		for {
			select {
			case <-ctx.Done():
				log.Debug("gauge refresher stopped")
				return
			case <-ticker.C:
				refresh()
			}
		}
	}()
}
