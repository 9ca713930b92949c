package app

import (
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/record-server/internal/config"
	"github.com/taoyao-code/record-server/internal/metrics"
	"github.com/taoyao-code/record-server/internal/tcpserver"
)

// NewTCPServer 根据配置创建 TCP 网关并挂上连接指标
func NewTCPServer(cfg cfgpkg.TCPConfig, appm *metrics.AppMetrics, logger *zap.Logger) *tcpserver.Server {
	srv := tcpserver.New(cfg, logger)
	if appm != nil {
		srv.SetMetricsCallbacks(
			func() { appm.TCPAccepted.Inc() },
			func(n int) { appm.TCPBytesReceived.Add(float64(n)) },
		)
		srv.SetRejectCallback(func(reason string) { appm.TCPRejected.WithLabelValues(reason).Inc() })
	}
	return srv
}
