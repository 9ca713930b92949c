package app

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/record-server/internal/api"
	cfgpkg "github.com/taoyao-code/record-server/internal/config"
	"github.com/taoyao-code/record-server/internal/health"
	"github.com/taoyao-code/record-server/internal/httpserver"
	"github.com/taoyao-code/record-server/internal/session"
)

// NewHTTPServer 创建 HTTP 服务器并挂载记录查询、会话与健康检查路由
func NewHTTPServer(
	cfg *cfgpkg.Config,
	m *Metrics,
	ready *health.Readiness,
	agg *health.Aggregator,
	store api.RecordReader,
	sess session.SessionManager,
	log *zap.Logger,
) *httpserver.Server {
	srv := httpserver.New(cfg.HTTP, cfg.Metrics.Path, m.Handler, ready.Ready)
	srv.UseLogger(log)
	srv.Register(func(r *gin.Engine) {
		api.RegisterReadOnlyRoutes(r, store, sess, log)
		RegisterHealthRoutes(r, agg)
	})
	return srv
}
