package app

import (
	"github.com/gin-gonic/gin"

	"github.com/taoyao-code/record-server/internal/health"
)

// NewReady 创建启动阶段就绪标记
func NewReady() *health.Readiness { return health.New() }

// NewHealthAggregator 创建健康检查聚合器，初始只包含记录存储检查器
func NewHealthAggregator(store health.RecordCounter) *health.Aggregator {
	return health.NewAggregator(health.NewStoreChecker(store))
}

// RegisterHealthRoutes 注册健康检查HTTP路由
func RegisterHealthRoutes(r *gin.Engine, aggregator *health.Aggregator) {
	health.RegisterHTTPRoutes(r, aggregator)
}

// AddTCPChecker 添加TCP检查器到聚合器
func AddTCPChecker(aggregator *health.Aggregator, tcpServer health.ConnStats) {
	aggregator.AddChecker(health.NewTCPChecker(tcpServer))
}
