package health

import (
	"context"
	"fmt"
	"time"

	"github.com/taoyao-code/record-server/internal/tcpserver"
)

// ConnStats TCP 网关连接统计来源
type ConnStats interface {
	ActiveConnections() int
	MaxConnections() int
	GetLimiterStats() *tcpserver.LimiterStats
	GetRateLimiterStats() *tcpserver.RateLimiterStats
}

// TCPChecker TCP网关健康检查器
type TCPChecker struct {
	server ConnStats
}

// NewTCPChecker 创建TCP健康检查器
func NewTCPChecker(server ConnStats) *TCPChecker {
	return &TCPChecker{server: server}
}

// Name 返回检查器名称
func (c *TCPChecker) Name() string {
	return "tcp"
}

// Check 按连接占用率判断：>80% 降级，>95% 不健康
func (c *TCPChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	active := c.server.ActiveConnections()
	maxConns := c.server.MaxConnections()
	details := map[string]any{"active_connections": active}
	if rs := c.server.GetRateLimiterStats(); rs != nil {
		details["accept_rejected_total"] = rs.RejectedTotal
	}

	if maxConns == 0 {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "no limiting enabled",
			Details: details,
			Latency: time.Since(start),
		}
	}

	utilization := float64(active) / float64(maxConns)
	status := StatusHealthy
	message := "ok"
	if utilization > 0.8 {
		status = StatusDegraded
		message = "high connection usage"
	}
	if utilization > 0.95 {
		status = StatusUnhealthy
		message = "connection limit near exhausted"
	}

	details["max_connections"] = maxConns
	details["utilization"] = fmt.Sprintf("%.1f%%", utilization*100)
	if ls := c.server.GetLimiterStats(); ls != nil {
		details["rejected_total"] = ls.RejectedTotal
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: details,
		Latency: time.Since(start),
	}
}
