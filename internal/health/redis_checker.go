package health

import (
	"context"
	"fmt"
	"time"

	redisstorage "github.com/taoyao-code/record-server/internal/storage/redis"
)

// RedisChecker Redis健康检查器（会话登记使用）
type RedisChecker struct {
	client *redisstorage.Client
}

// NewRedisChecker 创建Redis健康检查器
func NewRedisChecker(client *redisstorage.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Name 返回检查器名称
func (c *RedisChecker) Name() string {
	return "redis"
}

// Check 执行健康检查；Redis 仅承载会话视图，不可用时整体降级而非不健康
func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	if err := c.client.HealthCheck(ctx); err != nil {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("ping failed: %v", err),
			Latency: time.Since(start),
		}
	}

	stats := c.client.Stats()
	utilization := 0.0
	if stats.TotalConns > 0 {
		utilization = float64(stats.TotalConns-stats.IdleConns) / float64(stats.TotalConns)
	}

	status := StatusHealthy
	message := "ok"
	if utilization > 0.9 {
		status = StatusDegraded
		message = "connection pool near limit"
	}
	breaker := c.client.Breaker().State()
	if breaker != redisstorage.BreakerClosed {
		status = StatusDegraded
		message = "circuit breaker " + breaker.String()
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]any{
			"total_conns":   stats.TotalConns,
			"idle_conns":    stats.IdleConns,
			"hits":          stats.Hits,
			"misses":        stats.Misses,
			"timeouts":      stats.Timeouts,
			"utilization":   fmt.Sprintf("%.1f%%", utilization*100),
			"breaker_state": breaker.String(),
			"breaker_trips": c.client.Breaker().Trips(),
		},
		Latency: time.Since(start),
	}
}
