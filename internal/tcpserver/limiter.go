package tcpserver

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrConnectionLimit 并发连接数已满且等待超时
var ErrConnectionLimit = errors.New("connection limit exceeded")

// ConnectionLimiter 并发连接数限制（信号量）
type ConnectionLimiter struct {
	slots    chan struct{}
	wait     time.Duration
	active   atomic.Int64
	rejected atomic.Int64
}

// NewConnectionLimiter 创建连接限流器；wait 为获取许可的最长等待时间
func NewConnectionLimiter(max int, wait time.Duration) *ConnectionLimiter {
	if max <= 0 {
		max = 1024
	}
	if wait <= 0 {
		wait = time.Second
	}
	return &ConnectionLimiter{slots: make(chan struct{}, max), wait: wait}
}

// Acquire 获取一个连接许可，超时或 ctx 取消时返回 ErrConnectionLimit
func (l *ConnectionLimiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	default:
	}
	timer := time.NewTimer(l.wait)
	defer timer.Stop()
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}
	l.rejected.Add(1)
	return ErrConnectionLimit
}

// Release 归还许可
func (l *ConnectionLimiter) Release() {
	select {
	case <-l.slots:
		l.active.Add(-1)
	default:
	}
}

// MaxConnections 最大并发连接数
func (l *ConnectionLimiter) MaxConnections() int { return cap(l.slots) }

// Stats 统计信息
func (l *ConnectionLimiter) Stats() LimiterStats {
	active := int(l.active.Load())
	return LimiterStats{
		MaxConnections:    cap(l.slots),
		ActiveConnections: active,
		RejectedTotal:     l.rejected.Load(),
		Utilization:       float64(active) / float64(cap(l.slots)),
	}
}

// LimiterStats 连接限流器统计
type LimiterStats struct {
	MaxConnections    int     `json:"max_connections"`
	ActiveConnections int     `json:"active_connections"`
	RejectedTotal     int64   `json:"rejected_total"`
	Utilization       float64 `json:"utilization"`
}
