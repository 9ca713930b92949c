package tcpserver

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

// RateLimiter 新连接接入速率限制（令牌桶）
type RateLimiter struct {
	bucket   *rate.Limiter
	perSec   int
	burst    int
	allowed  atomic.Int64
	rejected atomic.Int64
}

// NewRateLimiter perSec 为稳定接入速率，burst<=0 时取 2*perSec
func NewRateLimiter(perSec, burst int) *RateLimiter {
	if perSec <= 0 {
		perSec = 100
	}
	if burst <= 0 {
		burst = perSec * 2
	}
	return &RateLimiter{
		bucket: rate.NewLimiter(rate.Limit(perSec), burst),
		perSec: perSec,
		burst:  burst,
	}
}

// Allow 非阻塞判断当前连接能否接入
func (l *RateLimiter) Allow() bool {
	if l.bucket.Allow() {
		l.allowed.Add(1)
		return true
	}
	l.rejected.Add(1)
	return false
}

// Stats 统计信息
func (l *RateLimiter) Stats() RateLimiterStats {
	return RateLimiterStats{
		RatePerSecond: l.perSec,
		Burst:         l.burst,
		AllowedTotal:  l.allowed.Load(),
		RejectedTotal: l.rejected.Load(),
	}
}

// RateLimiterStats 速率限流器统计
type RateLimiterStats struct {
	RatePerSecond int   `json:"rate_per_second"`
	Burst         int   `json:"burst"`
	AllowedTotal  int64 `json:"allowed_total"`
	RejectedTotal int64 `json:"rejected_total"`
}
