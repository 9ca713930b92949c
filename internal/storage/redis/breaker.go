package redis

import (
	"errors"
	"sync"
	"time"
)

// BreakerState 熔断器状态
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // 正常放行
	BreakerOpen                         // 熔断，直接拒绝
	BreakerHalfOpen                     // 放行一次试探
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	}
	return "unknown"
}

// ErrBreakerOpen Redis 熔断中
var ErrBreakerOpen = errors.New("redis circuit breaker is open")

// Breaker 保护 Redis 调用：连续失败 threshold 次后熔断 cooldown，之后放行一次试探
type Breaker struct {
	mu        sync.Mutex
	state     BreakerState
	failures  int
	openedAt  time.Time
	probing   bool
	trips     int64
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	onChange func(from, to BreakerState)
}

// NewBreaker threshold<=0 取 5，cooldown<=0 取 30s
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

// OnStateChange 状态变化回调（持锁外同步调用）
func (b *Breaker) OnStateChange(fn func(from, to BreakerState)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Call 在熔断保护下执行 fn
func (b *Breaker) Call(fn func() error) error {
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	b.after(err)
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	var from, to BreakerState
	changed := false
	defer func() {
		cb := b.onChange
		b.mu.Unlock()
		if changed && cb != nil {
			cb(from, to)
		}
	}()

	switch b.state {
	case BreakerClosed:
		return nil
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return ErrBreakerOpen
		}
		from, to, changed = b.state, BreakerHalfOpen, true
		b.state = BreakerHalfOpen
		b.probing = true
		return nil
	default:
		// 半开期间仅允许一个试探请求
		if b.probing {
			return ErrBreakerOpen
		}
		b.probing = true
		return nil
	}
}

func (b *Breaker) after(err error) {
	b.mu.Lock()
	from := b.state
	if err != nil {
		b.failures++
		if b.state == BreakerHalfOpen || b.failures >= b.threshold {
			if b.state != BreakerOpen {
				b.trips++
			}
			b.state = BreakerOpen
			b.openedAt = b.now()
		}
	} else {
		b.failures = 0
		b.state = BreakerClosed
	}
	b.probing = false
	to := b.state
	cb := b.onChange
	b.mu.Unlock()
	if from != to && cb != nil {
		cb(from, to)
	}
}

// State 当前状态
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Trips 累计熔断次数
func (b *Breaker) Trips() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.trips
}
