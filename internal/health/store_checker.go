package health

import (
	"context"
	"time"
)

// RecordCounter 记录存储的计数接口
type RecordCounter interface {
	Len() int
}

// StoreChecker 记录存储检查器：报告当前记录数
type StoreChecker struct {
	store RecordCounter
}

func NewStoreChecker(store RecordCounter) *StoreChecker {
	return &StoreChecker{store: store}
}

func (c *StoreChecker) Name() string { return "record_store" }

func (c *StoreChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	if c.store == nil {
		return CheckResult{Status: StatusUnhealthy, Message: "store not initialized", Latency: time.Since(start)}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]any{"records": c.store.Len()},
		Latency: time.Since(start),
	}
}
