package health

import "sync/atomic"

// Readiness 启动阶段就绪标记（记录存储、TCP 网关）
type Readiness struct {
	storeReady atomic.Bool
	tcpReady   atomic.Bool
}

func New() *Readiness { return &Readiness{} }

func (r *Readiness) SetStoreReady(v bool) { r.storeReady.Store(v) }
func (r *Readiness) SetTCPReady(v bool)   { r.tcpReady.Store(v) }

// Ready 总体就绪：各子系统均为 true
func (r *Readiness) Ready() bool {
	return r.storeReady.Load() && r.tcpReady.Load()
}
