package recordcmd

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Options 引擎缓冲区容量配置
type Options struct {
	CommandCapacity  int // 命令缓冲区容量 C
	ResponseCapacity int // 响应缓冲区容量，<=0 时取 2*C
}

// Hooks 可选指标回调
type Hooks struct {
	OnDispatch     func(v Verb, err error) // err 非空表示响应被截断
	OnDiscard      func(reason error)      // ErrMalformedCommand | ErrUnterminatedOnOverflow
	OnBackpressure func()                  // 因存在未读响应拒绝写入
}

// Stats 引擎状态快照
type Stats struct {
	BufferedBytes int   `json:"buffered_bytes"`
	PendingBytes  int   `json:"pending_bytes"`
	Overflowed    bool  `json:"overflowed"`
	Dispatched    int64 `json:"dispatched"`
	Malformed     int64 `json:"malformed"`
	Unterminated  int64 `json:"unterminated"`
	Rejected      int64 `json:"rejected"`
}

// Engine 记录命令会话：命令缓冲 -> 解析 -> 路由 -> 响应缓冲
//
// 并发约定：同一 Engine 的全部缓冲区与分发操作由 mu 串行化，
// 多个调用方共享一个 Engine 时等价于单一全局设备；需要隔离时为每个调用方创建独立 Engine，
// 记录表由其自身的锁保护。
type Engine struct {
	mu     sync.Mutex
	cmd    *CommandBuffer
	resp   *ResponseBuffer
	table  *Table
	logger *zap.Logger
	hooks  Hooks
	stats  Stats
}

// NewEngine 创建引擎并注册记录命令处理器
func NewEngine(store RecordStore, opts Options) *Engine {
	t := NewTable()
	RegisterRecordHandlers(t, store)
	return NewEngineWithTable(t, opts)
}

// NewEngineWithTable 使用自定义路由表创建引擎
func NewEngineWithTable(t *Table, opts Options) *Engine {
	if opts.CommandCapacity <= 0 {
		opts.CommandCapacity = DefaultCommandCapacity
	}
	if opts.ResponseCapacity <= 0 {
		opts.ResponseCapacity = 2 * opts.CommandCapacity
	}
	return &Engine{
		cmd:    NewCommandBuffer(opts.CommandCapacity),
		resp:   NewResponseBuffer(opts.ResponseCapacity),
		table:  t,
		logger: zap.NewNop(),
	}
}

// SetLogger 设置日志器
func (e *Engine) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	e.mu.Lock()
	e.logger = l
	e.mu.Unlock()
}

// SetHooks 设置指标回调
func (e *Engine) SetHooks(h Hooks) {
	e.mu.Lock()
	e.hooks = h
	e.mu.Unlock()
}

// Write 写入命令字节流
// 存在未读响应时不接收任何字节，返回 (0, ErrResponsePending)；否则全部接收。
// 每当命令缓冲区写满，先强制解析一次再继续接收。
func (e *Engine) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.resp.Pending() {
		e.stats.Rejected++
		if e.hooks.OnBackpressure != nil {
			e.hooks.OnBackpressure()
		}
		return 0, ErrResponsePending
	}
	for _, c := range p {
		if e.cmd.Append(c) {
			e.step()
		}
	}
	return len(p), nil
}

// Read 读取响应字节流
// 命令缓冲区非空且响应缓冲区为空时持续解析分发（add/remove 命中不产生输出），
// 直到产生输出、命令耗尽或只剩半包；随后读出至多 len(p) 字节。无响应时返回 (0, nil)。
func (e *Engine) Read(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for e.cmd.Len() > 0 && !e.resp.Pending() {
		if e.step() == OutcomePartial {
			break
		}
	}
	return e.resp.Drain(p), nil
}

// Stats 返回状态快照
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.stats
	s.BufferedBytes = e.cmd.Len()
	s.PendingBytes = e.resp.Len()
	s.Overflowed = e.resp.Overflowed()
	return s
}

// step 执行一次解析尝试（调用方持有 mu）
func (e *Engine) step() Outcome {
	cmd, outcome := Parse(e.cmd)
	switch outcome {
	case OutcomeDispatch:
		e.stats.Dispatched++
		err := e.table.Route(&cmd, e.resp)
		if err != nil {
			if errors.Is(err, ErrBufferOverflow) {
				e.logger.Warn("response truncated",
					zap.String("verb", cmd.Verb.String()),
					zap.Int("capacity", e.resp.Cap()),
				)
			} else {
				e.logger.Error("record command handler error",
					zap.String("verb", cmd.Verb.String()),
					zap.Error(err),
				)
			}
		}
		if e.hooks.OnDispatch != nil {
			e.hooks.OnDispatch(cmd.Verb, err)
		}
	case OutcomeMalformed, OutcomeUnterminated:
		if outcome == OutcomeMalformed {
			e.stats.Malformed++
		} else {
			e.stats.Unterminated++
		}
		e.logger.Debug("record command discarded",
			zap.String("outcome", outcome.String()),
			zap.Int("buffered", e.cmd.Len()),
		)
		if e.hooks.OnDiscard != nil {
			e.hooks.OnDiscard(outcome.Err())
		}
	}
	return outcome
}
