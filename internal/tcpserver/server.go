package tcpserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/record-server/internal/config"
)

// 连接被拒绝的原因（指标标签）
const (
	RejectLimit = "limit"
	RejectRate  = "rate"
)

// Server TCP 网关：接受连接、限流，并为每个连接创建 ConnContext 交给 connHandler
type Server struct {
	cfg    cfgpkg.TCPConfig
	logger *zap.Logger

	ln       net.Listener
	wg       sync.WaitGroup
	stopC    chan struct{}
	stopOnce sync.Once

	nextConnID  uint64
	limiter     *ConnectionLimiter
	rateLimiter *RateLimiter

	// connsMu 同时保护 ln 与 conns
	connsMu sync.Mutex
	conns   map[uint64]*ConnContext

	connHandler func(*ConnContext)
	// 可选指标回调
	onAccept    func()
	onRecvBytes func(n int)
	onReject    func(reason string)
}

// New 创建 TCP 网关
func New(cfg cfgpkg.TCPConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		stopC:  make(chan struct{}),
		conns:  make(map[uint64]*ConnContext),
	}
	if cfg.MaxConnections > 0 {
		s.limiter = NewConnectionLimiter(cfg.MaxConnections, cfg.AcquireTimeout)
	}
	if cfg.AcceptRate > 0 {
		s.rateLimiter = NewRateLimiter(cfg.AcceptRate, cfg.AcceptBurst)
	}
	return s
}

// SetConnHandler 设置连接处理器（在连接读循环启动前调用，用于安装 onRead）
func (s *Server) SetConnHandler(h func(*ConnContext)) { s.connHandler = h }

// SetMetricsCallbacks 设置指标回调
func (s *Server) SetMetricsCallbacks(onAccept func(), onRecvBytes func(int)) {
	s.onAccept, s.onRecvBytes = onAccept, onRecvBytes
}

// SetRejectCallback 设置连接被拒绝回调
func (s *Server) SetRejectCallback(fn func(reason string)) { s.onReject = fn }

// GetLogger 返回日志器
func (s *Server) GetLogger() *zap.Logger { return s.logger }

// Addr 返回实际监听地址（Start 之后有效）
func (s *Server) Addr() net.Addr {
	ln := s.listener()
	if ln == nil {
		return nil
	}
	return ln.Addr()
}

func (s *Server) listener() net.Listener {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	return s.ln
}

// Start 监听并接受连接（非阻塞，内部 goroutine）
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.connsMu.Lock()
	s.ln = ln
	s.connsMu.Unlock()

	s.wg.Add(1)
	go s.acceptLoop(ln)
	return nil
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.stopC:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			// 短暂错误等待后重试
			s.logger.Warn("tcp accept error", zap.Error(err))
			time.Sleep(50 * time.Millisecond)
			continue
		}

		if s.rateLimiter != nil && !s.rateLimiter.Allow() {
			s.reject(conn, RejectRate)
			continue
		}

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()

	if s.limiter != nil {
		if err := s.limiter.Acquire(context.Background()); err != nil {
			s.reject(conn, RejectLimit)
			return
		}
		defer s.limiter.Release()
	}
	if s.onAccept != nil {
		s.onAccept()
	}

	cc := newConnContext(s, conn)
	s.track(cc)
	defer s.untrack(cc)
	select {
	case <-s.stopC:
		// Shutdown 已开始，快照之后登记的连接直接关闭
		cc.closeWithReason(CloseShutdown)
	default:
	}

	if s.connHandler != nil {
		s.connHandler(cc)
	}
	cc.run()
}

func (s *Server) reject(conn net.Conn, reason string) {
	s.logger.Warn("tcp connection rejected",
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.String("reason", reason),
	)
	if s.onReject != nil {
		s.onReject(reason)
	}
	_ = conn.Close()
}

func (s *Server) track(cc *ConnContext) {
	s.connsMu.Lock()
	s.conns[cc.id] = cc
	s.connsMu.Unlock()
}

func (s *Server) untrack(cc *ConnContext) {
	s.connsMu.Lock()
	delete(s.conns, cc.id)
	s.connsMu.Unlock()
}

// ActiveConnections 当前活跃连接数
func (s *Server) ActiveConnections() int {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	return len(s.conns)
}

// MaxConnections 最大连接数（0 表示未启用限流）
func (s *Server) MaxConnections() int {
	if s.limiter == nil {
		return 0
	}
	return s.limiter.MaxConnections()
}

// GetLimiterStats 连接限流器统计（未启用时为 nil）
func (s *Server) GetLimiterStats() *LimiterStats {
	if s.limiter == nil {
		return nil
	}
	st := s.limiter.Stats()
	return &st
}

// GetRateLimiterStats 速率限流器统计（未启用时为 nil）
func (s *Server) GetRateLimiterStats() *RateLimiterStats {
	if s.rateLimiter == nil {
		return nil
	}
	st := s.rateLimiter.Stats()
	return &st
}

// Shutdown 关闭监听与全部连接，并等待连接 goroutine 退出
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopC) })

	s.connsMu.Lock()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	for _, cc := range s.conns {
		cc.closeWithReason(CloseShutdown)
	}
	s.connsMu.Unlock()

	ch := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(ch)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

func (s *Server) nextID() uint64 { return atomic.AddUint64(&s.nextConnID, 1) }
