package tcpserver

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// 连接关闭原因
const (
	CloseEOF      = "eof"
	CloseIdle     = "idle"
	CloseError    = "error"
	CloseShutdown = "shutdown"
	CloseHandler  = "handler"
)

var (
	ErrConnClosed        = errors.New("connection closed")
	ErrWriteQueueTimeout = errors.New("write queue timeout")
)

// ConnContext 为每个 TCP 连接提供读/写循环与回调能力
type ConnContext struct {
	s      *Server
	c      net.Conn
	id     uint64
	writeC chan []byte

	closed    atomic.Bool
	closeC    chan struct{}
	closeOnce sync.Once
	reason    atomic.Value // string
	doneC     chan struct{}

	onRead  func([]byte) error
	onClose func(reason string)
}

func newConnContext(s *Server, c net.Conn) *ConnContext {
	cc := &ConnContext{
		s:      s,
		c:      c,
		id:     s.nextID(),
		writeC: make(chan []byte, 128),
		closeC: make(chan struct{}),
		doneC:  make(chan struct{}),
	}
	cc.reason.Store("")
	return cc
}

// ID 返回连接ID（单进程唯一递增）
func (cc *ConnContext) ID() uint64 { return cc.id }

// RemoteAddr 返回远端地址
func (cc *ConnContext) RemoteAddr() net.Addr { return cc.c.RemoteAddr() }

// Server 返回所属网关
func (cc *ConnContext) Server() *Server { return cc.s }

// SetOnRead 安装读取回调（收到上行原始字节时触发）；返回错误将关闭连接
func (cc *ConnContext) SetOnRead(h func([]byte) error) { cc.onRead = h }

// SetOnClose 安装关闭回调（连接彻底结束后触发一次）
func (cc *ConnContext) SetOnClose(h func(reason string)) { cc.onClose = h }

// Write 异步写入，受写队列与写超时影响
func (cc *ConnContext) Write(b []byte) error {
	if cc.closed.Load() {
		return ErrConnClosed
	}
	// 复制一份，避免调用方复用底层切片
	dup := make([]byte, len(b))
	copy(dup, b)
	to := cc.s.cfg.WriteTimeout
	if to <= 0 {
		to = 5 * time.Second
	}
	timer := time.NewTimer(to)
	defer timer.Stop()
	select {
	case cc.writeC <- dup:
		return nil
	case <-cc.closeC:
		return ErrConnClosed
	case <-timer.C:
		return ErrWriteQueueTimeout
	}
}

// Close 立即关闭连接
func (cc *ConnContext) Close() error {
	cc.closeWithReason(CloseHandler)
	return nil
}

// CloseReason 返回关闭原因（未关闭时为空）
func (cc *ConnContext) CloseReason() string {
	s, _ := cc.reason.Load().(string)
	return s
}

// Done 返回连接关闭通知通道
func (cc *ConnContext) Done() <-chan struct{} { return cc.doneC }

// closeWithReason 强制关闭：停止写循环并中断阻塞的读
func (cc *ConnContext) closeWithReason(reason string) {
	cc.markClosed(reason)
	_ = cc.c.Close()
}

func (cc *ConnContext) markClosed(reason string) {
	cc.closeOnce.Do(func() {
		cc.reason.Store(reason)
		cc.closed.Store(true)
		close(cc.closeC)
	})
}

// run 启动读/写循环，阻塞直至连接结束
func (cc *ConnContext) run() {
	doneW := make(chan struct{})
	go cc.writeLoop(doneW)

	reason := cc.readLoop()

	// 读结束后写循环会先送出队列中剩余的响应
	cc.markClosed(reason)
	<-doneW
	_ = cc.c.Close()
	close(cc.doneC)
	if cc.onClose != nil {
		cc.onClose(cc.CloseReason())
	}
}

func (cc *ConnContext) readLoop() string {
	size := cc.s.cfg.ReadBufferSize
	if size <= 0 {
		size = 4096
	}
	buf := make([]byte, size)
	for {
		if cc.s.cfg.ReadTimeout > 0 {
			_ = cc.c.SetReadDeadline(time.Now().Add(cc.s.cfg.ReadTimeout))
		}
		n, err := cc.c.Read(buf)
		if n > 0 {
			if cc.s.onRecvBytes != nil {
				cc.s.onRecvBytes(n)
			}
			if cc.onRead != nil {
				if herr := cc.onRead(buf[:n]); herr != nil {
					return CloseHandler
				}
			}
		}
		if err != nil {
			if cc.closed.Load() {
				return cc.CloseReason()
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return CloseIdle
			}
			if errors.Is(err, io.EOF) {
				return CloseEOF
			}
			return CloseError
		}
	}
}

func (cc *ConnContext) writeLoop(doneW chan struct{}) {
	defer close(doneW)
	for {
		select {
		case msg := <-cc.writeC:
			if !cc.send(msg) {
				return
			}
		case <-cc.closeC:
			// 送出已排队的数据后退出
			for {
				select {
				case msg := <-cc.writeC:
					if !cc.send(msg) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (cc *ConnContext) send(msg []byte) bool {
	if cc.s.cfg.WriteTimeout > 0 {
		_ = cc.c.SetWriteDeadline(time.Now().Add(cc.s.cfg.WriteTimeout))
	}
	_, err := cc.c.Write(msg)
	return err == nil
}
