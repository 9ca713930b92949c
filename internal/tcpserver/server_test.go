package tcpserver

import (
	"bufio"
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/record-server/internal/config"
)

func startEcho(t *testing.T, cfg cfgpkg.TCPConfig, opts ...func(*Server)) (*Server, chan string) {
	t.Helper()
	cfg.Addr = "127.0.0.1:0"
	s := New(cfg, zap.NewNop())
	for _, opt := range opts {
		opt(s)
	}
	reasons := make(chan string, 8)
	s.SetConnHandler(func(cc *ConnContext) {
		cc.SetOnRead(func(b []byte) error { return cc.Write(b) })
		cc.SetOnClose(func(reason string) { reasons <- reason })
	})
	require.NoError(t, s.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, reasons
}

func TestServer_EchoAndClose(t *testing.T) {
	var accepted, received atomic.Int64
	s, reasons := startEcho(t, cfgpkg.TCPConfig{WriteTimeout: time.Second}, func(s *Server) {
		s.SetMetricsCallbacks(func() { accepted.Add(1) }, func(n int) { received.Add(int64(n)) })
	})

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)

	_, err = conn.Write([]byte("ping\n"))
	require.NoError(t, err)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "ping\n", line)
	assert.Equal(t, int64(1), accepted.Load())
	assert.Equal(t, int64(5), received.Load())
	assert.Equal(t, 1, s.ActiveConnections())

	require.NoError(t, conn.Close())
	select {
	case r := <-reasons:
		assert.Equal(t, CloseEOF, r)
	case <-time.After(2 * time.Second):
		t.Fatal("连接未关闭")
	}
	assert.Eventually(t, func() bool { return s.ActiveConnections() == 0 }, time.Second, 10*time.Millisecond)
}

func TestServer_IdleTimeout(t *testing.T) {
	s, reasons := startEcho(t, cfgpkg.TCPConfig{ReadTimeout: 50 * time.Millisecond})

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	select {
	case r := <-reasons:
		assert.Equal(t, CloseIdle, r)
	case <-time.After(2 * time.Second):
		t.Fatal("空闲连接未被关闭")
	}
}

func TestServer_ConnectionLimit(t *testing.T) {
	rejected := make(chan string, 1)
	s, _ := startEcho(t, cfgpkg.TCPConfig{MaxConnections: 1, AcquireTimeout: 20 * time.Millisecond}, func(s *Server) {
		s.SetRejectCallback(func(reason string) { rejected <- reason })
	})

	first, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer first.Close()
	assert.Eventually(t, func() bool { return s.ActiveConnections() == 1 }, time.Second, 10*time.Millisecond)

	second, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer second.Close()

	select {
	case r := <-rejected:
		assert.Equal(t, RejectLimit, r)
	case <-time.After(2 * time.Second):
		t.Fatal("第二个连接应被拒绝")
	}
	require.NotNil(t, s.GetLimiterStats())
	assert.Equal(t, int64(1), s.GetLimiterStats().RejectedTotal)
}

func TestServer_ShutdownClosesConnections(t *testing.T) {
	cfg := cfgpkg.TCPConfig{Addr: "127.0.0.1:0"}
	s := New(cfg, nil)
	reasons := make(chan string, 1)
	s.SetConnHandler(func(cc *ConnContext) {
		cc.SetOnClose(func(reason string) { reasons <- reason })
	})
	require.NoError(t, s.Start())

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	assert.Eventually(t, func() bool { return s.ActiveConnections() == 1 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.Equal(t, CloseShutdown, <-reasons)
}

func TestServer_AddrConcurrentWithStart(t *testing.T) {
	s := New(cfgpkg.TCPConfig{Addr: "127.0.0.1:0"}, zap.NewNop())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	seen := make(chan string, 1)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if a := s.Addr(); a != nil {
					select {
					case seen <- a.String():
					default:
					}
				}
			}
		}()
	}

	require.NoError(t, s.Start())
	select {
	case addr := <-seen:
		assert.Equal(t, s.Addr().String(), addr)
	case <-time.After(2 * time.Second):
		t.Fatal("监听地址不可见")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	close(stop)
	wg.Wait()
}
