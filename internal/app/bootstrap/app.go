package bootstrap

import (
	"context"
	"errors"
	"net"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taoyao-code/record-server/internal/app"
	cfgpkg "github.com/taoyao-code/record-server/internal/config"
	"github.com/taoyao-code/record-server/internal/gateway"
	"github.com/taoyao-code/record-server/internal/health"
	"github.com/taoyao-code/record-server/internal/httpserver"
	"github.com/taoyao-code/record-server/internal/protocol/recordcmd"
	"github.com/taoyao-code/record-server/internal/recordstore"
	"github.com/taoyao-code/record-server/internal/session"
	redisstorage "github.com/taoyao-code/record-server/internal/storage/redis"
	"github.com/taoyao-code/record-server/internal/tcpserver"
)

// Server 组装完成的服务实例
type Server struct {
	cfg   *cfgpkg.Config
	log   *zap.Logger
	store *recordstore.Store
	ready *health.Readiness
	agg   *health.Aggregator

	httpSrv     *httpserver.Server
	tcpSrv      *tcpserver.Server
	redisClient *redisstorage.Client
	sess        session.SessionManager
	httpErrC    chan error
	stopGauges  context.CancelFunc
}

// Run 统一启动流程，阻塞直到收到 SIGINT/SIGTERM
func Run(cfg *cfgpkg.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunContext(ctx, cfg, log)
}

// RunContext 启动全部服务，ctx 结束或 HTTP 服务异常时优雅关闭
func RunContext(ctx context.Context, cfg *cfgpkg.Config, log *zap.Logger) error {
	s, err := Start(cfg, log)
	if err != nil {
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("received shutdown signal, gracefully shutting down...")
	case runErr = <-s.httpErrC:
		log.Error("http server error", zap.Error(runErr))
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Join(runErr, s.Shutdown(sctx))
}

// Start 按阶段启动：指标 -> 记录表 -> HTTP -> Redis/会话登记 -> TCP
// 任一阶段失败时回收已启动的部分
func Start(cfg *cfgpkg.Config, log *zap.Logger) (s *Server, err error) {
	log.Info("starting record server", zap.String("env", cfg.App.Env))
	s = &Server{cfg: cfg, log: log, ready: app.NewReady(), httpErrC: make(chan error, 1)}
	defer func() {
		if err != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.Shutdown(sctx)
			s = nil
		}
	}()

	// ========== 阶段1: 指标 ==========
	m := app.NewMetrics(cfg.Metrics)
	appm := m.App

	// ========== 阶段2: 记录表 ==========
	s.store = recordstore.New()
	s.ready.SetStoreReady(true)
	s.agg = app.NewHealthAggregator(s.store)
	log.Info("record store ready",
		zap.Int("command_capacity", cfg.Record.CommandCapacity),
		zap.Int("response_capacity", cfg.Record.EffectiveResponseCapacity()),
		zap.String("session_mode", cfg.Record.SessionMode))

	// ========== 阶段3: Redis 与会话登记 ==========
	s.redisClient, err = app.NewRedisClient(cfg.Redis, log)
	if err != nil {
		log.Error("redis initialization failed", zap.Error(err))
		return s, err
	}
	app.AddRedisChecker(s.agg, s.redisClient)
	s.sess = app.NewSessionManager(cfg.Session, s.redisClient, app.GenerateServerID(), log)

	// ========== 阶段4: HTTP（非阻塞）==========
	s.httpSrv = app.NewHTTPServer(cfg, m, s.ready, s.agg, s.store, s.sess, log)
	if err = s.httpSrv.Listen(); err != nil {
		log.Error("http listen failed", zap.Error(err))
		s.httpSrv = nil
		return s, err
	}
	go func() {
		if e := s.httpSrv.Start(); e != nil {
			s.httpErrC <- e
		}
	}()
	log.Info("http server started", zap.String("addr", s.httpSrv.Addr().String()))

	// ========== 阶段5: 最后启动 TCP（依赖均已就绪）==========
	var shared *recordcmd.Engine
	if cfg.Record.SessionMode == cfgpkg.SessionModeShared {
		shared = recordcmd.NewEngine(s.store, recordcmd.Options{
			CommandCapacity:  cfg.Record.CommandCapacity,
			ResponseCapacity: cfg.Record.EffectiveResponseCapacity(),
		})
		shared.SetLogger(log.Named("shared"))
		shared.SetHooks(gateway.MetricsHooks(appm))
	}
	s.tcpSrv = app.NewTCPServer(cfg.TCP, appm, log)
	s.tcpSrv.SetConnHandler(gateway.NewConnHandler(cfg.Record, s.store, shared, s.sess, appm, log))
	if err = s.tcpSrv.Start(); err != nil {
		log.Error("tcp server start failed", zap.Error(err))
		s.tcpSrv = nil
		return s, err
	}
	s.ready.SetTCPReady(true)
	app.AddTCPChecker(s.agg, s.tcpSrv)

	gctx, stopGauges := context.WithCancel(context.Background())
	s.stopGauges = stopGauges
	app.StartGaugeRefresher(gctx, appm, s.store, s.sess, app.DefaultGaugeRefreshInterval, log)
	log.Info("tcp server started", zap.String("addr", s.tcpSrv.Addr().String()))
	log.Info("all services ready, waiting for connections")
	return s, nil
}

// TCPAddr TCP 网关实际监听地址
func (s *Server) TCPAddr() net.Addr { return s.tcpSrv.Addr() }

// HTTPAddr HTTP 实际监听地址
func (s *Server) HTTPAddr() net.Addr { return s.httpSrv.Addr() }

// Store 记录表
func (s *Server) Store() *recordstore.Store { return s.store }

// Shutdown 逆序关闭：HTTP -> TCP -> 会话登记 -> Redis，最后清空记录表
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.stopGauges != nil {
		s.stopGauges()
	}
	if s.httpSrv != nil {
		errs = append(errs, s.httpSrv.Shutdown(ctx))
		s.log.Info("http server stopped")
	}
	if s.tcpSrv != nil {
		s.ready.SetTCPReady(false)
		errs = append(errs, s.tcpSrv.Shutdown(ctx))
		s.log.Info("tcp server stopped")
	}
	if rm, ok := s.sess.(*session.RedisManager); ok {
		errs = append(errs, rm.Cleanup())
	}
	if s.redisClient != nil {
		errs = append(errs, s.redisClient.Close())
	}
	if s.store != nil {
		n := s.store.Len()
		s.store.Clear()
		s.log.Info("record store cleared", zap.Int("records", n))
	}
	s.log.Info("shutdown complete")
	return errors.Join(errs...)
}
