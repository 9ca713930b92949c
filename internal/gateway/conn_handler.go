package gateway

import (
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/record-server/internal/config"
	"github.com/taoyao-code/record-server/internal/metrics"
	"github.com/taoyao-code/record-server/internal/protocol/recordcmd"
	"github.com/taoyao-code/record-server/internal/session"
	"github.com/taoyao-code/record-server/internal/tcpserver"
)

// RecordStore 记录表（命令处理 + 记录数指标）
type RecordStore interface {
	recordcmd.RecordStore
	Len() int
}

// NewConnHandler 构建 TCP 连接处理器：为连接挂上记录命令会话、会话登记与指标上报。
// shared 非空时所有连接共用该引擎（单一全局设备语义），否则每个连接一个独立引擎。
func NewConnHandler(
	cfg cfgpkg.RecordConfig,
	store RecordStore,
	shared *recordcmd.Engine,
	sess session.SessionManager,
	appm *metrics.AppMetrics,
	logger *zap.Logger,
) func(*tcpserver.ConnContext) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := recordcmd.Options{
		CommandCapacity:  cfg.CommandCapacity,
		ResponseCapacity: cfg.EffectiveResponseCapacity(),
	}

	return func(cc *tcpserver.ConnContext) {
		connID := strconv.FormatUint(cc.ID(), 10)
		remote := cc.RemoteAddr().String()
		log := logger.With(zap.String("conn_id", connID), zap.String("remote_addr", remote))

		engine := shared
		if engine == nil {
			engine = recordcmd.NewEngine(store, opts)
			engine.SetLogger(log)
			engine.SetHooks(MetricsHooks(appm))
		}

		adapter := recordcmd.NewAdapter(engine, func(b []byte) error {
			if appm != nil {
				appm.TCPBytesSent.Add(float64(len(b)))
			}
			return cc.Write(b)
		}, 0)

		// 记录数在每次读取后刷新；在线数只在连接建立与关闭时刷新
		updateRecords := func() {
			if appm != nil {
				appm.RecordsGauge.Set(float64(store.Len()))
			}
		}
		updateOnline := func() {
			if appm != nil && sess != nil {
				appm.OnlineGauge.Set(float64(sess.OnlineCount(time.Now())))
			}
		}

		if sess != nil {
			sess.OnOpen(connID, remote, time.Now())
		}
		updateRecords()
		updateOnline()
		log.Info("record client connected")

		cc.SetOnRead(func(p []byte) error {
			if sess != nil {
				sess.OnActivity(connID, time.Now())
			}
			err := adapter.ProcessBytes(p)
			updateRecords()
			if err != nil {
				log.Warn("record response delivery failed", zap.Error(err))
			}
			return err
		})

		cc.SetOnClose(func(reason string) {
			if sess != nil {
				sess.OnClosed(connID)
			}
			if appm != nil {
				appm.SessionClosed.WithLabelValues(reason).Inc()
			}
			updateRecords()
			updateOnline()
			st := engine.Stats()
			log.Info("record client disconnected",
				zap.String("reason", reason),
				zap.Int64("dispatched", st.Dispatched),
				zap.Int("buffered_bytes", st.BufferedBytes),
			)
		})
	}
}

// MetricsHooks 将引擎事件映射为 Prometheus 指标；appm 为 nil 时返回空回调
func MetricsHooks(appm *metrics.AppMetrics) recordcmd.Hooks {
	if appm == nil {
		return recordcmd.Hooks{}
	}
	return recordcmd.Hooks{
		OnDispatch: func(v recordcmd.Verb, err error) {
			result := "ok"
			if err != nil {
				result = "overflow"
			}
			appm.CommandTotal.WithLabelValues(v.String(), result).Inc()
		},
		OnDiscard: func(reason error) {
			label := "malformed"
			if errors.Is(reason, recordcmd.ErrUnterminatedOnOverflow) {
				label = "unterminated"
			}
			appm.DiscardTotal.WithLabelValues(label).Inc()
		},
		OnBackpressure: func() { appm.BackpressureTotal.Inc() },
	}
}
