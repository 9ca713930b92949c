package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	TCPAccepted       prometheus.Counter
	TCPRejected       *prometheus.CounterVec // labels: reason=limit|rate
	TCPBytesReceived  prometheus.Counter
	TCPBytesSent      prometheus.Counter
	CommandTotal      *prometheus.CounterVec // labels: verb, result=ok|overflow
	DiscardTotal      *prometheus.CounterVec // labels: reason=malformed|unterminated
	BackpressureTotal prometheus.Counter     // 因未读响应被拒绝的写入
	RecordsGauge      prometheus.Gauge       // 当前记录数
	OnlineGauge       prometheus.Gauge       // 当前在线连接数
	SessionClosed     *prometheus.CounterVec // labels: reason
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		TCPAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_accept_total",
			Help: "Total accepted TCP connections.",
		}),
		TCPRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tcp_reject_total",
			Help: "TCP connections rejected by limiters.",
		}, []string{"reason"}),
		TCPBytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_bytes_received_total",
			Help: "Total bytes received over TCP.",
		}),
		TCPBytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_bytes_sent_total",
			Help: "Total response bytes queued to TCP clients.",
		}),
		CommandTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "record_command_total",
			Help: "Dispatched record commands by verb and result.",
		}, []string{"verb", "result"}),
		DiscardTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "record_command_discard_total",
			Help: "Discarded command units by reason.",
		}, []string{"reason"}),
		BackpressureTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "record_write_backpressure_total",
			Help: "Writes rejected while a response was pending.",
		}),
		RecordsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "record_store_records",
			Help: "Current number of records in the store.",
		}),
		OnlineGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "session_online_count",
			Help: "Current number of connected clients.",
		}),
		SessionClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_closed_total",
			Help: "Closed client sessions by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(
		m.TCPAccepted, m.TCPRejected, m.TCPBytesReceived, m.TCPBytesSent,
		m.CommandTotal, m.DiscardTotal, m.BackpressureTotal,
		m.RecordsGauge, m.OnlineGauge, m.SessionClosed,
	)
	return m
}
