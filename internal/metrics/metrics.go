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

// Block 结算结果标签值
const (
	BlockOK            = "ok"
	BlockParseError    = "parse_error"
	BlockChecksumError = "checksum_error"
	BlockMissingField  = "missing_field"
	BlockMappingError  = "mapping_error"
)

// AppMetrics 自定义业务指标
type AppMetrics struct {
	TCPAccepted   prometheus.Counter
	TCPRejected   prometheus.Counter      // 超限或限速拒绝
	BytesReceived *prometheus.CounterVec  // labels: source=tcp|serial
	BlockTotal    *prometheus.CounterVec  // labels: result
	RecordTotal   *prometheus.CounterVec  // labels: kind
	HexRunTotal   prometheus.Counter      // 跳过的 HEX 帧段数
	OnlineGauge   prometheus.Gauge        // 当前在线设备数
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		TCPAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_accept_total",
			Help: "Total accepted TCP connections.",
		}),
		TCPRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_reject_total",
			Help: "TCP connections rejected by limits.",
		}),
		BytesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vedirect_bytes_received_total",
			Help: "Raw VE.Direct bytes received by source.",
		}, []string{"source"}),
		BlockTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vedirect_block_total",
			Help: "VE.Direct block outcomes.",
		}, []string{"result"}),
		RecordTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vedirect_record_total",
			Help: "Mapped device records by kind.",
		}, []string{"kind"}),
		HexRunTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vedirect_hex_run_skipped_total",
			Help: "Binary HEX protocol runs skipped inside the text stream.",
		}),
		OnlineGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "session_online_count",
			Help: "Current number of online devices.",
		}),
	}
	reg.MustRegister(m.TCPAccepted, m.TCPRejected, m.BytesReceived, m.BlockTotal, m.RecordTotal, m.HexRunTotal, m.OnlineGauge)
	return m
}
