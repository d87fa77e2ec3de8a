package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "poolagent"

// 请求结果标签
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Metrics 是 prometheus.Collector，统计存储池请求
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics 创建 Metrics，由调用方注册到 Registerer
func NewMetrics() *Metrics {
	return &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "storage_requests_total",
				Help:      "The number of storage pool requests handled, by action and outcome.",
			}, []string{"action", "outcome", "kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "storage_request_duration_seconds",
				Help:      "The time taken to handle a storage pool request.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			}, []string{"action"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.requests.Describe(ch)
	m.duration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.requests.Collect(ch)
	m.duration.Collect(ch)
}

func (m *Metrics) observe(action, outcome, kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(action, outcome, kind).Inc()
	m.duration.WithLabelValues(action).Observe(elapsed.Seconds())
}
