package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "student_router"

// 分配结果标签
const (
	OutcomeCreated    = "created"
	OutcomeReplayed   = "replayed"
	OutcomeInfeasible = "infeasible"
	OutcomeError      = "error"
)

// Metrics 进程内 Prometheus 指标
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	assignOutcomes *prometheus.CounterVec
	infeasible     *prometheus.CounterVec
	storeErrors    *prometheus.CounterVec
	rosterSize     prometheus.Gauge
}

// New 创建并注册全部指标
// reg 为 nil 时使用新的独立 Registry（测试中可多次创建）
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		gatherer: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP 请求数，按方法、路由、状态码区分",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP 请求耗时（秒）",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms .. ~2.5s
		}, []string{"method", "route"}),
		assignOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assign",
			Name:      "outcomes_total",
			Help:      "分配请求结果（created / replayed / infeasible / error）",
		}, []string{"outcome"}),
		infeasible: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assign",
			Name:      "infeasible_total",
			Help:      "不可行分配按失败类别统计",
		}, []string{"where"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "学生记录存储操作失败次数",
		}, []string{"op"}),
		rosterSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "roster",
			Name:      "students",
			Help:      "最近一次读取名单时的学生人数",
		}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpLatency,
		m.assignOutcomes,
		m.infeasible,
		m.storeErrors,
		m.rosterSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// AssignOutcome 记录一次分配结果
func (m *Metrics) AssignOutcome(outcome string) {
	if m == nil {
		return
	}
	m.assignOutcomes.WithLabelValues(outcome).Inc()
}

// Infeasible 记录不可行分配的失败类别
func (m *Metrics) Infeasible(where string) {
	if m == nil {
		return
	}
	m.assignOutcomes.WithLabelValues(OutcomeInfeasible).Inc()
	m.infeasible.WithLabelValues(where).Inc()
}

// StoreError 记录存储失败
func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

// RosterSize 更新名单人数
func (m *Metrics) RosterSize(n int) {
	if m == nil {
		return
	}
	m.rosterSize.Set(float64(n))
}

// Handler /metrics 端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
