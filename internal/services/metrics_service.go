package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsService 问答请求指标采集
type MetricsService struct {
	requestsTotal   prometheus.Counter
	answersTotal    prometheus.Counter
	failuresByStage *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// NewMetricsService 创建指标服务并注册到给定的Registerer
func NewMetricsService(reg prometheus.Registerer) *MetricsService {
	m := &MetricsService{
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tutor",
			Name:      "qa_requests_total",
			Help:      "Total question answering requests received.",
		}),
		answersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tutor",
			Name:      "qa_answers_total",
			Help:      "Total successfully generated answers.",
		}),
		failuresByStage: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tutor",
			Name:      "qa_failures_total",
			Help:      "Question answering failures by pipeline stage.",
		}, []string{"stage"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tutor",
			Name:      "qa_request_duration_seconds",
			Help:      "End to end question answering latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.requestsTotal, m.answersTotal, m.failuresByStage, m.requestDuration)
	}
	return m
}

// RecordRequest 记录一次收到的问答请求
func (m *MetricsService) RecordRequest() {
	if m == nil {
		return
	}
	m.requestsTotal.Inc()
}

// RecordAnswer 记录一次成功生成的答案
func (m *MetricsService) RecordAnswer() {
	if m == nil {
		return
	}
	m.answersTotal.Inc()
}

// RecordFailure 按失败阶段记录
func (m *MetricsService) RecordFailure(stage string) {
	if m == nil {
		return
	}
	if stage == "" {
		stage = "unknown"
	}
	m.failuresByStage.WithLabelValues(stage).Inc()
}

// ObserveDuration 记录请求耗时
func (m *MetricsService) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.Observe(d.Seconds())
}
