package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/metrics"
)

type Metrics struct {
	apiResponseTime  *prometheus.HistogramVec
	apiErrorCounter  *prometheus.CounterVec
	wsEventCounter   *prometheus.CounterVec
	messageCounter   *prometheus.CounterVec
	offlineQueueSize *prometheus.HistogramVec
	pushBatchTime    *prometheus.HistogramVec
	pushResults      *prometheus.CounterVec
}

func NewMetrics(ns, system string) *Metrics {
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	m := &Metrics{
		apiResponseTime:  metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:  metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		wsEventCounter:   metrics.NewCounterVec("ws_event", []string{"type"}),
		messageCounter:   metrics.NewCounterVec("message_total", []string{"conversation_type"}),
		offlineQueueSize: metrics.NewHistogramVec("offline_replay_size", nil),
		pushBatchTime:    metrics.NewHistogramVec("push_batch_time", nil),
		pushResults:      metrics.NewCounterVec("push_result", []string{"status"}),
	}

	return m
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) WsEventInc(eventType string) {
	m.wsEventCounter.WithLabelValues(eventType).Inc()
}

func (m *Metrics) MessageInc(conversationType string) {
	m.messageCounter.WithLabelValues(conversationType).Inc()
}

func (m *Metrics) ObserveOfflineReplay(size int) {
	m.offlineQueueSize.WithLabelValues().Observe(float64(size))
}

func (m *Metrics) PushBatchTimer() *prometheus.Timer {
	return prometheus.NewTimer(m.pushBatchTime.WithLabelValues())
}

func (m *Metrics) PushResultInc(status string) {
	m.pushResults.WithLabelValues(status).Inc()
}
