// Package metrics - счётчики Prometheus клиента и шлюза.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "order_desk"

type Metrics struct {
	registry *prometheus.Registry

	remoteRequests *prometheus.CounterVec
	remoteLatency  *prometheus.HistogramVec
	tokenRefreshes *prometheus.CounterVec
	superseded     *prometheus.CounterVec
	priceLookups   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		remoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Запросы к серверу заказов по операции и исходу.",
		}, []string{"op", "outcome"}),
		remoteLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Длительность запросов к серверу заказов.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Обновления токена доступа.",
		}, []string{"outcome"}),
		superseded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "superseded_responses_total",
			Help:      "Ответы списка, отброшенные как устаревшие.",
		}, []string{"screen"}),
		priceLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_lookups_total",
			Help:      "Запросы цен заказов: found, missing, failed.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.remoteRequests,
		m.remoteLatency,
		m.tokenRefreshes,
		m.superseded,
		m.priceLookups,
	)
	return m
}

func (m *Metrics) ObserveRemote(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.remoteRequests.WithLabelValues(op, outcome).Inc()
	m.remoteLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) TokenRefreshed(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.tokenRefreshes.WithLabelValues("failed").Inc()
		return
	}
	m.tokenRefreshes.WithLabelValues("ok").Inc()
}

func (m *Metrics) Superseded(screen string) {
	if m == nil {
		return
	}
	m.superseded.WithLabelValues(screen).Inc()
}

func (m *Metrics) PriceLookup(outcome string) {
	if m == nil {
		return
	}
	m.priceLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
