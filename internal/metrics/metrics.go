// Package metrics содержит Prometheus-метрики бота:
//
//	bot_cycles_total{status}         – циклы по символу (executed|denied|failed)
//	bot_orders_total{side}           – принятые брокером bracket-заявки
//	bot_notifications_failed_total   – неудачные уведомления
//	bot_sweep_duration_seconds       – длительность прохода по всему списку
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type Metrics struct {
	registry *prometheus.Registry

	cycles              *prometheus.CounterVec
	orders              *prometheus.CounterVec
	notificationsFailed prometheus.Counter
	sweepDuration       prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "bot_cycles_total", Help: "Per-symbol cycles by outcome"},
			[]string{"status"},
		),
		orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "bot_orders_total", Help: "Bracket orders accepted by the broker"},
			[]string{"side"},
		),
		notificationsFailed: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "bot_notifications_failed_total", Help: "Failed trade notifications"},
		),
		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bot_sweep_duration_seconds",
				Help:    "Duration of one sweep over the universe",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
	}
	m.registry.MustRegister(m.cycles, m.orders, m.notificationsFailed, m.sweepDuration)
	return m
}

// nil-safe: компоненты можно собирать без метрик (тесты, botctl).

func (m *Metrics) Cycle(status string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(status).Inc()
}

func (m *Metrics) Order(side string) {
	if m == nil {
		return
	}
	m.orders.WithLabelValues(side).Inc()
}

func (m *Metrics) NotificationFailed() {
	if m == nil {
		return
	}
	m.notificationsFailed.Inc()
}

func (m *Metrics) SweepDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry: для чтения значений в тестах.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(New),
	)
}
