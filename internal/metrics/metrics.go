package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - набор метрик сервиса на собственном реестре.
// Все методы записи безопасны для nil-получателя.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	webhookEvents   *prometheus.CounterVec
	checkouts       *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	reconcileChecks *prometheus.CounterVec
}

// New регистрирует метрики в reg. При nil создаётся новый реестр.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler", "method"},
		),
		webhookEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_webhook_events_total",
				Help: "Total number of payment webhook events by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_checkout_sessions_total",
				Help: "Total number of checkout session attempts",
			},
			[]string{"outcome"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_order_transitions_total",
				Help: "Total number of applied order status transitions",
			},
			[]string{"from", "to", "origin"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_notifications_total",
				Help: "Total number of customer notifications by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		reconcileChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_reconcile_checks_total",
				Help: "Total number of pending orders checked by the reconciler",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.webhookEvents,
		m.checkouts,
		m.transitions,
		m.notifications,
		m.reconcileChecks,
	)

	return m
}

// Handler отдаёт метрики реестра в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware считает запросы и их длительность по шаблону маршрута.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			m.httpRequests.WithLabelValues(path, c.Request().Method, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(path, c.Request().Method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// WebhookEvent учитывает обработанное событие вебхука.
func (m *Metrics) WebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// CheckoutSession учитывает попытку создания платёжной сессии.
func (m *Metrics) CheckoutSession(outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
}

// Transition учитывает применённый переход статуса.
func (m *Metrics) Transition(from, to, origin string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to, origin).Inc()
}

// Notification учитывает попытку уведомления клиента.
func (m *Metrics) Notification(kind string, delivered bool) {
	if m == nil {
		return
	}
	outcome := "sent"
	if !delivered {
		outcome = "failed"
	}
	m.notifications.WithLabelValues(kind, outcome).Inc()
}

// ReconcileCheck учитывает проверку заказа сверщиком.
func (m *Metrics) ReconcileCheck(outcome string) {
	if m == nil {
		return
	}
	m.reconcileChecks.WithLabelValues(outcome).Inc()
}
