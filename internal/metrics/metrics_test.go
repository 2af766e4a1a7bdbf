package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.WebhookEvent("checkout.session.completed", "confirmed")
	m.CheckoutSession("created")
	m.Transition("pending_payment", "payment_confirmed", "webhook")
	m.Notification("confirmation", true)
	m.ReconcileCheck("confirmed")

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	called := false
	err := m.Middleware()(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	if err != nil || !called {
		t.Errorf("nil middleware must pass through, err = %v, called = %v", err, called)
	}
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.WebhookEvent("checkout.session.completed", "confirmed")
	m.WebhookEvent("checkout.session.completed", "confirmed")
	m.Transition("pending_payment", "payment_confirmed", "webhook")
	m.Notification("confirmation", false)

	if got := testutil.ToFloat64(m.webhookEvents.WithLabelValues("checkout.session.completed", "confirmed")); got != 2 {
		t.Errorf("webhook events = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("pending_payment", "payment_confirmed", "webhook")); got != 1 {
		t.Errorf("transitions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues("confirmation", "failed")); got != 1 {
		t.Errorf("failed notifications = %v, want 1", got)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New(nil)
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/products/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/3", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/products/:id", http.MethodGet, "204")); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Error("metrics endpoint does not expose http_requests_total")
	}
}
