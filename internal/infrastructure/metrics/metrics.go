// Package metrics expone contadores Prometheus de la facturación.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/billing-api/internal/application/billing"
)

const namespace = "billing"

// Metrics registro propio (no el global) con los contadores del servicio.
type Metrics struct {
	registry *prometheus.Registry

	eventsPublished *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	notifyDropped   *prometheus.CounterVec
	sweepRuns       *prometheus.CounterVec
	sweepChanges    *prometheus.CounterVec
	linkRejections  *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New crea el registro con los colectores de Go y del proceso.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Eventos emitidos tras confirmar una transición.",
		}, []string{"event"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Entregas de notificación por canal y resultado.",
		}, []string{"channel", "result"}),
		notifyDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Eventos descartados por cola llena o despachador cerrado.",
		}, []string{"event"}),
		sweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Ejecuciones del barrido por resultado.",
		}, []string{"result"}),
		sweepChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_changes_total",
			Help:      "Documentos modificados por el barrido.",
		}, []string{"action"}),
		linkRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signed_link_rejections_total",
			Help:      "Peticiones públicas rechazadas por firma.",
		}, []string{"reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por ruta, método y código.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.eventsPublished, m.notifications, m.notifyDropped,
		m.sweepRuns, m.sweepChanges, m.linkRejections,
		m.httpRequests, m.httpDuration,
	)
	return m
}

// Handler endpoint de scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Publisher cuenta cada evento y lo reenvía a next.
func (m *Metrics) Publisher(next billing.EventPublisher) billing.EventPublisher {
	return &countingPublisher{m: m, next: next}
}

type countingPublisher struct {
	m    *Metrics
	next billing.EventPublisher
}

func (p *countingPublisher) Publish(ctx context.Context, ev billing.Event) {
	p.m.eventsPublished.WithLabelValues(string(ev.Type)).Inc()
	if p.next != nil {
		p.next.Publish(ctx, ev)
	}
}

// Delivered resultado final de una entrega (notify.Observer).
func (m *Metrics) Delivered(channel string, _ billing.EventType, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.WithLabelValues(channel, result).Inc()
}

// Dropped evento descartado (notify.Observer).
func (m *Metrics) Dropped(ev billing.EventType) {
	m.notifyDropped.WithLabelValues(string(ev)).Inc()
}

// ObserveSweep registra el resultado de una pasada.
func (m *Metrics) ObserveSweep(res billing.SweepResult, err error) {
	switch {
	case err != nil:
		m.sweepRuns.WithLabelValues("error").Inc()
		return
	case res.Skipped:
		m.sweepRuns.WithLabelValues("skipped").Inc()
		return
	}
	m.sweepRuns.WithLabelValues("ok").Inc()
	m.sweepChanges.WithLabelValues("reminded").Add(float64(res.RemindersSent))
	m.sweepChanges.WithLabelValues("expired").Add(float64(res.Expired))
	m.sweepChanges.WithLabelValues("overdue").Add(float64(res.Overdue))
}

// LinkRejected reason: "invalid" o "expired".
func (m *Metrics) LinkRejected(reason string) {
	m.linkRejections.WithLabelValues(reason).Inc()
}

// ObserveHTTP registra una petición ya respondida.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
