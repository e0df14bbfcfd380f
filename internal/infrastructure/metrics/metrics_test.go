package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/application/billing"
)

type recordingPublisher struct{ got []billing.Event }

func (r *recordingPublisher) Publish(_ context.Context, ev billing.Event) { r.got = append(r.got, ev) }

func TestPublisher_CountsAndForwards(t *testing.T) {
	m := New()
	next := &recordingPublisher{}
	pub := m.Publisher(next)

	pub.Publish(context.Background(), billing.Event{Type: billing.EventQuoteSent})
	pub.Publish(context.Background(), billing.Event{Type: billing.EventQuoteSent})
	pub.Publish(context.Background(), billing.Event{Type: billing.EventInvoicePaid})

	assert.Len(t, next.got, 3)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("quote.sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("invoice.paid")))
}

func TestObserveSweep(t *testing.T) {
	m := New()
	m.ObserveSweep(billing.SweepResult{RemindersSent: 2, Expired: 1, Overdue: 3}, nil)
	m.ObserveSweep(billing.SweepResult{Skipped: true}, nil)
	m.ObserveSweep(billing.SweepResult{}, errors.New("db caída"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweepRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweepRuns.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweepRuns.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sweepChanges.WithLabelValues("reminded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweepChanges.WithLabelValues("expired")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sweepChanges.WithLabelValues("overdue")))
}

func TestObserverAndLinkCounters(t *testing.T) {
	m := New()
	m.Delivered("email", billing.EventQuoteSent, nil)
	m.Delivered("webhook", billing.EventQuoteSent, errors.New("502"))
	m.Dropped(billing.EventInvoiceOverdue)
	m.LinkRejected("expired")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("email", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("webhook", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifyDropped.WithLabelValues("invoice.overdue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.linkRejections.WithLabelValues("expired")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTP("/api/quotes/:id", http.MethodGet, 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `billing_http_requests_total{method="GET",route="/api/quotes/:id",status="200"} 1`))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
