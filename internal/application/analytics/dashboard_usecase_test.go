package analytics_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/application/analytics"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var testNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

// fakeAnalytics devuelve valores fijos y registra los argumentos recibidos.
type fakeAnalytics struct {
	mu sync.Mutex

	newContacts  int
	prevContacts int
	counts       map[entity.QuoteStatus]int
	converted    int
	outstanding  decimal.Decimal
	overdue      []repository.OverdueInvoice
	recent       []*entity.Contact
	failStatus   error

	windows      [][2]time.Time
	overdueToday time.Time
	overdueLimit int
	recentLimit  int
}

func (f *fakeAnalytics) CountContactsCreated(_ context.Context, from, to time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, [2]time.Time{from, to})
	if to.Equal(testNow) {
		return f.newContacts, nil
	}
	return f.prevContacts, nil
}

func (f *fakeAnalytics) QuoteStatusCounts(context.Context) (map[entity.QuoteStatus]int, error) {
	if f.failStatus != nil {
		return nil, f.failStatus
	}
	return f.counts, nil
}

func (f *fakeAnalytics) CountConvertedQuotes(context.Context) (int, error) {
	return f.converted, nil
}

func (f *fakeAnalytics) OutstandingTotal(context.Context) (decimal.Decimal, error) {
	return f.outstanding, nil
}

func (f *fakeAnalytics) OverdueInvoices(_ context.Context, today time.Time, limit int) ([]repository.OverdueInvoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overdueToday, f.overdueLimit = today, limit
	return f.overdue, nil
}

func (f *fakeAnalytics) RecentContacts(_ context.Context, limit int) ([]*entity.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recentLimit = limit
	return f.recent, nil
}

func newDashboard(repo repository.AnalyticsRepository) *analytics.DashboardUseCase {
	return analytics.NewDashboardUseCase(repo, func() time.Time { return testNow })
}

func TestGetSummary_CompletaTodosLosWidgets(t *testing.T) {
	repo := &fakeAnalytics{
		newContacts:  6,
		prevContacts: 4,
		counts: map[entity.QuoteStatus]int{
			entity.QuoteDraft:   2,
			entity.QuoteSent:    3,
			entity.QuoteExpired: 1,
		},
		converted:   2,
		outstanding: decimal.RequireFromString("1234.5"),
		overdue: []repository.OverdueInvoice{{
			ID:            "inv-1",
			InvoiceNumber: "INV-0003",
			ContactName:   "Ana",
			Total:         decimal.RequireFromString("137.62"),
			Currency:      "USD",
			DueDate:       time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC),
		}},
		recent: []*entity.Contact{{
			ID:        "c-1",
			Name:      "Ana",
			Email:     "ana@example.com",
			Status:    entity.ContactConverted,
			CreatedAt: testNow.Add(-time.Hour),
		}},
	}

	out, err := newDashboard(repo).GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, out.KPIs.NewContacts)
	assert.Equal(t, 50.0, out.KPIs.NewContactsChange)
	assert.Equal(t, 3, out.KPIs.PendingQuotes)
	assert.Equal(t, "1234.50", out.KPIs.OutstandingInvoices)

	assert.Equal(t, 2, out.QuoteStats.Draft)
	assert.Equal(t, 3, out.QuoteStats.Sent)
	assert.Equal(t, 2, out.QuoteStats.Accepted)
	assert.Equal(t, 0, out.QuoteStats.Rejected)
	assert.Equal(t, 1, out.QuoteStats.Expired)
	assert.Equal(t, 25.0, out.QuoteStats.AcceptanceRate) // 2 de 8

	require.Len(t, out.OverdueInvoices, 1)
	assert.Equal(t, "INV-0003", out.OverdueInvoices[0].InvoiceNumber)
	assert.Equal(t, "137.62", out.OverdueInvoices[0].Total)
	assert.Equal(t, "2026-10-10", out.OverdueInvoices[0].DueDate)
	assert.Equal(t, 7, out.OverdueInvoices[0].DaysOverdue)

	require.Len(t, out.RecentContacts, 1)
	assert.Equal(t, "CONVERTED", out.RecentContacts[0].Status)
	assert.Equal(t, "2026-10-17T09:00:00Z", out.RecentContacts[0].CreatedAt)
	assert.Equal(t, "2026-10-17T10:00:00Z", out.GeneratedAt)

	// ventanas de 7 días y límites de los widgets
	assert.ElementsMatch(t, [][2]time.Time{
		{testNow.AddDate(0, 0, -7), testNow},
		{testNow.AddDate(0, 0, -14), testNow.AddDate(0, 0, -7)},
	}, repo.windows)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), repo.overdueToday)
	assert.Equal(t, 5, repo.overdueLimit)
	assert.Equal(t, 5, repo.recentLimit)
}

func TestGetSummary_AceptadasHeredadasNoCuentanDosVeces(t *testing.T) {
	repo := &fakeAnalytics{
		counts:    map[entity.QuoteStatus]int{entity.QuoteAccepted: 1, entity.QuoteSent: 1},
		converted: 2,
	}
	out, err := newDashboard(repo).GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, out.QuoteStats.Accepted)
	assert.Equal(t, 75.0, out.QuoteStats.AcceptanceRate)
}

func TestGetSummary_SinDatos(t *testing.T) {
	out, err := newDashboard(&fakeAnalytics{}).GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0.0, out.QuoteStats.AcceptanceRate)
	assert.Equal(t, 0.0, out.KPIs.NewContactsChange)
	assert.Equal(t, "0.00", out.KPIs.OutstandingInvoices)
	assert.NotNil(t, out.RecentContacts)
	assert.NotNil(t, out.OverdueInvoices)
	assert.Empty(t, out.OverdueInvoices)
}

func TestGetSummary_VariacionDeContactos(t *testing.T) {
	tests := []struct {
		name      string
		cur, prev int
		want      float64
	}{
		{"sin base previa con altas", 3, 0, 100},
		{"sin base previa sin altas", 0, 0, 0},
		{"caída", 1, 4, -75},
		{"redondeo a un decimal", 2, 3, -33.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newDashboard(&fakeAnalytics{newContacts: tt.cur, prevContacts: tt.prev}).
				GetSummary(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.KPIs.NewContactsChange)
		})
	}
}

func TestGetSummary_PropagaErrorDelRepositorio(t *testing.T) {
	boom := errors.New("conexión perdida")
	_, err := newDashboard(&fakeAnalytics{failStatus: boom}).GetSummary(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "cotizaciones por estado")
}
