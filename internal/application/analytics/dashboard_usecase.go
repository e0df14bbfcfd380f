// Package analytics contiene los casos de uso de reportes: el dashboard comercial
// con embudo de cotizaciones, cartera pendiente y facturas vencidas.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/money"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

const (
	dashboardRecentContacts = 5 // contactos en el widget de recientes
	dashboardOverdue        = 5 // facturas vencidas más antiguas
	dashboardWindow         = 7 * 24 * time.Hour
)

// DashboardUseCase genera el resumen del dashboard.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso. now nil usa time.Now.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, now func() time.Time) *DashboardUseCase {
	if now == nil {
		now = time.Now
	}
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: now}
}

// GetSummary construye el DashboardResponse.
//
// Consultas en paralelo:
//  1. CountContactsCreated(últimos 7 días)     → NewContacts
//  2. CountContactsCreated(7 días anteriores)  → NewContactsChange
//  3. QuoteStatusCounts + CountConvertedQuotes → QuoteStats, PendingQuotes
//  4. OutstandingTotal                         → OutstandingInvoices
//  5. OverdueInvoices(top 5)                   → OverdueInvoices
//  6. RecentContacts(5)                        → RecentContacts
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardResponse, error) {
	now := uc.now().UTC()
	today := entity.DateOf(now)
	weekAgo := now.Add(-dashboardWindow)
	twoWeeksAgo := now.Add(-2 * dashboardWindow)

	type countResult struct {
		n   int
		err error
	}
	type statusResult struct {
		counts    map[entity.QuoteStatus]int
		converted int
		err       error
	}
	type amountResult struct {
		amount decimal.Decimal
		err    error
	}
	type overdueResult struct {
		rows []repository.OverdueInvoice
		err  error
	}
	type contactsResult struct {
		contacts []*entity.Contact
		err      error
	}

	newCh := make(chan countResult, 1)
	prevCh := make(chan countResult, 1)
	statusCh := make(chan statusResult, 1)
	outstandingCh := make(chan amountResult, 1)
	overdueCh := make(chan overdueResult, 1)
	recentCh := make(chan contactsResult, 1)

	go func() {
		n, err := uc.analyticsRepo.CountContactsCreated(ctx, weekAgo, now)
		newCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.analyticsRepo.CountContactsCreated(ctx, twoWeeksAgo, weekAgo)
		prevCh <- countResult{n, err}
	}()
	go func() {
		counts, err := uc.analyticsRepo.QuoteStatusCounts(ctx)
		if err != nil {
			statusCh <- statusResult{err: err}
			return
		}
		converted, err := uc.analyticsRepo.CountConvertedQuotes(ctx)
		statusCh <- statusResult{counts, converted, err}
	}()
	go func() {
		amount, err := uc.analyticsRepo.OutstandingTotal(ctx)
		outstandingCh <- amountResult{amount, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.OverdueInvoices(ctx, today, dashboardOverdue)
		overdueCh <- overdueResult{rows, err}
	}()
	go func() {
		contacts, err := uc.analyticsRepo.RecentContacts(ctx, dashboardRecentContacts)
		recentCh <- contactsResult{contacts, err}
	}()

	newContacts := <-newCh
	prevContacts := <-prevCh
	status := <-statusCh
	outstanding := <-outstandingCh
	overdue := <-overdueCh
	recent := <-recentCh

	if newContacts.err != nil {
		return nil, fmt.Errorf("dashboard: contactos nuevos: %w", newContacts.err)
	}
	if prevContacts.err != nil {
		return nil, fmt.Errorf("dashboard: contactos semana anterior: %w", prevContacts.err)
	}
	if status.err != nil {
		return nil, fmt.Errorf("dashboard: cotizaciones por estado: %w", status.err)
	}
	if outstanding.err != nil {
		return nil, fmt.Errorf("dashboard: cartera pendiente: %w", outstanding.err)
	}
	if overdue.err != nil {
		return nil, fmt.Errorf("dashboard: facturas vencidas: %w", overdue.err)
	}
	if recent.err != nil {
		return nil, fmt.Errorf("dashboard: contactos recientes: %w", recent.err)
	}

	stats := dto.QuoteStatsDTO{
		Draft:    status.counts[entity.QuoteDraft],
		Sent:     status.counts[entity.QuoteSent],
		Accepted: status.converted + status.counts[entity.QuoteAccepted],
		Rejected: status.counts[entity.QuoteRejected],
		Expired:  status.counts[entity.QuoteExpired],
	}
	total := status.converted
	for _, n := range status.counts {
		total += n
	}
	stats.AcceptanceRate = percent(stats.Accepted, total)

	out := &dto.DashboardResponse{
		KPIs: dto.DashboardKPIs{
			NewContacts:         newContacts.n,
			NewContactsChange:   change(newContacts.n, prevContacts.n),
			PendingQuotes:       stats.Sent,
			OutstandingInvoices: money.Present(outstanding.amount),
		},
		QuoteStats:      stats,
		RecentContacts:  make([]dto.RecentContactDTO, 0, len(recent.contacts)),
		OverdueInvoices: make([]dto.OverdueInvoiceDTO, 0, len(overdue.rows)),
		GeneratedAt:     now.Format(time.RFC3339),
	}
	for _, c := range recent.contacts {
		out.RecentContacts = append(out.RecentContacts, dto.RecentContactDTO{
			ID:        c.ID,
			Name:      c.Name,
			Email:     c.Email,
			Status:    string(c.Status),
			CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	for _, inv := range overdue.rows {
		out.OverdueInvoices = append(out.OverdueInvoices, dto.OverdueInvoiceDTO{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			ContactName:   inv.ContactName,
			Total:         money.Present(inv.Total),
			Currency:      inv.Currency,
			DueDate:       inv.DueDate.UTC().Format(dto.DateLayout),
			DaysOverdue:   entity.DaysBetween(inv.DueDate, today),
		})
	}
	return out, nil
}

// percent part/total*100 con un decimal; 0 si total es 0.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1).
		InexactFloat64()
}

// change variación porcentual de prev a cur. Sin base previa: 100 si hubo altas, 0 si no.
func change(cur, prev int) float64 {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return decimal.NewFromInt(int64(cur - prev)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(prev))).
		Round(1).
		InexactFloat64()
}
