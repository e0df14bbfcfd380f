package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// CountContactsCreated contactos con created_at en [from, to).
func (r *AnalyticsRepo) CountContactsCreated(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM contacts
		WHERE created_at >= $1 AND created_at < $2`, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("analytics.CountContactsCreated: %w", err)
	}
	return n, nil
}

// QuoteStatusCounts cotizaciones agrupadas por estado.
func (r *AnalyticsRepo) QuoteStatusCounts(ctx context.Context) (map[entity.QuoteStatus]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM quotes GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("analytics.QuoteStatusCounts: %w", err)
	}
	defer rows.Close()

	out := make(map[entity.QuoteStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("analytics.QuoteStatusCounts scan: %w", err)
		}
		out[entity.QuoteStatus(status)] = n
	}
	return out, rows.Err()
}

// CountConvertedQuotes facturas con converted_from: una por cotización aceptada.
func (r *AnalyticsRepo) CountConvertedQuotes(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE converted_from IS NOT NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("analytics.CountConvertedQuotes: %w", err)
	}
	return n, nil
}

// OutstandingTotal suma de las facturas por cobrar. COALESCE devuelve cero si no hay filas.
func (r *AnalyticsRepo) OutstandingTotal(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM invoices
		WHERE status IN ('PENDING', 'OVERDUE')`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("analytics.OutstandingTotal: %w", err)
	}
	return total, nil
}

// OverdueInvoices facturas vencidas más antiguas primero, con el nombre del contacto si existe.
func (r *AnalyticsRepo) OverdueInvoices(ctx context.Context, today time.Time, limit int) ([]repository.OverdueInvoice, error) {
	const query = `
	SELECT
	    i.id,
	    i.invoice_number,
	    COALESCE(c.name, '') AS contact_name,
	    i.total,
	    i.currency,
	    i.due_date
	FROM invoices i
	LEFT JOIN contacts c ON c.id = i.contact_id
	WHERE i.status = 'OVERDUE'
	   OR (i.status = 'PENDING' AND i.due_date < $1)
	ORDER BY i.due_date ASC, i.invoice_number ASC
	LIMIT $2`

	rows, err := r.q.Query(ctx, query, entity.DateOf(today), limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.OverdueInvoices: %w", err)
	}
	defer rows.Close()

	var out []repository.OverdueInvoice
	for rows.Next() {
		var row repository.OverdueInvoice
		if err := rows.Scan(
			&row.ID,
			&row.InvoiceNumber,
			&row.ContactName,
			&row.Total,
			&row.Currency,
			&row.DueDate,
		); err != nil {
			return nil, fmt.Errorf("analytics.OverdueInvoices scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// RecentContacts últimos contactos creados.
func (r *AnalyticsRepo) RecentContacts(ctx context.Context, limit int) ([]*entity.Contact, error) {
	rows, err := r.q.Query(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.RecentContacts: %w", err)
	}
	defer rows.Close()

	var out []*entity.Contact
	for rows.Next() {
		var (
			c      entity.Contact
			status string
		)
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("analytics.RecentContacts scan: %w", err)
		}
		c.Status = entity.ContactStatus(status)
		out = append(out, &c)
	}
	return out, rows.Err()
}
