package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// OverdueInvoice fila del widget de facturas vencidas. ContactName vacío si el contacto fue eliminado.
type OverdueInvoice struct {
	ID            string
	InvoiceNumber string
	ContactName   string
	Total         decimal.Decimal
	Currency      string
	DueDate       time.Time
}

// AnalyticsRepository consultas de solo lectura para el dashboard.
type AnalyticsRepository interface {
	// CountContactsCreated contactos creados en [from, to).
	CountContactsCreated(ctx context.Context, from, to time.Time) (int, error)

	// QuoteStatusCounts cotizaciones existentes agrupadas por estado.
	// Las aceptadas y rechazadas se eliminan, así que no aparecen aquí.
	QuoteStatusCounts(ctx context.Context) (map[entity.QuoteStatus]int, error)

	// CountConvertedQuotes facturas nacidas de aceptar una cotización.
	CountConvertedQuotes(ctx context.Context) (int, error)

	// OutstandingTotal suma de total de las facturas PENDING y OVERDUE (cero si no hay).
	OutstandingTotal(ctx context.Context) (decimal.Decimal, error)

	// OverdueInvoices las `limit` facturas vencidas más antiguas: OVERDUE, o PENDING
	// con vencimiento anterior a today que el barrido aún no marcó.
	OverdueInvoices(ctx context.Context, today time.Time, limit int) ([]OverdueInvoice, error)

	// RecentContacts los `limit` contactos más recientes.
	RecentContacts(ctx context.Context, limit int) ([]*entity.Contact, error)
}
