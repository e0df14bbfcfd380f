package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, invoice_number, quote_id, contact_id, status, items,
	tax_rate, discount, subtotal, tax, total,
	currency, language, notes, due_date, paid_at, payment_method, recurring,
	converted_from, created_at, updated_at`

// Create persiste la factura. Un número repetido devuelve domain.ErrNumberCollision.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	items, err := encodeItems(inv.Items)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err = r.q.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, nullIfEmpty(inv.QuoteID), nullIfEmpty(inv.ContactID), string(inv.Status), items,
		inv.TaxRate, inv.Discount, inv.Subtotal, inv.Tax, inv.Total,
		inv.Currency, inv.Language, inv.Notes, inv.DueDate, inv.PaidAt, nullIfEmpty(inv.PaymentMethod), inv.Recurring,
		nullIfEmpty(inv.ConvertedFrom), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return numberInsertError("insert invoice", "invoices_invoice_number_key", err)
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

// GetForUpdate obtiene la factura bloqueando la fila hasta el fin de la transacción.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

func (r *InvoiceRepo) get(ctx context.Context, query, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// Update persiste estado, líneas, importes, fechas y pago. invoice_number no se modifica nunca.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	items, err := encodeItems(inv.Items)
	if err != nil {
		return err
	}
	query := `
		UPDATE invoices
		SET status         = $2,
		    items          = $3,
		    tax_rate       = $4,
		    discount       = $5,
		    subtotal       = $6,
		    tax            = $7,
		    total          = $8,
		    notes          = $9,
		    due_date       = $10,
		    paid_at        = $11,
		    payment_method = $12,
		    updated_at     = $13
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, string(inv.Status), items,
		inv.TaxRate, inv.Discount, inv.Subtotal, inv.Tax, inv.Total,
		inv.Notes, inv.DueDate, inv.PaidAt, nullIfEmpty(inv.PaymentMethod),
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListOverdueForUpdate facturas PENDING con vencimiento anterior a today, bloqueadas.
func (r *InvoiceRepo) ListOverdueForUpdate(ctx context.Context, today time.Time) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices
		WHERE status = 'PENDING' AND due_date < $1
		ORDER BY due_date, invoice_number
		FOR UPDATE SKIP LOCKED`
	rows, err := r.q.Query(ctx, query, entity.DateOf(today))
	if err != nil {
		return nil, fmt.Errorf("list overdue invoices: %w", err)
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// LastNumberWithPrefix último número con ese prefijo (INV-10000 después de INV-9999).
func (r *InvoiceRepo) LastNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var number string
	err := r.q.QueryRow(ctx, `
		SELECT invoice_number FROM invoices
		WHERE starts_with(invoice_number, $1)
		ORDER BY length(invoice_number) DESC, invoice_number DESC
		LIMIT 1`, prefix).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last invoice number: %w", err)
	}
	return number, nil
}

// LockNumbering serializa la numeración de facturas de la serie.
func (r *InvoiceRepo) LockNumbering(ctx context.Context, series string) error {
	return lockSeries(ctx, r.q, "invoices:"+series)
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv                              entity.Invoice
		quoteID, contactID, method, from *string
		status                           string
		items                            []byte
		taxRate                          decimal.NullDecimal
		paidAt                           *time.Time
	)
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &quoteID, &contactID, &status, &items,
		&taxRate, &inv.Discount, &inv.Subtotal, &inv.Tax, &inv.Total,
		&inv.Currency, &inv.Language, &inv.Notes, &inv.DueDate, &paidAt, &method, &inv.Recurring,
		&from, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if inv.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	inv.QuoteID = derefStr(quoteID)
	inv.ContactID = derefStr(contactID)
	inv.PaymentMethod = derefStr(method)
	inv.ConvertedFrom = derefStr(from)
	inv.Status = entity.InvoiceStatus(status)
	if taxRate.Valid {
		rate := taxRate.Decimal
		inv.TaxRate = &rate
	}
	inv.PaidAt = paidAt
	return &inv, nil
}
