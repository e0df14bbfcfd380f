package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/money"
)

// InvoiceStatus estado de una factura.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// Valid indica si el estado es uno de los canónicos.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoicePaid, InvoiceOverdue, InvoiceCancelled:
		return true
	}
	return false
}

// Plazos de vencimiento en días.
const (
	ConversionDueDays = 3  // anticipo tras aceptar una cotización
	SuccessorDueDays  = 33 // 30 días de término + 3 de gracia
)

// Invoice factura.
type Invoice struct {
	ID            string
	InvoiceNumber string
	QuoteID       string // "" si no proviene de una cotización
	ContactID     string // "" si el contacto fue eliminado
	Status        InvoiceStatus
	Items         []LineItem
	// TaxRate porcentaje (18 = 18 %). nil cuando el impuesto se copió como importe fijo de una cotización.
	TaxRate       *decimal.Decimal
	Discount      decimal.Decimal
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Currency      string
	Language      string
	Notes         string
	DueDate       time.Time
	PaidAt        *time.Time
	PaymentMethod string
	Recurring     bool
	ConvertedFrom string // número de la cotización aceptada que originó la factura
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Recalculate valida las líneas y recalcula subtotal, impuesto y total.
func (inv *Invoice) Recalculate() error {
	if err := ValidateItems(inv.Items); err != nil {
		return err
	}
	tax := money.FlatTax(inv.Tax)
	if inv.TaxRate != nil {
		tax = money.RateTax(*inv.TaxRate)
	}
	t, err := money.Calculate(moneyLines(inv.Items),
		money.Discount{Kind: money.DiscountFixed, Value: inv.Discount}, tax)
	if err != nil {
		return err
	}
	inv.Subtotal, inv.Tax, inv.Total = t.Subtotal, t.Tax, t.Total
	return nil
}

// Open PENDING u OVERDUE (no terminal).
func (inv *Invoice) Open() bool {
	return inv.Status == InvoicePending || inv.Status == InvoiceOverdue
}

// InvoiceUpdate campos opcionales de una edición parcial; nil significa "no enviado".
type InvoiceUpdate struct {
	Items   *[]LineItem
	TaxRate *decimal.Decimal
	DueDate *time.Time
	Notes   *string
}

// Apply aplica la edición; si cambian líneas o tasa recalcula. Ante error la factura queda intacta.
func (inv *Invoice) Apply(u InvoiceUpdate, now time.Time) error {
	if !inv.Open() {
		return fmt.Errorf("%w: factura en estado %s", domain.ErrInvalidTransition, inv.Status)
	}
	next := *inv
	if u.Items != nil {
		next.Items = CloneItems(*u.Items)
	}
	if u.TaxRate != nil {
		rate := *u.TaxRate
		next.TaxRate = &rate
	}
	if u.DueDate != nil {
		next.DueDate = DateOf(*u.DueDate)
	}
	if u.Notes != nil {
		next.Notes = *u.Notes
	}
	if u.Items != nil || u.TaxRate != nil {
		if err := next.Recalculate(); err != nil {
			return err
		}
	}
	next.UpdatedAt = now
	*inv = next
	return nil
}

// MarkPaid PENDING/OVERDUE → PAID.
func (inv *Invoice) MarkPaid(now time.Time, paymentMethod string) error {
	if !inv.Open() {
		return fmt.Errorf("%w: no se puede pagar una factura %s", domain.ErrInvalidTransition, inv.Status)
	}
	paidAt := now
	inv.Status = InvoicePaid
	inv.PaidAt = &paidAt
	if paymentMethod != "" {
		inv.PaymentMethod = paymentMethod
	}
	inv.UpdatedAt = now
	return nil
}

// Cancel PENDING/OVERDUE → CANCELLED.
func (inv *Invoice) Cancel(now time.Time) error {
	if !inv.Open() {
		return fmt.Errorf("%w: no se puede cancelar una factura %s", domain.ErrInvalidTransition, inv.Status)
	}
	inv.Status = InvoiceCancelled
	inv.UpdatedAt = now
	return nil
}

// IsOverdue PENDING con fecha de vencimiento anterior a today.
func (inv *Invoice) IsOverdue(today time.Time) bool {
	return inv.Status == InvoicePending && DateOf(inv.DueDate).Before(DateOf(today))
}

// MarkOverdue materializa el estado OVERDUE; false si la factura no está vencida.
func (inv *Invoice) MarkOverdue(now time.Time) bool {
	if !inv.IsOverdue(now) {
		return false
	}
	inv.Status = InvoiceOverdue
	inv.UpdatedAt = now
	return true
}

// NextPeriod construye la factura del siguiente periodo: mismo contacto, líneas e importes,
// vencimiento hoy + SuccessorDueDays y estado PENDING.
func (inv *Invoice) NextPeriod(id, number string, now time.Time) *Invoice {
	next := &Invoice{
		ID:            id,
		InvoiceNumber: number,
		ContactID:     inv.ContactID,
		Status:        InvoicePending,
		Items:         CloneItems(inv.Items),
		Discount:      inv.Discount,
		Subtotal:      inv.Subtotal,
		Tax:           inv.Tax,
		Total:         inv.Total,
		Currency:      inv.Currency,
		Language:      inv.Language,
		Notes:         inv.Notes,
		DueDate:       DateOf(now).AddDate(0, 0, SuccessorDueDays),
		Recurring:     inv.Recurring,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if inv.TaxRate != nil {
		rate := *inv.TaxRate
		next.TaxRate = &rate
	}
	return next
}

// InvoiceFromQuote copia líneas e importes de la cotización (el impuesto como importe fijo)
// para que el total de la factura coincida con el de la cotización.
func InvoiceFromQuote(q *Quote, id, number string, dueDate, now time.Time) *Invoice {
	return &Invoice{
		ID:            id,
		InvoiceNumber: number,
		QuoteID:       q.ID,
		ContactID:     q.ContactID,
		Status:        InvoicePending,
		Items:         CloneItems(q.Items),
		Discount:      q.Discount,
		Subtotal:      q.Subtotal,
		Tax:           q.Tax,
		Total:         q.Total,
		Currency:      q.Currency,
		Language:      q.Language,
		Notes:         q.Notes,
		DueDate:       DateOf(dueDate),
		Recurring:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
