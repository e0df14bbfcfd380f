package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/money"
)

// QuoteStatus estado de una cotización.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "DRAFT"
	QuoteSent     QuoteStatus = "SENT"
	QuoteAccepted QuoteStatus = "ACCEPTED"
	QuoteRejected QuoteStatus = "REJECTED"
	QuoteExpired  QuoteStatus = "EXPIRED"
)

// Valid indica si el estado es uno de los canónicos.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteDraft, QuoteSent, QuoteAccepted, QuoteRejected, QuoteExpired:
		return true
	}
	return false
}

// Ventana de recordatorio: se avisa al cliente cuando faltan entre 7 y 8 días para el vencimiento.
const (
	ReminderWindowFrom = 7
	ReminderWindowTo   = 8
)

// Quote cotización. Los importes se recalculan siempre desde las líneas (Recalculate);
// nunca se aceptan desde el exterior.
type Quote struct {
	ID            string
	QuoteNumber   string
	ContactID     string
	LeadID        string // contacto secundario (opcional)
	Status        QuoteStatus
	Items         []LineItem
	DiscountType  money.DiscountKind
	DiscountValue decimal.Decimal
	Tax           decimal.Decimal // importe fijo
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal // importe resultante de DiscountType/DiscountValue
	Total         decimal.Decimal
	Currency      string
	Language      string
	Notes         string
	ValidUntil    *time.Time
	ReminderSent  bool
	SentAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Recalculate valida las líneas y recalcula subtotal, descuento y total.
func (q *Quote) Recalculate() error {
	if err := ValidateItems(q.Items); err != nil {
		return err
	}
	if q.DiscountType == "" {
		q.DiscountType = money.DiscountFixed
	}
	t, err := money.Calculate(moneyLines(q.Items),
		money.Discount{Kind: q.DiscountType, Value: q.DiscountValue},
		money.FlatTax(q.Tax))
	if err != nil {
		return err
	}
	q.Subtotal, q.Discount, q.Total = t.Subtotal, t.Discount, t.Total
	return nil
}

// Editable solo DRAFT y SENT admiten cambios.
func (q *Quote) Editable() bool {
	return q.Status == QuoteDraft || q.Status == QuoteSent
}

// QuoteUpdate campos opcionales de una edición parcial; nil significa "no enviado".
type QuoteUpdate struct {
	Items         *[]LineItem
	DiscountType  *money.DiscountKind
	DiscountValue *decimal.Decimal
	Tax           *decimal.Decimal
	Currency      *string
	Language      *string
	Notes         *string
}

func (u QuoteUpdate) financial() bool {
	return u.Items != nil || u.DiscountType != nil || u.DiscountValue != nil || u.Tax != nil
}

// Apply aplica la edición. Si cambia algún campo financiero recalcula los totales;
// ante cualquier error la cotización queda intacta.
func (q *Quote) Apply(u QuoteUpdate, now time.Time) error {
	if !q.Editable() {
		return fmt.Errorf("%w: cotización en estado %s", domain.ErrInvalidTransition, q.Status)
	}
	next := *q
	if u.Items != nil {
		next.Items = CloneItems(*u.Items)
	}
	if u.DiscountType != nil {
		next.DiscountType = *u.DiscountType
	}
	if u.DiscountValue != nil {
		next.DiscountValue = *u.DiscountValue
	}
	if u.Tax != nil {
		next.Tax = *u.Tax
	}
	if u.Currency != nil {
		next.Currency = *u.Currency
	}
	if u.Language != nil {
		next.Language = *u.Language
	}
	if u.Notes != nil {
		next.Notes = *u.Notes
	}
	if u.financial() {
		if err := next.Recalculate(); err != nil {
			return err
		}
	}
	next.UpdatedAt = now
	*q = next
	return nil
}

// Send DRAFT → SENT: fija sent_at, valid_until = hoy + validityDays y reinicia el recordatorio.
func (q *Quote) Send(now time.Time, validityDays int) error {
	if q.Status != QuoteDraft {
		return fmt.Errorf("%w: solo se envían cotizaciones DRAFT (actual %s)", domain.ErrInvalidTransition, q.Status)
	}
	sentAt := now
	validUntil := DateOf(now).AddDate(0, 0, validityDays)
	q.Status = QuoteSent
	q.SentAt = &sentAt
	q.ValidUntil = &validUntil
	q.ReminderSent = false
	q.UpdatedAt = now
	return nil
}

// CheckReject una cotización solo puede rechazarse mientras no esté en estado terminal.
func (q *Quote) CheckReject() error {
	if !q.Editable() {
		return fmt.Errorf("%w: no se puede rechazar una cotización %s", domain.ErrInvalidTransition, q.Status)
	}
	return nil
}

// CheckConvert solo las cotizaciones SENT pueden aceptarse y convertirse en factura.
func (q *Quote) CheckConvert() error {
	if q.Status != QuoteSent {
		return fmt.Errorf("%w: solo se aceptan cotizaciones SENT (actual %s)", domain.ErrInvalidTransition, q.Status)
	}
	return nil
}

// SweepAction resultado de evaluar una cotización en el barrido diario.
type SweepAction int

const (
	SweepNone SweepAction = iota
	SweepRemind
	SweepExpire
)

// DaysUntilExpiry días civiles entre today y valid_until.
func (q *Quote) DaysUntilExpiry(today time.Time) int {
	if q.ValidUntil == nil {
		return 0
	}
	return DaysBetween(today, *q.ValidUntil)
}

// SweepAction decide qué hacer con la cotización hoy. Solo actúa sobre SENT con valid_until.
func (q *Quote) SweepAction(today time.Time) SweepAction {
	if q.Status != QuoteSent || q.ValidUntil == nil {
		return SweepNone
	}
	days := q.DaysUntilExpiry(today)
	switch {
	case days < 0:
		return SweepExpire
	case !q.ReminderSent && days >= ReminderWindowFrom && days <= ReminderWindowTo:
		return SweepRemind
	}
	return SweepNone
}

// Expire SENT → EXPIRED.
func (q *Quote) Expire(now time.Time) error {
	if q.Status != QuoteSent {
		return fmt.Errorf("%w: solo expiran cotizaciones SENT (actual %s)", domain.ErrInvalidTransition, q.Status)
	}
	q.Status = QuoteExpired
	q.UpdatedAt = now
	return nil
}

// MarkReminded registra que ya se envió el recordatorio.
func (q *Quote) MarkReminded(now time.Time) {
	q.ReminderSent = true
	q.UpdatedAt = now
}
