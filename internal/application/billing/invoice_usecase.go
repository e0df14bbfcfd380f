package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/numbering"
	"github.com/jhoicas/billing-api/internal/domain/repository"
	"github.com/jhoicas/billing-api/pkg/urlsign"
)

// InvoiceUseCase ciclo de vida de la factura: PENDING → {PAID, OVERDUE, CANCELLED}.
type InvoiceUseCase struct {
	Deps
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(d Deps) *InvoiceUseCase {
	return &InvoiceUseCase{Deps: d}
}

// Create crea una factura PENDING. Si no se indica tasa se usa la configurada.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.ContactID == "" {
		return nil, fmt.Errorf("%w: contact_id requerido", domain.ErrInvalidInput)
	}
	due, err := parseDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	rate := uc.Settings.DefaultTaxRate
	if in.TaxRate != nil {
		rate = *in.TaxRate
	}
	recurring := true
	if in.Recurring != nil {
		recurring = *in.Recurring
	}
	now := uc.now()
	inv := &entity.Invoice{
		ID:        uuid.New().String(),
		ContactID: in.ContactID,
		Status:    entity.InvoicePending,
		Items:     itemsFromDTO(in.Items),
		TaxRate:   &rate,
		Discount:  in.Discount,
		Currency:  uc.currency(in.Currency),
		Language:  uc.language(in.Language),
		Notes:     in.Notes,
		DueDate:   entity.DateOf(due),
		Recurring: recurring,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := inv.Recalculate(); err != nil {
		return nil, err
	}

	var contact *entity.Contact
	err = numbering.Retry(uc.Settings.MaxRetries, func(int) error {
		return uc.Tx.RunBilling(ctx, func(
			contacts repository.ContactRepository,
			_ repository.QuoteRepository,
			invoices repository.InvoiceRepository,
		) error {
			var err error
			contact, err = contacts.GetByID(ctx, inv.ContactID)
			if err != nil {
				return fmt.Errorf("get contact: %w", err)
			}
			if contact == nil {
				return fmt.Errorf("%w: contacto %s", domain.ErrNotFound, inv.ContactID)
			}
			return uc.insertInvoice(ctx, invoices, inv)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.announce(ctx, inv, contact, now)
	return toInvoiceResponse(inv), nil
}

// CreateFromQuote copia una cotización en una factura nueva sin tocar la cotización.
func (uc *InvoiceUseCase) CreateFromQuote(ctx context.Context, in dto.InvoiceFromQuoteRequest) (*dto.InvoiceResponse, error) {
	due, err := parseDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	var (
		inv     *entity.Invoice
		contact *entity.Contact
	)
	err = numbering.Retry(uc.Settings.MaxRetries, func(int) error {
		return uc.Tx.RunBilling(ctx, func(
			contacts repository.ContactRepository,
			quotes repository.QuoteRepository,
			invoices repository.InvoiceRepository,
		) error {
			q, err := quotes.GetByID(ctx, in.QuoteID)
			if err != nil {
				return fmt.Errorf("get quote: %w", err)
			}
			if q == nil {
				return fmt.Errorf("%w: cotización %s", domain.ErrNotFound, in.QuoteID)
			}
			if contact, err = contacts.GetByID(ctx, q.ContactID); err != nil {
				return fmt.Errorf("get contact: %w", err)
			}
			inv = entity.InvoiceFromQuote(q, uuid.New().String(), "", due, now)
			return uc.insertInvoice(ctx, invoices, inv)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.announce(ctx, inv, contact, now)
	return toInvoiceResponse(inv), nil
}

// GetByID devuelve la factura o domain.ErrNotFound.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return toInvoiceResponse(inv), nil
}

// Update aplica una edición parcial (solo PENDING u OVERDUE); si cambian líneas o tasa recalcula.
func (uc *InvoiceUseCase) Update(ctx context.Context, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	u := entity.InvoiceUpdate{TaxRate: in.TaxRate, Notes: in.Notes}
	if in.Items != nil {
		items := itemsFromDTO(*in.Items)
		u.Items = &items
	}
	if in.DueDate != nil {
		due, err := parseDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		u.DueDate = &due
	}

	var inv *entity.Invoice
	err := uc.Tx.RunBilling(ctx, func(
		_ repository.ContactRepository,
		_ repository.QuoteRepository,
		invoices repository.InvoiceRepository,
	) error {
		var err error
		inv, err = lockInvoice(ctx, invoices, id)
		if err != nil {
			return err
		}
		if err := inv.Apply(u, uc.now()); err != nil {
			return err
		}
		return invoices.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// MarkPaid PENDING/OVERDUE → PAID. Si la factura es recurrente, la del siguiente periodo
// se crea en la misma transacción; las notificaciones salen solo después del commit.
func (uc *InvoiceUseCase) MarkPaid(ctx context.Context, id string, in dto.MarkPaidRequest) (*dto.MarkPaidResponse, error) {
	now := uc.now()
	var (
		inv, next *entity.Invoice
		contact   *entity.Contact
	)
	err := numbering.Retry(uc.Settings.MaxRetries, func(int) error {
		next = nil
		return uc.Tx.RunBilling(ctx, func(
			contacts repository.ContactRepository,
			_ repository.QuoteRepository,
			invoices repository.InvoiceRepository,
		) error {
			var err error
			inv, err = lockInvoice(ctx, invoices, id)
			if err != nil {
				return err
			}
			if err := inv.MarkPaid(now, in.PaymentMethod); err != nil {
				return err
			}
			if err := invoices.Update(ctx, inv); err != nil {
				return err
			}
			if inv.ContactID != "" {
				if contact, err = contacts.GetByID(ctx, inv.ContactID); err != nil {
					return fmt.Errorf("get contact: %w", err)
				}
			}
			if !inv.Recurring {
				return nil
			}
			next = inv.NextPeriod(uuid.New().String(), "", now)
			return uc.insertInvoice(ctx, invoices, next)
		})
	})
	if err != nil {
		return nil, err
	}

	receipt, _ := uc.link(DocumentReceipt, inv.ID, urlsign.DeliveryValidity)
	uc.publish(ctx, withContact(Event{
		Type:           EventInvoicePaid,
		DocumentID:     inv.ID,
		DocumentNumber: inv.InvoiceNumber,
		ContactID:      inv.ContactID,
		Total:          inv.Total,
		Currency:       inv.Currency,
		Link:           receipt,
		OccurredAt:     now,
	}, contact))
	uc.Log.Info().Str("invoice_id", inv.ID).Str("number", inv.InvoiceNumber).Str("payment_method", inv.PaymentMethod).Msg("factura pagada")

	out := &dto.MarkPaidResponse{Invoice: *toInvoiceResponse(inv), ReceiptURL: receipt}
	if next != nil {
		uc.announce(ctx, next, contact, now)
		out.Successor = toInvoiceResponse(next)
	}
	return out, nil
}

// Cancel PENDING/OVERDUE → CANCELLED, sin efectos adicionales.
func (uc *InvoiceUseCase) Cancel(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	var inv *entity.Invoice
	err := uc.Tx.RunBilling(ctx, func(
		_ repository.ContactRepository,
		_ repository.QuoteRepository,
		invoices repository.InvoiceRepository,
	) error {
		var err error
		inv, err = lockInvoice(ctx, invoices, id)
		if err != nil {
			return err
		}
		if err := inv.Cancel(uc.now()); err != nil {
			return err
		}
		return invoices.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("invoice_id", inv.ID).Str("number", inv.InvoiceNumber).Msg("factura cancelada")
	return toInvoiceResponse(inv), nil
}

// Link emite un enlace público de 7 días al PDF de la factura.
func (uc *InvoiceUseCase) Link(ctx context.Context, id string) (*dto.LinkResponse, error) {
	inv, err := uc.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	url, expires := uc.link(DocumentInvoice, inv.ID, urlsign.DefaultValidity)
	return &dto.LinkResponse{URL: url, ExpiresAt: expires.Format(time.RFC3339)}, nil
}

// insertInvoice numera y persiste la factura dentro de la transacción en curso.
func (d Deps) insertInvoice(ctx context.Context, invoices repository.InvoiceRepository, inv *entity.Invoice) error {
	number, err := d.nextNumber(ctx, d.Settings.InvoiceSeries, invoices)
	if err != nil {
		return err
	}
	inv.InvoiceNumber = number
	return invoices.Create(ctx, inv)
}

// announce emite invoice.created con el enlace de entrega de 30 días.
func (d Deps) announce(ctx context.Context, inv *entity.Invoice, contact *entity.Contact, now time.Time) {
	link, _ := d.link(DocumentInvoice, inv.ID, urlsign.DeliveryValidity)
	d.publish(ctx, withContact(Event{
		Type:           EventInvoiceCreated,
		DocumentID:     inv.ID,
		DocumentNumber: inv.InvoiceNumber,
		ContactID:      inv.ContactID,
		Total:          inv.Total,
		Currency:       inv.Currency,
		Link:           link,
		OccurredAt:     now,
	}, contact))
	d.Log.Info().Str("invoice_id", inv.ID).Str("number", inv.InvoiceNumber).Msg("factura creada")
}

func lockInvoice(ctx context.Context, invoices repository.InvoiceRepository, id string) (*entity.Invoice, error) {
	inv, err := invoices.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, id)
	}
	return inv, nil
}
