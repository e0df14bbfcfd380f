package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/numbering"
	"github.com/jhoicas/billing-api/internal/domain/repository"
	"github.com/jhoicas/billing-api/pkg/urlsign"
)

// ConversionUseCase acepta una cotización SENT y la convierte en factura.
//
// Todo ocurre en una sola transacción:
//
//	número de factura → factura (vence hoy + 3 días) → contacto CONVERTED → borrar cotización
//
// Si cualquier paso falla no queda nada a medias. Las notificaciones salen tras el commit.
type ConversionUseCase struct {
	Deps
}

// NewConversionUseCase construye el caso de uso.
func NewConversionUseCase(d Deps) *ConversionUseCase {
	return &ConversionUseCase{Deps: d}
}

// Convert devuelve la factura creada y su enlace de entrega de 30 días.
func (uc *ConversionUseCase) Convert(ctx context.Context, quoteID string) (*dto.ConversionResponse, error) {
	now := uc.now()
	var (
		q       *entity.Quote
		inv     *entity.Invoice
		contact *entity.Contact
	)
	err := numbering.Retry(uc.Settings.MaxRetries, func(int) error {
		return uc.Tx.RunBilling(ctx, func(
			contacts repository.ContactRepository,
			quotes repository.QuoteRepository,
			invoices repository.InvoiceRepository,
		) error {
			var err error
			q, err = lockQuote(ctx, quotes, quoteID)
			if err != nil {
				return err
			}
			if err := q.CheckConvert(); err != nil {
				return err
			}

			due := entity.DateOf(now).AddDate(0, 0, entity.ConversionDueDays)
			inv = entity.InvoiceFromQuote(q, uuid.New().String(), "", due, now)
			// la cotización desaparece en esta misma transacción
			inv.QuoteID = ""
			inv.ConvertedFrom = q.QuoteNumber
			if err := uc.insertInvoice(ctx, invoices, inv); err != nil {
				return err
			}
			if contact, err = advanceContact(ctx, contacts, q.ContactID, entity.ContactConverted, now); err != nil {
				return err
			}
			return quotes.Delete(ctx, q.ID)
		})
	})
	if err != nil {
		return nil, err
	}

	link, _ := uc.link(DocumentInvoice, inv.ID, urlsign.DeliveryValidity)
	uc.publish(ctx,
		withContact(Event{
			Type:           EventQuoteConverted,
			DocumentID:     q.ID,
			DocumentNumber: q.QuoteNumber,
			ContactID:      q.ContactID,
			Total:          q.Total,
			Currency:       q.Currency,
			OccurredAt:     now,
		}, contact),
		withContact(Event{
			Type:           EventInvoiceCreated,
			DocumentID:     inv.ID,
			DocumentNumber: inv.InvoiceNumber,
			ContactID:      inv.ContactID,
			Total:          inv.Total,
			Currency:       inv.Currency,
			Link:           link,
			OccurredAt:     now,
		}, contact),
	)
	uc.Log.Info().
		Str("quote_number", q.QuoteNumber).
		Str("invoice_number", inv.InvoiceNumber).
		Msg("cotización convertida en factura")
	return &dto.ConversionResponse{Invoice: *toInvoiceResponse(inv), PDFURL: link}, nil
}
