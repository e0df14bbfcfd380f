package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/money"
	"github.com/jhoicas/billing-api/internal/domain/numbering"
	"github.com/jhoicas/billing-api/internal/domain/repository"
	"github.com/jhoicas/billing-api/pkg/urlsign"
)

// QuoteUseCase ciclo de vida de la cotización: DRAFT → SENT → {aceptada, rechazada, EXPIRED}.
// La aceptación vive en ConversionUseCase y la expiración en SweepUseCase.
type QuoteUseCase struct {
	Deps
}

// NewQuoteUseCase construye el caso de uso.
func NewQuoteUseCase(d Deps) *QuoteUseCase {
	return &QuoteUseCase{Deps: d}
}

// Create crea la cotización en DRAFT con número nuevo y pasa el contacto a DRAFTING.
func (uc *QuoteUseCase) Create(ctx context.Context, in dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	if in.ContactID == "" {
		return nil, fmt.Errorf("%w: contact_id requerido", domain.ErrInvalidInput)
	}
	now := uc.now()
	q := &entity.Quote{
		ID:            uuid.New().String(),
		ContactID:     in.ContactID,
		LeadID:        in.LeadID,
		Status:        entity.QuoteDraft,
		Items:         itemsFromDTO(in.Items),
		DiscountType:  money.DiscountKind(in.DiscountType),
		DiscountValue: in.DiscountValue,
		Tax:           in.Tax,
		Currency:      uc.currency(in.Currency),
		Language:      uc.language(in.Language),
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// se valida antes de abrir la transacción
	if err := q.Recalculate(); err != nil {
		return nil, err
	}

	err := numbering.Retry(uc.Settings.MaxRetries, func(int) error {
		return uc.Tx.RunBilling(ctx, func(
			contacts repository.ContactRepository,
			quotes repository.QuoteRepository,
			_ repository.InvoiceRepository,
		) error {
			contact, err := contacts.GetByID(ctx, q.ContactID)
			if err != nil {
				return fmt.Errorf("get contact: %w", err)
			}
			if contact == nil {
				return fmt.Errorf("%w: contacto %s", domain.ErrNotFound, q.ContactID)
			}
			if q.LeadID != "" && q.LeadID != q.ContactID {
				lead, err := contacts.GetByID(ctx, q.LeadID)
				if err != nil {
					return fmt.Errorf("get lead: %w", err)
				}
				if lead == nil {
					return fmt.Errorf("%w: lead %s", domain.ErrNotFound, q.LeadID)
				}
			}

			number, err := uc.nextNumber(ctx, uc.Settings.QuoteSeries, quotes)
			if err != nil {
				return err
			}
			q.QuoteNumber = number
			if err := quotes.Create(ctx, q); err != nil {
				return err
			}
			_, err = advanceContact(ctx, contacts, q.ContactID, entity.ContactDrafting, now)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	uc.Log.Info().Str("quote_id", q.ID).Str("number", q.QuoteNumber).Msg("cotización creada")
	return toQuoteResponse(q), nil
}

// GetByID devuelve la cotización o domain.ErrNotFound.
func (uc *QuoteUseCase) GetByID(ctx context.Context, id string) (*dto.QuoteResponse, error) {
	q, err := uc.Quotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	return toQuoteResponse(q), nil
}

// Update aplica una edición parcial (solo DRAFT o SENT) y recalcula si cambió algo financiero.
func (uc *QuoteUseCase) Update(ctx context.Context, id string, in dto.UpdateQuoteRequest) (*dto.QuoteResponse, error) {
	u := entity.QuoteUpdate{
		DiscountValue: in.DiscountValue,
		Tax:           in.Tax,
		Currency:      in.Currency,
		Language:      in.Language,
		Notes:         in.Notes,
	}
	if in.Items != nil {
		items := itemsFromDTO(*in.Items)
		u.Items = &items
	}
	if in.DiscountType != nil {
		kind := money.DiscountKind(*in.DiscountType)
		u.DiscountType = &kind
	}

	var q *entity.Quote
	err := uc.Tx.RunBilling(ctx, func(
		_ repository.ContactRepository,
		quotes repository.QuoteRepository,
		_ repository.InvoiceRepository,
	) error {
		var err error
		q, err = lockQuote(ctx, quotes, id)
		if err != nil {
			return err
		}
		if err := q.Apply(u, uc.now()); err != nil {
			return err
		}
		return quotes.Update(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return toQuoteResponse(q), nil
}

// Send DRAFT → SENT. Tras confirmar emite quote.sent con el enlace firmado de 30 días.
func (uc *QuoteUseCase) Send(ctx context.Context, id string) (*dto.SendQuoteResponse, error) {
	now := uc.now()
	var (
		q       *entity.Quote
		contact *entity.Contact
	)
	err := uc.Tx.RunBilling(ctx, func(
		contacts repository.ContactRepository,
		quotes repository.QuoteRepository,
		_ repository.InvoiceRepository,
	) error {
		var err error
		q, err = lockQuote(ctx, quotes, id)
		if err != nil {
			return err
		}
		if err := q.Send(now, uc.Settings.QuoteValidityDays); err != nil {
			return err
		}
		if err := quotes.Update(ctx, q); err != nil {
			return err
		}
		contact, err = advanceContact(ctx, contacts, q.ContactID, entity.ContactQuoted, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	link, _ := uc.link(DocumentQuote, q.ID, urlsign.DeliveryValidity)
	uc.publish(ctx, withContact(Event{
		Type:           EventQuoteSent,
		DocumentID:     q.ID,
		DocumentNumber: q.QuoteNumber,
		ContactID:      q.ContactID,
		Total:          q.Total,
		Currency:       q.Currency,
		Link:           link,
		OccurredAt:     now,
	}, contact))
	uc.Log.Info().Str("quote_id", q.ID).Str("number", q.QuoteNumber).Msg("cotización enviada")
	return &dto.SendQuoteResponse{Quote: *toQuoteResponse(q), PDFURL: link}, nil
}

// Reject elimina la cotización junto con su contacto (y el lead si es otro contacto).
// Es irreversible: un lead rechazado se considera descartado.
func (uc *QuoteUseCase) Reject(ctx context.Context, id string) error {
	now := uc.now()
	var (
		q       *entity.Quote
		contact *entity.Contact
	)
	err := uc.Tx.RunBilling(ctx, func(
		contacts repository.ContactRepository,
		quotes repository.QuoteRepository,
		_ repository.InvoiceRepository,
	) error {
		var err error
		q, err = lockQuote(ctx, quotes, id)
		if err != nil {
			return err
		}
		if err := q.CheckReject(); err != nil {
			return err
		}
		if contact, err = contacts.GetByID(ctx, q.ContactID); err != nil {
			return fmt.Errorf("get contact: %w", err)
		}
		if err := quotes.Delete(ctx, q.ID); err != nil {
			return err
		}
		if err := contacts.Delete(ctx, q.ContactID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if q.LeadID != "" && q.LeadID != q.ContactID {
			if err := contacts.Delete(ctx, q.LeadID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.publish(ctx, withContact(Event{
		Type:           EventQuoteRejected,
		DocumentID:     q.ID,
		DocumentNumber: q.QuoteNumber,
		ContactID:      q.ContactID,
		Total:          q.Total,
		Currency:       q.Currency,
		OccurredAt:     now,
	}, contact))
	uc.Log.Info().Str("quote_id", q.ID).Str("number", q.QuoteNumber).Msg("cotización rechazada y contacto eliminado")
	return nil
}

// Link emite un enlace público de 7 días al PDF de la cotización.
func (uc *QuoteUseCase) Link(ctx context.Context, id string) (*dto.LinkResponse, error) {
	q, err := uc.Quotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	url, expires := uc.link(DocumentQuote, q.ID, urlsign.DefaultValidity)
	return &dto.LinkResponse{URL: url, ExpiresAt: expires.Format(time.RFC3339)}, nil
}

func lockQuote(ctx context.Context, quotes repository.QuoteRepository, id string) (*entity.Quote, error) {
	q, err := quotes.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if q == nil {
		return nil, fmt.Errorf("%w: cotización %s", domain.ErrNotFound, id)
	}
	return q, nil
}
