package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
	"github.com/jhoicas/billing-api/pkg/urlsign"
)

// SweepLockKey clave del candado distribuido del barrido.
const SweepLockKey = "billing:sweep"

// SweepResult conteo de cambios aplicados en una pasada.
type SweepResult struct {
	RemindersSent int
	Expired       int
	Overdue       int
	Skipped       bool // otra réplica tenía el candado
}

// SweepUseCase barrido diario: expira cotizaciones vencidas, marca recordatorios y
// materializa OVERDUE en facturas. Es idempotente: repetirlo el mismo día no cambia nada.
type SweepUseCase struct {
	Deps
	locker  Locker
	lockTTL time.Duration
}

// NewSweepUseCase construye el caso de uso. locker puede ser nil (una sola réplica).
func NewSweepUseCase(d Deps, locker Locker) *SweepUseCase {
	return &SweepUseCase{Deps: d, locker: locker, lockTTL: 10 * time.Minute}
}

// Run ejecuta una pasada completa en una transacción y publica los eventos tras el commit.
func (uc *SweepUseCase) Run(ctx context.Context) (SweepResult, error) {
	if uc.locker != nil {
		release, acquired, err := uc.locker.TryLock(ctx, SweepLockKey, uc.lockTTL)
		switch {
		case err != nil:
			// sin candado se sigue: el barrido es idempotente y bloquea filas
			uc.Log.Warn().Err(err).Msg("sweep: candado no disponible, se continúa")
		case !acquired:
			uc.Log.Info().Msg("sweep: otra instancia está ejecutando el barrido")
			return SweepResult{Skipped: true}, nil
		default:
			defer release()
		}
	}

	now := uc.now()
	today := entity.DateOf(now)
	var (
		res    SweepResult
		events []Event
	)
	err := uc.Tx.RunBilling(ctx, func(
		contacts repository.ContactRepository,
		quotes repository.QuoteRepository,
		invoices repository.InvoiceRepository,
	) error {
		res, events = SweepResult{}, nil

		sent, err := quotes.ListSentForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("list sent quotes: %w", err)
		}
		for _, q := range sent {
			var evType EventType
			switch q.SweepAction(today) {
			case entity.SweepExpire:
				if err := q.Expire(now); err != nil {
					return err
				}
				evType = EventQuoteExpired
				res.Expired++
			case entity.SweepRemind:
				q.MarkReminded(now)
				evType = EventQuoteReminder
				res.RemindersSent++
			default:
				continue
			}
			if err := quotes.Update(ctx, q); err != nil {
				return err
			}
			ev := Event{
				Type:           evType,
				DocumentID:     q.ID,
				DocumentNumber: q.QuoteNumber,
				ContactID:      q.ContactID,
				Total:          q.Total,
				Currency:       q.Currency,
				OccurredAt:     now,
			}
			if evType == EventQuoteReminder {
				ev.Link, _ = uc.link(DocumentQuote, q.ID, urlsign.DeliveryValidity)
			}
			c, err := contacts.GetByID(ctx, q.ContactID)
			if err != nil {
				return fmt.Errorf("get contact: %w", err)
			}
			events = append(events, withContact(ev, c))
		}

		overdue, err := invoices.ListOverdueForUpdate(ctx, today)
		if err != nil {
			return fmt.Errorf("list overdue invoices: %w", err)
		}
		for _, inv := range overdue {
			if !inv.MarkOverdue(now) {
				continue
			}
			if err := invoices.Update(ctx, inv); err != nil {
				return err
			}
			res.Overdue++
			ev := Event{
				Type:           EventInvoiceOverdue,
				DocumentID:     inv.ID,
				DocumentNumber: inv.InvoiceNumber,
				ContactID:      inv.ContactID,
				Total:          inv.Total,
				Currency:       inv.Currency,
				OccurredAt:     now,
			}
			ev.Link, _ = uc.link(DocumentInvoice, inv.ID, urlsign.DeliveryValidity)
			if inv.ContactID != "" {
				c, err := contacts.GetByID(ctx, inv.ContactID)
				if err != nil {
					return fmt.Errorf("get contact: %w", err)
				}
				ev = withContact(ev, c)
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return SweepResult{}, err
	}

	uc.publish(ctx, events...)
	uc.Log.Info().
		Int("reminders_sent", res.RemindersSent).
		Int("expired", res.Expired).
		Int("overdue", res.Overdue).
		Msg("sweep completado")
	return res, nil
}
