package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/domain/entity"
)

const day = 24 * time.Hour

func TestSweep_RecordatorioUnaSolaVez(t *testing.T) {
	h := newHarness(t)
	q := h.newSentQuote(t, h.newContact(t, "Ana"))

	h.clock.advance(7 * day) // faltan 8 días
	res, err := h.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.RemindersSent)
	assert.True(t, h.store.Quote(q.ID).ReminderSent)
	ev := h.events.last()
	assert.Equal(t, billing.EventQuoteReminder, ev.Type)
	assert.NotEmpty(t, ev.Link)
	assert.Equal(t, "cliente@example.com", ev.ContactEmail)

	again, err := h.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, billing.SweepResult{}, again)

	h.clock.advance(day) // faltan 7 días, ya recordada
	res, err = h.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.RemindersSent)
}

func TestSweep_FueraDeVentanaNoHaceNada(t *testing.T) {
	h := newHarness(t)
	h.newSentQuote(t, h.newContact(t, "Ana"))
	h.newQuote(t, h.newContact(t, "Beto")) // DRAFT, se ignora

	for _, offset := range []int{1, 5} {
		h.clock.advance(time.Duration(offset) * day)
		res, err := h.sweep.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, billing.SweepResult{}, res)
	}
}

func TestSweep_MaterializaVencidas(t *testing.T) {
	h := newHarness(t)
	inv := h.newInvoice(t, h.newContact(t, "Ana"), true) // vence en 10 días
	paid := h.newInvoice(t, h.newContact(t, "Beto"), false)
	_, err := h.invoices.MarkPaid(context.Background(), paid.ID, dtoMarkPaid("cash"))
	require.NoError(t, err)

	h.clock.advance(10 * day)
	res, err := h.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Overdue, "el día del vencimiento todavía no está vencida")

	h.clock.advance(day)
	res, err = h.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Overdue)
	assert.Equal(t, entity.InvoiceOverdue, h.store.Invoice(inv.ID).Status)
	assert.Equal(t, entity.InvoicePaid, h.store.Invoice(paid.ID).Status)
	assert.Equal(t, billing.EventInvoiceOverdue, h.events.last().Type)

	res, err = h.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, billing.SweepResult{}, res)
}

type fakeLocker struct {
	acquired bool
	err      error
	released int
}

func (l *fakeLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	if l.err != nil || !l.acquired {
		return nil, false, l.err
	}
	return func() { l.released++ }, true, nil
}

func TestSweep_Candado(t *testing.T) {
	h := newHarness(t)
	q := h.newSentQuote(t, h.newContact(t, "Ana"))
	h.clock.advance(16 * day)
	d := h.sweep.Deps

	busy := billing.NewSweepUseCase(d, &fakeLocker{})
	res, err := busy.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, entity.QuoteSent, h.store.Quote(q.ID).Status)

	broken := billing.NewSweepUseCase(d, &fakeLocker{err: errors.New("redis caído")})
	res, err = broken.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Expired)

	l := &fakeLocker{acquired: true}
	_, err = billing.NewSweepUseCase(d, l).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, l.released)
}
