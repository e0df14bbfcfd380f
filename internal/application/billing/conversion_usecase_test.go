package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/application/billing/billingtest"
	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
)

func TestConvert_CreaFacturaBorraCotizacionYConvierteContacto(t *testing.T) {
	h := newHarness(t)
	cid := h.newContact(t, "Ana")
	q := h.newSentQuote(t, cid)

	out, err := h.convert.Convert(context.Background(), q.ID)
	require.NoError(t, err)

	assert.Equal(t, q.Total, out.Invoice.Total)
	assert.Equal(t, "137.62", out.Invoice.Total)
	assert.Equal(t, "INV-0001", out.Invoice.InvoiceNumber)
	assert.Equal(t, "2026-10-20", out.Invoice.DueDate)
	assert.Equal(t, "PENDING", out.Invoice.Status)
	assert.Equal(t, q.QuoteNumber, out.Invoice.ConvertedFrom)
	assert.Contains(t, out.PDFURL, "/public/invoice/"+out.Invoice.ID+"/pdf?")

	assert.Nil(t, h.store.Quote(q.ID))
	assert.Equal(t, 1, h.store.InvoiceCount())
	assert.Equal(t, entity.ContactConverted, h.store.Contact(cid).Status)

	stored := h.store.Invoice(out.Invoice.ID)
	require.NoError(t, stored.Recalculate())
	assert.Equal(t, "137.62", stored.Total.StringFixed(2))

	types := h.events.types()
	assert.Equal(t, []billing.EventType{billing.EventQuoteConverted, billing.EventInvoiceCreated}, types[len(types)-2:])
}

func TestConvert_FalloAntesDelCommitNoDejaRastro(t *testing.T) {
	for _, op := range []string{billingtest.OpContactsUpdateStatus, billingtest.OpQuotesDelete} {
		t.Run(op, func(t *testing.T) {
			h := newHarness(t)
			cid := h.newContact(t, "Ana")
			q := h.newSentQuote(t, cid)
			before := len(h.events.types())

			h.store.Fail(op, errors.New("conexión perdida"))
			_, err := h.convert.Convert(context.Background(), q.ID)
			require.Error(t, err)

			assert.Equal(t, 0, h.store.InvoiceCount(), "no debe existir la factura")
			assert.Equal(t, entity.QuoteSent, h.store.Quote(q.ID).Status)
			assert.Equal(t, entity.ContactQuoted, h.store.Contact(cid).Status)
			assert.Len(t, h.events.types(), before)

			// una vez resuelto el fallo la conversión funciona y reutiliza el número no confirmado
			h.store.Heal(op)
			out, err := h.convert.Convert(context.Background(), q.ID)
			require.NoError(t, err)
			assert.Equal(t, "INV-0001", out.Invoice.InvoiceNumber)
		})
	}
}

func TestConvert_SoloCotizacionesEnviadas(t *testing.T) {
	h := newHarness(t)
	q := h.newQuote(t, h.newContact(t, "Ana"))

	_, err := h.convert.Convert(context.Background(), q.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.NotNil(t, h.store.Quote(q.ID))

	_, err = h.convert.Convert(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
