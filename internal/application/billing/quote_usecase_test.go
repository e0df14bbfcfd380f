package billing_test

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
)

func TestQuoteCreate_NumeraYAvanzaContacto(t *testing.T) {
	h := newHarness(t)
	cid := h.newContact(t, "Ana")

	q1 := h.newQuote(t, cid)
	q2 := h.newQuote(t, cid)

	assert.Equal(t, "QT-0001", q1.QuoteNumber)
	assert.Equal(t, "QT-0002", q2.QuoteNumber)
	assert.Equal(t, "DRAFT", q1.Status)
	assert.Equal(t, "130.28", q1.Subtotal)
	assert.Equal(t, "137.62", q1.Total)
	assert.Equal(t, entity.ContactDrafting, h.store.Contact(cid).Status)
}

func TestQuoteCreate_Validaciones(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.quotes.Create(ctx, dto.CreateQuoteRequest{ContactID: "no-existe",
		Items: []dto.LineItemDTO{{Description: "x", Quantity: 1, UnitPrice: dec("1")}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cid := h.newContact(t, "Ana")
	_, err = h.quotes.Create(ctx, dto.CreateQuoteRequest{ContactID: cid})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.quotes.Create(ctx, dto.CreateQuoteRequest{ContactID: cid,
		Items: []dto.LineItemDTO{{Description: "x", Quantity: 0, UnitPrice: dec("1")}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 0, h.store.QuoteCount())
	assert.Equal(t, entity.ContactNew, h.store.Contact(cid).Status)
}

func TestQuoteUpdate_RecalculaTotales(t *testing.T) {
	h := newHarness(t)
	q := h.newQuote(t, h.newContact(t, "Ana"))

	items := []dto.LineItemDTO{{Description: "Consultoría", Quantity: 3, UnitPrice: dec("0.333")}}
	pct := "percentage"
	ten := dec("10")
	zero := dec("0")
	out, err := h.quotes.Update(context.Background(), q.ID, dto.UpdateQuoteRequest{
		Items: &items, DiscountType: &pct, DiscountValue: &ten, Tax: &zero,
	})
	require.NoError(t, err)
	assert.Equal(t, "1.00", out.Subtotal)
	assert.Equal(t, "0.90", out.Total)

	stored := h.store.Quote(q.ID)
	assert.True(t, stored.Total.Equal(stored.Subtotal.Sub(stored.Discount).Add(stored.Tax)))
	assert.Equal(t, q.QuoteNumber, stored.QuoteNumber)
}

func TestQuoteSend_FijaVigenciaYEmiteEnlace(t *testing.T) {
	h := newHarness(t)
	cid := h.newContact(t, "Ana")
	q := h.newQuote(t, cid)

	out, err := h.quotes.Send(context.Background(), q.ID)
	require.NoError(t, err)

	assert.Equal(t, "SENT", out.Quote.Status)
	assert.Equal(t, "2026-11-01", out.Quote.ValidUntil)
	assert.False(t, out.Quote.ReminderSent)
	assert.Equal(t, entity.ContactQuoted, h.store.Contact(cid).Status)

	ev := h.events.last()
	assert.Equal(t, billing.EventQuoteSent, ev.Type)
	assert.Equal(t, out.PDFURL, ev.Link)
	assert.Equal(t, "Ana", ev.ContactName)

	// el enlace firma exactamente la ruta pública y vale 30 días
	u, err := url.Parse(out.PDFURL)
	require.NoError(t, err)
	assert.Equal(t, billing.PublicPath(billing.DocumentQuote, q.ID), u.Path)
	assert.NoError(t, h.signer.CheckQuery(u.Path, u.Query()))
	h.clock.advance(31 * 24 * time.Hour)
	assert.ErrorIs(t, h.signer.CheckQuery(u.Path, u.Query()), domain.ErrLinkExpired)

	_, err = h.quotes.Send(context.Background(), q.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestQuoteSendYExpira(t *testing.T) {
	h := newHarness(t)
	q := h.newSentQuote(t, h.newContact(t, "Ana"))
	assert.Equal(t, h.today().AddDate(0, 0, 15).Format(dto.DateLayout), q.ValidUntil)

	h.clock.advance(16 * 24 * time.Hour)
	res, err := h.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Expired)
	assert.Equal(t, 0, res.RemindersSent)
	assert.Equal(t, entity.QuoteExpired, h.store.Quote(q.ID).Status)

	again, err := h.sweep.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, billing.SweepResult{}, again)
}

func TestQuoteReject_EliminaCotizacionYContactos(t *testing.T) {
	h := newHarness(t)
	cid := h.newContact(t, "Ana")
	lead := h.newContact(t, "Referido")
	other := h.newContact(t, "Otro")

	q, err := h.quotes.Create(context.Background(), dto.CreateQuoteRequest{
		ContactID: cid,
		LeadID:    lead,
		Items:     []dto.LineItemDTO{{Description: "x", Quantity: 1, UnitPrice: dec("10")}},
	})
	require.NoError(t, err)
	inv := h.newInvoice(t, cid, true)

	require.NoError(t, h.quotes.Reject(context.Background(), q.ID))

	assert.Nil(t, h.store.Quote(q.ID))
	assert.Nil(t, h.store.Contact(cid))
	assert.Nil(t, h.store.Contact(lead))
	assert.NotNil(t, h.store.Contact(other))
	assert.Equal(t, "", h.store.Invoice(inv.ID).ContactID, "la factura queda sin contacto")
	assert.Equal(t, 1, h.store.InvoiceCount())
	assert.Equal(t, billing.EventQuoteRejected, h.events.last().Type)

	err = h.quotes.Reject(context.Background(), q.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuoteReject_MismoContactoComoLead(t *testing.T) {
	h := newHarness(t)
	cid := h.newContact(t, "Ana")
	q, err := h.quotes.Create(context.Background(), dto.CreateQuoteRequest{
		ContactID: cid,
		LeadID:    cid,
		Items:     []dto.LineItemDTO{{Description: "x", Quantity: 1, UnitPrice: dec("10")}},
	})
	require.NoError(t, err)

	require.NoError(t, h.quotes.Reject(context.Background(), q.ID))
	assert.Nil(t, h.store.Quote(q.ID))
	assert.Nil(t, h.store.Contact(cid))
	assert.Equal(t, 0, h.store.InvoiceCount())
}

func TestQuoteReject_ExpiradaNoSePuedeRechazar(t *testing.T) {
	h := newHarness(t)
	q := h.newSentQuote(t, h.newContact(t, "Ana"))
	h.clock.advance(16 * 24 * time.Hour)
	_, err := h.sweep.Run(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, h.quotes.Reject(context.Background(), q.ID), domain.ErrInvalidTransition)
	assert.NotNil(t, h.store.Quote(q.ID))
}

func TestQuoteCreate_NumeracionConcurrente(t *testing.T) {
	h := newHarness(t)
	cid := h.newContact(t, "Ana")

	const n = 25
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := h.quotes.Create(context.Background(), dto.CreateQuoteRequest{
				ContactID: cid,
				Items:     []dto.LineItemDTO{{Description: "x", Quantity: 1, UnitPrice: dec("1")}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[q.QuoteNumber] = true
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Len(t, numbers, n)
	for i := 1; i <= n; i++ {
		assert.True(t, numbers[fmt.Sprintf("QT-%04d", i)])
	}
}

func TestQuoteCreate_ColisionSeReintenta(t *testing.T) {
	h := newHarness(t)
	cid := h.newContact(t, "Ana")

	h.store.Collide(1)
	q := h.newQuote(t, cid)
	assert.Equal(t, "QT-0001", q.QuoteNumber)

	h.store.Collide(2)
	_, err := h.quotes.Create(context.Background(), dto.CreateQuoteRequest{
		ContactID: cid,
		Items:     []dto.LineItemDTO{{Description: "x", Quantity: 1, UnitPrice: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.ErrorIs(t, err, domain.ErrNumberCollision)
	assert.Equal(t, 1, h.store.QuoteCount())
}

func TestQuoteCreate_TrasBorradoNoReutilizaNumero(t *testing.T) {
	h := newHarness(t)
	a := h.newQuote(t, h.newContact(t, "Ana"))
	b := h.newQuote(t, h.newContact(t, "Beto"))
	require.NoError(t, h.quotes.Reject(context.Background(), a.ID))

	c := h.newQuote(t, h.newContact(t, "Carla"))
	assert.Equal(t, "QT-0002", b.QuoteNumber)
	assert.Equal(t, "QT-0003", c.QuoteNumber)
}

func TestQuoteLink(t *testing.T) {
	h := newHarness(t)
	q := h.newQuote(t, h.newContact(t, "Ana"))

	link, err := h.quotes.Link(context.Background(), q.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.URL, "https://api.example.com/public/quote/"+q.ID+"/pdf?expires="))
	assert.Equal(t, "2026-10-24T10:00:00Z", link.ExpiresAt)

	_, err = h.quotes.Link(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
