package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/application/billing/billingtest"
	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/pkg/urlsign"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	events []billing.Event
}

func (r *recorder) Publish(_ context.Context, ev billing.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) types() []billing.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]billing.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recorder) last() billing.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type harness struct {
	store    *billingtest.Store
	clock    *clock
	events   *recorder
	signer   *urlsign.Signer
	contacts *billing.ContactUseCase
	quotes   *billing.QuoteUseCase
	invoices *billing.InvoiceUseCase
	convert  *billing.ConversionUseCase
	sweep    *billing.SweepUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:  billingtest.NewStore(),
		clock:  &clock{t: time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)},
		events: &recorder{},
	}
	signer, err := urlsign.New("test-signing-secret", h.clock.Now)
	require.NoError(t, err)
	h.signer = signer

	settings := billing.DefaultSettings()
	settings.PublicBaseURL = "https://api.example.com"
	d := billing.Deps{
		Tx:       h.store,
		Contacts: h.store.Contacts(),
		Quotes:   h.store.Quotes(),
		Invoices: h.store.Invoices(),
		Events:   h.events,
		Signer:   signer,
		Settings: settings,
		Log:      zerolog.Nop(),
		Now:      h.clock.Now,
	}
	h.contacts = billing.NewContactUseCase(d)
	h.quotes = billing.NewQuoteUseCase(d)
	h.invoices = billing.NewInvoiceUseCase(d)
	h.convert = billing.NewConversionUseCase(d)
	h.sweep = billing.NewSweepUseCase(d, nil)
	return h
}

func (h *harness) today() time.Time { return entity.DateOf(h.clock.Now()) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (h *harness) newContact(t *testing.T, name string) string {
	t.Helper()
	c, err := h.contacts.Create(context.Background(), dto.CreateContactRequest{Name: name, Email: "cliente@example.com"})
	require.NoError(t, err)
	return c.ID
}

func (h *harness) newQuote(t *testing.T, contactID string) *dto.QuoteResponse {
	t.Helper()
	q, err := h.quotes.Create(context.Background(), dto.CreateQuoteRequest{
		ContactID: contactID,
		Items: []dto.LineItemDTO{
			{Description: "Desarrollo web", Quantity: 2, UnitPrice: dec("50.00")},
			{Description: "Hosting anual", Quantity: 1, UnitPrice: dec("30.28")},
		},
		DiscountValue: dec("5"),
		Tax:           dec("12.34"),
	})
	require.NoError(t, err)
	return q
}

func (h *harness) newSentQuote(t *testing.T, contactID string) *dto.QuoteResponse {
	t.Helper()
	q := h.newQuote(t, contactID)
	sent, err := h.quotes.Send(context.Background(), q.ID)
	require.NoError(t, err)
	return &sent.Quote
}

func (h *harness) newInvoice(t *testing.T, contactID string, recurring bool) *dto.InvoiceResponse {
	t.Helper()
	inv, err := h.invoices.Create(context.Background(), dto.CreateInvoiceRequest{
		ContactID: contactID,
		Items:     []dto.LineItemDTO{{Description: "Mantenimiento mensual", Quantity: 1, UnitPrice: dec("100")}},
		DueDate:   h.today().AddDate(0, 0, 10).Format(dto.DateLayout),
		Recurring: &recurring,
	})
	require.NoError(t, err)
	return inv
}
