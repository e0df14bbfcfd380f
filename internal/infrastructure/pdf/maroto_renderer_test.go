package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/domain/entity"
)

func sampleDocument(kind billing.DocumentKind, lang string) billing.Document {
	issued := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	due := issued.AddDate(0, 0, 3)
	rate := decimal.NewFromInt(18)
	return billing.Document{
		Kind:        kind,
		Number:      "INV-0001",
		Language:    lang,
		Currency:    "USD",
		ClientName:  "Ana Pérez",
		ClientEmail: "ana@example.com",
		Items: []entity.LineItem{
			{Description: "Hosting", Quantity: 2, UnitPrice: decimal.RequireFromString("50"), SortOrder: 1},
			{Description: "Dominio", Quantity: 1, UnitPrice: decimal.RequireFromString("30.28"), SortOrder: 0},
		},
		Subtotal:      decimal.RequireFromString("130.28"),
		Discount:      decimal.RequireFromString("5"),
		TaxRate:       &rate,
		Tax:           decimal.RequireFromString("22.55"),
		Total:         decimal.RequireFromString("147.83"),
		IssuedAt:      issued,
		DueDate:       &due,
		PaidAt:        &issued,
		PaymentMethod: "transfer",
		Notes:         "Gracias",
	}
}

func TestMarotoRenderer_Render(t *testing.T) {
	r := NewMarotoRenderer(Issuer{Name: "Acme Studio", Email: "hola@acme.test"})

	for _, kind := range []billing.DocumentKind{billing.DocumentQuote, billing.DocumentInvoice, billing.DocumentReceipt} {
		for _, lang := range []string{"en", "es"} {
			out, err := r.Render(context.Background(), sampleDocument(kind, lang))
			require.NoError(t, err, "%s/%s", kind, lang)
			require.Greater(t, len(out), 4)
			assert.Equal(t, "%PDF", string(out[:4]))
		}
	}
}

func TestMarotoRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMarotoRenderer(Issuer{}).Render(ctx, sampleDocument(billing.DocumentQuote, "en"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatter_Amount(t *testing.T) {
	en := newFormatter("en", "usd")
	assert.Equal(t, "$1,234,567.50", en.amount(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "$0.00", en.amount(decimal.Zero))
	assert.Equal(t, "-$12.35", en.amount(decimal.RequireFromString("-12.345")))

	es := newFormatter("es", "EUR")
	assert.Equal(t, "€1.234.567,50", es.amount(decimal.RequireFromString("1234567.5")))

	other := newFormatter("en", "GBP")
	assert.Equal(t, "GBP 10.00", other.amount(decimal.NewFromInt(10)))
}

func TestFormatter_Date(t *testing.T) {
	d := time.Date(2026, 3, 5, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mar 05, 2026", newFormatter("en", "USD").date(d))
	assert.Equal(t, "05/03/2026", newFormatter("es", "USD").date(d))
}

func TestLabelsFor_FallsBackToEnglish(t *testing.T) {
	l := labelsFor("fr", billing.DocumentInvoice)
	assert.Equal(t, "INVOICE", l.title)
	assert.Equal(t, "Due Date", l.secondLabel)

	es := labelsFor("es", billing.DocumentReceipt)
	assert.Equal(t, "RECIBO DE PAGO", es.title)
	assert.Equal(t, "Descuento", es.discount)
}
