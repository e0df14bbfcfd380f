package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/numbering"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

// Settings parámetros de negocio configurables.
type Settings struct {
	QuoteSeries       numbering.Series
	InvoiceSeries     numbering.Series
	MaxRetries        int // reintentos ante colisión de número
	QuoteValidityDays int
	DefaultTaxRate    decimal.Decimal
	Currency          string
	Language          string
	PublicBaseURL     string
}

// DefaultSettings valores por defecto (QT-0001 / INV-0001, 15 días, IVA 18 %).
func DefaultSettings() Settings {
	return Settings{
		QuoteSeries:       numbering.Series{Prefix: "QT", Policy: numbering.Sequential},
		InvoiceSeries:     numbering.Series{Prefix: "INV", Policy: numbering.Sequential},
		MaxRetries:        1,
		QuoteValidityDays: 15,
		DefaultTaxRate:    decimal.NewFromInt(18),
		Currency:          "USD",
		Language:          "en",
	}
}

// Deps colaboradores comunes de los casos de uso de facturación.
// Los repos sueltos son de solo lectura (fuera de transacción); toda escritura pasa por Tx.
type Deps struct {
	Tx       TxRunner
	Contacts repository.ContactRepository
	Quotes   repository.QuoteRepository
	Invoices repository.InvoiceRepository
	Events   EventPublisher
	Signer   LinkSigner
	Settings Settings
	Log      zerolog.Logger
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) publish(ctx context.Context, events ...Event) {
	pub := d.Events
	if pub == nil {
		pub = nopPublisher{}
	}
	for _, ev := range events {
		pub.Publish(ctx, ev)
	}
}

// link construye la URL pública firmada del documento y su expiración.
func (d Deps) link(kind DocumentKind, id string, validity time.Duration) (string, time.Time) {
	path := PublicPath(kind, id)
	l := d.Signer.Sign(path, validity)
	return strings.TrimRight(d.Settings.PublicBaseURL, "/") + path + "?" + l.Query(), time.Unix(l.Expires, 0).UTC()
}

// nextNumber bloquea la serie y calcula el siguiente número dentro de la transacción en curso.
func (d Deps) nextNumber(ctx context.Context, series numbering.Series, src numberSource) (string, error) {
	if err := src.LockNumbering(ctx, series.Prefix); err != nil {
		return "", fmt.Errorf("lock numbering %s: %w", series.Prefix, err)
	}
	return series.Next(ctx, src, d.now())
}

func (d Deps) currency(s string) string {
	if s != "" {
		return strings.ToUpper(s)
	}
	return d.Settings.Currency
}

func (d Deps) language(s string) string {
	if s != "" {
		return s
	}
	return d.Settings.Language
}

// advanceContact avanza la etapa del contacto si existe. Debe llamarse dentro de la transacción.
func advanceContact(ctx context.Context, contacts repository.ContactRepository, id string, to entity.ContactStatus, now time.Time) (*entity.Contact, error) {
	if id == "" {
		return nil, nil
	}
	c, err := contacts.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	if c == nil {
		return nil, nil
	}
	if c.Advance(to, now) {
		if err := contacts.UpdateStatus(ctx, c); err != nil {
			return nil, fmt.Errorf("update contact status: %w", err)
		}
	}
	return c, nil
}

func withContact(ev Event, c *entity.Contact) Event {
	if c != nil {
		ev.ContactName = c.Name
		ev.ContactEmail = c.Email
	}
	return ev
}
