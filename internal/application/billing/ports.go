package billing

import (
	"context"
	"time"

	"github.com/jhoicas/billing-api/internal/domain/repository"
	"github.com/jhoicas/billing-api/pkg/urlsign"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los repos de facturación.
// Si fn devuelve error se hace rollback y nada de lo escrito es observable.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(
		contactRepo repository.ContactRepository,
		quoteRepo repository.QuoteRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// EventPublisher recibe los eventos ya confirmados. Es best-effort: no bloquea ni devuelve error.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event)
}

// PDFRenderer genera la representación gráfica de un documento.
type PDFRenderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// LinkSigner firma rutas públicas de duración limitada.
type LinkSigner interface {
	Sign(path string, validity time.Duration) urlsign.Link
}

// Locker exclusión mutua entre procesos (p. ej. varias réplicas ejecutando el barrido).
// release es no-nil solo si acquired es true.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// numberSource repositorio capaz de numerar una serie.
type numberSource interface {
	LastNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	LockNumbering(ctx context.Context, series string) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}
