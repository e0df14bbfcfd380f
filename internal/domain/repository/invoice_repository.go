package repository

import (
	"context"
	"time"

	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice (líneas incluidas).
// GetByID devuelve (nil, nil) si no existe.
type InvoiceRepository interface {
	// Create devuelve domain.ErrNumberCollision si el número ya existe.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	// Update persiste estado, líneas, importes, fechas y pago; nunca el número.
	Update(ctx context.Context, invoice *entity.Invoice) error
	// ListOverdueForUpdate facturas PENDING con due_date < today, bloqueadas.
	ListOverdueForUpdate(ctx context.Context, today time.Time) ([]*entity.Invoice, error)
	LastNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	LockNumbering(ctx context.Context, series string) error
}
