package repository

import (
	"context"

	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// QuoteRepository define el puerto de persistencia para Quote (líneas incluidas).
// GetByID devuelve (nil, nil) si no existe.
type QuoteRepository interface {
	// Create devuelve domain.ErrNumberCollision si el número ya existe.
	Create(ctx context.Context, quote *entity.Quote) error
	GetByID(ctx context.Context, id string) (*entity.Quote, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Quote, error)
	// Update persiste estado, líneas, importes y fechas; nunca el número.
	Update(ctx context.Context, quote *entity.Quote) error
	Delete(ctx context.Context, id string) error
	// ListSentForUpdate devuelve las cotizaciones SENT bloqueadas (omite las ya bloqueadas por otro).
	ListSentForUpdate(ctx context.Context) ([]*entity.Quote, error)
	// LastNumberWithPrefix último número emitido con ese prefijo ("" si ninguno).
	LastNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	// LockNumbering serializa la numeración de la serie hasta el fin de la transacción.
	LockNumbering(ctx context.Context, series string) error
}
