package repository

import (
	"context"

	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// ContactRepository define el puerto de persistencia para Contact.
// GetByID devuelve (nil, nil) si no existe.
type ContactRepository interface {
	Create(ctx context.Context, contact *entity.Contact) error
	GetByID(ctx context.Context, id string) (*entity.Contact, error)
	// GetForUpdate como GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Contact, error)
	UpdateStatus(ctx context.Context, contact *entity.Contact) error
	// Delete elimina el contacto; sus cotizaciones se eliminan en cascada y sus facturas quedan sin contacto.
	Delete(ctx context.Context, id string) error
}
