package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/billing-api/internal/application/dto"
	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// ContactUseCase alta y consulta de contactos (lo mínimo para referenciar cotizaciones y facturas).
type ContactUseCase struct {
	Deps
}

// NewContactUseCase construye el caso de uso.
func NewContactUseCase(d Deps) *ContactUseCase {
	return &ContactUseCase{Deps: d}
}

// Create crea un contacto en estado NEW.
func (uc *ContactUseCase) Create(ctx context.Context, in dto.CreateContactRequest) (*dto.ContactResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	now := uc.now()
	c := &entity.Contact{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Phone:     in.Phone,
		Company:   in.Company,
		Status:    entity.ContactNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.Contacts.Create(ctx, c); err != nil {
		return nil, err
	}
	return toContactResponse(c), nil
}

// GetByID devuelve el contacto o domain.ErrNotFound.
func (uc *ContactUseCase) GetByID(ctx context.Context, id string) (*dto.ContactResponse, error) {
	c, err := uc.Contacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toContactResponse(c), nil
}
