package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/money"
)

// LineItem línea de detalle de una cotización o factura. Vive embebida en su documento.
type LineItem struct {
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	ServiceID   string // opcional, referencia al catálogo de servicios
	SortOrder   int
}

// LineTotal cantidad × precio unitario, sin redondear.
func (li LineItem) LineTotal() decimal.Decimal {
	return decimal.NewFromInt(li.Quantity).Mul(li.UnitPrice)
}

// ValidateItems exige al menos una línea, cantidad ≥ 1, precio ≥ 0 y descripción.
func ValidateItems(items []LineItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: se requiere al menos una línea", domain.ErrInvalidInput)
	}
	for i, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			return fmt.Errorf("%w: línea %d sin descripción", domain.ErrInvalidInput, i+1)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("%w: línea %d con cantidad %d", domain.ErrInvalidInput, i+1, it.Quantity)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: línea %d con precio negativo", domain.ErrInvalidInput, i+1)
		}
	}
	return nil
}

// CloneItems copia las líneas para que dos documentos no compartan el mismo slice.
func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func moneyLines(items []LineItem) []money.Line {
	lines := make([]money.Line, len(items))
	for i, it := range items {
		lines[i] = money.Line{Quantity: decimal.NewFromInt(it.Quantity), UnitPrice: it.UnitPrice}
	}
	return lines
}
