// Package money agrupa el cálculo de importes de documentos (cotizaciones y facturas).
// Todas las operaciones usan decimal; el redondeo a 2 decimales solo se aplica al presentar.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// DiscountKind indica cómo se interpreta el valor del descuento.
type DiscountKind string

const (
	DiscountFixed      DiscountKind = "fixed"
	DiscountPercentage DiscountKind = "percentage"
)

// Line es la vista mínima de una línea de detalle para calcular importes.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Discount descuento aplicado sobre el subtotal. El valor cero equivale a "sin descuento".
type Discount struct {
	Kind  DiscountKind
	Value decimal.Decimal
}

// Tax impuesto del documento: si Rate no es nil se calcula subtotal × Rate/100,
// en caso contrario se usa Amount como importe fijo.
type Tax struct {
	Rate   *decimal.Decimal
	Amount decimal.Decimal
}

// FlatTax construye un impuesto de importe fijo.
func FlatTax(amount decimal.Decimal) Tax { return Tax{Amount: amount} }

// RateTax construye un impuesto porcentual (18 = 18 %).
func RateTax(rate decimal.Decimal) Tax { return Tax{Rate: &rate} }

// Totals resultado del cálculo.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Subtotal = Σ cantidad × precio unitario.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Quantity.Mul(l.UnitPrice))
	}
	return sum
}

// Calculate devuelve subtotal, descuento, impuesto y total (subtotal − descuento + impuesto).
// Rechaza descuentos o impuestos negativos, porcentajes fuera de [0, 100] y descuentos mayores al subtotal.
func Calculate(lines []Line, discount Discount, tax Tax) (Totals, error) {
	subtotal := Subtotal(lines)

	discountAmount, err := discountAmount(subtotal, discount)
	if err != nil {
		return Totals{}, err
	}

	taxAmount := tax.Amount
	if tax.Rate != nil {
		if tax.Rate.IsNegative() || tax.Rate.GreaterThan(hundred) {
			return Totals{}, fmt.Errorf("%w: tax rate %s fuera de rango", domain.ErrInvalidInput, tax.Rate.String())
		}
		taxAmount = subtotal.Mul(*tax.Rate).Div(hundred)
	}
	if taxAmount.IsNegative() {
		return Totals{}, fmt.Errorf("%w: impuesto negativo", domain.ErrInvalidInput)
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discountAmount,
		Tax:      taxAmount,
		Total:    subtotal.Sub(discountAmount).Add(taxAmount),
	}, nil
}

func discountAmount(subtotal decimal.Decimal, d Discount) (decimal.Decimal, error) {
	if d.Value.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: descuento negativo", domain.ErrInvalidInput)
	}
	var amount decimal.Decimal
	switch d.Kind {
	case DiscountPercentage:
		if d.Value.GreaterThan(hundred) {
			return decimal.Zero, fmt.Errorf("%w: descuento mayor a 100%%", domain.ErrInvalidInput)
		}
		amount = subtotal.Mul(d.Value).Div(hundred)
	case DiscountFixed, "":
		amount = d.Value
	default:
		return decimal.Zero, fmt.Errorf("%w: tipo de descuento %q", domain.ErrInvalidInput, d.Kind)
	}
	if amount.GreaterThan(subtotal) {
		return decimal.Zero, fmt.Errorf("%w: el descuento supera el subtotal", domain.ErrInvalidInput)
	}
	return amount, nil
}

// Present formatea un importe con 2 decimales (solo para salida: PDF, notificaciones, respuestas).
func Present(d decimal.Decimal) string {
	return d.StringFixed(2)
}
