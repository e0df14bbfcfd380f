// Package pdf genera los PDF públicos (cotización, factura y recibo de pago).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor              │  Título + N° + Fechas        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DE: datos del emisor        │  PARA: datos del cliente     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Descripción | Cant | Precio | Total                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / Impuesto / TOTAL            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  Notas + Términos + Agradecimiento                           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"sort"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// Issuer datos del negocio que emite los documentos.
type Issuer struct {
	Name    string
	Email   string
	Phone   string
	Website string
}

// ── Renderer ──────────────────────────────────────────────────────────────────

var _ billing.PDFRenderer = (*MarotoRenderer)(nil)

// MarotoRenderer implementa billing.PDFRenderer usando Maroto v2.
type MarotoRenderer struct {
	issuer Issuer
}

// NewMarotoRenderer construye el generador.
func NewMarotoRenderer(issuer Issuer) *MarotoRenderer {
	return &MarotoRenderer{issuer: issuer}
}

// Render genera el PDF y devuelve sus bytes.
func (g *MarotoRenderer) Render(ctx context.Context, doc billing.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := labelsFor(doc.Language, doc.Kind)
	f := newFormatter(doc.Language, doc.Currency)

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(l.title+" "+doc.Number, true).
		WithAuthor(g.issuer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(doc, l, f))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.partiesRow(doc, l))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(l))
	m.AddRows(itemRows(doc.Items, f)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc, l, f))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRows(doc, l)...)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor (izq) y título + número + fechas (der).
func (g *MarotoRenderer) headerRow(doc billing.Document, l labels, f formatter) core.Row {
	right := []core.Component{
		text.New(l.title, props.Text{
			Style: fontstyle.Bold, Size: 12, Align: align.Right, Color: colorPrimary, Top: 1,
		}),
		text.New(doc.Number, props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
		}),
	}
	first := doc.IssuedAt
	if doc.Kind == billing.DocumentReceipt && doc.PaidAt != nil {
		first = *doc.PaidAt
	}
	right = append(right, text.New(l.dateLabel+": "+f.date(first), props.Text{
		Size: 8, Align: align.Right, Top: 13, Color: colorGray,
	}))
	if second := secondDate(doc); second != nil && l.secondLabel != "" {
		right = append(right, text.New(l.secondLabel+": "+f.date(*second), props.Text{
			Size: 8, Align: align.Right, Top: 17, Color: colorGray,
		}))
	}

	return row.New(22).Add(
		col.New(7).Add(
			text.New(nonEmpty(g.issuer.Name, "-"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(g.issuer.Website, ""), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(right...),
	)
}

func secondDate(doc billing.Document) *time.Time {
	switch doc.Kind {
	case billing.DocumentQuote:
		return doc.ValidUntil
	case billing.DocumentInvoice:
		return doc.DueDate
	}
	return nil
}

// partiesRow: emisor y cliente en dos columnas.
func (g *MarotoRenderer) partiesRow(doc billing.Document, l labels) core.Row {
	client := doc.ClientName
	if doc.ClientCompany != "" {
		client += " (" + doc.ClientCompany + ")"
	}
	return row.New(18).Add(
		col.New(6).Add(
			text.New(l.from, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(g.issuer.Name, "-"), props.Text{Style: fontstyle.Bold, Size: 9, Top: 6}),
			text.New(fmt.Sprintf("%s   |   %s", nonEmpty(g.issuer.Email, "-"), nonEmpty(g.issuer.Phone, "-")),
				props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
		col.New(6).Add(
			text.New(l.to, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(client, props.Text{Style: fontstyle.Bold, Size: 9, Top: 6}),
			text.New(fmt.Sprintf("%s   |   %s", nonEmpty(doc.ClientEmail, "-"), nonEmpty(doc.ClientPhone, "-")),
				props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow(l labels) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h(l.description, 6, align.Left),
		h(l.qty, 1, align.Center),
		h(l.price, 2, align.Right),
		h(l.total, 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// itemRows: una fila por línea, en el orden de sort_order.
func itemRows(items []entity.LineItem, f formatter) []core.Row {
	sorted := entity.CloneItems(items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })

	out := make([]core.Row, 0, len(sorted))
	for _, it := range sorted {
		out = append(out, row.New(7).Add(
			col.New(6).Add(text.New(it.Description, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(f.integer(it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(f.amount(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(f.amount(it.LineTotal()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

// totalsRow: bloque de totales alineado a la derecha. Descuento solo si es positivo.
func totalsRow(doc billing.Document, l labels, f formatter) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}

	labelsCol := []core.Component{label(l.subtotal+":", 0)}
	valuesCol := []core.Component{value(f.amount(doc.Subtotal), 0)}
	top := 5.0
	if doc.Discount.IsPositive() {
		labelsCol = append(labelsCol, label(l.discount+":", top))
		valuesCol = append(valuesCol, value("-"+f.amount(doc.Discount), top))
		top += 5
	}
	taxLabel := l.tax
	if doc.TaxRate != nil {
		taxLabel += " (" + f.percent(*doc.TaxRate) + ")"
	}
	labelsCol = append(labelsCol, label(taxLabel+":", top))
	valuesCol = append(valuesCol, value(f.amount(doc.Tax), top))
	top += 6
	labelsCol = append(labelsCol, text.New(l.total+":", props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: top,
	}))
	valuesCol = append(valuesCol, text.New(f.amount(doc.Total), props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: top,
	}))

	return row.New(top+8).Add(
		col.New(6),
		col.New(3).Add(labelsCol...),
		col.New(3).Add(valuesCol...),
	)
}

// footerRows: método de pago (recibo), notas, términos y agradecimiento.
func footerRows(doc billing.Document, l labels) []core.Row {
	var rows []core.Row
	if doc.Kind == billing.DocumentReceipt && doc.PaymentMethod != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(l.payment+": "+doc.PaymentMethod, props.Text{Style: fontstyle.Bold, Size: 9, Top: 1}),
		)))
	}
	if doc.Notes != "" {
		rows = append(rows,
			row.New(5).Add(col.New(12).Add(
				text.New(l.notes, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			)),
			row.New(8).Add(col.New(12).Add(
				text.New(doc.Notes, props.Text{Size: 8, Color: colorGray, Top: 1}),
			)),
		)
	}

	rows = append(rows,
		line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}),
		row.New(5).Add(col.New(12).Add(
			text.New(l.terms, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
	)
	for _, t := range l.termLines {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New("• "+t, props.Text{Size: 7, Color: colorGray, Top: 0.5, Left: 2}),
		)))
	}
	rows = append(rows, row.New(10).Add(col.New(12).Add(
		text.New(l.thankYou, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorPrimary, Top: 3,
		}),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
