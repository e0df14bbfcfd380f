package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
)

// DocumentKind tipo de documento público.
type DocumentKind string

const (
	DocumentQuote   DocumentKind = "quote"
	DocumentInvoice DocumentKind = "invoice"
	DocumentReceipt DocumentKind = "receipt"
)

// ParseDocumentKind valida el segmento de ruta.
func ParseDocumentKind(s string) (DocumentKind, error) {
	switch k := DocumentKind(s); k {
	case DocumentQuote, DocumentInvoice, DocumentReceipt:
		return k, nil
	}
	return "", fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, s)
}

// PublicPath ruta exacta que se firma y que luego se solicita: /public/<kind>/<id>/pdf.
func PublicPath(kind DocumentKind, id string) string {
	return "/public/" + string(kind) + "/" + id + "/pdf"
}

// Document datos que necesita el renderizador; es independiente de la persistencia.
type Document struct {
	Kind          DocumentKind
	Number        string
	Language      string // en | es
	Currency      string
	ClientName    string
	ClientEmail   string
	ClientPhone   string
	ClientCompany string
	Items         []entity.LineItem
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	TaxRate       *decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	IssuedAt      time.Time
	ValidUntil    *time.Time
	DueDate       *time.Time
	PaidAt        *time.Time
	PaymentMethod string
	Notes         string
}

// PDFUseCase genera los PDF públicos (cotización, factura, recibo).
// El acceso ya fue autorizado por la firma del enlace.
type PDFUseCase struct {
	Deps
	renderer PDFRenderer
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(d Deps, renderer PDFRenderer) *PDFUseCase {
	return &PDFUseCase{Deps: d, renderer: renderer}
}

// Render devuelve el PDF y el nombre de archivo ("Quote-QT-0001.pdf").
//
// Retorna:
//   - domain.ErrNotFound          si el documento no existe.
//   - domain.ErrInvalidTransition si se pide el recibo de una factura no pagada.
func (uc *PDFUseCase) Render(ctx context.Context, kind DocumentKind, id, lang string) (pdfBytes []byte, filename string, err error) {
	var doc *Document
	switch kind {
	case DocumentQuote:
		doc, err = uc.quoteDocument(ctx, id)
	case DocumentInvoice, DocumentReceipt:
		doc, err = uc.invoiceDocument(ctx, kind, id)
	default:
		return nil, "", fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, kind)
	}
	if err != nil {
		return nil, "", err
	}
	if lang == "en" || lang == "es" {
		doc.Language = lang
	}
	if doc.Language == "" {
		doc.Language = uc.Settings.Language
	}

	pdfBytes, err = uc.renderer.Render(ctx, *doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, documentFilename(kind, doc.Number), nil
}

func documentFilename(kind DocumentKind, number string) string {
	switch kind {
	case DocumentQuote:
		return "Quote-" + number + ".pdf"
	case DocumentReceipt:
		return "Receipt-" + number + ".pdf"
	}
	return "Invoice-" + number + ".pdf"
}

func (uc *PDFUseCase) quoteDocument(ctx context.Context, id string) (*Document, error) {
	q, err := uc.Quotes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener cotización: %w", err)
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	doc := &Document{
		Kind:       DocumentQuote,
		Number:     q.QuoteNumber,
		Language:   q.Language,
		Currency:   q.Currency,
		Items:      q.Items,
		Subtotal:   q.Subtotal,
		Discount:   q.Discount,
		Tax:        q.Tax,
		Total:      q.Total,
		IssuedAt:   q.CreatedAt,
		ValidUntil: q.ValidUntil,
		Notes:      q.Notes,
	}
	if err := uc.fillClient(ctx, doc, q.ContactID); err != nil {
		return nil, err
	}
	return doc, nil
}

func (uc *PDFUseCase) invoiceDocument(ctx context.Context, kind DocumentKind, id string) (*Document, error) {
	inv, err := uc.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if kind == DocumentReceipt && inv.Status != entity.InvoicePaid {
		return nil, fmt.Errorf("%w: la factura %s no está pagada", domain.ErrInvalidTransition, inv.InvoiceNumber)
	}
	due := inv.DueDate
	doc := &Document{
		Kind:          kind,
		Number:        inv.InvoiceNumber,
		Language:      inv.Language,
		Currency:      inv.Currency,
		Items:         inv.Items,
		Subtotal:      inv.Subtotal,
		Discount:      inv.Discount,
		TaxRate:       inv.TaxRate,
		Tax:           inv.Tax,
		Total:         inv.Total,
		IssuedAt:      inv.CreatedAt,
		DueDate:       &due,
		PaidAt:        inv.PaidAt,
		PaymentMethod: inv.PaymentMethod,
		Notes:         inv.Notes,
	}
	if err := uc.fillClient(ctx, doc, inv.ContactID); err != nil {
		return nil, err
	}
	return doc, nil
}

// fillClient copia los datos del contacto; si ya no existe se usa "Client".
func (uc *PDFUseCase) fillClient(ctx context.Context, doc *Document, contactID string) error {
	doc.ClientName = "Client"
	if contactID == "" {
		return nil
	}
	c, err := uc.Contacts.GetByID(ctx, contactID)
	if err != nil {
		return fmt.Errorf("pdf: obtener contacto: %w", err)
	}
	if c != nil {
		doc.ClientName, doc.ClientEmail, doc.ClientPhone, doc.ClientCompany = c.Name, c.Email, c.Phone, c.Company
	}
	return nil
}
