package dto

import "github.com/shopspring/decimal"

// DateLayout formato de fechas civiles en requests y respuestas.
const DateLayout = "2006-01-02"

// CreateContactRequest body para POST /api/contacts.
type CreateContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"max=50"`
	Company string `json:"company,omitempty" validate:"max=200"`
}

// ContactResponse contacto en respuestas.
type ContactResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Status  string `json:"status"`
}

// LineItemDTO línea de detalle (cotización o factura).
type LineItemDTO struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    int64           `json:"quantity" validate:"min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ServiceID   string          `json:"service_id,omitempty"`
	SortOrder   int             `json:"sort_order,omitempty"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// CreateQuoteRequest body para POST /api/quotes.
// DiscountType: "fixed" (importe) o "percentage" (0-100).
type CreateQuoteRequest struct {
	ContactID     string          `json:"contact_id" validate:"required,uuid"`
	LeadID        string          `json:"lead_id,omitempty" validate:"omitempty,uuid"`
	Items         []LineItemDTO   `json:"items" validate:"required,min=1,dive"`
	DiscountType  string          `json:"discount_type,omitempty" validate:"omitempty,oneof=fixed percentage"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Tax           decimal.Decimal `json:"tax"`
	Currency      string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Language      string          `json:"language,omitempty" validate:"omitempty,oneof=en es"`
	Notes         string          `json:"notes,omitempty" validate:"max=1000"`
}

// UpdateQuoteRequest body para PATCH /api/quotes/:id. Solo se aplican los campos presentes.
type UpdateQuoteRequest struct {
	Items         *[]LineItemDTO   `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	DiscountType  *string          `json:"discount_type,omitempty" validate:"omitempty,oneof=fixed percentage"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	Tax           *decimal.Decimal `json:"tax,omitempty"`
	Currency      *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Language      *string          `json:"language,omitempty" validate:"omitempty,oneof=en es"`
	Notes         *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// QuoteResponse cotización en respuestas.
type QuoteResponse struct {
	ID            string          `json:"id"`
	QuoteNumber   string          `json:"quote_number"`
	ContactID     string          `json:"contact_id"`
	LeadID        string          `json:"lead_id,omitempty"`
	Status        string          `json:"status"`
	Items         []LineItemDTO   `json:"items"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Subtotal      string          `json:"subtotal"`
	Discount      string          `json:"discount"`
	Tax           string          `json:"tax"`
	Total         string          `json:"total"`
	Currency      string          `json:"currency"`
	Language      string          `json:"language"`
	Notes         string          `json:"notes,omitempty"`
	ValidUntil    string          `json:"valid_until,omitempty"`
	ReminderSent  bool            `json:"reminder_sent"`
	SentAt        string          `json:"sent_at,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// SendQuoteResponse respuesta de POST /api/quotes/:id/send.
type SendQuoteResponse struct {
	Quote  QuoteResponse `json:"quote"`
	PDFURL string        `json:"pdf_url"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// TaxRate: porcentaje; si se omite se usa la tasa por defecto configurada.
type CreateInvoiceRequest struct {
	ContactID string           `json:"contact_id" validate:"required,uuid"`
	Items     []LineItemDTO    `json:"items" validate:"required,min=1,dive"`
	TaxRate   *decimal.Decimal `json:"tax_rate,omitempty"`
	Discount  decimal.Decimal  `json:"discount"`
	DueDate   string           `json:"due_date" validate:"required,datetime=2006-01-02"`
	Currency  string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	Language  string           `json:"language,omitempty" validate:"omitempty,oneof=en es"`
	Notes     string           `json:"notes,omitempty" validate:"max=1000"`
	Recurring *bool            `json:"recurring,omitempty"`
}

// InvoiceFromQuoteRequest body para POST /api/invoices/from-quote.
type InvoiceFromQuoteRequest struct {
	QuoteID string `json:"quote_id" validate:"required,uuid"`
	DueDate string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// UpdateInvoiceRequest body para PATCH /api/invoices/:id. Solo se aplican los campos presentes.
type UpdateInvoiceRequest struct {
	Items   *[]LineItemDTO   `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	TaxRate *decimal.Decimal `json:"tax_rate,omitempty"`
	DueDate *string          `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes   *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// MarkPaidRequest body para POST /api/invoices/:id/mark-paid.
type MarkPaidRequest struct {
	PaymentMethod string `json:"payment_method,omitempty" validate:"max=50"`
}

// InvoiceResponse factura en respuestas.
type InvoiceResponse struct {
	ID            string        `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	QuoteID       string        `json:"quote_id,omitempty"`
	ContactID     string        `json:"contact_id,omitempty"`
	Status        string        `json:"status"`
	Items         []LineItemDTO `json:"items"`
	TaxRate       *string       `json:"tax_rate"`
	Subtotal      string        `json:"subtotal"`
	Discount      string        `json:"discount"`
	Tax           string        `json:"tax"`
	Total         string        `json:"total"`
	Currency      string        `json:"currency"`
	Language      string        `json:"language"`
	Notes         string        `json:"notes,omitempty"`
	DueDate       string        `json:"due_date"`
	PaidAt        string        `json:"paid_at,omitempty"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	Recurring     bool          `json:"recurring"`
	ConvertedFrom string        `json:"converted_from,omitempty"`
	CreatedAt     string        `json:"created_at"`
}

// MarkPaidResponse factura pagada, la del siguiente periodo (si es recurrente) y el enlace al recibo.
type MarkPaidResponse struct {
	Invoice    InvoiceResponse  `json:"invoice"`
	Successor  *InvoiceResponse `json:"successor,omitempty"`
	ReceiptURL string           `json:"receipt_url"`
}

// ConversionResponse respuesta de POST /api/quotes/:id/accept.
type ConversionResponse struct {
	Invoice InvoiceResponse `json:"invoice"`
	PDFURL  string          `json:"pdf_url"`
}

// LinkResponse enlace público firmado.
type LinkResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}

// SweepResponse resultado de POST /api/sweep.
type SweepResponse struct {
	RemindersSent int  `json:"reminders_sent"`
	Expired       int  `json:"expired"`
	Overdue       int  `json:"overdue"`
	Skipped       bool `json:"skipped,omitempty"`
}
