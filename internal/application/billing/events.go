package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType nombre del evento emitido tras confirmar una transición.
type EventType string

const (
	EventQuoteSent      EventType = "quote.sent"
	EventQuoteReminder  EventType = "quote.reminder"
	EventQuoteExpired   EventType = "quote.expired"
	EventQuoteRejected  EventType = "quote.rejected"
	EventQuoteConverted EventType = "quote.converted"
	EventInvoiceCreated EventType = "invoice.created"
	EventInvoicePaid    EventType = "invoice.paid"
	EventInvoiceOverdue EventType = "invoice.overdue"
)

// Event carga útil para el despachador de notificaciones.
type Event struct {
	Type           EventType       `json:"event"`
	DocumentID     string          `json:"document_id"`
	DocumentNumber string          `json:"document_number"`
	ContactID      string          `json:"contact_id,omitempty"`
	ContactName    string          `json:"contact_name,omitempty"`
	ContactEmail   string          `json:"contact_email,omitempty"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
	Link           string          `json:"link,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}
