package notify

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/billing-api/internal/application/billing"
)

// MailSender abstrae gomail.Dialer para poder probar el canal.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailChannel envía al cliente los eventos que le conciernen y una copia interna de todos.
type EmailChannel struct {
	sender   MailSender
	from     string
	internal string
}

// NewEmailChannel construye el canal con un gomail.Dialer.
func NewEmailChannel(host string, port int, user, password, from, internal string) *EmailChannel {
	return NewEmailChannelWithSender(gomail.NewDialer(host, port, user, password), from, internal)
}

// NewEmailChannelWithSender construye el canal con un sender arbitrario.
func NewEmailChannelWithSender(sender MailSender, from, internal string) *EmailChannel {
	return &EmailChannel{sender: sender, from: from, internal: internal}
}

func (e *EmailChannel) Name() string { return "email" }

// eventos que se envían al cliente además de la copia interna
var clientFacing = map[billing.EventType]bool{
	billing.EventQuoteSent:      true,
	billing.EventQuoteReminder:  true,
	billing.EventInvoiceCreated: true,
	billing.EventInvoicePaid:    true,
	billing.EventInvoiceOverdue: true,
}

func (e *EmailChannel) Send(ctx context.Context, ev billing.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var msgs []*gomail.Message
	if clientFacing[ev.Type] && ev.ContactEmail != "" {
		msgs = append(msgs, e.message(ev.ContactEmail, subject(ev), clientBody(ev)))
	}
	if e.internal != "" {
		msgs = append(msgs, e.message(e.internal, "[billing] "+subject(ev), internalBody(ev)))
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := e.sender.DialAndSend(msgs...); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}

func (e *EmailChannel) message(to, subj, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subj)
	m.SetBody("text/plain", body)
	return m
}

func subject(ev billing.Event) string {
	amount := ev.Currency + " " + ev.Total.StringFixed(2)
	switch ev.Type {
	case billing.EventQuoteSent:
		return fmt.Sprintf("Quote %s - %s", ev.DocumentNumber, amount)
	case billing.EventQuoteReminder:
		return fmt.Sprintf("Reminder: quote %s expires soon", ev.DocumentNumber)
	case billing.EventQuoteExpired:
		return fmt.Sprintf("Quote %s expired", ev.DocumentNumber)
	case billing.EventQuoteRejected:
		return fmt.Sprintf("Quote %s rejected", ev.DocumentNumber)
	case billing.EventQuoteConverted:
		return fmt.Sprintf("Quote %s converted to invoice", ev.DocumentNumber)
	case billing.EventInvoiceCreated:
		return fmt.Sprintf("Invoice %s - %s", ev.DocumentNumber, amount)
	case billing.EventInvoicePaid:
		return fmt.Sprintf("Payment received: %s for invoice %s", amount, ev.DocumentNumber)
	case billing.EventInvoiceOverdue:
		return fmt.Sprintf("Invoice %s is overdue", ev.DocumentNumber)
	}
	return string(ev.Type) + " " + ev.DocumentNumber
}

func clientBody(ev billing.Event) string {
	var b strings.Builder
	name := ev.ContactName
	if name == "" {
		name = "Client"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n%s.\n", name, subject(ev))
	if ev.Link != "" {
		fmt.Fprintf(&b, "\nView the document: %s\n", ev.Link)
	}
	b.WriteString("\nThank you for your business!\n")
	return b.String()
}

func internalBody(ev billing.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s\nDocument: %s (%s)\nTotal: %s %s\n",
		ev.Type, ev.DocumentNumber, ev.DocumentID, ev.Currency, ev.Total.StringFixed(2))
	if ev.ContactName != "" || ev.ContactEmail != "" {
		fmt.Fprintf(&b, "Client: %s <%s>\n", ev.ContactName, ev.ContactEmail)
	}
	if ev.Link != "" {
		fmt.Fprintf(&b, "Link: %s\n", ev.Link)
	}
	fmt.Fprintf(&b, "At: %s\n", ev.OccurredAt.UTC().Format("2006-01-02 15:04:05 MST"))
	return b.String()
}
