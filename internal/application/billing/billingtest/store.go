// Package billingtest ofrece un almacenamiento en memoria que implementa los puertos
// de persistencia de billing y analytics, para tests de casos de uso y de HTTP.
package billingtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

// Operaciones en las que Fail puede inyectar un error.
const (
	OpContactsUpdateStatus = "contacts.UpdateStatus"
	OpQuotesDelete         = "quotes.Delete"
	OpInvoicesCreate       = "invoices.Create"
)

// Store almacenamiento en memoria con transacciones serializadas: al fallar fn
// se restaura la foto previa, así los tests pueden observar la atomicidad.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	contacts map[string]*entity.Contact
	quotes   map[string]*entity.Quote
	invoices map[string]*entity.Invoice

	fail    map[string]error // operación → error inyectado
	collide int              // próximos Create que fallan con colisión de número
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		contacts: map[string]*entity.Contact{},
		quotes:   map[string]*entity.Quote{},
		invoices: map[string]*entity.Invoice{},
		fail:     map[string]error{},
	}
}

var (
	_ billing.TxRunner               = (*Store)(nil)
	_ repository.AnalyticsRepository = (*Store)(nil)
)

// Contacts repositorio de contactos sobre el almacenamiento.
func (s *Store) Contacts() repository.ContactRepository { return contactRepo{s} }

// Quotes repositorio de cotizaciones sobre el almacenamiento.
func (s *Store) Quotes() repository.QuoteRepository { return quoteRepo{s} }

// Invoices repositorio de facturas sobre el almacenamiento.
func (s *Store) Invoices() repository.InvoiceRepository { return invoiceRepo{s} }

// Fail hace que op devuelva err hasta que se llame a Heal.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	s.fail[op] = err
	s.mu.Unlock()
}

// Heal elimina el error inyectado en op.
func (s *Store) Heal(op string) {
	s.mu.Lock()
	delete(s.fail, op)
	s.mu.Unlock()
}

// Collide hace que los próximos n Create fallen con domain.ErrNumberCollision.
func (s *Store) Collide(n int) {
	s.mu.Lock()
	s.collide = n
	s.mu.Unlock()
}

// RunBilling ejecuta fn en una transacción simulada.
func (s *Store) RunBilling(ctx context.Context, fn func(
	contactRepo repository.ContactRepository,
	quoteRepo repository.QuoteRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapContacts, snapQuotes, snapInvoices := s.snapshot()
	s.mu.Unlock()

	if err := fn(contactRepo{s}, quoteRepo{s}, invoiceRepo{s}); err != nil {
		s.mu.Lock()
		s.contacts, s.quotes, s.invoices = snapContacts, snapQuotes, snapInvoices
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) snapshot() (map[string]*entity.Contact, map[string]*entity.Quote, map[string]*entity.Invoice) {
	c := make(map[string]*entity.Contact, len(s.contacts))
	for k, v := range s.contacts {
		cp := *v
		c[k] = &cp
	}
	q := make(map[string]*entity.Quote, len(s.quotes))
	for k, v := range s.quotes {
		q[k] = cloneQuote(v)
	}
	i := make(map[string]*entity.Invoice, len(s.invoices))
	for k, v := range s.invoices {
		i[k] = cloneInvoice(v)
	}
	return c, q, i
}

func (s *Store) injected(op string) error {
	if err, ok := s.fail[op]; ok {
		return err
	}
	return nil
}

func cloneQuote(q *entity.Quote) *entity.Quote {
	cp := *q
	cp.Items = entity.CloneItems(q.Items)
	if q.ValidUntil != nil {
		v := *q.ValidUntil
		cp.ValidUntil = &v
	}
	if q.SentAt != nil {
		v := *q.SentAt
		cp.SentAt = &v
	}
	return &cp
}

func cloneInvoice(inv *entity.Invoice) *entity.Invoice {
	cp := *inv
	cp.Items = entity.CloneItems(inv.Items)
	if inv.TaxRate != nil {
		v := *inv.TaxRate
		cp.TaxRate = &v
	}
	if inv.PaidAt != nil {
		v := *inv.PaidAt
		cp.PaidAt = &v
	}
	return &cp
}

// numberLess ordena como la consulta SQL: primero por longitud y luego lexicográficamente.
func numberLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// ── contactos ───────────────────────────────────────────────────────────────

type contactRepo struct{ s *Store }

func (r contactRepo) Create(_ context.Context, c *entity.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.contacts[c.ID] = &cp
	return nil
}

func (r contactRepo) GetByID(_ context.Context, id string) (*entity.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contacts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r contactRepo) GetForUpdate(ctx context.Context, id string) (*entity.Contact, error) {
	return r.GetByID(ctx, id)
}

func (r contactRepo) UpdateStatus(_ context.Context, c *entity.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected(OpContactsUpdateStatus); err != nil {
		return err
	}
	cur, ok := r.s.contacts[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status, cur.UpdatedAt = c.Status, c.UpdatedAt
	return nil
}

func (r contactRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contacts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.contacts, id)
	for qid, q := range r.s.quotes {
		if q.ContactID == id {
			delete(r.s.quotes, qid)
		} else if q.LeadID == id {
			q.LeadID = ""
		}
	}
	for _, inv := range r.s.invoices {
		if inv.ContactID == id {
			inv.ContactID = ""
		}
	}
	return nil
}

// ── cotizaciones ────────────────────────────────────────────────────────────

type quoteRepo struct{ s *Store }

func (r quoteRepo) Create(_ context.Context, q *entity.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.collide > 0 {
		r.s.collide--
		return fmt.Errorf("insert quote: %w", domain.ErrNumberCollision)
	}
	for _, other := range r.s.quotes {
		if other.QuoteNumber == q.QuoteNumber {
			return fmt.Errorf("insert quote: %w", domain.ErrNumberCollision)
		}
	}
	r.s.quotes[q.ID] = cloneQuote(q)
	return nil
}

func (r quoteRepo) GetByID(_ context.Context, id string) (*entity.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotes[id]
	if !ok {
		return nil, nil
	}
	return cloneQuote(q), nil
}

func (r quoteRepo) GetForUpdate(ctx context.Context, id string) (*entity.Quote, error) {
	return r.GetByID(ctx, id)
}

func (r quoteRepo) Update(_ context.Context, q *entity.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.quotes[q.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := cloneQuote(q)
	cp.QuoteNumber = cur.QuoteNumber
	r.s.quotes[q.ID] = cp
	return nil
}

func (r quoteRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected(OpQuotesDelete); err != nil {
		return err
	}
	if _, ok := r.s.quotes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.quotes, id)
	return nil
}

func (r quoteRepo) ListSentForUpdate(_ context.Context) ([]*entity.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Quote
	for _, q := range r.s.quotes {
		if q.Status == entity.QuoteSent {
			out = append(out, cloneQuote(q))
		}
	}
	return out, nil
}

func (r quoteRepo) LastNumberWithPrefix(_ context.Context, prefix string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	last := ""
	for _, q := range r.s.quotes {
		if strings.HasPrefix(q.QuoteNumber, prefix) && numberLess(last, q.QuoteNumber) {
			last = q.QuoteNumber
		}
	}
	return last, nil
}

func (r quoteRepo) LockNumbering(context.Context, string) error { return nil }

// ── facturas ────────────────────────────────────────────────────────────────

type invoiceRepo struct{ s *Store }

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.injected(OpInvoicesCreate); err != nil {
		return err
	}
	if r.s.collide > 0 {
		r.s.collide--
		return fmt.Errorf("insert invoice: %w", domain.ErrNumberCollision)
	}
	for _, other := range r.s.invoices {
		if other.InvoiceNumber == inv.InvoiceNumber {
			return fmt.Errorf("insert invoice: %w", domain.ErrNumberCollision)
		}
	}
	r.s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r invoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	return cloneInvoice(inv), nil
}

func (r invoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r invoiceRepo) Update(_ context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.invoices[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := cloneInvoice(inv)
	cp.InvoiceNumber = cur.InvoiceNumber
	r.s.invoices[inv.ID] = cp
	return nil
}

func (r invoiceRepo) ListOverdueForUpdate(_ context.Context, today time.Time) ([]*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if inv.Status == entity.InvoicePending && inv.DueDate.Before(today) {
			out = append(out, cloneInvoice(inv))
		}
	}
	return out, nil
}

func (r invoiceRepo) LastNumberWithPrefix(_ context.Context, prefix string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	last := ""
	for _, inv := range r.s.invoices {
		if strings.HasPrefix(inv.InvoiceNumber, prefix) && numberLess(last, inv.InvoiceNumber) {
			last = inv.InvoiceNumber
		}
	}
	return last, nil
}

func (r invoiceRepo) LockNumbering(context.Context, string) error { return nil }

// ── analítica ───────────────────────────────────────────────────────────────

// CountContactsCreated contactos con CreatedAt en [from, to).
func (s *Store) CountContactsCreated(_ context.Context, from, to time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.contacts {
		if !c.CreatedAt.Before(from) && c.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

// QuoteStatusCounts cotizaciones agrupadas por estado.
func (s *Store) QuoteStatusCounts(context.Context) (map[entity.QuoteStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[entity.QuoteStatus]int)
	for _, q := range s.quotes {
		out[q.Status]++
	}
	return out, nil
}

// CountConvertedQuotes facturas con ConvertedFrom.
func (s *Store) CountConvertedQuotes(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, inv := range s.invoices {
		if inv.ConvertedFrom != "" {
			n++
		}
	}
	return n, nil
}

// OutstandingTotal suma de las facturas PENDING y OVERDUE.
func (s *Store) OutstandingTotal(context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, inv := range s.invoices {
		if inv.Status == entity.InvoicePending || inv.Status == entity.InvoiceOverdue {
			total = total.Add(inv.Total)
		}
	}
	return total, nil
}

// OverdueInvoices vencidas más antiguas primero.
func (s *Store) OverdueInvoices(_ context.Context, today time.Time, limit int) ([]repository.OverdueInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	today = entity.DateOf(today)
	var out []repository.OverdueInvoice
	for _, inv := range s.invoices {
		late := inv.Status == entity.InvoiceOverdue ||
			(inv.Status == entity.InvoicePending && inv.DueDate.Before(today))
		if !late {
			continue
		}
		row := repository.OverdueInvoice{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			Total:         inv.Total,
			Currency:      inv.Currency,
			DueDate:       inv.DueDate,
		}
		if c, ok := s.contacts[inv.ContactID]; ok {
			row.ContactName = c.Name
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].InvoiceNumber < out[j].InvoiceNumber
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RecentContacts contactos más recientes primero.
func (s *Store) RecentContacts(_ context.Context, limit int) ([]*entity.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ── lectura para aserciones ─────────────────────────────────────────────────

// Quote cotización guardada o nil.
func (s *Store) Quote(id string) *entity.Quote {
	q, _ := quoteRepo{s}.GetByID(context.Background(), id)
	return q
}

// Invoice factura guardada o nil.
func (s *Store) Invoice(id string) *entity.Invoice {
	inv, _ := invoiceRepo{s}.GetByID(context.Background(), id)
	return inv
}

// Contact contacto guardado o nil.
func (s *Store) Contact(id string) *entity.Contact {
	c, _ := contactRepo{s}.GetByID(context.Background(), id)
	return c
}

// QuoteCount número de cotizaciones guardadas.
func (s *Store) QuoteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quotes)
}

// InvoiceCount número de facturas guardadas.
func (s *Store) InvoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invoices)
}
