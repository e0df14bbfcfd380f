package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
	"github.com/jhoicas/billing-api/internal/domain/money"
	"github.com/jhoicas/billing-api/internal/domain/repository"
)

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

// QuoteRepo implementación de QuoteRepository (usable con pool o tx).
// Las líneas se guardan en la columna JSONB items.
type QuoteRepo struct {
	q Querier
}

// NewQuoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQuoteRepository(q Querier) *QuoteRepo {
	return &QuoteRepo{q: q}
}

const quoteColumns = `
	id, quote_number, contact_id, lead_id, status, items,
	discount_type, discount_value, tax, subtotal, discount, total,
	currency, language, notes, valid_until, reminder_sent, sent_at,
	created_at, updated_at`

// Create persiste la cotización. Un número repetido devuelve domain.ErrNumberCollision.
func (r *QuoteRepo) Create(ctx context.Context, q *entity.Quote) error {
	items, err := encodeItems(q.Items)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO quotes (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err = r.q.Exec(ctx, query,
		q.ID, q.QuoteNumber, q.ContactID, nullIfEmpty(q.LeadID), string(q.Status), items,
		string(q.DiscountType), q.DiscountValue, q.Tax, q.Subtotal, q.Discount, q.Total,
		q.Currency, q.Language, q.Notes, q.ValidUntil, q.ReminderSent, q.SentAt,
		q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return numberInsertError("insert quote", "quotes_quote_number_key", err)
	}
	return nil
}

// GetByID obtiene una cotización por ID.
func (r *QuoteRepo) GetByID(ctx context.Context, id string) (*entity.Quote, error) {
	return r.get(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id)
}

// GetForUpdate obtiene la cotización bloqueando la fila hasta el fin de la transacción.
func (r *QuoteRepo) GetForUpdate(ctx context.Context, id string) (*entity.Quote, error) {
	return r.get(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1 FOR UPDATE`, id)
}

func (r *QuoteRepo) get(ctx context.Context, query, id string) (*entity.Quote, error) {
	q, err := scanQuote(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return q, nil
}

// Update persiste estado, líneas, importes y fechas. quote_number no se modifica nunca.
func (r *QuoteRepo) Update(ctx context.Context, q *entity.Quote) error {
	items, err := encodeItems(q.Items)
	if err != nil {
		return err
	}
	query := `
		UPDATE quotes
		SET status         = $2,
		    items          = $3,
		    discount_type  = $4,
		    discount_value = $5,
		    tax            = $6,
		    subtotal       = $7,
		    discount       = $8,
		    total          = $9,
		    currency       = $10,
		    language       = $11,
		    notes          = $12,
		    valid_until    = $13,
		    reminder_sent  = $14,
		    sent_at        = $15,
		    updated_at     = $16
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		q.ID, string(q.Status), items,
		string(q.DiscountType), q.DiscountValue, q.Tax, q.Subtotal, q.Discount, q.Total,
		q.Currency, q.Language, q.Notes, q.ValidUntil, q.ReminderSent, q.SentAt,
		q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la cotización.
func (r *QuoteRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListSentForUpdate cotizaciones SENT bloqueadas; las filas ya bloqueadas por otra transacción se omiten.
func (r *QuoteRepo) ListSentForUpdate(ctx context.Context) ([]*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes
		WHERE status = 'SENT'
		ORDER BY valid_until, quote_number
		FOR UPDATE SKIP LOCKED`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sent quotes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// LastNumberWithPrefix último número con ese prefijo. Se ordena por longitud para que
// QT-10000 quede después de QT-9999.
func (r *QuoteRepo) LastNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var number string
	err := r.q.QueryRow(ctx, `
		SELECT quote_number FROM quotes
		WHERE starts_with(quote_number, $1)
		ORDER BY length(quote_number) DESC, quote_number DESC
		LIMIT 1`, prefix).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last quote number: %w", err)
	}
	return number, nil
}

// LockNumbering serializa la numeración de cotizaciones de la serie.
func (r *QuoteRepo) LockNumbering(ctx context.Context, series string) error {
	return lockSeries(ctx, r.q, "quotes:"+series)
}

func scanQuote(row pgx.Row) (*entity.Quote, error) {
	var (
		q                    entity.Quote
		leadID               *string
		status, discountType string
		items                []byte
		validUntil, sentAt   *time.Time
	)
	err := row.Scan(
		&q.ID, &q.QuoteNumber, &q.ContactID, &leadID, &status, &items,
		&discountType, &q.DiscountValue, &q.Tax, &q.Subtotal, &q.Discount, &q.Total,
		&q.Currency, &q.Language, &q.Notes, &validUntil, &q.ReminderSent, &sentAt,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if q.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	q.LeadID = derefStr(leadID)
	q.Status = entity.QuoteStatus(status)
	q.DiscountType = money.DiscountKind(discountType)
	q.ValidUntil = validUntil
	q.SentAt = sentAt
	return &q, nil
}
