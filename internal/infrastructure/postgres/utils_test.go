package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/entity"
)

func TestNumberInsertError(t *testing.T) {
	numberDup := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: "quotes_quote_number_key"})
	otherDup := &pgconn.PgError{Code: "23505", ConstraintName: "quotes_pkey"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "quotes_contact_id_fkey"}

	err := numberInsertError("insert quote", "quotes_quote_number_key", numberDup)
	assert.ErrorIs(t, err, domain.ErrNumberCollision)

	err = numberInsertError("insert quote", "quotes_quote_number_key", otherDup)
	assert.NotErrorIs(t, err, domain.ErrNumberCollision)
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))

	err = numberInsertError("insert quote", "quotes_quote_number_key", fk)
	assert.NotErrorIs(t, err, domain.ErrNumberCollision)
}

func TestItemsJSONB(t *testing.T) {
	items := []entity.LineItem{
		{Description: "Diseño web", Quantity: 2, UnitPrice: decimal.RequireFromString("59.90"), SortOrder: 0},
		{Description: "Hosting", Quantity: 12, UnitPrice: decimal.RequireFromString("5"), ServiceID: "svc-1", SortOrder: 1},
	}
	raw, err := encodeItems(items)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"unit_price":"59.9"`)

	back, err := decodeItems(raw)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.True(t, back[0].UnitPrice.Equal(items[0].UnitPrice))
	assert.Equal(t, "svc-1", back[1].ServiceID)
	assert.Equal(t, int64(12), back[1].Quantity)

	empty, err := decodeItems(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = decodeItems([]byte(`{"no":"array"}`))
	assert.Error(t, err)
}
