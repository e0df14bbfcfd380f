package numbering_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/domain"
	"github.com/jhoicas/billing-api/internal/domain/numbering"
)

type stubSource struct {
	last      string
	gotPrefix string
}

func (s *stubSource) LastNumberWithPrefix(_ context.Context, prefix string) (string, error) {
	s.gotPrefix = prefix
	return s.last, nil
}

var now = time.Date(2026, 10, 17, 15, 4, 5, 0, time.UTC)

func TestNext_Secuencial(t *testing.T) {
	series := numbering.Series{Prefix: "INV", Policy: numbering.Sequential}

	src := &stubSource{}
	n, err := series.Next(context.Background(), src, now)
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", n)
	assert.Equal(t, "INV-", src.gotPrefix)

	src.last = "INV-0041"
	n, err = series.Next(context.Background(), src, now)
	require.NoError(t, err)
	assert.Equal(t, "INV-0042", n)

	src.last = "INV-9999"
	n, _ = series.Next(context.Background(), src, now)
	assert.Equal(t, "INV-10000", n, "el contador sigue creciendo más allá de 4 dígitos")
}

func TestNext_Diario(t *testing.T) {
	series := numbering.Series{Prefix: "QT", Policy: numbering.Daily}

	src := &stubSource{}
	n, err := series.Next(context.Background(), src, now)
	require.NoError(t, err)
	assert.Equal(t, "QT-20261017-001", n)
	assert.Equal(t, "QT-20261017-", src.gotPrefix, "el ámbito se reinicia por día calendario")

	src.last = "QT-20261017-007"
	n, _ = series.Next(context.Background(), src, now)
	assert.Equal(t, "QT-20261017-008", n)
}

func TestParsePolicy(t *testing.T) {
	p, err := numbering.ParsePolicy("DAILY")
	require.NoError(t, err)
	assert.Equal(t, numbering.Daily, p)

	p, err = numbering.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, numbering.Sequential, p)

	_, err = numbering.ParsePolicy("random")
	assert.Error(t, err)
}

func TestRetry_ColisionUnaVez(t *testing.T) {
	calls := 0
	err := numbering.Retry(1, func(attempt int) error {
		calls++
		if attempt == 0 {
			return domain.ErrNumberCollision
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetry_ColisionPersistenteEsTransitoria(t *testing.T) {
	calls := 0
	err := numbering.Retry(1, func(int) error {
		calls++
		return domain.ErrNumberCollision
	})
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.ErrorIs(t, err, domain.ErrNumberCollision)
	assert.Equal(t, 2, calls)
}

func TestRetry_OtrosErroresNoSeReintentan(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := numbering.Retry(3, func(int) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
