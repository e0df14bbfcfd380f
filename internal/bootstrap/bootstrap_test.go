package bootstrap

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billing-api/internal/domain/numbering"
	"github.com/jhoicas/billing-api/pkg/config"
)

func TestSettings(t *testing.T) {
	s, err := Settings(config.BillingConfig{
		QuotePolicy:       "daily",
		QuotePrefix:       "COT",
		InvoicePolicy:     "sequential",
		InvoicePrefix:     "FAC",
		MaxRetries:        2,
		QuoteValidityDays: 20,
		DefaultTaxRate:    "12.5",
		Currency:          "eur",
		Language:          "es",
		PublicAPIURL:      "https://api.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, numbering.Series{Prefix: "COT", Policy: numbering.Daily}, s.QuoteSeries)
	assert.Equal(t, numbering.Series{Prefix: "FAC", Policy: numbering.Sequential}, s.InvoiceSeries)
	assert.Equal(t, 2, s.MaxRetries)
	assert.Equal(t, 20, s.QuoteValidityDays)
	assert.True(t, s.DefaultTaxRate.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "EUR", s.Currency)
	assert.Equal(t, "es", s.Language)
	assert.Equal(t, "https://api.example.com", s.PublicBaseURL)
}

func TestSettings_Invalid(t *testing.T) {
	base := config.BillingConfig{QuotePolicy: "sequential", InvoicePolicy: "sequential", DefaultTaxRate: "18"}

	bad := base
	bad.DefaultTaxRate = "dieciocho"
	_, err := Settings(bad)
	assert.Error(t, err)

	bad = base
	bad.DefaultTaxRate = "-1"
	_, err = Settings(bad)
	assert.Error(t, err)

	bad = base
	bad.InvoicePolicy = "weekly"
	_, err = Settings(bad)
	assert.Error(t, err)
}
