// Package bootstrap construye las dependencias compartidas por cmd/api y cmd/sweep.
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/billing-api/internal/application/billing"
	"github.com/jhoicas/billing-api/internal/domain/numbering"
	"github.com/jhoicas/billing-api/internal/infrastructure/metrics"
	"github.com/jhoicas/billing-api/internal/infrastructure/notify"
	"github.com/jhoicas/billing-api/internal/infrastructure/postgres"
	"github.com/jhoicas/billing-api/internal/infrastructure/redislock"
	"github.com/jhoicas/billing-api/pkg/config"
	"github.com/jhoicas/billing-api/pkg/urlsign"
)

// Settings traduce la configuración a parámetros de negocio.
func Settings(cfg config.BillingConfig) (billing.Settings, error) {
	s := billing.DefaultSettings()

	qp, err := numbering.ParsePolicy(cfg.QuotePolicy)
	if err != nil {
		return s, err
	}
	ip, err := numbering.ParsePolicy(cfg.InvoicePolicy)
	if err != nil {
		return s, err
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(cfg.DefaultTaxRate))
	if err != nil || rate.IsNegative() {
		return s, fmt.Errorf("config: INVOICE_DEFAULT_TAX_RATE inválido %q", cfg.DefaultTaxRate)
	}

	s.QuoteSeries = numbering.Series{Prefix: cfg.QuotePrefix, Policy: qp}
	s.InvoiceSeries = numbering.Series{Prefix: cfg.InvoicePrefix, Policy: ip}
	s.MaxRetries = cfg.MaxRetries
	s.QuoteValidityDays = cfg.QuoteValidityDays
	s.DefaultTaxRate = rate
	if cfg.Currency != "" {
		s.Currency = strings.ToUpper(cfg.Currency)
	}
	if cfg.Language != "" {
		s.Language = cfg.Language
	}
	s.PublicBaseURL = cfg.PublicAPIURL
	return s, nil
}

// Dispatcher crea el despachador con los canales configurados (puede no tener ninguno).
func Dispatcher(cfg config.NotifyConfig, m *metrics.Metrics, log zerolog.Logger) *notify.Dispatcher {
	var channels []notify.Channel
	if cfg.SMTPHost != "" {
		channels = append(channels, notify.NewEmailChannel(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From, cfg.NotificationEmail,
		))
	}
	if cfg.WebhookURL != "" {
		channels = append(channels, notify.NewWebhookChannel(cfg.WebhookURL, nil))
	}
	if len(channels) == 0 {
		log.Warn().Msg("sin canales de notificación configurados (SMTP_HOST, WEBHOOK_URL)")
	}
	opts := notify.Options{QueueSize: cfg.QueueSize, MaxElapsed: cfg.MaxElapsed}
	if m != nil {
		opts.Observer = m
	}
	return notify.NewDispatcher(log, opts, channels...)
}

// Locker candado del barrido; nil si REDIS_URL no está definido.
func Locker(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (billing.Locker, func(), error) {
	if cfg.URL == "" {
		return nil, func() {}, nil
	}
	l, err := redislock.New(ctx, cfg.URL, log)
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = l.Close() }, nil
}

// Deps ensambla los colaboradores de los casos de uso sobre el pool.
func Deps(pool *pgxpool.Pool, signer *urlsign.Signer, events billing.EventPublisher, settings billing.Settings, log zerolog.Logger) billing.Deps {
	return billing.Deps{
		Tx:       postgres.NewTxRunner(pool),
		Contacts: postgres.NewContactRepository(pool),
		Quotes:   postgres.NewQuoteRepository(pool),
		Invoices: postgres.NewInvoiceRepository(pool),
		Events:   events,
		Signer:   signer,
		Settings: settings,
		Log:      log,
		Now:      time.Now,
	}
}
