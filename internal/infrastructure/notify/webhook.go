package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/billing-api/internal/application/billing"
)

// WebhookChannel publica el evento como JSON (POST) en una URL externa.
// Respuestas 4xx (salvo 429) no se reintentan.
type WebhookChannel struct {
	url    string
	client *http.Client
}

// NewWebhookChannel construye el canal. client nil usa un cliente con timeout de 10s.
func NewWebhookChannel(url string, client *http.Client) *WebhookChannel {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookChannel{url: url, client: client}
}

func (w *WebhookChannel) Name() string { return "webhook" }

func (w *WebhookChannel) Send(ctx context.Context, ev billing.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("webhook: serializar evento: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("webhook: construir petición: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Billing-Event", string(ev.Type))

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("webhook: status %d", resp.StatusCode)
	default:
		return backoff.Permanent(fmt.Errorf("webhook: status %d", resp.StatusCode))
	}
}
