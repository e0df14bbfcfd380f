// Package notify entrega los eventos de facturación (email, webhook) fuera de la transacción.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/jhoicas/billing-api/internal/application/billing"
)

// Channel destino de notificación. Un error envuelto con backoff.Permanent no se reintenta.
type Channel interface {
	Name() string
	Send(ctx context.Context, ev billing.Event) error
}

// Observer recibe el resultado final de cada entrega (err nil = entregado).
type Observer interface {
	Delivered(channel string, ev billing.EventType, err error)
	Dropped(ev billing.EventType)
}

type nopObserver struct{}

func (nopObserver) Delivered(string, billing.EventType, error) {}
func (nopObserver) Dropped(billing.EventType)                  {}

var _ billing.EventPublisher = (*Dispatcher)(nil)

// Dispatcher cola en memoria con un worker; Publish nunca bloquea.
// Si la cola está llena el evento se descarta y se registra.
type Dispatcher struct {
	log        zerolog.Logger
	channels   []Channel
	observer   Observer
	maxElapsed time.Duration
	initial    time.Duration

	queue     chan billing.Event
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// Options configuración del despachador.
type Options struct {
	QueueSize       int
	MaxElapsed      time.Duration // tiempo máximo de reintentos por canal
	InitialInterval time.Duration // 0 = valor por defecto de backoff
	Observer        Observer
}

// NewDispatcher crea el despachador y arranca su worker.
func NewDispatcher(log zerolog.Logger, opts Options, channels ...Channel) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.MaxElapsed <= 0 {
		opts.MaxElapsed = 2 * time.Minute
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	d := &Dispatcher{
		log:        log.With().Str("component", "notify").Logger(),
		channels:   channels,
		observer:   opts.Observer,
		maxElapsed: opts.MaxElapsed,
		initial:    opts.InitialInterval,
		queue:      make(chan billing.Event, opts.QueueSize),
		done:       make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish encola el evento. El contexto de la petición no se propaga: la entrega
// ocurre después de que la petición termina.
func (d *Dispatcher) Publish(_ context.Context, ev billing.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("event", string(ev.Type)).Str("document", ev.DocumentNumber).Msg("despachador cerrado, evento descartado")
		d.observer.Dropped(ev.Type)
		return
	}
	select {
	case d.queue <- ev:
	default:
		d.log.Warn().Str("event", string(ev.Type)).Str("document", ev.DocumentNumber).Msg("cola llena, evento descartado")
		d.observer.Dropped(ev.Type)
	}
}

// Close deja de aceptar eventos y espera a que la cola se vacíe o ctx expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		for _, ch := range d.channels {
			d.deliver(ch, ev)
		}
	}
}

func (d *Dispatcher) deliver(ch Channel, ev billing.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.maxElapsed+5*time.Second)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = d.maxElapsed
	if d.initial > 0 {
		b.InitialInterval = d.initial
	}

	attempt := 0
	op := func() error {
		attempt++
		return ch.Send(ctx, ev)
	}
	onRetry := func(err error, wait time.Duration) {
		d.log.Debug().Err(err).Str("channel", ch.Name()).Str("event", string(ev.Type)).
			Int("attempt", attempt).Dur("retry_in", wait).Msg("reintentando notificación")
	}

	err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), onRetry)
	d.observer.Delivered(ch.Name(), ev.Type, err)
	if err != nil {
		d.log.Error().Err(err).Str("channel", ch.Name()).Str("event", string(ev.Type)).
			Str("document", ev.DocumentNumber).Int("attempts", attempt).Msg("notificación no entregada")
		return
	}
	d.log.Info().Str("channel", ch.Name()).Str("event", string(ev.Type)).
		Str("document", ev.DocumentNumber).Msg("notificación entregada")
}
