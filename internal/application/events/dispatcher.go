// Package events entrega los eventos PaymentConfirmed del outbox a los flujos
// de registro e inspección. Entrega al menos una vez: un evento se marca
// procesado por consumidor solo cuando su handler terminó sin error, y los
// handlers son idempotentes, así que los reintentos son inofensivos.
package events

import (
	"context"
	"time"

	"github.com/onda-rd/backoffice-api/internal/domain/repository"
	"github.com/onda-rd/backoffice-api/pkg/logger"
)

const batchSize = 50

// Handler procesa un PaymentConfirmed para un consumidor concreto.
type Handler interface {
	Consumer() string
	HandlePaymentConfirmed(ctx context.Context, invoiceID string) error
}

// Dispatcher drena el outbox y entrega a cada consumidor registrado.
type Dispatcher struct {
	repo     repository.PaymentEventRepository
	handlers []Handler
	wake     chan struct{}
	interval time.Duration
	log      *logger.Logger
}

// NewDispatcher construye el despachador. interval es el período del barrido
// de respaldo; Notify lo adelanta tras cada pago confirmado.
func NewDispatcher(repo repository.PaymentEventRepository, interval time.Duration, log *logger.Logger, handlers ...Handler) *Dispatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Dispatcher{
		repo:     repo,
		handlers: handlers,
		wake:     make(chan struct{}, 1),
		interval: interval,
		log:      log,
	}
}

// Register agrega consumidores. Llamar antes de Run; el despachador se
// construye primero porque el ledger necesita notificarlo y los flujos
// necesitan al ledger.
func (d *Dispatcher) Register(handlers ...Handler) {
	d.handlers = append(d.handlers, handlers...)
}

// Notify despierta al despachador sin bloquear al que confirma el pago.
func (d *Dispatcher) Notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run procesa pendientes hasta que el contexto termine.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		if err := d.ProcessPending(ctx); err != nil && ctx.Err() == nil {
			d.log.Error().Err(err).Msg("despacho de eventos de pago")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-d.wake:
		}
	}
}

// ProcessPending entrega cada evento pendiente a cada consumidor. Un handler
// que falla no marca el evento; el próximo ciclo lo reintenta.
func (d *Dispatcher) ProcessPending(ctx context.Context) error {
	for _, h := range d.handlers {
		events, err := d.repo.ListUnprocessed(ctx, h.Consumer(), batchSize)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if err := h.HandlePaymentConfirmed(ctx, ev.InvoiceID); err != nil {
				d.log.Warn().
					Err(err).
					Str("evento", ev.ID).
					Str("consumidor", h.Consumer()).
					Msg("handler de pago falló; se reintentará")
				continue
			}
			if err := d.repo.MarkProcessed(ctx, ev.ID, h.Consumer()); err != nil {
				return err
			}
		}
	}
	return nil
}
