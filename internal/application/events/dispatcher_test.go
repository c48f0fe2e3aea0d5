package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/pkg/logger"
)

// memOutbox implementa el outbox en memoria con marcas por (evento, consumidor).
type memOutbox struct {
	mu        sync.Mutex
	events    []*entity.PaymentEvent
	processed map[string]bool // evento|consumidor
}

func newMemOutbox(invoiceIDs ...string) *memOutbox {
	o := &memOutbox{processed: make(map[string]bool)}
	for i, id := range invoiceIDs {
		o.events = append(o.events, &entity.PaymentEvent{
			ID:        "ev-" + id,
			InvoiceID: id,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
		})
	}
	return o
}

func (o *memOutbox) Create(_ context.Context, e *entity.PaymentEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
	return nil
}

func (o *memOutbox) ListUnprocessed(_ context.Context, consumer string, limit int) ([]*entity.PaymentEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []*entity.PaymentEvent
	for _, ev := range o.events {
		if !o.processed[ev.ID+"|"+consumer] {
			out = append(out, ev)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (o *memOutbox) MarkProcessed(_ context.Context, eventID, consumer string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.processed[eventID+"|"+consumer] = true
	return nil
}

// scriptedHandler falla para las facturas listadas en failFor y registra todo
// lo que recibe.
type scriptedHandler struct {
	name    string
	failFor map[string]bool
	mu      sync.Mutex
	got     []string
}

func (h *scriptedHandler) Consumer() string { return h.name }

func (h *scriptedHandler) HandlePaymentConfirmed(_ context.Context, invoiceID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.got = append(h.got, invoiceID)
	if h.failFor[invoiceID] {
		return errors.New("handler no disponible")
	}
	return nil
}

func (h *scriptedHandler) received() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.got...)
}

func TestProcessPending_EntregaACadaConsumidor(t *testing.T) {
	outbox := newMemOutbox("f1", "f2")
	registro := &scriptedHandler{name: entity.ConsumerRegistro}
	inspeccion := &scriptedHandler{name: entity.ConsumerInspeccion}
	d := NewDispatcher(outbox, time.Second, logger.Nop(), registro, inspeccion)

	require.NoError(t, d.ProcessPending(context.Background()))

	assert.Equal(t, []string{"f1", "f2"}, registro.received())
	assert.Equal(t, []string{"f1", "f2"}, inspeccion.received())

	// todo quedó marcado: un segundo ciclo no entrega nada
	require.NoError(t, d.ProcessPending(context.Background()))
	assert.Len(t, registro.received(), 2)
	assert.Len(t, inspeccion.received(), 2)
}

func TestProcessPending_FalloNoMarcaYSeReintenta(t *testing.T) {
	outbox := newMemOutbox("f1", "f2")
	registro := &scriptedHandler{name: entity.ConsumerRegistro, failFor: map[string]bool{"f1": true}}
	inspeccion := &scriptedHandler{name: entity.ConsumerInspeccion}
	d := NewDispatcher(outbox, time.Second, logger.Nop(), registro, inspeccion)

	require.NoError(t, d.ProcessPending(context.Background()))
	assert.True(t, outbox.processed["ev-f2|"+entity.ConsumerRegistro], "f2 sí se marcó")
	assert.False(t, outbox.processed["ev-f1|"+entity.ConsumerRegistro], "f1 falló, queda pendiente")
	assert.True(t, outbox.processed["ev-f1|"+entity.ConsumerInspeccion],
		"la marca es por consumidor; el fallo de registro no afecta a inspección")

	// el handler se recupera y el siguiente ciclo entrega solo lo pendiente
	registro.failFor = nil
	require.NoError(t, d.ProcessPending(context.Background()))
	assert.Equal(t, []string{"f1", "f2", "f1"}, registro.received())
	assert.True(t, outbox.processed["ev-f1|"+entity.ConsumerRegistro])
	assert.Equal(t, []string{"f1", "f2"}, inspeccion.received(), "inspección no recibe repetidos")
}

func TestNotify_NoBloquea(t *testing.T) {
	d := NewDispatcher(newMemOutbox(), time.Second, logger.Nop())
	// sin nadie drenando el canal, varias notificaciones no deben bloquear
	for i := 0; i < 10; i++ {
		d.Notify()
	}
}

func TestRun_TerminaConElContexto(t *testing.T) {
	outbox := newMemOutbox("f1")
	h := &scriptedHandler{name: entity.ConsumerRegistro}
	d := NewDispatcher(outbox, 10*time.Millisecond, logger.Nop(), h)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return len(h.received()) > 0
	}, time.Second, 5*time.Millisecond, "el despachador debe drenar al arrancar")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run no terminó tras cancelar el contexto")
	}
}
