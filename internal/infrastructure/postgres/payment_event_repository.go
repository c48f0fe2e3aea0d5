package postgres

import (
	"context"
	"fmt"

	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/internal/domain/repository"
)

var _ repository.PaymentEventRepository = (*PaymentEventRepo)(nil)

// PaymentEventRepo es el outbox de PaymentConfirmed sobre PostgreSQL.
// El insert corre en la misma transacción que marca la factura como pagada;
// la tabla payment_event_processing lleva qué consumidor procesó qué evento.
type PaymentEventRepo struct {
	q Querier
}

// NewPaymentEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentEventRepository(q Querier) *PaymentEventRepo {
	return &PaymentEventRepo{q: q}
}

// Create inserta el evento en el outbox.
func (r *PaymentEventRepo) Create(ctx context.Context, e *entity.PaymentEvent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payment_events (id, invoice_id, created_at)
		VALUES ($1, $2, $3)`,
		e.ID, e.InvoiceID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment event: %w", err)
	}
	return nil
}

// ListUnprocessed devuelve los eventos que el consumidor todavía no procesó,
// del más antiguo al más nuevo.
func (r *PaymentEventRepo) ListUnprocessed(ctx context.Context, consumer string, limit int) ([]*entity.PaymentEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT e.id, e.invoice_id, e.created_at
		FROM payment_events e
		WHERE NOT EXISTS (
			SELECT 1 FROM payment_event_processing p
			WHERE p.event_id = e.id AND p.consumer = $1
		)
		ORDER BY e.created_at
		LIMIT $2`, consumer, limit)
	if err != nil {
		return nil, fmt.Errorf("list unprocessed payment events: %w", err)
	}
	defer rows.Close()
	var list []*entity.PaymentEvent
	for rows.Next() {
		var e entity.PaymentEvent
		if err := rows.Scan(&e.ID, &e.InvoiceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment event: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// MarkProcessed registra (evento, consumidor). ON CONFLICT DO NOTHING hace
// inofensivo el doble marcado de un reintento.
func (r *PaymentEventRepo) MarkProcessed(ctx context.Context, eventID, consumer string) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payment_event_processing (event_id, consumer, processed_at)
		VALUES ($1, $2, now())
		ON CONFLICT (event_id, consumer) DO NOTHING`,
		eventID, consumer,
	)
	if err != nil {
		return fmt.Errorf("mark payment event processed: %w", err)
	}
	return nil
}
