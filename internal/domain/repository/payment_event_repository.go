package repository

import (
	"context"

	"github.com/onda-rd/backoffice-api/internal/domain/entity"
)

// PaymentEventRepository es el outbox de eventos PaymentConfirmed.
// Create corre en la misma transacción que marca la factura como pagada;
// MarkProcessed registra (evento, consumidor) para que los reintentos sean no-ops.
type PaymentEventRepository interface {
	Create(ctx context.Context, e *entity.PaymentEvent) error
	ListUnprocessed(ctx context.Context, consumer string, limit int) ([]*entity.PaymentEvent, error)
	MarkProcessed(ctx context.Context, eventID, consumer string) error
}
