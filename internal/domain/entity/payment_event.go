package entity

import "time"

// Consumidores registrados del evento PaymentConfirmed.
const (
	ConsumerRegistro   = "registro"
	ConsumerInspeccion = "inspeccion"
)

// PaymentEvent es un evento PaymentConfirmed durable. Se inserta en la misma
// transacción que marca la factura como pagada (outbox) y el despachador lo
// entrega al menos una vez a cada consumidor; los handlers son idempotentes.
type PaymentEvent struct {
	ID        string
	InvoiceID string
	CreatedAt time.Time
}
