package billing

import (
	"context"

	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los
// repos de facturación, secuencias NCF y el outbox de eventos. La asignación
// del NCF y el cambio de estado de la factura comparten la misma unidad
// atómica: si la asignación falla, el pago completo se revierte.
type TxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		seqRepo repository.FiscalSequenceRepository,
		eventRepo repository.PaymentEventRepository,
	) error) error
}

// SessionSource expone la caja abierta de un cajero (lo implementa caja.UseCase).
type SessionSource interface {
	CurrentSessionFor(ctx context.Context, cashierID string) (*entity.CashSession, error)
}

// Notifier despierta al despachador de eventos después de confirmar un pago.
// La entrega no depende de esta señal: el outbox garantiza al menos una vez.
type Notifier interface {
	Notify()
}
