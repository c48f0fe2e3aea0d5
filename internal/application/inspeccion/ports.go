package inspeccion

import (
	"context"

	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
)

// Ledger es la porción del libro de facturas que consume el flujo: emitir la
// tasa de inspección en las denuncias y releer su estado antes de asignar.
// Lo implementa billing.LedgerUseCase.
type Ledger interface {
	Open(ctx context.Context, actor entity.Actor, in dto.OpenInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoiceStatus(ctx context.Context, id string) (string, error)
}
