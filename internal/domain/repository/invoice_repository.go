package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
)

// InvoiceRepository persistencia de facturas y sus líneas.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice, lines []*entity.InvoiceLine) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// GetByIDForUpdate carga la factura con lock de fila; solo dentro de una tx.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	GetLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error)
	// UpdatePayment fija NCF, método, referencia, caja y PaidAt con guarda de
	// estado EMITIDA; devuelve domain.ErrConflict si la factura ya no está abierta.
	UpdatePayment(ctx context.Context, inv *entity.Invoice) error
	// UpdateVoid marca ANULADA con motivo, con la misma guarda de estado.
	UpdateVoid(ctx context.Context, inv *entity.Invoice) error
	ListBySession(ctx context.Context, sessionID string) ([]*entity.Invoice, error)
	SumPaidBySession(ctx context.Context, sessionID string) (decimal.Decimal, error)
}
