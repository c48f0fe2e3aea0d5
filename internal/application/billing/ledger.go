// Package billing implementa el libro de facturas: emisión, cobro y anulación.
package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/application/fiscal"
	"github.com/onda-rd/backoffice-api/internal/domain"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/internal/domain/repository"
	"github.com/onda-rd/backoffice-api/pkg/logger"
)

// FiscalConfig serie y tipo de NCF que emite esta oficina.
type FiscalConfig struct {
	Serie string
	Tipo  string
}

// LedgerUseCase casos de uso de facturación.
type LedgerUseCase struct {
	txRunner    TxRunner
	invoiceRepo repository.InvoiceRepository
	sessions    SessionSource
	notifier    Notifier
	fiscalCfg   FiscalConfig
	log         *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	invoiceRepo repository.InvoiceRepository,
	sessions SessionSource,
	notifier Notifier,
	fiscalCfg FiscalConfig,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		sessions:    sessions,
		notifier:    notifier,
		fiscalCfg:   fiscalCfg,
		log:         log,
	}
}

// ComputeTotal calcula el total de la factura:
// Σ(cantidad*precio) * (1 - descuento/100) * (1 + ITBIS), redondeado una sola
// vez al final. Con descuento 100 el total es cero sin importar el impuesto.
func ComputeTotal(lines []dto.InvoiceLineRequest, discountPercent int64) (subtotal, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Quantity.Mul(l.UnitPrice))
	}
	factor := decimal.NewFromInt(100 - discountPercent).Div(decimal.NewFromInt(100))
	total = subtotal.Mul(factor).Mul(decimal.NewFromInt(1).Add(entity.ITBISRate)).Round(2)
	return subtotal, total
}

// Open emite una factura en estado EMITIDA. Si el emisor tiene caja abierta,
// la factura nace atada a ella; si no, se atará a la caja del cajero que cobre.
func (uc *LedgerUseCase) Open(ctx context.Context, actor entity.Actor, in dto.OpenInvoiceRequest) (*dto.InvoiceResponse, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("factura sin líneas: %w", domain.ErrInvalidInput)
	}
	for _, l := range in.Lines {
		if strings.TrimSpace(l.Concepto) == "" {
			return nil, fmt.Errorf("línea sin concepto: %w", domain.ErrInvalidInput)
		}
		if !l.Quantity.IsPositive() {
			return nil, fmt.Errorf("cantidad debe ser positiva: %w", domain.ErrInvalidInput)
		}
		if l.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("precio unitario negativo: %w", domain.ErrInvalidInput)
		}
	}
	if !entity.DiscountAllowed(in.DiscountPercent) {
		return nil, fmt.Errorf("descuento debe ser 0, 80 o 100: %w", domain.ErrInvalidInput)
	}
	if in.RequestFiscalReceipt && strings.TrimSpace(in.RNC) == "" {
		return nil, fmt.Errorf("comprobante fiscal requiere RNC: %w", domain.ErrInvalidInput)
	}

	sourceType := in.SourceType
	if sourceType == "" {
		sourceType = entity.InvoiceSourceMostrador
	}

	now := time.Now()
	subtotal, total := ComputeTotal(in.Lines, in.DiscountPercent)
	inv := &entity.Invoice{
		ID:                   uuid.New().String(),
		Codigo:               newCodigo("FAC", now),
		SourceType:           sourceType,
		SourceID:             in.SourceID,
		Status:               entity.InvoiceStatusEmitida,
		DiscountPercent:      in.DiscountPercent,
		RequestFiscalReceipt: in.RequestFiscalReceipt,
		RNC:                  strings.TrimSpace(in.RNC),
		Subtotal:             subtotal,
		Total:                total,
		CreatedBy:            actor.ID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	// Caja del emisor, si tiene una abierta
	session, err := uc.sessions.CurrentSessionFor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		inv.CashSessionID = session.ID
	}

	lines := make([]*entity.InvoiceLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, &entity.InvoiceLine{
			ID:        uuid.New().String(),
			InvoiceID: inv.ID,
			Concepto:  l.Concepto,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Quantity.Mul(l.UnitPrice),
		})
	}

	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.FiscalSequenceRepository,
		_ repository.PaymentEventRepository,
	) error {
		return invoiceRepo.Create(ctx, inv, lines)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("factura_id", inv.ID).Str("total", inv.Total.String()).Msg("factura emitida")
	return toInvoiceResponse(inv, lines), nil
}

// Pay cobra una factura abierta. Idempotente bajo reintentos: un segundo
// intento sobre una factura ya pagada devuelve Conflict sin tocar nada. Si la
// factura pidió comprobante fiscal, el NCF se asigna dentro de la misma
// transacción antes de cambiar el estado; si la asignación falla, la factura
// permanece EMITIDA.
func (uc *LedgerUseCase) Pay(ctx context.Context, actor entity.Actor, invoiceID string, in dto.PayInvoiceRequest) (*dto.InvoiceResponse, error) {
	if !actor.Can(entity.RoleCajero) {
		return nil, domain.ErrForbidden
	}
	method, ok := entity.PaymentMethodByCode(in.Method)
	if !ok {
		return nil, fmt.Errorf("método de pago desconocido %q: %w", in.Method, domain.ErrInvalidInput)
	}
	if method.RequiresReference && strings.TrimSpace(in.Reference) == "" {
		return nil, fmt.Errorf("el método %s requiere referencia: %w", method.Code, domain.ErrInvalidInput)
	}
	session, err := uc.sessions.CurrentSessionFor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrCajaRequerida
	}

	var paid *entity.Invoice
	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		seqRepo repository.FiscalSequenceRepository,
		eventRepo repository.PaymentEventRepository,
	) error {
		inv, err := invoiceRepo.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		switch inv.Status {
		case entity.InvoiceStatusPagada:
			return fmt.Errorf("la factura ya está pagada: %w", domain.ErrConflict)
		case entity.InvoiceStatusAnulada:
			return fmt.Errorf("la factura está anulada: %w", domain.ErrConflict)
		}

		if inv.RequestFiscalReceipt {
			numero, err := fiscal.AllocateWith(ctx, seqRepo, uc.fiscalCfg.Tipo, uc.fiscalCfg.Serie)
			if err != nil {
				return err // aborta el pago completo; la factura sigue EMITIDA
			}
			inv.NCF = numero
		}

		now := time.Now()
		inv.Status = entity.InvoiceStatusPagada
		inv.PaymentMethod = method.Code
		inv.PaymentReference = strings.TrimSpace(in.Reference)
		inv.CashSessionID = session.ID // el dinero entra a la caja del que cobra
		inv.PaidAt = &now
		inv.UpdatedAt = now
		if err := invoiceRepo.UpdatePayment(ctx, inv); err != nil {
			return err
		}
		if err := eventRepo.Create(ctx, &entity.PaymentEvent{
			ID:        uuid.New().String(),
			InvoiceID: inv.ID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		paid = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	if uc.notifier != nil {
		uc.notifier.Notify()
	}
	uc.log.Info().
		Str("factura_id", paid.ID).
		Str("ncf", paid.NCF).
		Str("caja_id", paid.CashSessionID).
		Msg("factura pagada")
	return toInvoiceResponse(paid, nil), nil
}

// Void anula una factura abierta. El motivo es obligatorio y queda para
// auditoría. Una factura pagada se revierte por un proceso contable aparte.
func (uc *LedgerUseCase) Void(ctx context.Context, actor entity.Actor, invoiceID string, in dto.VoidInvoiceRequest) (*dto.InvoiceResponse, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("motivo de anulación requerido: %w", domain.ErrInvalidInput)
	}
	var voided *entity.Invoice
	err := uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		_ repository.FiscalSequenceRepository,
		_ repository.PaymentEventRepository,
	) error {
		inv, err := invoiceRepo.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		switch inv.Status {
		case entity.InvoiceStatusPagada:
			return fmt.Errorf("no se anula una factura pagada: %w", domain.ErrConflict)
		case entity.InvoiceStatusAnulada:
			return fmt.Errorf("la factura ya está anulada: %w", domain.ErrConflict)
		}
		inv.Status = entity.InvoiceStatusAnulada
		inv.VoidReason = strings.TrimSpace(in.Reason)
		inv.UpdatedAt = time.Now()
		if err := invoiceRepo.UpdateVoid(ctx, inv); err != nil {
			return err
		}
		voided = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("factura_id", voided.ID).Str("motivo", voided.VoidReason).Msg("factura anulada")
	return toInvoiceResponse(voided, nil), nil
}

// GetInvoice obtiene una factura con sus líneas.
func (uc *LedgerUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.invoiceRepo.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, lines), nil
}

// GetInvoiceStatus devuelve solo el estado de la factura. Los flujos lo usan
// para releer el estado persistido en vez de confiar en el orden de llegada
// de los eventos.
func (uc *LedgerUseCase) GetInvoiceStatus(ctx context.Context, id string) (string, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if inv == nil {
		return "", domain.ErrNotFound
	}
	return inv.Status, nil
}

// newCodigo genera un código legible: PREFIJO-AÑO-XXXXXXXX.
func newCodigo(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", prefix, now.Year(), strings.ToUpper(uuid.New().String()[:8]))
}

func toInvoiceResponse(inv *entity.Invoice, lines []*entity.InvoiceLine) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:                   inv.ID,
		Codigo:               inv.Codigo,
		SourceType:           inv.SourceType,
		SourceID:             inv.SourceID,
		Status:               inv.Status,
		DiscountPercent:      inv.DiscountPercent,
		RequestFiscalReceipt: inv.RequestFiscalReceipt,
		RNC:                  inv.RNC,
		NCF:                  inv.NCF,
		PaymentMethod:        inv.PaymentMethod,
		PaymentReference:     inv.PaymentReference,
		CashSessionID:        inv.CashSessionID,
		Subtotal:             inv.Subtotal,
		Total:                inv.Total,
		VoidReason:           inv.VoidReason,
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.InvoiceLineResponse{
			ID:        l.ID,
			Concepto:  l.Concepto,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount,
		})
	}
	return resp
}
