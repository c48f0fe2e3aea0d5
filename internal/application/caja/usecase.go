// Package caja implementa el ciclo de vida de la sesión de caja del cajero.
package caja

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/domain"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/internal/domain/repository"
	"github.com/onda-rd/backoffice-api/pkg/logger"
)

// UseCase casos de uso de caja: apertura, cierre y conciliación.
type UseCase struct {
	sessionRepo repository.CashSessionRepository
	invoiceRepo repository.InvoiceRepository
	log         *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(sessionRepo repository.CashSessionRepository, invoiceRepo repository.InvoiceRepository, log *logger.Logger) *UseCase {
	return &UseCase{sessionRepo: sessionRepo, invoiceRepo: invoiceRepo, log: log}
}

// Open abre la caja del cajero. A lo sumo una abierta por cajero.
func (uc *UseCase) Open(ctx context.Context, actor entity.Actor, in dto.OpenCajaRequest) (*dto.CajaResponse, error) {
	if !actor.Can(entity.RoleCajero) {
		return nil, domain.ErrForbidden
	}
	if in.OpeningAmount.IsNegative() {
		return nil, fmt.Errorf("monto inicial negativo: %w", domain.ErrInvalidInput)
	}
	existing, err := uc.sessionRepo.GetOpenByCashier(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrCajaYaAbierta
	}
	s := &entity.CashSession{
		ID:            uuid.New().String(),
		CashierID:     actor.ID,
		Status:        entity.CajaAbierta,
		OpeningAmount: in.OpeningAmount,
		OpenedAt:      time.Now(),
	}
	if err := uc.sessionRepo.Create(ctx, s); err != nil {
		return nil, err
	}
	uc.log.Info().Str("caja_id", s.ID).Str("cajero", actor.ID).Msg("caja abierta")
	return toCajaResponse(s), nil
}

// Close cierra la caja y congela la diferencia:
// declarado - (monto inicial + total de facturas pagadas). La diferencia es
// informativa; un descuadre no impide cerrar, pero la sesión queda inmutable.
func (uc *UseCase) Close(ctx context.Context, actor entity.Actor, sessionID string, in dto.CloseCajaRequest) (*dto.CajaResponse, error) {
	s, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.CashierID != actor.ID && !actor.Can(entity.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	if !s.Open() {
		return nil, domain.ErrCajaCerrada
	}
	paid, err := uc.invoiceRepo.SumPaidBySession(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	diff := in.ClosingAmount.Sub(s.OpeningAmount.Add(paid))
	s.Status = entity.CajaCerrada
	s.ClosingAmount = &in.ClosingAmount
	s.Difference = &diff
	s.ClosedAt = &now
	if err := uc.sessionRepo.Close(ctx, s); err != nil {
		return nil, err
	}
	uc.log.Info().Str("caja_id", s.ID).Str("diferencia", diff.String()).Msg("caja cerrada")
	return toCajaResponse(s), nil
}

// CurrentSessionFor devuelve la caja abierta del cajero, o nil si no tiene.
func (uc *UseCase) CurrentSessionFor(ctx context.Context, cashierID string) (*entity.CashSession, error) {
	return uc.sessionRepo.GetOpenByCashier(ctx, cashierID)
}

// Report arma el resumen de conciliación de la sesión.
func (uc *UseCase) Report(ctx context.Context, actor entity.Actor, sessionID string) (*dto.CajaReportResponse, error) {
	s, err := uc.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.CashierID != actor.ID && !actor.Can(entity.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	invoices, err := uc.invoiceRepo.ListBySession(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	var count int
	total := decimal.Zero
	for _, inv := range invoices {
		if inv.Status == entity.InvoiceStatusPagada {
			count++
			total = total.Add(inv.Total)
		}
	}
	return &dto.CajaReportResponse{
		Caja:          *toCajaResponse(s),
		PaidInvoices:  count,
		PaidTotal:     total,
		ExpectedTotal: s.OpeningAmount.Add(total),
	}, nil
}

func toCajaResponse(s *entity.CashSession) *dto.CajaResponse {
	resp := &dto.CajaResponse{
		ID:            s.ID,
		CashierID:     s.CashierID,
		Status:        s.Status,
		OpeningAmount: s.OpeningAmount,
		ClosingAmount: s.ClosingAmount,
		Difference:    s.Difference,
		OpenedAt:      s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		closed := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &closed
	}
	return resp
}
