package repository

import (
	"context"

	"github.com/onda-rd/backoffice-api/internal/domain/entity"
)

// CashSessionRepository persistencia de sesiones de caja.
type CashSessionRepository interface {
	Create(ctx context.Context, s *entity.CashSession) error
	GetByID(ctx context.Context, id string) (*entity.CashSession, error)
	GetOpenByCashier(ctx context.Context, cashierID string) (*entity.CashSession, error)
	// Close congela monto declarado y diferencia con guarda de estado ABIERTA;
	// devuelve domain.ErrCajaCerrada si ya estaba cerrada.
	Close(ctx context.Context, s *entity.CashSession) error
}
