package repository

import (
	"context"

	"github.com/onda-rd/backoffice-api/internal/domain/entity"
)

// SolicitudRepository persistencia de solicitudes de registro IRC.
type SolicitudRepository interface {
	Create(ctx context.Context, s *entity.Solicitud) error
	GetByID(ctx context.Context, id string) (*entity.Solicitud, error)
	GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.Solicitud, error)
	// Update persiste el avance con chequeo optimista de versión; devuelve
	// domain.ErrConflict si otra transición ganó la carrera.
	Update(ctx context.Context, s *entity.Solicitud) error
	AddTransition(ctx context.Context, t *entity.SolicitudTransition) error
	ListTransitions(ctx context.Context, solicitudID string) ([]*entity.SolicitudTransition, error)
}
