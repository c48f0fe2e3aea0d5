package repository

import (
	"context"

	"github.com/onda-rd/backoffice-api/internal/domain/entity"
)

// CaseRepository persistencia de expedientes de inspección.
type CaseRepository interface {
	Create(ctx context.Context, c *entity.InspectionCase) error
	GetByID(ctx context.Context, id string) (*entity.InspectionCase, error)
	GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.InspectionCase, error)
	// Update persiste el avance con chequeo optimista de versión; devuelve
	// domain.ErrConflict si otra transición ganó la carrera.
	Update(ctx context.Context, c *entity.InspectionCase) error
	// ExistsOpenByCompany indica si la empresa tiene un expediente no terminal.
	ExistsOpenByCompany(ctx context.Context, companyID string) (bool, error)
	AddTransition(ctx context.Context, t *entity.CaseTransition) error
	ListTransitions(ctx context.Context, caseID string) ([]*entity.CaseTransition, error)
}
