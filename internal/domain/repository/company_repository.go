package repository

import (
	"context"
	"time"

	"github.com/onda-rd/backoffice-api/internal/domain/entity"
)

// CompanyRepository persistencia de empresas IRC.
type CompanyRepository interface {
	Create(ctx context.Context, c *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByRNC(ctx context.Context, rnc string) (*entity.Company, error)
	// ListLapsed devuelve las empresas con registro vencido a la fecha dada.
	ListLapsed(ctx context.Context, now time.Time) ([]*entity.Company, error)
	// RenewRegistro actualiza el número y la vigencia del registro de la
	// empresa (efecto de la entrega del certificado).
	RenewRegistro(ctx context.Context, companyID, numero string, desde, hasta time.Time) error
}
