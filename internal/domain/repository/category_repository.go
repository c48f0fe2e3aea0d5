package repository

import (
	"context"

	"github.com/onda-rd/backoffice-api/internal/domain/entity"
)

// CategoryRepository consulta del catálogo de categorías IRC y sus tarifas.
// El catálogo se administra fuera de este sistema; aquí solo se lee.
type CategoryRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Category, error)
}
