// Package fiscal implementa la asignación de Números de Comprobante Fiscal.
// El cursor de cada secuencia es el único recurso compartido por cajeros
// concurrentes: la reserva es una operación atómica del repositorio, de modo
// que dos llamadas nunca reciben el mismo número y ninguno se salta.
package fiscal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/domain"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/internal/domain/repository"
	"github.com/onda-rd/backoffice-api/pkg/ncf"
)

// AllocatorUseCase casos de uso de secuencias NCF.
type AllocatorUseCase struct {
	seqRepo repository.FiscalSequenceRepository
}

// NewAllocatorUseCase construye el caso de uso.
func NewAllocatorUseCase(seqRepo repository.FiscalSequenceRepository) *AllocatorUseCase {
	return &AllocatorUseCase{seqRepo: seqRepo}
}

// Allocate asigna el próximo NCF del tipo y serie dados.
func (uc *AllocatorUseCase) Allocate(ctx context.Context, tipo, serie string) (string, error) {
	return AllocateWith(ctx, uc.seqRepo, tipo, serie)
}

// AllocateWith ejecuta la selección y reserva sobre el repositorio dado; el
// ledger lo invoca con el repo atado a su transacción para que el NCF quede
// dentro de la misma unidad atómica que el cambio de estado de la factura.
// Cuando varias secuencias sirven, se consume primero la de vencimiento más
// próximo.
func AllocateWith(ctx context.Context, repo repository.FiscalSequenceRepository, tipo, serie string) (string, error) {
	now := time.Now()
	usables, err := repo.ListUsable(ctx, tipo, serie, now)
	if err != nil {
		return "", fmt.Errorf("listar secuencias usables: %w", err)
	}
	for _, seq := range usables {
		numero, ok, err := repo.Reserve(ctx, seq.ID)
		if err != nil {
			return "", fmt.Errorf("reservar número: %w", err)
		}
		if !ok {
			// otra caja agotó la secuencia entre la selección y la reserva
			continue
		}
		return ncf.Format(seq.Serie, seq.Tipo, numero), nil
	}
	return "", classifyUnusable(ctx, repo, tipo, serie, now)
}

// classifyUnusable distingue por qué no hay capacidad: sin secuencia activa,
// todas vencidas o todas agotadas.
func classifyUnusable(ctx context.Context, repo repository.FiscalSequenceRepository, tipo, serie string, now time.Time) error {
	all, err := repo.ListByTipoSerie(ctx, tipo, serie)
	if err != nil {
		return fmt.Errorf("listar secuencias: %w", err)
	}
	var activa, vigente bool
	for _, s := range all {
		if !s.IsActive {
			continue
		}
		activa = true
		if !now.After(s.ExpiresOn) {
			vigente = true
		}
	}
	switch {
	case !activa:
		return domain.ErrSecuenciaInactiva
	case !vigente:
		return domain.ErrSecuenciaVencida
	default:
		return domain.ErrSecuenciaAgotada
	}
}

// CreateSequence alta administrativa de una secuencia. Las secuencias nunca se
// borran; solo se desactivan.
func (uc *AllocatorUseCase) CreateSequence(ctx context.Context, in dto.CreateSequenceRequest) (*dto.SequenceResponse, error) {
	if in.RangeFrom <= 0 || in.RangeTo <= in.RangeFrom {
		return nil, fmt.Errorf("rango inválido: %w", domain.ErrInvalidInput)
	}
	expiresOn, err := time.Parse("2006-01-02", in.ExpiresOn)
	if err != nil {
		return nil, fmt.Errorf("fecha de vencimiento inválida: %w", domain.ErrInvalidInput)
	}
	now := time.Now()
	seq := &entity.FiscalSequence{
		ID:        uuid.New().String(),
		Tipo:      in.Tipo,
		Serie:     in.Serie,
		RangeFrom: in.RangeFrom,
		RangeTo:   in.RangeTo,
		Cursor:    in.RangeFrom,
		ExpiresOn: expiresOn,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.seqRepo.Create(ctx, seq); err != nil {
		return nil, err
	}
	return toSequenceResponse(seq), nil
}

// Deactivate desactiva una secuencia; no afecta números ya entregados.
func (uc *AllocatorUseCase) Deactivate(ctx context.Context, id string) error {
	seq, err := uc.seqRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if seq == nil {
		return domain.ErrNotFound
	}
	return uc.seqRepo.Deactivate(ctx, id)
}

// Statistics devuelve consumo, disponibilidad y días para vencer por
// secuencia. Derivado puro, sin mutación.
func (uc *AllocatorUseCase) Statistics(ctx context.Context) ([]dto.SequenceStats, error) {
	seqs, err := uc.seqRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	stats := make([]dto.SequenceStats, 0, len(seqs))
	for _, s := range seqs {
		days := int(s.ExpiresOn.Sub(now).Hours() / 24)
		if days < 0 {
			days = 0
		}
		stats = append(stats, dto.SequenceStats{
			ID:           s.ID,
			Tipo:         s.Tipo,
			Serie:        s.Serie,
			Consumed:     s.Consumed(),
			Available:    s.Available(),
			DaysToExpiry: days,
			IsActive:     s.IsActive,
		})
	}
	return stats, nil
}

func toSequenceResponse(s *entity.FiscalSequence) *dto.SequenceResponse {
	return &dto.SequenceResponse{
		ID:        s.ID,
		Tipo:      s.Tipo,
		Serie:     s.Serie,
		RangeFrom: s.RangeFrom,
		RangeTo:   s.RangeTo,
		Cursor:    s.Cursor,
		ExpiresOn: s.ExpiresOn.Format("2006-01-02"),
		IsActive:  s.IsActive,
	}
}
