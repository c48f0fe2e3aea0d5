package repository

import (
	"context"
	"time"

	"github.com/onda-rd/backoffice-api/internal/domain/entity"
)

// FiscalSequenceRepository persistencia de secuencias NCF.
// Reserve es la única mutación del cursor y debe ser atómica: dos llamadas
// concurrentes nunca devuelven el mismo número ni saltan ninguno.
type FiscalSequenceRepository interface {
	Create(ctx context.Context, seq *entity.FiscalSequence) error
	GetByID(ctx context.Context, id string) (*entity.FiscalSequence, error)
	// ListUsable devuelve las secuencias activas, no vencidas y con capacidad,
	// ordenadas por vencimiento ascendente (la más próxima a vencer primero).
	ListUsable(ctx context.Context, tipo, serie string, now time.Time) ([]*entity.FiscalSequence, error)
	// ListByTipoSerie devuelve todas las secuencias del tipo/serie, usables o no
	// (para clasificar el error cuando ninguna sirve).
	ListByTipoSerie(ctx context.Context, tipo, serie string) ([]*entity.FiscalSequence, error)
	List(ctx context.Context) ([]*entity.FiscalSequence, error)
	// Reserve entrega el próximo número de la secuencia y avanza el cursor en
	// una sola operación atómica. ok=false si la secuencia se agotó entre la
	// selección y la reserva.
	Reserve(ctx context.Context, id string) (numero int64, ok bool, err error)
	Deactivate(ctx context.Context, id string) error
}
