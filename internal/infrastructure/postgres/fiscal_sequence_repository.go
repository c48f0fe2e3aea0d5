package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/onda-rd/backoffice-api/internal/domain"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/internal/domain/repository"
)

var _ repository.FiscalSequenceRepository = (*FiscalSequenceRepo)(nil)

// FiscalSequenceRepo implementación del puerto FiscalSequenceRepository sobre PostgreSQL.
type FiscalSequenceRepo struct {
	q Querier
}

// NewFiscalSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFiscalSequenceRepository(q Querier) *FiscalSequenceRepo {
	return &FiscalSequenceRepo{q: q}
}

const fiscalSequenceCols = `id, tipo, serie, range_from, range_to, cursor, expires_on, is_active, created_at, updated_at`

// Create persiste una secuencia nueva con el cursor en el inicio del rango.
func (r *FiscalSequenceRepo) Create(ctx context.Context, seq *entity.FiscalSequence) error {
	query := `
		INSERT INTO fiscal_sequences (` + fiscalSequenceCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		seq.ID, seq.Tipo, seq.Serie, seq.RangeFrom, seq.RangeTo, seq.Cursor,
		seq.ExpiresOn, seq.IsActive, seq.CreatedAt, seq.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert fiscal sequence: %w", err)
	}
	return nil
}

// GetByID obtiene una secuencia por ID.
func (r *FiscalSequenceRepo) GetByID(ctx context.Context, id string) (*entity.FiscalSequence, error) {
	query := `SELECT ` + fiscalSequenceCols + ` FROM fiscal_sequences WHERE id = $1`
	s, err := scanFiscalSequence(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fiscal sequence: %w", err)
	}
	return s, nil
}

// ListUsable devuelve las secuencias con capacidad, activas y sin vencer,
// ordenadas por vencimiento ascendente: la más próxima a vencer se consume
// primero para no desperdiciar rangos autorizados.
func (r *FiscalSequenceRepo) ListUsable(ctx context.Context, tipo, serie string, now time.Time) ([]*entity.FiscalSequence, error) {
	query := `
		SELECT ` + fiscalSequenceCols + `
		FROM fiscal_sequences
		WHERE tipo = $1 AND serie = $2 AND is_active AND expires_on >= $3 AND cursor < range_to
		ORDER BY expires_on ASC, created_at ASC`
	return r.list(ctx, query, tipo, serie, now)
}

// ListByTipoSerie devuelve todas las secuencias del tipo/serie, usables o no.
func (r *FiscalSequenceRepo) ListByTipoSerie(ctx context.Context, tipo, serie string) ([]*entity.FiscalSequence, error) {
	query := `
		SELECT ` + fiscalSequenceCols + `
		FROM fiscal_sequences WHERE tipo = $1 AND serie = $2 ORDER BY expires_on ASC`
	return r.list(ctx, query, tipo, serie)
}

// List devuelve todas las secuencias.
func (r *FiscalSequenceRepo) List(ctx context.Context) ([]*entity.FiscalSequence, error) {
	query := `SELECT ` + fiscalSequenceCols + ` FROM fiscal_sequences ORDER BY tipo, serie, expires_on`
	return r.list(ctx, query)
}

// Reserve entrega el próximo número y avanza el cursor en una sola operación.
// La guarda cursor < range_to en el UPDATE hace la reserva atómica: dos
// reservas concurrentes se serializan en la fila y nunca reciben el mismo
// número. ok=false cuando la secuencia se agotó o dejó de ser usable.
func (r *FiscalSequenceRepo) Reserve(ctx context.Context, id string) (int64, bool, error) {
	query := `
		UPDATE fiscal_sequences
		SET cursor = cursor + 1, updated_at = now()
		WHERE id = $1 AND is_active AND expires_on >= now() AND cursor < range_to
		RETURNING cursor - 1`
	var numero int64
	err := r.q.QueryRow(ctx, query, id).Scan(&numero)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("reserve ncf: %w", err)
	}
	return numero, true, nil
}

// Deactivate desactiva una secuencia; los números ya entregados no se tocan.
func (r *FiscalSequenceRepo) Deactivate(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE fiscal_sequences SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate fiscal sequence: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *FiscalSequenceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.FiscalSequence, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fiscal sequences: %w", err)
	}
	defer rows.Close()
	var list []*entity.FiscalSequence
	for rows.Next() {
		s, err := scanFiscalSequence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fiscal sequence: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanFiscalSequence(row pgx.Row) (*entity.FiscalSequence, error) {
	var s entity.FiscalSequence
	err := row.Scan(
		&s.ID, &s.Tipo, &s.Serie, &s.RangeFrom, &s.RangeTo, &s.Cursor,
		&s.ExpiresOn, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
