package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/onda-rd/backoffice-api/internal/domain"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/internal/domain/repository"
)

var _ repository.CashSessionRepository = (*CashSessionRepo)(nil)

// CashSessionRepo implementación del puerto CashSessionRepository sobre PostgreSQL.
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

const cashSessionCols = `id, cashier_id, status, opening_amount, closing_amount, difference, opened_at, closed_at`

// Create persiste una sesión nueva. El índice único parcial sobre
// (cashier_id) WHERE status = 'ABIERTA' garantiza a lo sumo una caja abierta
// por cajero aun bajo aperturas concurrentes.
func (r *CashSessionRepo) Create(ctx context.Context, s *entity.CashSession) error {
	query := `
		INSERT INTO cash_sessions (` + cashSessionCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.CashierID, s.Status, s.OpeningAmount, s.ClosingAmount, s.Difference, s.OpenedAt, s.ClosedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCajaYaAbierta
		}
		return fmt.Errorf("insert cash session: %w", err)
	}
	return nil
}

// GetByID obtiene una sesión por ID.
func (r *CashSessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	query := `SELECT ` + cashSessionCols + ` FROM cash_sessions WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetOpenByCashier obtiene la caja abierta del cajero, si tiene una.
func (r *CashSessionRepo) GetOpenByCashier(ctx context.Context, cashierID string) (*entity.CashSession, error) {
	query := `SELECT ` + cashSessionCols + ` FROM cash_sessions WHERE cashier_id = $1 AND status = 'ABIERTA'`
	return r.get(ctx, query, cashierID)
}

// Close congela monto declarado y diferencia. La guarda status = ABIERTA hace
// el cierre idempotente-seguro: el segundo cierre concurrente pierde.
func (r *CashSessionRepo) Close(ctx context.Context, s *entity.CashSession) error {
	query := `
		UPDATE cash_sessions
		SET status = $2, closing_amount = $3, difference = $4, closed_at = $5
		WHERE id = $1 AND status = 'ABIERTA'`
	cmd, err := r.q.Exec(ctx, query, s.ID, s.Status, s.ClosingAmount, s.Difference, s.ClosedAt)
	if err != nil {
		return fmt.Errorf("close cash session: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCajaCerrada
	}
	return nil
}

func (r *CashSessionRepo) get(ctx context.Context, query string, arg any) (*entity.CashSession, error) {
	var s entity.CashSession
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&s.ID, &s.CashierID, &s.Status, &s.OpeningAmount, &s.ClosingAmount, &s.Difference, &s.OpenedAt, &s.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash session: %w", err)
	}
	return &s, nil
}
