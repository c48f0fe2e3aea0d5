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

var _ repository.CaseRepository = (*CaseRepo)(nil)

// CaseRepo implementación del puerto CaseRepository sobre PostgreSQL.
type CaseRepo struct {
	q Querier
}

// NewCaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCaseRepository(q Querier) *CaseRepo {
	return &CaseRepo{q: q}
}

const caseCols = `id, codigo, company_id, tipo, estado, inspector_id, invoice_id,
	first_visit_date, first_visit_ok, correction_days, correction_deadline,
	second_visit_date, second_visit_ok, resolution, version, created_by, created_at, updated_at`

// Create persiste un expediente nuevo en versión 1.
func (r *CaseRepo) Create(ctx context.Context, c *entity.InspectionCase) error {
	c.Version = 1
	query := `
		INSERT INTO inspection_cases (` + caseCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Codigo, c.CompanyID, c.Tipo, c.Estado, c.InspectorID, nullIfEmpty(c.InvoiceID),
		c.FirstVisitDate, c.FirstVisitOK, c.CorrectionDays, c.CorrectionDeadline,
		c.SecondVisitDate, c.SecondVisitOK, c.Resolution, c.Version, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert inspection case: %w", err)
	}
	return nil
}

// GetByID obtiene un expediente por ID.
func (r *CaseRepo) GetByID(ctx context.Context, id string) (*entity.InspectionCase, error) {
	query := `SELECT ` + caseCols + ` FROM inspection_cases WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetByInvoiceID obtiene el expediente cuya tasa de inspección es la factura dada.
func (r *CaseRepo) GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.InspectionCase, error) {
	query := `SELECT ` + caseCols + ` FROM inspection_cases WHERE invoice_id = $1`
	return r.get(ctx, query, invoiceID)
}

// Update persiste el avance con chequeo optimista de versión.
func (r *CaseRepo) Update(ctx context.Context, c *entity.InspectionCase) error {
	query := `
		UPDATE inspection_cases
		SET estado = $2, inspector_id = $3, first_visit_date = $4, first_visit_ok = $5,
			correction_deadline = $6, second_visit_date = $7, second_visit_ok = $8,
			resolution = $9, version = version + 1, updated_at = $10
		WHERE id = $1 AND version = $11`
	cmd, err := r.q.Exec(ctx, query,
		c.ID, c.Estado, c.InspectorID, c.FirstVisitDate, c.FirstVisitOK,
		c.CorrectionDeadline, c.SecondVisitDate, c.SecondVisitOK,
		c.Resolution, c.UpdatedAt, c.Version,
	)
	if err != nil {
		return fmt.Errorf("update inspection case: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	c.Version++
	return nil
}

// ExistsOpenByCompany indica si la empresa tiene un expediente no terminal.
func (r *CaseRepo) ExistsOpenByCompany(ctx context.Context, companyID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM inspection_cases
			WHERE company_id = $1 AND estado NOT IN ($2, $3)
		)`, companyID, entity.CasoCerrado, entity.CasoEscaladoLegal).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists open case: %w", err)
	}
	return exists, nil
}

// AddTransition registra un avance en la bitácora.
func (r *CaseRepo) AddTransition(ctx context.Context, t *entity.CaseTransition) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO case_transitions (id, case_id, from_estado, to_estado, actor_id, at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.CaseID, t.FromEstado, t.ToEstado, t.ActorID, t.At,
	)
	if err != nil {
		return fmt.Errorf("insert case transition: %w", err)
	}
	return nil
}

// ListTransitions devuelve la bitácora del expediente en orden cronológico.
func (r *CaseRepo) ListTransitions(ctx context.Context, caseID string) ([]*entity.CaseTransition, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, case_id, from_estado, to_estado, actor_id, at
		FROM case_transitions WHERE case_id = $1 ORDER BY at`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list case transitions: %w", err)
	}
	defer rows.Close()
	var list []*entity.CaseTransition
	for rows.Next() {
		var t entity.CaseTransition
		if err := rows.Scan(&t.ID, &t.CaseID, &t.FromEstado, &t.ToEstado, &t.ActorID, &t.At); err != nil {
			return nil, fmt.Errorf("scan case transition: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

func (r *CaseRepo) get(ctx context.Context, query, arg string) (*entity.InspectionCase, error) {
	var c entity.InspectionCase
	var invoiceID *string
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.Codigo, &c.CompanyID, &c.Tipo, &c.Estado, &c.InspectorID, &invoiceID,
		&c.FirstVisitDate, &c.FirstVisitOK, &c.CorrectionDays, &c.CorrectionDeadline,
		&c.SecondVisitDate, &c.SecondVisitOK, &c.Resolution, &c.Version, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inspection case: %w", err)
	}
	if invoiceID != nil {
		c.InvoiceID = *invoiceID
	}
	return &c, nil
}
