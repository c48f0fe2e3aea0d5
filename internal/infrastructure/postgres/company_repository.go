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

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyCols = `id, name, rnc, category_code, address, phone, email, status,
	registro_numero, registro_desde, registro_hasta, created_at, updated_at`

// Create persiste una empresa nueva. RNC es único.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	query := `
		INSERT INTO companies (` + companyCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.RNC, c.CategoryCode, c.Address, c.Phone, c.Email, c.Status,
		c.RegistroNumero, c.RegistroDesde, c.RegistroHasta, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `SELECT ` + companyCols + ` FROM companies WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetByRNC obtiene una empresa por RNC.
func (r *CompanyRepo) GetByRNC(ctx context.Context, rnc string) (*entity.Company, error) {
	query := `SELECT ` + companyCols + ` FROM companies WHERE rnc = $1`
	return r.get(ctx, query, rnc)
}

// ListLapsed devuelve las empresas activas con registro vencido a la fecha.
func (r *CompanyRepo) ListLapsed(ctx context.Context, now time.Time) ([]*entity.Company, error) {
	query := `
		SELECT ` + companyCols + `
		FROM companies
		WHERE status = 'active' AND registro_hasta IS NOT NULL AND registro_hasta < $1
		ORDER BY registro_hasta`
	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list lapsed companies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// RenewRegistro fija número y vigencia del registro (efecto de la entrega).
func (r *CompanyRepo) RenewRegistro(ctx context.Context, companyID, numero string, desde, hasta time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE companies
		SET registro_numero = $2, registro_desde = $3, registro_hasta = $4, updated_at = now()
		WHERE id = $1`, companyID, numero, desde, hasta)
	if err != nil {
		return fmt.Errorf("renew registro: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CompanyRepo) get(ctx context.Context, query, arg string) (*entity.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(
		&c.ID, &c.Name, &c.RNC, &c.CategoryCode, &c.Address, &c.Phone, &c.Email, &c.Status,
		&c.RegistroNumero, &c.RegistroDesde, &c.RegistroHasta, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
