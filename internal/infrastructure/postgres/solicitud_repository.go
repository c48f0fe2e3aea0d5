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

var _ repository.SolicitudRepository = (*SolicitudRepo)(nil)

// SolicitudRepo implementación del puerto SolicitudRepository sobre PostgreSQL.
type SolicitudRepo struct {
	q Querier
}

// NewSolicitudRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSolicitudRepository(q Querier) *SolicitudRepo {
	return &SolicitudRepo{q: q}
}

const solicitudCols = `id, codigo, company_id, tipo, estado, category_code, invoice_id,
	book_number, entry_number, certified_at, signed_at, delivered_at, version,
	created_by, created_at, updated_at`

// Create persiste una solicitud nueva en versión 1.
func (r *SolicitudRepo) Create(ctx context.Context, s *entity.Solicitud) error {
	s.Version = 1
	query := `
		INSERT INTO solicitudes (` + solicitudCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Codigo, s.CompanyID, s.Tipo, s.Estado, s.CategoryCode, nullIfEmpty(s.InvoiceID),
		s.BookNumber, s.EntryNumber, s.CertifiedAt, s.SignedAt, s.DeliveredAt, s.Version,
		s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert solicitud: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por ID.
func (r *SolicitudRepo) GetByID(ctx context.Context, id string) (*entity.Solicitud, error) {
	query := `SELECT ` + solicitudCols + ` FROM solicitudes WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetByInvoiceID obtiene la solicitud cuya factura de tarifa es la dada.
func (r *SolicitudRepo) GetByInvoiceID(ctx context.Context, invoiceID string) (*entity.Solicitud, error) {
	query := `SELECT ` + solicitudCols + ` FROM solicitudes WHERE invoice_id = $1`
	return r.get(ctx, query, invoiceID)
}

// Update persiste el avance con chequeo optimista: el WHERE exige la versión
// leída y la incrementa. Cero filas afectadas significa que otra transición
// ganó la carrera.
func (r *SolicitudRepo) Update(ctx context.Context, s *entity.Solicitud) error {
	query := `
		UPDATE solicitudes
		SET estado = $2, invoice_id = $3, book_number = $4, entry_number = $5,
			certified_at = $6, signed_at = $7, delivered_at = $8,
			version = version + 1, updated_at = $9
		WHERE id = $1 AND version = $10`
	cmd, err := r.q.Exec(ctx, query,
		s.ID, s.Estado, nullIfEmpty(s.InvoiceID), s.BookNumber, s.EntryNumber,
		s.CertifiedAt, s.SignedAt, s.DeliveredAt, s.UpdatedAt, s.Version,
	)
	if err != nil {
		return fmt.Errorf("update solicitud: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	s.Version++
	return nil
}

// AddTransition registra un avance en la bitácora.
func (r *SolicitudRepo) AddTransition(ctx context.Context, t *entity.SolicitudTransition) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO solicitud_transitions (id, solicitud_id, from_estado, to_estado, actor_id, at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.SolicitudID, t.FromEstado, t.ToEstado, t.ActorID, t.At,
	)
	if err != nil {
		return fmt.Errorf("insert solicitud transition: %w", err)
	}
	return nil
}

// ListTransitions devuelve la bitácora de la solicitud en orden cronológico.
func (r *SolicitudRepo) ListTransitions(ctx context.Context, solicitudID string) ([]*entity.SolicitudTransition, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, solicitud_id, from_estado, to_estado, actor_id, at
		FROM solicitud_transitions WHERE solicitud_id = $1 ORDER BY at`, solicitudID)
	if err != nil {
		return nil, fmt.Errorf("list solicitud transitions: %w", err)
	}
	defer rows.Close()
	var list []*entity.SolicitudTransition
	for rows.Next() {
		var t entity.SolicitudTransition
		if err := rows.Scan(&t.ID, &t.SolicitudID, &t.FromEstado, &t.ToEstado, &t.ActorID, &t.At); err != nil {
			return nil, fmt.Errorf("scan solicitud transition: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

func (r *SolicitudRepo) get(ctx context.Context, query, arg string) (*entity.Solicitud, error) {
	var s entity.Solicitud
	var invoiceID *string
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&s.ID, &s.Codigo, &s.CompanyID, &s.Tipo, &s.Estado, &s.CategoryCode, &invoiceID,
		&s.BookNumber, &s.EntryNumber, &s.CertifiedAt, &s.SignedAt, &s.DeliveredAt, &s.Version,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get solicitud: %w", err)
	}
	if invoiceID != nil {
		s.InvoiceID = *invoiceID
	}
	return &s, nil
}
