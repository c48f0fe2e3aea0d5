package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/onda-rd/backoffice-api/internal/domain"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación del puerto InvoiceRepository sobre PostgreSQL.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceCols = `id, codigo, source_type, source_id, status, discount_percent,
	request_fiscal_receipt, rnc, ncf, payment_method, payment_reference,
	cash_session_id, subtotal, total, void_reason, created_by, paid_at, created_at, updated_at`

// Create persiste la factura con sus líneas.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice, lines []*entity.InvoiceLine) error {
	query := `
		INSERT INTO invoices (` + invoiceCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.Codigo, inv.SourceType, nullIfEmpty(inv.SourceID), inv.Status, inv.DiscountPercent,
		inv.RequestFiscalReceipt, inv.RNC, inv.NCF, inv.PaymentMethod, inv.PaymentReference,
		nullIfEmpty(inv.CashSessionID), inv.Subtotal, inv.Total, inv.VoidReason, inv.CreatedBy,
		inv.PaidAt, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	for _, l := range lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO invoice_lines (id, invoice_id, concepto, quantity, unit_price, amount)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.InvoiceID, l.Concepto, l.Quantity, l.UnitPrice, l.Amount,
		)
		if err != nil {
			return fmt.Errorf("insert invoice line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceCols + ` FROM invoices WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetByIDForUpdate carga la factura con lock de fila. Solo tiene sentido
// dentro de una transacción; el lock se suelta en el Commit/Rollback.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceCols + ` FROM invoices WHERE id = $1 FOR UPDATE`
	return r.get(ctx, query, id)
}

// GetLines obtiene las líneas de una factura.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, concepto, quantity, unit_price, amount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY concepto`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Concepto, &l.Quantity, &l.UnitPrice, &l.Amount); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// UpdatePayment fija NCF, método, referencia, caja y fecha de pago. La guarda
// status = EMITIDA en el WHERE protege contra dobles pagos que se colaron
// entre la lectura y la escritura.
func (r *InvoiceRepo) UpdatePayment(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET status = $2, ncf = $3, payment_method = $4, payment_reference = $5,
			cash_session_id = $6, paid_at = $7, updated_at = $8
		WHERE id = $1 AND status = 'EMITIDA'`
	cmd, err := r.q.Exec(ctx, query,
		inv.ID, inv.Status, inv.NCF, inv.PaymentMethod, inv.PaymentReference,
		nullIfEmpty(inv.CashSessionID), inv.PaidAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice payment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// UpdateVoid marca la factura como anulada con la misma guarda de estado.
func (r *InvoiceRepo) UpdateVoid(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices SET status = $2, void_reason = $3, updated_at = $4
		WHERE id = $1 AND status = 'EMITIDA'`
	cmd, err := r.q.Exec(ctx, query, inv.ID, inv.Status, inv.VoidReason, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("void invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// ListBySession lista las facturas atadas a una caja.
func (r *InvoiceRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceCols + ` FROM invoices WHERE cash_session_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list invoices by session: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// SumPaidBySession suma el total de las facturas pagadas de la caja.
func (r *InvoiceRepo) SumPaidBySession(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM invoices
		WHERE cash_session_id = $1 AND status = 'PAGADA'`, sessionID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum paid by session: %w", err)
	}
	return sum, nil
}

func (r *InvoiceRepo) get(ctx context.Context, query, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var sourceID, sessionID *string
	err := row.Scan(
		&inv.ID, &inv.Codigo, &inv.SourceType, &sourceID, &inv.Status, &inv.DiscountPercent,
		&inv.RequestFiscalReceipt, &inv.RNC, &inv.NCF, &inv.PaymentMethod, &inv.PaymentReference,
		&sessionID, &inv.Subtotal, &inv.Total, &inv.VoidReason, &inv.CreatedBy,
		&inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sourceID != nil {
		inv.SourceID = *sourceID
	}
	if sessionID != nil {
		inv.CashSessionID = *sessionID
	}
	return &inv, nil
}

// nullIfEmpty convierte "" en NULL para columnas con FK opcional.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
