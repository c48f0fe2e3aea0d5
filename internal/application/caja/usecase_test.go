package caja

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/domain"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/pkg/logger"
)

// fakeSessionRepo reproduce en memoria las guardas del repositorio real:
// a lo sumo una caja abierta por cajero y cierre solo sobre caja abierta.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.CashSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.CashSession)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *entity.CashSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.CashierID == s.CashierID && existing.Status == entity.CajaAbierta {
			return domain.ErrCajaYaAbierta
		}
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*entity.CashSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) GetOpenByCashier(_ context.Context, cashierID string) (*entity.CashSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.CashierID == cashierID && s.Status == entity.CajaAbierta {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) Close(_ context.Context, s *entity.CashSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.sessions[s.ID]
	if !ok || cur.Status != entity.CajaAbierta {
		return domain.ErrCajaCerrada
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

// fakeInvoiceLister solo implementa lo que el caso de uso consulta; el resto
// del repositorio de facturas no participa en la conciliación.
type fakeInvoiceLister struct {
	invoices []*entity.Invoice
}

func (f *fakeInvoiceLister) Create(_ context.Context, _ *entity.Invoice, _ []*entity.InvoiceLine) error {
	return nil
}
func (f *fakeInvoiceLister) GetByID(_ context.Context, _ string) (*entity.Invoice, error) {
	return nil, nil
}
func (f *fakeInvoiceLister) GetByIDForUpdate(_ context.Context, _ string) (*entity.Invoice, error) {
	return nil, nil
}
func (f *fakeInvoiceLister) GetLines(_ context.Context, _ string) ([]*entity.InvoiceLine, error) {
	return nil, nil
}
func (f *fakeInvoiceLister) UpdatePayment(_ context.Context, _ *entity.Invoice) error { return nil }
func (f *fakeInvoiceLister) UpdateVoid(_ context.Context, _ *entity.Invoice) error    { return nil }

func (f *fakeInvoiceLister) ListBySession(_ context.Context, sessionID string) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range f.invoices {
		if inv.CashSessionID == sessionID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvoiceLister) SumPaidBySession(_ context.Context, sessionID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, inv := range f.invoices {
		if inv.CashSessionID == sessionID && inv.Status == entity.InvoiceStatusPagada {
			sum = sum.Add(inv.Total)
		}
	}
	return sum, nil
}

var (
	cajero     = entity.Actor{ID: "cajero-1", Role: entity.RoleCajero}
	otroCajero = entity.Actor{ID: "cajero-2", Role: entity.RoleCajero}
	admin      = entity.Actor{ID: "admin-1", Role: entity.RoleAdmin}
)

func newCajaFixture() (*UseCase, *fakeInvoiceLister) {
	invoices := &fakeInvoiceLister{}
	uc := NewUseCase(newFakeSessionRepo(), invoices, logger.Nop())
	return uc, invoices
}

func montos(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestOpen_SoloCajeros(t *testing.T) {
	uc, _ := newCajaFixture()
	recep := entity.Actor{ID: "r1", Role: entity.RoleRecepcion}
	_, err := uc.Open(context.Background(), recep, dto.OpenCajaRequest{OpeningAmount: montos("500")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOpen_MontoInicialNegativo(t *testing.T) {
	uc, _ := newCajaFixture()
	_, err := uc.Open(context.Background(), cajero, dto.OpenCajaRequest{OpeningAmount: montos("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpen_UnaCajaPorCajero(t *testing.T) {
	uc, _ := newCajaFixture()
	ctx := context.Background()

	_, err := uc.Open(ctx, cajero, dto.OpenCajaRequest{OpeningAmount: montos("500")})
	require.NoError(t, err)

	_, err = uc.Open(ctx, cajero, dto.OpenCajaRequest{OpeningAmount: montos("0")})
	assert.ErrorIs(t, err, domain.ErrCajaYaAbierta)

	// otro cajero sí puede abrir la suya
	_, err = uc.Open(ctx, otroCajero, dto.OpenCajaRequest{OpeningAmount: montos("300")})
	assert.NoError(t, err)
}

func TestClose_CongelaDiferencia(t *testing.T) {
	uc, invoices := newCajaFixture()
	ctx := context.Background()

	caja, err := uc.Open(ctx, cajero, dto.OpenCajaRequest{OpeningAmount: montos("500")})
	require.NoError(t, err)

	// dos facturas pagadas por 1000 en total; una anulada que no cuenta
	invoices.invoices = []*entity.Invoice{
		{ID: "f1", CashSessionID: caja.ID, Status: entity.InvoiceStatusPagada, Total: montos("600")},
		{ID: "f2", CashSessionID: caja.ID, Status: entity.InvoiceStatusPagada, Total: montos("400")},
		{ID: "f3", CashSessionID: caja.ID, Status: entity.InvoiceStatusAnulada, Total: montos("999")},
	}

	closed, err := uc.Close(ctx, cajero, caja.ID, dto.CloseCajaRequest{ClosingAmount: montos("1500")})
	require.NoError(t, err)
	assert.Equal(t, entity.CajaCerrada, closed.Status)
	require.NotNil(t, closed.Difference)
	assert.True(t, closed.Difference.IsZero(),
		"declarado 1500 contra 500 inicial + 1000 cobrado debe cuadrar; diferencia %s", closed.Difference)
	assert.NotNil(t, closed.ClosedAt)
}

func TestClose_DescuadreNoImpideCerrar(t *testing.T) {
	uc, invoices := newCajaFixture()
	ctx := context.Background()

	caja, err := uc.Open(ctx, cajero, dto.OpenCajaRequest{OpeningAmount: montos("500")})
	require.NoError(t, err)
	invoices.invoices = []*entity.Invoice{
		{ID: "f1", CashSessionID: caja.ID, Status: entity.InvoiceStatusPagada, Total: montos("1000")},
	}

	closed, err := uc.Close(ctx, cajero, caja.ID, dto.CloseCajaRequest{ClosingAmount: montos("1400")})
	require.NoError(t, err)
	require.NotNil(t, closed.Difference)
	assert.True(t, closed.Difference.Equal(montos("-100")),
		"faltan 100 en caja; diferencia %s", closed.Difference)
}

func TestClose_SesionCerradaEsInmutable(t *testing.T) {
	uc, _ := newCajaFixture()
	ctx := context.Background()

	caja, err := uc.Open(ctx, cajero, dto.OpenCajaRequest{OpeningAmount: montos("100")})
	require.NoError(t, err)
	_, err = uc.Close(ctx, cajero, caja.ID, dto.CloseCajaRequest{ClosingAmount: montos("100")})
	require.NoError(t, err)

	_, err = uc.Close(ctx, cajero, caja.ID, dto.CloseCajaRequest{ClosingAmount: montos("999")})
	assert.ErrorIs(t, err, domain.ErrCajaCerrada, "un segundo cierre no debe recalcular nada")
}

func TestClose_SoloDuenoOAdmin(t *testing.T) {
	uc, _ := newCajaFixture()
	ctx := context.Background()

	caja, err := uc.Open(ctx, cajero, dto.OpenCajaRequest{OpeningAmount: montos("100")})
	require.NoError(t, err)

	_, err = uc.Close(ctx, otroCajero, caja.ID, dto.CloseCajaRequest{ClosingAmount: montos("100")})
	assert.ErrorIs(t, err, domain.ErrForbidden, "otro cajero no cierra caja ajena")

	_, err = uc.Close(ctx, admin, caja.ID, dto.CloseCajaRequest{ClosingAmount: montos("100")})
	assert.NoError(t, err, "admin sí puede cerrar cualquier caja")
}

func TestReport_ResumenDeConciliacion(t *testing.T) {
	uc, invoices := newCajaFixture()
	ctx := context.Background()

	caja, err := uc.Open(ctx, cajero, dto.OpenCajaRequest{OpeningAmount: montos("250")})
	require.NoError(t, err)
	invoices.invoices = []*entity.Invoice{
		{ID: "f1", CashSessionID: caja.ID, Status: entity.InvoiceStatusPagada, Total: montos("118")},
		{ID: "f2", CashSessionID: caja.ID, Status: entity.InvoiceStatusPagada, Total: montos("236")},
		{ID: "f3", CashSessionID: caja.ID, Status: entity.InvoiceStatusEmitida, Total: montos("59")},
		{ID: "f4", CashSessionID: "otra-caja", Status: entity.InvoiceStatusPagada, Total: montos("1000")},
	}

	report, err := uc.Report(ctx, cajero, caja.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.PaidInvoices, "solo cuentan las pagadas de esta caja")
	assert.True(t, report.PaidTotal.Equal(montos("354")))
	assert.True(t, report.ExpectedTotal.Equal(montos("604")), "inicial + cobrado")
}

func TestReport_CajaAjenaForbidden(t *testing.T) {
	uc, _ := newCajaFixture()
	ctx := context.Background()

	caja, err := uc.Open(ctx, cajero, dto.OpenCajaRequest{OpeningAmount: montos("0")})
	require.NoError(t, err)

	_, err = uc.Report(ctx, otroCajero, caja.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Report(ctx, admin, caja.ID)
	assert.NoError(t, err)
}

func TestCurrentSessionFor(t *testing.T) {
	uc, _ := newCajaFixture()
	ctx := context.Background()

	s, err := uc.CurrentSessionFor(ctx, cajero.ID)
	require.NoError(t, err)
	assert.Nil(t, s, "sin caja abierta no hay sesión actual")

	caja, err := uc.Open(ctx, cajero, dto.OpenCajaRequest{OpeningAmount: montos("100")})
	require.NoError(t, err)

	s, err = uc.CurrentSessionFor(ctx, cajero.ID)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, caja.ID, s.ID)

	_, err = uc.Close(ctx, cajero, caja.ID, dto.CloseCajaRequest{ClosingAmount: montos("100")})
	require.NoError(t, err)

	s, err = uc.CurrentSessionFor(ctx, cajero.ID)
	require.NoError(t, err)
	assert.Nil(t, s, "tras el cierre ya no hay sesión actual")
}
