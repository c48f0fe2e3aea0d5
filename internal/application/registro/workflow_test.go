package registro

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/domain"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memSolRepo struct {
	mu          sync.Mutex
	sols        map[string]*entity.Solicitud
	transitions []*entity.SolicitudTransition
}

func newMemSolRepo() *memSolRepo {
	return &memSolRepo{sols: make(map[string]*entity.Solicitud)}
}

func (r *memSolRepo) Create(_ context.Context, s *entity.Solicitud) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Version = 1
	cp := *s
	r.sols[s.ID] = &cp
	return nil
}

func (r *memSolRepo) GetByID(_ context.Context, id string) (*entity.Solicitud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sols[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSolRepo) GetByInvoiceID(_ context.Context, invoiceID string) (*entity.Solicitud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sols {
		if s.InvoiceID == invoiceID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSolRepo) Update(_ context.Context, s *entity.Solicitud) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.sols[s.ID]
	if !ok || cur.Version != s.Version {
		return domain.ErrConflict
	}
	s.Version++
	cp := *s
	r.sols[s.ID] = &cp
	return nil
}

func (r *memSolRepo) AddTransition(_ context.Context, t *entity.SolicitudTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, t)
	return nil
}

func (r *memSolRepo) ListTransitions(_ context.Context, solicitudID string) ([]*entity.SolicitudTransition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.SolicitudTransition
	for _, t := range r.transitions {
		if t.SolicitudID == solicitudID {
			out = append(out, t)
		}
	}
	return out, nil
}

type memCompanyRepo struct {
	companies map[string]*entity.Company
	renewals  []string // números de registro otorgados
}

func newMemCompanyRepo(companies ...*entity.Company) *memCompanyRepo {
	r := &memCompanyRepo{companies: make(map[string]*entity.Company)}
	for _, c := range companies {
		r.companies[c.ID] = c
	}
	return r
}

func (r *memCompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *memCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r.companies[id], nil
}

func (r *memCompanyRepo) GetByRNC(_ context.Context, rnc string) (*entity.Company, error) {
	for _, c := range r.companies {
		if c.RNC == rnc {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCompanyRepo) ListLapsed(_ context.Context, now time.Time) ([]*entity.Company, error) {
	var out []*entity.Company
	for _, c := range r.companies {
		if c.Status == "active" && c.RegistroHasta != nil && c.RegistroHasta.Before(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCompanyRepo) RenewRegistro(_ context.Context, companyID, numero string, desde, hasta time.Time) error {
	c, ok := r.companies[companyID]
	if !ok {
		return domain.ErrNotFound
	}
	c.RegistroNumero = numero
	c.RegistroDesde = &desde
	c.RegistroHasta = &hasta
	r.renewals = append(r.renewals, numero)
	return nil
}

type memCategoryRepo struct {
	cats map[string]*entity.Category
}

func (r *memCategoryRepo) GetByCode(_ context.Context, code string) (*entity.Category, error) {
	return r.cats[code], nil
}

// fakeLedger registra las facturas abiertas y sirve estados configurables.
type fakeLedger struct {
	openErr error
	opened  []dto.OpenInvoiceRequest
	status  map[string]string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{status: make(map[string]string)}
}

func (f *fakeLedger) Open(_ context.Context, _ entity.Actor, in dto.OpenInvoiceRequest) (*dto.InvoiceResponse, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened = append(f.opened, in)
	id := fmt.Sprintf("inv-%d", len(f.opened))
	f.status[id] = entity.InvoiceStatusEmitida
	return &dto.InvoiceResponse{ID: id, Status: entity.InvoiceStatusEmitida}, nil
}

func (f *fakeLedger) GetInvoiceStatus(_ context.Context, id string) (string, error) {
	s, ok := f.status[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return s, nil
}

type fakeCertGen struct {
	err   error
	calls int
}

func (f *fakeCertGen) Generate(_ context.Context, _ *entity.Solicitud, _ *entity.Company) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

var (
	recep       = entity.Actor{ID: "u-recep", Role: entity.RoleRecepcion}
	inspector   = entity.Actor{ID: "u-insp", Role: entity.RoleInspector}
	paralegal   = entity.Actor{ID: "u-para", Role: entity.RoleParalegal}
	registrador = entity.Actor{ID: "u-reg", Role: entity.RoleRegistrador}
)

type fixture struct {
	uc        *WorkflowUseCase
	sols      *memSolRepo
	companies *memCompanyRepo
	ledger    *fakeLedger
	certGen   *fakeCertGen
}

func newFixture() *fixture {
	sols := newMemSolRepo()
	companies := newMemCompanyRepo(&entity.Company{
		ID: "emp-1", Name: "Discos del Caribe SRL", RNC: "101000001",
		CategoryCode: "A", Status: "active",
	})
	cats := &memCategoryRepo{cats: map[string]*entity.Category{
		"A": {Code: "A", Name: "Importadora mayor", Fee: decimal.NewFromInt(5000)},
	}}
	ledger := newFakeLedger()
	certGen := &fakeCertGen{}
	uc := NewWorkflowUseCase(sols, companies, cats, ledger, certGen,
		Config{VigenciaMeses: 12}, logger.Nop())
	return &fixture{uc: uc, sols: sols, companies: companies, ledger: ledger, certGen: certGen}
}

func (f *fixture) crear(t *testing.T) *dto.SolicitudResponse {
	t.Helper()
	sol, err := f.uc.Create(context.Background(), recep, dto.CreateSolicitudRequest{
		CompanyID: "emp-1", Tipo: entity.SolicitudNueva, CategoryCode: "A",
	})
	require.NoError(t, err)
	return sol
}

// hastaPendientePago avanza una solicitud nueva hasta el estado 3.
func (f *fixture) hastaPendientePago(t *testing.T) *dto.SolicitudResponse {
	t.Helper()
	ctx := context.Background()
	sol := f.crear(t)
	_, err := f.uc.IniciarValidacion(ctx, recep, sol.ID)
	require.NoError(t, err)
	out, err := f.uc.Validar(ctx, inspector, sol.ID, ValidarRequest{})
	require.NoError(t, err)
	return out
}

func (f *fixture) pagar(t *testing.T, invoiceID string) {
	t.Helper()
	f.ledger.status[invoiceID] = entity.InvoiceStatusPagada
	require.NoError(t, f.uc.HandlePaymentConfirmed(context.Background(), invoiceID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_SoloRecepcion(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Create(context.Background(), inspector, dto.CreateSolicitudRequest{
		CompanyID: "emp-1", Tipo: entity.SolicitudNueva, CategoryCode: "A",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreate_EmpresaYCategoriaDebenExistir(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Create(ctx, recep, dto.CreateSolicitudRequest{
		CompanyID: "no-existe", Tipo: entity.SolicitudNueva, CategoryCode: "A",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.Create(ctx, recep, dto.CreateSolicitudRequest{
		CompanyID: "emp-1", Tipo: entity.SolicitudNueva, CategoryCode: "Z",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_NaceRecibida(t *testing.T) {
	f := newFixture()
	sol := f.crear(t)
	assert.Equal(t, entity.SolicitudRecibida, sol.Estado)
	assert.True(t, strings.HasPrefix(sol.Codigo, "SOL-"), "código %s", sol.Codigo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Avance del flujo
// ──────────────────────────────────────────────────────────────────────────────

func TestFlujo_CaminoCompletoHastaEntrega(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	sol := f.hastaPendientePago(t)
	require.NotEmpty(t, sol.InvoiceID, "validar debe dejar la factura emitida")
	require.Len(t, f.ledger.opened, 1)
	assert.Equal(t, entity.InvoiceSourceSolicitud, f.ledger.opened[0].SourceType)

	f.pagar(t, sol.InvoiceID)

	_, err := f.uc.Asentar(ctx, paralegal, sol.ID, dto.AsentarRequest{BookNumber: "L-12", EntryNumber: "034"})
	require.NoError(t, err)

	_, err = f.uc.Certificar(ctx, registrador, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.certGen.calls)

	firmada, err := f.uc.ConfirmarFirma(ctx, sol.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, entity.SolicitudFirmada, firmada.Estado)

	entregada, err := f.uc.Entregar(ctx, recep, sol.ID)
	require.NoError(t, err)
	require.NotNil(t, entregada.DeliveredAt)
	assert.Equal(t, "entregada", entregada.EstadoName)

	// la entrega renovó la vigencia de la empresa por 12 meses
	company := f.companies.companies["emp-1"]
	require.NotNil(t, company.RegistroHasta)
	assert.Equal(t, entregada.Codigo, company.RegistroNumero)
	assert.WithinDuration(t, time.Now().AddDate(0, 12, 0), *company.RegistroHasta, time.Minute)

	progress, err := f.uc.Progress(ctx, sol.ID)
	require.NoError(t, err)
	assert.True(t, progress.Terminal)
	assert.Equal(t, 7, progress.Estado)
	assert.Equal(t, "entregada", progress.EstadoName)

	// bitácora: 6 transiciones de avance + 1 de entrega
	trans, err := f.sols.ListTransitions(ctx, sol.ID)
	require.NoError(t, err)
	assert.Len(t, trans, 7)
}

func TestFlujo_NoSeSaltanPasos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sol := f.crear(t)

	_, err := f.uc.Asentar(ctx, paralegal, sol.ID, dto.AsentarRequest{BookNumber: "L-1", EntryNumber: "1"})
	assert.ErrorIs(t, err, domain.ErrConflict, "asentar desde recibida debe rechazarse")

	_, err = f.uc.Certificar(ctx, registrador, sol.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.Entregar(ctx, recep, sol.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "sin firma no hay entrega")
}

func TestFlujo_RolEquivocado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sol := f.crear(t)

	_, err := f.uc.IniciarValidacion(ctx, recep, sol.ID)
	require.NoError(t, err)

	_, err = f.uc.Validar(ctx, recep, sol.ID, ValidarRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden, "validar corresponde a inspector")

	_, err = f.uc.Validar(ctx, entity.Actor{ID: "a1", Role: entity.RoleAdmin}, sol.ID, ValidarRequest{})
	assert.NoError(t, err, "admin ejecuta cualquier transición")
}

func TestValidar_FalloDeFacturaNoAvanza(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sol := f.crear(t)
	_, err := f.uc.IniciarValidacion(ctx, recep, sol.ID)
	require.NoError(t, err)

	f.ledger.openErr = errors.New("caja no disponible")
	_, err = f.uc.Validar(ctx, inspector, sol.ID, ValidarRequest{})
	require.Error(t, err)

	got, err := f.uc.Get(ctx, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SolicitudEnValidacion, got.Estado, "el estado debe quedar intacto")

	// reintento tras recuperarse el colaborador
	f.ledger.openErr = nil
	_, err = f.uc.Validar(ctx, inspector, sol.ID, ValidarRequest{})
	assert.NoError(t, err)
}

func TestAsentar_LibroYFolioObligatorios(t *testing.T) {
	f := newFixture()
	sol := f.hastaPendientePago(t)
	f.pagar(t, sol.InvoiceID)

	_, err := f.uc.Asentar(context.Background(), paralegal, sol.ID, dto.AsentarRequest{BookNumber: " ", EntryNumber: "1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCertificar_FalloDelGeneradorPermiteReintento(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sol := f.hastaPendientePago(t)
	f.pagar(t, sol.InvoiceID)
	_, err := f.uc.Asentar(ctx, paralegal, sol.ID, dto.AsentarRequest{BookNumber: "L-1", EntryNumber: "1"})
	require.NoError(t, err)

	f.certGen.err = errors.New("impresora en llamas")
	_, err = f.uc.Certificar(ctx, registrador, sol.ID)
	require.Error(t, err)

	got, err := f.uc.Get(ctx, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SolicitudAsentada, got.Estado)

	f.certGen.err = nil
	_, err = f.uc.Certificar(ctx, registrador, sol.ID)
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Eventos de pago
// ──────────────────────────────────────────────────────────────────────────────

func TestHandlePaymentConfirmed_AvanzaUnaSolaVez(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sol := f.hastaPendientePago(t)

	f.pagar(t, sol.InvoiceID)
	got, err := f.uc.Get(ctx, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SolicitudPendienteAsiento, got.Estado)

	// entrega repetida del mismo evento: no-op
	require.NoError(t, f.uc.HandlePaymentConfirmed(ctx, sol.InvoiceID))
	got, err = f.uc.Get(ctx, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SolicitudPendienteAsiento, got.Estado)
}

func TestHandlePaymentConfirmed_ReleeLaFacturaNoElEvento(t *testing.T) {
	f := newFixture()
	sol := f.hastaPendientePago(t)

	// el evento llega pero la factura no figura pagada: el avance se niega
	err := f.uc.HandlePaymentConfirmed(context.Background(), sol.InvoiceID)
	require.Error(t, err, "sin factura pagada no se avanza; el despachador reintentará")

	got, err := f.uc.Get(context.Background(), sol.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SolicitudPendientePago, got.Estado)
}

func TestHandlePaymentConfirmed_FacturaAjenaEsNoOp(t *testing.T) {
	f := newFixture()
	assert.NoError(t, f.uc.HandlePaymentConfirmed(context.Background(), "factura-de-mostrador"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Firma y entrega
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirmarFirma_ReintentoDelWebhookEsNoOp(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sol := f.hastaPendientePago(t)
	f.pagar(t, sol.InvoiceID)
	_, err := f.uc.Asentar(ctx, paralegal, sol.ID, dto.AsentarRequest{BookNumber: "L-1", EntryNumber: "1"})
	require.NoError(t, err)
	_, err = f.uc.Certificar(ctx, registrador, sol.ID)
	require.NoError(t, err)

	firmadoEn := time.Date(2026, 8, 20, 15, 0, 0, 0, time.UTC)
	primera, err := f.uc.ConfirmarFirma(ctx, sol.ID, firmadoEn)
	require.NoError(t, err)

	segunda, err := f.uc.ConfirmarFirma(ctx, sol.ID, firmadoEn.Add(time.Hour))
	require.NoError(t, err, "el reintento no debe fallar")
	assert.Equal(t, primera.SignedAt, segunda.SignedAt, "la fecha de firma original se conserva")
}

func TestEntregar_DosVecesEsConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sol := f.hastaPendientePago(t)
	f.pagar(t, sol.InvoiceID)
	_, err := f.uc.Asentar(ctx, paralegal, sol.ID, dto.AsentarRequest{BookNumber: "L-1", EntryNumber: "1"})
	require.NoError(t, err)
	_, err = f.uc.Certificar(ctx, registrador, sol.ID)
	require.NoError(t, err)
	_, err = f.uc.ConfirmarFirma(ctx, sol.ID, time.Now())
	require.NoError(t, err)

	_, err = f.uc.Entregar(ctx, recep, sol.ID)
	require.NoError(t, err)

	_, err = f.uc.Entregar(ctx, recep, sol.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, f.companies.renewals, 1, "la vigencia se renueva una sola vez")
}

func TestEntregar_SoloRecepcion(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Entregar(context.Background(), inspector, "cualquiera")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
