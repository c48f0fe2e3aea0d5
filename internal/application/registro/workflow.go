// Package registro implementa el flujo de 7 pasos de registro y renovación
// IRC. Las transiciones viven en una sola tabla estado -> {rol, destino} y un
// único punto de avance las evalúa: el chequeo de rol y de precondición existe
// una vez, no por pantalla.
package registro

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/domain"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/internal/domain/repository"
	"github.com/onda-rd/backoffice-api/pkg/logger"
)

// SystemActor ejecuta las transiciones asincrónicas (pago, firma).
var SystemActor = entity.Actor{ID: "sistema", Role: entity.RoleAdmin}

// Config parámetros del flujo.
type Config struct {
	VigenciaMeses int // duración del registro otorgado al entregar
}

// transition describe una arista de la máquina de estados.
// Role vacío significa transición del sistema (evento o webhook).
type transition struct {
	From int
	To   int
	Role string
}

// Tabla única de transiciones del flujo. La entrega no figura: no cambia el
// estado, marca DeliveredAt sobre Firmada.
var transitions = map[string]transition{
	"iniciar_validacion": {From: entity.SolicitudRecibida, To: entity.SolicitudEnValidacion, Role: entity.RoleRecepcion},
	"validar":            {From: entity.SolicitudEnValidacion, To: entity.SolicitudPendientePago, Role: entity.RoleInspector},
	"confirmar_pago":     {From: entity.SolicitudPendientePago, To: entity.SolicitudPendienteAsiento},
	"asentar":            {From: entity.SolicitudPendienteAsiento, To: entity.SolicitudAsentada, Role: entity.RoleParalegal},
	"certificar":         {From: entity.SolicitudAsentada, To: entity.SolicitudPendienteFirma, Role: entity.RoleRegistrador},
	"confirmar_firma":    {From: entity.SolicitudPendienteFirma, To: entity.SolicitudFirmada},
}

// WorkflowUseCase casos de uso del flujo de registro.
type WorkflowUseCase struct {
	solRepo      repository.SolicitudRepository
	companyRepo  repository.CompanyRepository
	categoryRepo repository.CategoryRepository
	ledger       Ledger
	certGen      CertificateGenerator
	cfg          Config
	log          *logger.Logger
}

// NewWorkflowUseCase construye el caso de uso.
func NewWorkflowUseCase(
	solRepo repository.SolicitudRepository,
	companyRepo repository.CompanyRepository,
	categoryRepo repository.CategoryRepository,
	ledger Ledger,
	certGen CertificateGenerator,
	cfg Config,
	log *logger.Logger,
) *WorkflowUseCase {
	if cfg.VigenciaMeses <= 0 {
		cfg.VigenciaMeses = 12
	}
	return &WorkflowUseCase{
		solRepo:      solRepo,
		companyRepo:  companyRepo,
		categoryRepo: categoryRepo,
		ledger:       ledger,
		certGen:      certGen,
		cfg:          cfg,
		log:          log,
	}
}

// advance es el único punto que mueve el estado. Evalúa rol, estado de origen
// y efecto; persiste con chequeo optimista de versión y registra la
// transición con actor y fecha. Un fallo del efecto deja el estado intacto;
// efectos ya confirmados en pasos anteriores no se revierten.
func (uc *WorkflowUseCase) advance(ctx context.Context, actor entity.Actor, sol *entity.Solicitud, name string, effect func(context.Context) error) error {
	t, ok := transitions[name]
	if !ok {
		return fmt.Errorf("transición desconocida %q", name)
	}
	if sol.Entregada() {
		return fmt.Errorf("la solicitud ya fue entregada: %w", domain.ErrConflict)
	}
	if t.Role != "" && !actor.Can(t.Role) {
		return fmt.Errorf("la transición %s corresponde al rol %s: %w", name, t.Role, domain.ErrForbidden)
	}
	if sol.Estado != t.From {
		return fmt.Errorf("la solicitud está en %s, no en %s: %w",
			entity.SolicitudEstadoNombre(sol.Estado), entity.SolicitudEstadoNombre(t.From), domain.ErrConflict)
	}
	if effect != nil {
		if err := effect(ctx); err != nil {
			return err
		}
	}
	from := sol.Estado
	sol.Estado = t.To
	sol.UpdatedAt = time.Now()
	if err := uc.solRepo.Update(ctx, sol); err != nil {
		return err
	}
	if err := uc.solRepo.AddTransition(ctx, &entity.SolicitudTransition{
		ID:          uuid.New().String(),
		SolicitudID: sol.ID,
		FromEstado:  from,
		ToEstado:    sol.Estado,
		ActorID:     actor.ID,
		At:          sol.UpdatedAt,
	}); err != nil {
		return err
	}
	uc.log.Info().
		Str("solicitud_id", sol.ID).
		Str("transicion", name).
		Int("estado", sol.Estado).
		Str("actor", actor.ID).
		Msg("solicitud avanzó")
	return nil
}

// Create registra una solicitud nueva o de renovación en estado Recibida.
func (uc *WorkflowUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateSolicitudRequest) (*dto.SolicitudResponse, error) {
	if !actor.Can(entity.RoleRecepcion) {
		return nil, domain.ErrForbidden
	}
	company, err := uc.companyRepo.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("empresa desconocida: %w", domain.ErrNotFound)
	}
	cat, err := uc.categoryRepo.GetByCode(ctx, in.CategoryCode)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("categoría desconocida %q: %w", in.CategoryCode, domain.ErrInvalidInput)
	}
	now := time.Now()
	sol := &entity.Solicitud{
		ID:           uuid.New().String(),
		Codigo:       fmt.Sprintf("SOL-%d-%s", now.Year(), strings.ToUpper(uuid.New().String()[:8])),
		CompanyID:    in.CompanyID,
		Tipo:         in.Tipo,
		Estado:       entity.SolicitudRecibida,
		CategoryCode: in.CategoryCode,
		CreatedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.solRepo.Create(ctx, sol); err != nil {
		return nil, err
	}
	return toSolicitudResponse(sol), nil
}

// IniciarValidacion pasa la solicitud a validación (1 -> 2).
func (uc *WorkflowUseCase) IniciarValidacion(ctx context.Context, actor entity.Actor, id string) (*dto.SolicitudResponse, error) {
	sol, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	err = uc.advance(ctx, actor, sol, "iniciar_validacion", func(ctx context.Context) error {
		company, err := uc.companyRepo.GetByID(ctx, sol.CompanyID)
		if err != nil {
			return err
		}
		if company == nil {
			return fmt.Errorf("empresa desconocida: %w", domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSolicitudResponse(sol), nil
}

// ValidarRequest opciones de la factura de tarifa emitida al validar.
type ValidarRequest struct {
	DiscountPercent      int64  `json:"descuento" validate:"oneof=0 80 100"`
	RequestFiscalReceipt bool   `json:"comprobante_fiscal"`
	RNC                  string `json:"rnc"`
}

// Validar aprueba la revisión (2 -> 3) y emite la factura con la tarifa de la
// categoría. Si la emisión falla, la solicitud permanece en validación. La
// factura emitida no se retracta si un paso posterior falla; revalidar una
// solicitud ya validada devuelve Conflict, no re-ejecuta.
func (uc *WorkflowUseCase) Validar(ctx context.Context, actor entity.Actor, id string, in ValidarRequest) (*dto.SolicitudResponse, error) {
	sol, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	err = uc.advance(ctx, actor, sol, "validar", func(ctx context.Context) error {
		cat, err := uc.categoryRepo.GetByCode(ctx, sol.CategoryCode)
		if err != nil {
			return err
		}
		if cat == nil {
			return fmt.Errorf("categoría desconocida %q: %w", sol.CategoryCode, domain.ErrInvalidInput)
		}
		concepto := fmt.Sprintf("Registro IRC %s, categoría %s", sol.Tipo, cat.Name)
		inv, err := uc.ledger.Open(ctx, actor, dto.OpenInvoiceRequest{
			SourceType: entity.InvoiceSourceSolicitud,
			SourceID:   sol.ID,
			Lines: []dto.InvoiceLineRequest{{
				Concepto:  concepto,
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: cat.Fee,
			}},
			DiscountPercent:      in.DiscountPercent,
			RequestFiscalReceipt: in.RequestFiscalReceipt,
			RNC:                  in.RNC,
		})
		if err != nil {
			return err
		}
		sol.InvoiceID = inv.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSolicitudResponse(sol), nil
}

// Consumer identifica a este flujo ante el despachador de eventos.
func (uc *WorkflowUseCase) Consumer() string { return entity.ConsumerRegistro }

// HandlePaymentConfirmed avanza 3 -> 4 cuando se confirma el pago de la
// factura de la solicitud. Idempotente: los eventos llegan al menos una vez y
// pueden llegar fuera de orden, así que se relee el estado persistido de la
// factura en vez de confiar en la entrega.
func (uc *WorkflowUseCase) HandlePaymentConfirmed(ctx context.Context, invoiceID string) error {
	sol, err := uc.solRepo.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if sol == nil {
		return nil // la factura no pertenece a una solicitud
	}
	if sol.Estado > entity.SolicitudPendientePago {
		return nil // ya procesado
	}
	status, err := uc.ledger.GetInvoiceStatus(ctx, invoiceID)
	if err != nil {
		return err
	}
	if status != entity.InvoiceStatusPagada {
		return fmt.Errorf("la factura %s no está pagada (%s)", invoiceID, status)
	}
	return uc.advance(ctx, SystemActor, sol, "confirmar_pago", nil)
}

// Asentar registra libro y folio del asiento (4 -> 5). Ambos obligatorios.
func (uc *WorkflowUseCase) Asentar(ctx context.Context, actor entity.Actor, id string, in dto.AsentarRequest) (*dto.SolicitudResponse, error) {
	if strings.TrimSpace(in.BookNumber) == "" {
		return nil, fmt.Errorf("libro requerido: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.EntryNumber) == "" {
		return nil, fmt.Errorf("folio requerido: %w", domain.ErrInvalidInput)
	}
	sol, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	err = uc.advance(ctx, actor, sol, "asentar", func(context.Context) error {
		sol.BookNumber = strings.TrimSpace(in.BookNumber)
		sol.EntryNumber = strings.TrimSpace(in.EntryNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSolicitudResponse(sol), nil
}

// Certificar genera el artefacto del certificado (5 -> 6). Si el generador
// externo falla, la solicitud permanece asentada y se puede reintentar.
func (uc *WorkflowUseCase) Certificar(ctx context.Context, actor entity.Actor, id string) (*dto.SolicitudResponse, error) {
	sol, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	err = uc.advance(ctx, actor, sol, "certificar", func(ctx context.Context) error {
		company, err := uc.companyRepo.GetByID(ctx, sol.CompanyID)
		if err != nil {
			return err
		}
		if company == nil {
			return fmt.Errorf("empresa desconocida: %w", domain.ErrNotFound)
		}
		pdf, err := uc.certGen.Generate(ctx, sol, company)
		if err != nil {
			return fmt.Errorf("generar certificado: %w", err)
		}
		now := time.Now()
		sol.CertifiedAt = &now
		uc.log.Debug().Str("solicitud_id", sol.ID).Int("bytes", len(pdf)).Msg("certificado generado")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSolicitudResponse(sol), nil
}

// ConfirmarFirma registra la confirmación externa de firma (6 -> 7).
// Llega por webhook, al menos una vez: repetirla sobre una solicitud ya
// firmada es un no-op.
func (uc *WorkflowUseCase) ConfirmarFirma(ctx context.Context, id string, signedAt time.Time) (*dto.SolicitudResponse, error) {
	sol, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sol.Estado >= entity.SolicitudFirmada && sol.SignedAt != nil {
		return toSolicitudResponse(sol), nil // reintento del webhook
	}
	if signedAt.IsZero() {
		signedAt = time.Now()
	}
	err = uc.advance(ctx, SystemActor, sol, "confirmar_firma", func(context.Context) error {
		sol.SignedAt = &signedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSolicitudResponse(sol), nil
}

// Entregar confirma la entrega del certificado firmado y renueva la vigencia
// del registro de la empresa. Terminal.
func (uc *WorkflowUseCase) Entregar(ctx context.Context, actor entity.Actor, id string) (*dto.SolicitudResponse, error) {
	if !actor.Can(entity.RoleRecepcion) {
		return nil, fmt.Errorf("la entrega corresponde a recepción: %w", domain.ErrForbidden)
	}
	sol, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sol.Entregada() {
		return nil, fmt.Errorf("la solicitud ya fue entregada: %w", domain.ErrConflict)
	}
	if sol.Estado != entity.SolicitudFirmada || sol.SignedAt == nil {
		return nil, fmt.Errorf("la solicitud no está firmada: %w", domain.ErrConflict)
	}
	now := time.Now()
	desde := now
	hasta := now.AddDate(0, uc.cfg.VigenciaMeses, 0)
	if err := uc.companyRepo.RenewRegistro(ctx, sol.CompanyID, sol.Codigo, desde, hasta); err != nil {
		return nil, err
	}
	sol.DeliveredAt = &now
	sol.UpdatedAt = now
	if err := uc.solRepo.Update(ctx, sol); err != nil {
		return nil, err
	}
	if err := uc.solRepo.AddTransition(ctx, &entity.SolicitudTransition{
		ID:          uuid.New().String(),
		SolicitudID: sol.ID,
		FromEstado:  entity.SolicitudFirmada,
		ToEstado:    entity.SolicitudFirmada,
		ActorID:     actor.ID,
		At:          now,
	}); err != nil {
		return nil, err
	}
	uc.log.Info().Str("solicitud_id", sol.ID).Str("empresa", sol.CompanyID).Msg("certificado entregado; registro renovado")
	return toSolicitudResponse(sol), nil
}

// Get devuelve la solicitud.
func (uc *WorkflowUseCase) Get(ctx context.Context, id string) (*dto.SolicitudResponse, error) {
	sol, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSolicitudResponse(sol), nil
}

// Progress devuelve el avance n/7 para la UI. Siempre relee el valor
// persistido; los pasos asincrónicos pueden haber avanzado desde la última
// consulta.
func (uc *WorkflowUseCase) Progress(ctx context.Context, id string) (*dto.ProgressResponse, error) {
	sol, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	name := entity.SolicitudEstadoNombre(sol.Estado)
	if sol.Entregada() {
		name = "entregada"
	}
	return &dto.ProgressResponse{
		Estado:     sol.Estado,
		Total:      entity.SolicitudEstadoFinal,
		EstadoName: name,
		Terminal:   sol.Entregada(),
	}, nil
}

func (uc *WorkflowUseCase) load(ctx context.Context, id string) (*entity.Solicitud, error) {
	sol, err := uc.solRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sol == nil {
		return nil, domain.ErrNotFound
	}
	return sol, nil
}

func toSolicitudResponse(s *entity.Solicitud) *dto.SolicitudResponse {
	resp := &dto.SolicitudResponse{
		ID:          s.ID,
		Codigo:      s.Codigo,
		CompanyID:   s.CompanyID,
		Tipo:        s.Tipo,
		Estado:      s.Estado,
		EstadoName:  entity.SolicitudEstadoNombre(s.Estado),
		InvoiceID:   s.InvoiceID,
		BookNumber:  s.BookNumber,
		EntryNumber: s.EntryNumber,
	}
	if s.SignedAt != nil {
		v := s.SignedAt.Format(time.RFC3339)
		resp.SignedAt = &v
	}
	if s.DeliveredAt != nil {
		v := s.DeliveredAt.Format(time.RFC3339)
		resp.DeliveredAt = &v
		resp.EstadoName = "entregada"
	}
	return resp
}
