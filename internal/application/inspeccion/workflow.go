// Package inspeccion implementa el flujo de expedientes de inspección: visitas,
// plazos de corrección en días hábiles, cierre y escalamiento legal. Igual que
// el flujo de registro, las transiciones viven en una tabla y un único punto
// de avance las evalúa.
package inspeccion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/domain"
	"github.com/onda-rd/backoffice-api/internal/domain/businessdays"
	"github.com/onda-rd/backoffice-api/internal/domain/entity"
	"github.com/onda-rd/backoffice-api/internal/domain/repository"
	"github.com/onda-rd/backoffice-api/pkg/logger"
)

// SystemActor ejecuta las transiciones que no origina un usuario (barridos,
// eventos de pago).
var SystemActor = entity.Actor{ID: "sistema", Role: entity.RoleAdmin}

type transition struct {
	From int
	To   int
	Role string
}

// Tabla de transiciones. La primera visita bifurca: conforme salta directo a
// Cerrado, no conforme abre el plazo de corrección. El cierre manual no figura
// porque parte de cualquier estado no terminal.
var transitions = map[string]transition{
	"asignar":                   {From: entity.CasoRegistrado, To: entity.CasoAsignado, Role: entity.RoleAdmin},
	"primera_visita_conforme":   {From: entity.CasoAsignado, To: entity.CasoCerrado, Role: entity.RoleInspector},
	"primera_visita_incumple":   {From: entity.CasoAsignado, To: entity.CasoPlazoCorreccion, Role: entity.RoleInspector},
	"segunda_visita":            {From: entity.CasoPlazoCorreccion, To: entity.CasoSegundaVisita, Role: entity.RoleInspector},
	"resolver_cierre":           {From: entity.CasoSegundaVisita, To: entity.CasoCerrado, Role: entity.RoleInspector},
	"resolver_escalar":          {From: entity.CasoSegundaVisita, To: entity.CasoEscaladoLegal, Role: entity.RoleInspector},
}

// WorkflowUseCase casos de uso del flujo de inspección.
type WorkflowUseCase struct {
	caseRepo    repository.CaseRepository
	companyRepo repository.CompanyRepository
	catRepo     repository.CategoryRepository
	ledger      Ledger
	calendar    businessdays.Calendar
	log         *logger.Logger
}

// NewWorkflowUseCase construye el caso de uso. calendar nil usa solo fines de
// semana como días inhábiles.
func NewWorkflowUseCase(
	caseRepo repository.CaseRepository,
	companyRepo repository.CompanyRepository,
	catRepo repository.CategoryRepository,
	ledger Ledger,
	calendar businessdays.Calendar,
	log *logger.Logger,
) *WorkflowUseCase {
	if calendar == nil {
		calendar = businessdays.NoHolidays{}
	}
	return &WorkflowUseCase{
		caseRepo:    caseRepo,
		companyRepo: companyRepo,
		catRepo:     catRepo,
		ledger:      ledger,
		calendar:    calendar,
		log:         log,
	}
}

// advance mueve el expediente por la tabla: rol, estado de origen, efecto,
// persistencia con versión optimista y registro de la transición.
func (uc *WorkflowUseCase) advance(ctx context.Context, actor entity.Actor, c *entity.InspectionCase, name string, effect func(context.Context) error) error {
	t, ok := transitions[name]
	if !ok {
		return fmt.Errorf("transición desconocida %q", name)
	}
	if c.Terminal() {
		return fmt.Errorf("el expediente está %s: %w", entity.CasoEstadoNombre(c.Estado), domain.ErrConflict)
	}
	if t.Role != "" && !actor.Can(t.Role) {
		return fmt.Errorf("la transición %s corresponde al rol %s: %w", name, t.Role, domain.ErrForbidden)
	}
	if c.Estado != t.From {
		return fmt.Errorf("el expediente está en %s, no en %s: %w",
			entity.CasoEstadoNombre(c.Estado), entity.CasoEstadoNombre(t.From), domain.ErrConflict)
	}
	if effect != nil {
		if err := effect(ctx); err != nil {
			return err
		}
	}
	from := c.Estado
	c.Estado = t.To
	c.UpdatedAt = time.Now()
	if err := uc.caseRepo.Update(ctx, c); err != nil {
		return err
	}
	if err := uc.caseRepo.AddTransition(ctx, &entity.CaseTransition{
		ID:         uuid.New().String(),
		CaseID:     c.ID,
		FromEstado: from,
		ToEstado:   c.Estado,
		ActorID:    actor.ID,
		At:         c.UpdatedAt,
	}); err != nil {
		return err
	}
	uc.log.Info().
		Str("caso_id", c.ID).
		Str("transicion", name).
		Int("estado", c.Estado).
		Str("actor", actor.ID).
		Msg("expediente avanzó")
	return nil
}

// Create registra un expediente. Las denuncias emiten la tasa de inspección a
// instancia de parte; oficio y operativo no facturan.
func (uc *WorkflowUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateCaseRequest) (*dto.CaseResponse, error) {
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
	days := in.CorrectionDays
	if days <= 0 {
		days = entity.DefaultCorrectionDays
	}
	now := time.Now()
	c := &entity.InspectionCase{
		ID:             uuid.New().String(),
		Codigo:         fmt.Sprintf("EXP-%d-%s", now.Year(), strings.ToUpper(uuid.New().String()[:8])),
		CompanyID:      in.CompanyID,
		Tipo:           in.Tipo,
		Estado:         entity.CasoRegistrado,
		CorrectionDays: days,
		CreatedBy:      actor.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if in.Tipo == entity.CasoDenuncia {
		fee, err := uc.catRepo.GetByCode(ctx, entity.FeeInspeccionParte)
		if err != nil {
			return nil, err
		}
		if fee == nil {
			return nil, fmt.Errorf("tarifa %s no configurada: %w", entity.FeeInspeccionParte, domain.ErrInvalidInput)
		}
		inv, err := uc.ledger.Open(ctx, actor, dto.OpenInvoiceRequest{
			SourceType: entity.InvoiceSourceCaso,
			SourceID:   c.ID,
			Lines: []dto.InvoiceLineRequest{{
				Concepto:  "Tasa de inspección a instancia de parte",
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: fee.Fee,
			}},
		})
		if err != nil {
			return nil, err
		}
		c.InvoiceID = inv.ID
	}

	if err := uc.caseRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCaseResponse(c), nil
}

// Asignar asigna un inspector (1 -> 2). En las denuncias exige la tasa pagada:
// relee el estado persistido de la factura, no el orden de llegada de eventos.
func (uc *WorkflowUseCase) Asignar(ctx context.Context, actor entity.Actor, id string, in dto.AssignCaseRequest) (*dto.CaseResponse, error) {
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	err = uc.advance(ctx, actor, c, "asignar", func(ctx context.Context) error {
		if strings.TrimSpace(in.InspectorID) == "" {
			return fmt.Errorf("inspector requerido: %w", domain.ErrInvalidInput)
		}
		if c.Tipo == entity.CasoDenuncia {
			status, err := uc.ledger.GetInvoiceStatus(ctx, c.InvoiceID)
			if err != nil {
				return err
			}
			if status != entity.InvoiceStatusPagada {
				return fmt.Errorf("la tasa de inspección no está pagada: %w", domain.ErrConflict)
			}
		}
		c.InspectorID = strings.TrimSpace(in.InspectorID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCaseResponse(c), nil
}

// PrimeraVisita registra la primera visita. Conforme cierra el expediente;
// incumplimiento abre el plazo de corrección en días hábiles contado desde la
// fecha de la visita.
func (uc *WorkflowUseCase) PrimeraVisita(ctx context.Context, actor entity.Actor, id string, in dto.VisitRequest) (*dto.CaseResponse, error) {
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	fecha, err := parseVisitDate(in.Date)
	if err != nil {
		return nil, err
	}
	name := "primera_visita_incumple"
	if in.Conforme {
		name = "primera_visita_conforme"
	}
	err = uc.advance(ctx, actor, c, name, func(context.Context) error {
		ok := in.Conforme
		c.FirstVisitDate = &fecha
		c.FirstVisitOK = &ok
		if in.Conforme {
			c.Resolution = "conforme en primera visita"
			return nil
		}
		deadline := businessdays.Add(fecha, c.CorrectionDays, uc.calendar)
		c.CorrectionDeadline = &deadline
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCaseResponse(c), nil
}

// SegundaVisita registra la visita de verificación tras el plazo (3 -> 4).
func (uc *WorkflowUseCase) SegundaVisita(ctx context.Context, actor entity.Actor, id string, in dto.VisitRequest) (*dto.CaseResponse, error) {
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	fecha, err := parseVisitDate(in.Date)
	if err != nil {
		return nil, err
	}
	err = uc.advance(ctx, actor, c, "segunda_visita", func(context.Context) error {
		ok := in.Conforme
		c.SecondVisitDate = &fecha
		c.SecondVisitOK = &ok
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCaseResponse(c), nil
}

// Resolver decide el expediente tras la segunda visita: cierre si la segunda
// visita fue conforme, escalamiento legal si persiste el incumplimiento.
func (uc *WorkflowUseCase) Resolver(ctx context.Context, actor entity.Actor, id string, in dto.ResolveCaseRequest) (*dto.CaseResponse, error) {
	if strings.TrimSpace(in.Resolution) == "" {
		return nil, fmt.Errorf("resolución requerida: %w", domain.ErrInvalidInput)
	}
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.SecondVisitOK == nil {
		return nil, fmt.Errorf("el expediente no tiene segunda visita registrada: %w", domain.ErrConflict)
	}
	name := "resolver_escalar"
	if *c.SecondVisitOK {
		name = "resolver_cierre"
	}
	err = uc.advance(ctx, actor, c, name, func(context.Context) error {
		c.Resolution = strings.TrimSpace(in.Resolution)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCaseResponse(c), nil
}

// CerrarManual cierra anticipadamente un expediente no terminal. Solo admin y
// con motivo obligatorio; queda en la bitácora de transiciones.
func (uc *WorkflowUseCase) CerrarManual(ctx context.Context, actor entity.Actor, id string, in dto.CloseCaseRequest) (*dto.CaseResponse, error) {
	if !actor.Can(entity.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, fmt.Errorf("motivo de cierre requerido: %w", domain.ErrInvalidInput)
	}
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Terminal() {
		return nil, fmt.Errorf("el expediente está %s: %w", entity.CasoEstadoNombre(c.Estado), domain.ErrConflict)
	}
	from := c.Estado
	c.Estado = entity.CasoCerrado
	c.Resolution = "cierre manual: " + strings.TrimSpace(in.Reason)
	c.UpdatedAt = time.Now()
	if err := uc.caseRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	if err := uc.caseRepo.AddTransition(ctx, &entity.CaseTransition{
		ID:         uuid.New().String(),
		CaseID:     c.ID,
		FromEstado: from,
		ToEstado:   c.Estado,
		ActorID:    actor.ID,
		At:         c.UpdatedAt,
	}); err != nil {
		return nil, err
	}
	uc.log.Info().Str("caso_id", c.ID).Int("desde", from).Msg("expediente cerrado manualmente")
	return toCaseResponse(c), nil
}

// OpenLapsedRegistrations abre un expediente de oficio por cada empresa con
// registro vencido que no tenga ya un expediente abierto. Devuelve cuántos
// abrió. Pensado para correrse periódicamente; es seguro repetirlo.
func (uc *WorkflowUseCase) OpenLapsedRegistrations(ctx context.Context, now time.Time) (int, error) {
	lapsed, err := uc.companyRepo.ListLapsed(ctx, now)
	if err != nil {
		return 0, err
	}
	opened := 0
	for _, company := range lapsed {
		exists, err := uc.caseRepo.ExistsOpenByCompany(ctx, company.ID)
		if err != nil {
			return opened, err
		}
		if exists {
			continue
		}
		c := &entity.InspectionCase{
			ID:             uuid.New().String(),
			Codigo:         fmt.Sprintf("EXP-%d-%s", now.Year(), strings.ToUpper(uuid.New().String()[:8])),
			CompanyID:      company.ID,
			Tipo:           entity.CasoOficio,
			Estado:         entity.CasoRegistrado,
			CorrectionDays: entity.DefaultCorrectionDays,
			CreatedBy:      SystemActor.ID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := uc.caseRepo.Create(ctx, c); err != nil {
			return opened, err
		}
		opened++
		uc.log.Info().Str("caso_id", c.ID).Str("empresa", company.ID).Msg("expediente de oficio por registro vencido")
	}
	return opened, nil
}

// Consumer identifica a este flujo ante el despachador de eventos.
func (uc *WorkflowUseCase) Consumer() string { return entity.ConsumerInspeccion }

// HandlePaymentConfirmed procesa el pago de la tasa de una denuncia. El pago
// no avanza el estado (la asignación lo verifica releyendo la factura); aquí
// solo se deja constancia. Idempotente.
func (uc *WorkflowUseCase) HandlePaymentConfirmed(ctx context.Context, invoiceID string) error {
	c, err := uc.caseRepo.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if c == nil {
		return nil // la factura no pertenece a un expediente
	}
	status, err := uc.ledger.GetInvoiceStatus(ctx, invoiceID)
	if err != nil {
		return err
	}
	if status != entity.InvoiceStatusPagada {
		return fmt.Errorf("la factura %s no está pagada (%s)", invoiceID, status)
	}
	uc.log.Info().Str("caso_id", c.ID).Str("factura_id", invoiceID).Msg("tasa de inspección pagada; expediente listo para asignación")
	return nil
}

// Get devuelve el expediente.
func (uc *WorkflowUseCase) Get(ctx context.Context, id string) (*dto.CaseResponse, error) {
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCaseResponse(c), nil
}

// Progress devuelve el avance del expediente para la UI.
func (uc *WorkflowUseCase) Progress(ctx context.Context, id string) (*dto.ProgressResponse, error) {
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ProgressResponse{
		Estado:     c.Estado,
		Total:      entity.CasoEscaladoLegal,
		EstadoName: entity.CasoEstadoNombre(c.Estado),
		Terminal:   c.Terminal(),
	}, nil
}

func (uc *WorkflowUseCase) load(ctx context.Context, id string) (*entity.InspectionCase, error) {
	c, err := uc.caseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func parseVisitDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida %q: %w", s, domain.ErrInvalidInput)
	}
	return t, nil
}

func toCaseResponse(c *entity.InspectionCase) *dto.CaseResponse {
	resp := &dto.CaseResponse{
		ID:          c.ID,
		Codigo:      c.Codigo,
		CompanyID:   c.CompanyID,
		Tipo:        c.Tipo,
		Estado:      c.Estado,
		EstadoName:  entity.CasoEstadoNombre(c.Estado),
		InspectorID: c.InspectorID,
		InvoiceID:   c.InvoiceID,
		Resolution:  c.Resolution,
	}
	if c.FirstVisitDate != nil {
		v := c.FirstVisitDate.Format("2006-01-02")
		resp.FirstVisitDate = &v
	}
	if c.CorrectionDeadline != nil {
		v := c.CorrectionDeadline.Format("2006-01-02")
		resp.CorrectionDeadline = &v
	}
	if c.SecondVisitDate != nil {
		v := c.SecondVisitDate.Format("2006-01-02")
		resp.SecondVisitDate = &v
	}
	return resp
}
