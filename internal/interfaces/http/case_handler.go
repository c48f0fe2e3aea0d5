package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/application/inspeccion"
)

// CaseHandler maneja el flujo de expedientes de inspección.
type CaseHandler struct {
	uc *inspeccion.WorkflowUseCase
}

// NewCaseHandler construye el handler.
func NewCaseHandler(uc *inspeccion.WorkflowUseCase) *CaseHandler {
	return &CaseHandler{uc: uc}
}

// Create registra un expediente (oficio, denuncia u operativo).
// POST /api/casos
func (h *CaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCaseRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	res, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Asignar asigna un inspector al expediente.
// POST /api/casos/:id/asignar
func (h *CaseHandler) Asignar(c *fiber.Ctx) error {
	var in dto.AssignCaseRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	res, err := h.uc.Asignar(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// PrimeraVisita registra la primera visita de inspección.
// POST /api/casos/:id/primera-visita
func (h *CaseHandler) PrimeraVisita(c *fiber.Ctx) error {
	var in dto.VisitRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	res, err := h.uc.PrimeraVisita(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// SegundaVisita registra la visita de verificación.
// POST /api/casos/:id/segunda-visita
func (h *CaseHandler) SegundaVisita(c *fiber.Ctx) error {
	var in dto.VisitRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	res, err := h.uc.SegundaVisita(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// Resolver decide el expediente tras la segunda visita.
// POST /api/casos/:id/resolver
func (h *CaseHandler) Resolver(c *fiber.Ctx) error {
	var in dto.ResolveCaseRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	res, err := h.uc.Resolver(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// CerrarManual cierra anticipadamente un expediente (solo admin).
// POST /api/casos/:id/cerrar
func (h *CaseHandler) CerrarManual(c *fiber.Ctx) error {
	var in dto.CloseCaseRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	res, err := h.uc.CerrarManual(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// GetByID obtiene un expediente.
// GET /api/casos/:id
func (h *CaseHandler) GetByID(c *fiber.Ctx) error {
	res, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// Progress devuelve el avance del expediente.
// GET /api/casos/:id/progress
func (h *CaseHandler) Progress(c *fiber.Ctx) error {
	p, err := h.uc.Progress(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}
