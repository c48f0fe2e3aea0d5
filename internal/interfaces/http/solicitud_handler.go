package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/application/registro"
)

// SolicitudHandler maneja el flujo de solicitudes de registro IRC.
type SolicitudHandler struct {
	uc *registro.WorkflowUseCase
}

// NewSolicitudHandler construye el handler.
func NewSolicitudHandler(uc *registro.WorkflowUseCase) *SolicitudHandler {
	return &SolicitudHandler{uc: uc}
}

// Create registra una solicitud nueva o de renovación.
// POST /api/solicitudes
func (h *SolicitudHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSolicitudRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	sol, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sol)
}

// IniciarValidacion pasa la solicitud a validación.
// POST /api/solicitudes/:id/iniciar-validacion
func (h *SolicitudHandler) IniciarValidacion(c *fiber.Ctx) error {
	sol, err := h.uc.IniciarValidacion(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sol)
}

// Validar aprueba la revisión y emite la factura de tarifa.
// POST /api/solicitudes/:id/validar
func (h *SolicitudHandler) Validar(c *fiber.Ctx) error {
	var in registro.ValidarRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	sol, err := h.uc.Validar(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sol)
}

// Asentar registra libro y folio del asiento.
// POST /api/solicitudes/:id/asentar
func (h *SolicitudHandler) Asentar(c *fiber.Ctx) error {
	var in dto.AsentarRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	sol, err := h.uc.Asentar(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sol)
}

// Certificar genera el certificado de registro.
// POST /api/solicitudes/:id/certificar
func (h *SolicitudHandler) Certificar(c *fiber.Ctx) error {
	sol, err := h.uc.Certificar(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sol)
}

// Entregar confirma la entrega del certificado firmado y renueva la vigencia.
// POST /api/solicitudes/:id/entregar
func (h *SolicitudHandler) Entregar(c *fiber.Ctx) error {
	sol, err := h.uc.Entregar(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sol)
}

// GetByID obtiene una solicitud.
// GET /api/solicitudes/:id
func (h *SolicitudHandler) GetByID(c *fiber.Ctx) error {
	sol, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sol)
}

// Progress devuelve el avance n/7 para la UI.
// GET /api/solicitudes/:id/progress
func (h *SolicitudHandler) Progress(c *fiber.Ctx) error {
	p, err := h.uc.Progress(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}
