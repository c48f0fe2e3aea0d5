package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onda-rd/backoffice-api/internal/application/caja"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
)

// CajaHandler maneja la apertura, cierre y conciliación de caja.
type CajaHandler struct {
	uc *caja.UseCase
}

// NewCajaHandler construye el handler.
func NewCajaHandler(uc *caja.UseCase) *CajaHandler {
	return &CajaHandler{uc: uc}
}

// Open abre la caja del cajero autenticado.
// POST /api/caja/open
func (h *CajaHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenCajaRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	s, err := h.uc.Open(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s)
}

// Close cierra una caja con el monto declarado.
// POST /api/caja/:id/close
func (h *CajaHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseCajaRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	s, err := h.uc.Close(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s)
}

// Report devuelve la conciliación de la caja.
// GET /api/caja/:id/report
func (h *CajaHandler) Report(c *fiber.Ctx) error {
	rep, err := h.uc.Report(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rep)
}
