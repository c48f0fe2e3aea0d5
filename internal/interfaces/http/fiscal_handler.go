package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/application/fiscal"
)

// FiscalHandler administra las secuencias NCF (solo admin).
type FiscalHandler struct {
	uc *fiscal.AllocatorUseCase
}

// NewFiscalHandler construye el handler.
func NewFiscalHandler(uc *fiscal.AllocatorUseCase) *FiscalHandler {
	return &FiscalHandler{uc: uc}
}

// CreateSequence da de alta una secuencia NCF autorizada.
// POST /api/ncf/sequences
func (h *FiscalHandler) CreateSequence(c *fiber.Ctx) error {
	var in dto.CreateSequenceRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	seq, err := h.uc.CreateSequence(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(seq)
}

// Deactivate desactiva una secuencia.
// POST /api/ncf/sequences/:id/deactivate
func (h *FiscalHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.uc.Deactivate(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Statistics devuelve consumo y disponibilidad por secuencia.
// GET /api/ncf/sequences/stats
func (h *FiscalHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.uc.Statistics(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
