package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onda-rd/backoffice-api/internal/application/billing"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
)

// InvoiceHandler maneja el libro de facturas (protegido).
type InvoiceHandler struct {
	uc *billing.LedgerUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.LedgerUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Open emite una factura (venta de mostrador o manual).
// POST /api/invoices
func (h *InvoiceHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenInvoiceRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	inv, err := h.uc.Open(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inv)
}

// Pay cobra una factura abierta.
// POST /api/invoices/:id/pay
func (h *InvoiceHandler) Pay(c *fiber.Ctx) error {
	var in dto.PayInvoiceRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	inv, err := h.uc.Pay(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inv)
}

// Void anula una factura abierta.
// POST /api/invoices/:id/void
func (h *InvoiceHandler) Void(c *fiber.Ctx) error {
	var in dto.VoidInvoiceRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	inv, err := h.uc.Void(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inv)
}

// GetByID obtiene una factura con sus líneas.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.uc.GetInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(inv)
}
