package http

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/application/events"
)

// WebhookHandler recibe confirmaciones externas (pago, firma). Los emisores
// reintentan, así que cada webhook debe poder llegar más de una vez sin
// efectos dobles.
type WebhookHandler struct {
	token    string
	signer   SignatureConfirmer
	handlers []events.Handler
}

// SignatureConfirmer confirma la firma del certificado (lo implementa
// registro.WorkflowUseCase).
type SignatureConfirmer interface {
	ConfirmarFirma(ctx context.Context, id string, signedAt time.Time) (*dto.SolicitudResponse, error)
}

// NewWebhookHandler construye el handler. token autentica el header
// X-Webhook-Token; handlers reciben las confirmaciones de pago.
func NewWebhookHandler(token string, signer SignatureConfirmer, handlers ...events.Handler) *WebhookHandler {
	return &WebhookHandler{token: token, signer: signer, handlers: handlers}
}

// CheckToken corta con 401 si el header X-Webhook-Token no coincide.
func (h *WebhookHandler) CheckToken(c *fiber.Ctx) error {
	got := c.Get("X-Webhook-Token")
	if h.token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_WEBHOOK_TOKEN", Message: "token de webhook inválido"})
	}
	return c.Next()
}

// PaymentConfirmed reenvía la confirmación de pago a los flujos. Los handlers
// releen el estado persistido de la factura, así que un reintento o una
// confirmación ya despachada por el outbox son no-ops.
// POST /api/webhooks/payment
func (h *WebhookHandler) PaymentConfirmed(c *fiber.Ctx) error {
	var in dto.PaymentWebhookRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	for _, handler := range h.handlers {
		if err := handler.HandlePaymentConfirmed(c.Context(), in.InvoiceID); err != nil {
			return respondError(c, err)
		}
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// SignatureConfirmed registra la firma externa del certificado.
// POST /api/webhooks/signature
func (h *WebhookHandler) SignatureConfirmed(c *fiber.Ctx) error {
	var in dto.SignatureWebhookRequest
	if err := BindAndValidate(c, &in); err != nil {
		return nil
	}
	var signedAt time.Time
	if in.SignedAt != "" {
		t, err := time.Parse(time.RFC3339, in.SignedAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "firmado_en debe ser RFC3339"})
		}
		signedAt = t
	}
	sol, err := h.signer.ConfirmarFirma(c.Context(), in.SolicitudID, signedAt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sol)
}
