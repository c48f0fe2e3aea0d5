package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
	"github.com/onda-rd/backoffice-api/internal/domain"
)

// respondError mapea un error de dominio (posiblemente envuelto) al código
// HTTP correspondiente. El Message conserva el texto del error porque los
// casos de uso envuelven la precondición exacta que falló.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUserNotFound):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		status, code = fiber.StatusConflict, "EMAIL_EXISTS"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrCajaYaAbierta):
		status, code = fiber.StatusConflict, "CAJA_YA_ABIERTA"
	case errors.Is(err, domain.ErrCajaCerrada):
		status, code = fiber.StatusConflict, "CAJA_CERRADA"
	case errors.Is(err, domain.ErrCajaRequerida):
		status, code = fiber.StatusConflict, "CAJA_REQUERIDA"
	case errors.Is(err, domain.ErrSecuenciaAgotada),
		errors.Is(err, domain.ErrSecuenciaVencida),
		errors.Is(err, domain.ErrSecuenciaInactiva):
		status, code = fiber.StatusConflict, "NCF_NO_DISPONIBLE"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}
