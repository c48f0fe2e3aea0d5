package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/onda-rd/backoffice-api/internal/application/dto"
)

var validate = validator.New()

// BindAndValidate parsea el body en dst y lo valida con las etiquetas
// `validate`. Si falla escribe el 400 y devuelve el error; el handler debe
// cortar con `return nil` porque la respuesta ya salió.
func BindAndValidate(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		return err
	}
	if err := validate.Struct(dst); err != nil {
		msg := "datos inválidos"
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			msg = "campo " + errs[0].Field() + ": regla " + errs[0].Tag()
		}
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
		return err
	}
	return nil
}
