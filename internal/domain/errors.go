package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con fmt.Errorf("precondición: %w", err) para
// que el caller sepa exactamente qué condición falló; el handler HTTP los
// mapea a códigos de estado.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Secuencias fiscales (NCF)
	ErrSecuenciaAgotada  = errors.New("secuencia de comprobantes agotada")
	ErrSecuenciaVencida  = errors.New("secuencia de comprobantes vencida")
	ErrSecuenciaInactiva = errors.New("no hay secuencia de comprobantes activa")

	// Caja
	ErrCajaYaAbierta = errors.New("el cajero ya tiene una caja abierta")
	ErrCajaCerrada   = errors.New("la caja ya está cerrada")
	ErrCajaRequerida = errors.New("el cajero no tiene una caja abierta")
)
