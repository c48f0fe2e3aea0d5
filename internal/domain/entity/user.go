package entity

import "time"

// Roles del personal de la institución. Cada transición de flujo está
// permitida a un rol específico; admin puede todo.
const (
	RoleAdmin       = "admin"
	RoleRecepcion   = "recepcion"
	RoleInspector   = "inspector"
	RoleCajero      = "cajero"
	RoleParalegal   = "paralegal"
	RoleRegistrador = "registrador"
)

// User representa un usuario del back-office (personal interno).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor identifica a quien ejecuta una operación (tomado del JWT).
type Actor struct {
	ID   string
	Role string
}

// Can indica si el actor tiene el rol requerido. Admin siempre puede.
func (a Actor) Can(role string) bool {
	return a.Role == role || a.Role == RoleAdmin
}
