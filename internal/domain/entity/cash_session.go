package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la sesión de caja.
const (
	CajaAbierta = "ABIERTA"
	CajaCerrada = "CERRADA"
)

// CashSession representa la caja de un cajero: el período de trabajo durante
// el cual se abren y cobran facturas. A lo sumo una abierta por cajero.
// Al cerrar se congela Difference = declarado - (monto inicial + Σ facturas
// pagadas); nunca se recalcula después y la sesión queda inmutable.
type CashSession struct {
	ID            string
	CashierID     string
	Status        string
	OpeningAmount decimal.Decimal
	ClosingAmount *decimal.Decimal // monto declarado al cierre
	Difference    *decimal.Decimal // congelado al cierre
	OpenedAt      time.Time
	ClosedAt      *time.Time
}

// Open indica si la caja sigue abierta.
func (s *CashSession) Open() bool { return s.Status == CajaAbierta }
