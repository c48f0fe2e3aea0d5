package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura. EMITIDA es el único estado no terminal.
const (
	InvoiceStatusEmitida = "EMITIDA"
	InvoiceStatusPagada  = "PAGADA"
	InvoiceStatusAnulada = "ANULADA"
)

// Tipos de documento que originan una factura.
const (
	InvoiceSourceSolicitud = "solicitud"
	InvoiceSourceCaso      = "caso"
	InvoiceSourceMostrador = "mostrador" // venta directa en ventanilla
)

// ITBISRate es la tasa de ITBIS vigente (18%).
var ITBISRate = decimal.NewFromFloat(0.18)

// Descuentos permitidos: ninguno, 80% estudiante o 100% exoneración.
// Un solo campo los hace mutuamente excluyentes por construcción.
var AllowedDiscounts = []int64{0, 80, 100}

// DiscountAllowed verifica que el porcentaje sea uno de los permitidos.
func DiscountAllowed(pct int64) bool {
	for _, d := range AllowedDiscounts {
		if d == pct {
			return true
		}
	}
	return false
}

// Invoice representa una factura del back-office.
// Total = Σ(línea.cantidad * línea.precio) * (1 - descuento/100) * (1 + ITBIS),
// redondeado una sola vez al final. El NCF se asigna a lo sumo una vez, solo
// durante la transición EMITIDA -> PAGADA y solo si se pidió comprobante fiscal.
type Invoice struct {
	ID                   string
	Codigo               string
	SourceType           string // solicitud | caso | mostrador
	SourceID             string // ID del documento origen (vacío para mostrador)
	Status               string
	DiscountPercent      int64
	RequestFiscalReceipt bool
	RNC                  string // cédula/RNC del contribuyente; obligatorio si pide NCF
	NCF                  string // número de comprobante fiscal asignado al pagar
	PaymentMethod        string
	PaymentReference     string
	CashSessionID        string // caja a la que quedó atada; vacío hasta adjuntarse
	Subtotal             decimal.Decimal
	Total                decimal.Decimal
	VoidReason           string
	CreatedBy            string
	PaidAt               *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// InvoiceLine es una línea de detalle de la factura.
type InvoiceLine struct {
	ID        string
	InvoiceID string
	Concepto  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal // Quantity * UnitPrice, sin descuento ni impuesto
}
