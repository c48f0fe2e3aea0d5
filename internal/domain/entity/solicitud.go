package entity

import "time"

// Tipos de solicitud de registro IRC.
const (
	SolicitudNueva      = "nueva"
	SolicitudRenovacion = "renovacion"
)

// Estados de la solicitud, 1..7, solo avanzan. La entrega no agrega estado:
// se marca con DeliveredAt sobre el estado 7 (Firmada).
const (
	SolicitudRecibida         = 1
	SolicitudEnValidacion     = 2
	SolicitudPendientePago    = 3
	SolicitudPendienteAsiento = 4
	SolicitudAsentada         = 5
	SolicitudPendienteFirma   = 6
	SolicitudFirmada          = 7

	SolicitudEstadoFinal = SolicitudFirmada
)

var solicitudEstados = map[int]string{
	SolicitudRecibida:         "recibida",
	SolicitudEnValidacion:     "en_validacion",
	SolicitudPendientePago:    "pendiente_pago",
	SolicitudPendienteAsiento: "pendiente_asiento",
	SolicitudAsentada:         "asentada",
	SolicitudPendienteFirma:   "pendiente_firma",
	SolicitudFirmada:          "firmada",
}

// SolicitudEstadoNombre devuelve el nombre legible del estado.
func SolicitudEstadoNombre(estado int) string {
	if n, ok := solicitudEstados[estado]; ok {
		return n
	}
	return "desconocido"
}

// Solicitud representa una solicitud de registro o renovación IRC.
// Version es el contador de concurrencia optimista: dos avances simultáneos
// sobre la misma solicitud se serializan y exactamente uno gana.
type Solicitud struct {
	ID           string
	Codigo       string
	CompanyID    string
	Tipo         string // nueva | renovacion
	Estado       int    // 1..7
	CategoryCode string // categoría IRC que determina la tarifa
	InvoiceID    string // factura emitida al validar; referencia débil
	BookNumber   string // libro del asiento
	EntryNumber  string // folio/número de asiento
	CertifiedAt  *time.Time
	SignedAt     *time.Time
	DeliveredAt  *time.Time
	Version      int64
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Entregada indica si la solicitud llegó al final del flujo.
func (s *Solicitud) Entregada() bool {
	return s.Estado == SolicitudEstadoFinal && s.DeliveredAt != nil
}

// SolicitudTransition registra quién ejecutó cada avance y cuándo.
type SolicitudTransition struct {
	ID          string
	SolicitudID string
	FromEstado  int
	ToEstado    int
	ActorID     string
	At          time.Time
}
