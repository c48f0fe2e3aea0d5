package entity

import "time"

// Tipos de expediente de inspección.
const (
	CasoOficio    = "oficio"    // iniciado por la institución
	CasoDenuncia  = "denuncia"  // a instancia de parte; genera factura de tasa
	CasoOperativo = "operativo" // operativo de campo
)

// Estados del expediente, 1..6. Cerrado y Escalado son terminales. Una primera
// visita conforme salta de Asignado directo a Cerrado; los saltos siempre son
// hacia adelante.
const (
	CasoRegistrado      = 1
	CasoAsignado        = 2
	CasoPlazoCorreccion = 3
	CasoSegundaVisita   = 4
	CasoCerrado         = 5
	CasoEscaladoLegal   = 6
)

var casoEstados = map[int]string{
	CasoRegistrado:      "registrado",
	CasoAsignado:        "asignado",
	CasoPlazoCorreccion: "plazo_correccion",
	CasoSegundaVisita:   "segunda_visita",
	CasoCerrado:         "cerrado",
	CasoEscaladoLegal:   "escalado_legal",
}

// CasoEstadoNombre devuelve el nombre legible del estado.
func CasoEstadoNombre(estado int) string {
	if n, ok := casoEstados[estado]; ok {
		return n
	}
	return "desconocido"
}

// DefaultCorrectionDays es el plazo de corrección por defecto en días hábiles.
const DefaultCorrectionDays = 10

// InspectionCase representa un expediente de inspección.
// CorrectionDeadline se fija solo cuando la primera visita encuentra
// incumplimiento y se calcula en días hábiles, no calendario.
type InspectionCase struct {
	ID                 string
	Codigo             string
	CompanyID          string
	Tipo               string // oficio | denuncia | operativo
	Estado             int    // 1..6
	InspectorID        string
	InvoiceID          string // tasa de inspección (solo denuncia); referencia débil
	FirstVisitDate     *time.Time
	FirstVisitOK       *bool // hallazgo de la primera visita
	CorrectionDays     int   // N días hábiles del plazo
	CorrectionDeadline *time.Time
	SecondVisitDate    *time.Time
	SecondVisitOK      *bool // hallazgo de la segunda visita
	Resolution         string
	Version            int64
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Terminal indica si el expediente no admite más transiciones.
func (c *InspectionCase) Terminal() bool {
	return c.Estado == CasoCerrado || c.Estado == CasoEscaladoLegal
}

// CaseTransition registra cada avance del expediente con actor y fecha.
type CaseTransition struct {
	ID         string
	CaseID     string
	FromEstado int
	ToEstado   int
	ActorID    string
	At         time.Time
}
