package dto

// CreateCaseRequest alta de un expediente de inspección.
type CreateCaseRequest struct {
	CompanyID      string `json:"empresa_id" validate:"required"`
	Tipo           string `json:"tipo" validate:"required,oneof=oficio denuncia operativo"`
	CorrectionDays int    `json:"dias_correccion" validate:"omitempty,min=1"`
}

// AssignCaseRequest asignación de inspector.
type AssignCaseRequest struct {
	InspectorID string `json:"inspector_id" validate:"required"`
}

// VisitRequest registro de una visita de inspección.
type VisitRequest struct {
	Date     string `json:"fecha"` // YYYY-MM-DD; vacío = hoy
	Conforme bool   `json:"conforme"`
}

// ResolveCaseRequest resolución tras la segunda visita (cierre o escalamiento).
type ResolveCaseRequest struct {
	Resolution string `json:"resolucion" validate:"required,min=3"`
}

// CloseCaseRequest cierre manual anticipado.
type CloseCaseRequest struct {
	Reason string `json:"motivo" validate:"required,min=3"`
}

// CaseResponse representación del expediente.
type CaseResponse struct {
	ID                 string  `json:"id"`
	Codigo             string  `json:"codigo"`
	CompanyID          string  `json:"empresa_id"`
	Tipo               string  `json:"tipo"`
	Estado             int     `json:"estado"`
	EstadoName         string  `json:"estado_nombre"`
	InspectorID        string  `json:"inspector_id,omitempty"`
	InvoiceID          string  `json:"factura_id,omitempty"`
	FirstVisitDate     *string `json:"primera_visita,omitempty"`
	CorrectionDeadline *string `json:"plazo_correccion,omitempty"`
	SecondVisitDate    *string `json:"segunda_visita,omitempty"`
	Resolution         string  `json:"resolucion,omitempty"`
}
