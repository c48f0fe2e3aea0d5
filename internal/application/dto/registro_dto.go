package dto

// CreateSolicitudRequest alta de una solicitud de registro o renovación IRC.
type CreateSolicitudRequest struct {
	CompanyID    string `json:"empresa_id" validate:"required"`
	Tipo         string `json:"tipo" validate:"required,oneof=nueva renovacion"`
	CategoryCode string `json:"categoria" validate:"required"`
}

// AsentarRequest datos del asiento en el libro de registro.
type AsentarRequest struct {
	BookNumber  string `json:"libro" validate:"required"`
	EntryNumber string `json:"folio" validate:"required"`
}

// SignatureWebhookRequest confirmación externa de firma del certificado.
type SignatureWebhookRequest struct {
	SolicitudID string `json:"solicitud_id" validate:"required"`
	SignedAt    string `json:"firmado_en"` // RFC3339; vacío = ahora
}

// PaymentWebhookRequest confirmación externa de pago (at-least-once).
type PaymentWebhookRequest struct {
	InvoiceID string `json:"factura_id" validate:"required"`
}

// SolicitudResponse representación de la solicitud.
type SolicitudResponse struct {
	ID          string  `json:"id"`
	Codigo      string  `json:"codigo"`
	CompanyID   string  `json:"empresa_id"`
	Tipo        string  `json:"tipo"`
	Estado      int     `json:"estado"`
	EstadoName  string  `json:"estado_nombre"`
	InvoiceID   string  `json:"factura_id,omitempty"`
	BookNumber  string  `json:"libro,omitempty"`
	EntryNumber string  `json:"folio,omitempty"`
	SignedAt    *string `json:"firmado_en,omitempty"`
	DeliveredAt *string `json:"entregado_en,omitempty"`
}

// ProgressResponse avance del flujo para la UI (n de m).
type ProgressResponse struct {
	Estado     int    `json:"estado"`
	Total      int    `json:"total"`
	EstadoName string `json:"estado_nombre"`
	Terminal   bool   `json:"terminal"`
}
