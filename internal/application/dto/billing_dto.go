package dto

import "github.com/shopspring/decimal"

// InvoiceLineRequest línea de la factura a emitir.
type InvoiceLineRequest struct {
	Concepto  string          `json:"concepto" validate:"required"`
	Quantity  decimal.Decimal `json:"cantidad" validate:"required"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
}

// OpenInvoiceRequest emisión de una factura.
type OpenInvoiceRequest struct {
	SourceType           string               `json:"source_type" validate:"omitempty,oneof=solicitud caso mostrador"`
	SourceID             string               `json:"source_id"`
	Lines                []InvoiceLineRequest `json:"lineas" validate:"required,min=1,dive"`
	DiscountPercent      int64                `json:"descuento" validate:"oneof=0 80 100"`
	RequestFiscalReceipt bool                 `json:"comprobante_fiscal"`
	RNC                  string               `json:"rnc"`
}

// PayInvoiceRequest cobro de una factura.
type PayInvoiceRequest struct {
	Method    string `json:"metodo" validate:"required"`
	Reference string `json:"referencia"`
}

// VoidInvoiceRequest anulación de una factura abierta.
type VoidInvoiceRequest struct {
	Reason string `json:"motivo" validate:"required,min=3"`
}

// InvoiceLineResponse línea en la respuesta.
type InvoiceLineResponse struct {
	ID        string          `json:"id"`
	Concepto  string          `json:"concepto"`
	Quantity  decimal.Decimal `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Amount    decimal.Decimal `json:"importe"`
}

// InvoiceResponse representación de la factura.
type InvoiceResponse struct {
	ID                   string                `json:"id"`
	Codigo               string                `json:"codigo"`
	SourceType           string                `json:"source_type,omitempty"`
	SourceID             string                `json:"source_id,omitempty"`
	Status               string                `json:"status"`
	DiscountPercent      int64                 `json:"descuento"`
	RequestFiscalReceipt bool                  `json:"comprobante_fiscal"`
	RNC                  string                `json:"rnc,omitempty"`
	NCF                  string                `json:"ncf,omitempty"`
	PaymentMethod        string                `json:"metodo,omitempty"`
	PaymentReference     string                `json:"referencia,omitempty"`
	CashSessionID        string                `json:"caja_id,omitempty"`
	Subtotal             decimal.Decimal       `json:"subtotal"`
	Total                decimal.Decimal       `json:"total"`
	VoidReason           string                `json:"motivo_anulacion,omitempty"`
	Lines                []InvoiceLineResponse `json:"lineas,omitempty"`
}
