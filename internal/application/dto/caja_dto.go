package dto

import "github.com/shopspring/decimal"

// OpenCajaRequest apertura de caja.
type OpenCajaRequest struct {
	OpeningAmount decimal.Decimal `json:"monto_inicial"`
}

// CloseCajaRequest cierre de caja con el monto declarado por el cajero.
type CloseCajaRequest struct {
	ClosingAmount decimal.Decimal `json:"monto_declarado"`
}

// CajaResponse representación de la sesión de caja.
type CajaResponse struct {
	ID            string           `json:"id"`
	CashierID     string           `json:"cajero_id"`
	Status        string           `json:"status"`
	OpeningAmount decimal.Decimal  `json:"monto_inicial"`
	ClosingAmount *decimal.Decimal `json:"monto_declarado,omitempty"`
	Difference    *decimal.Decimal `json:"diferencia,omitempty"`
	OpenedAt      string           `json:"abierta_en"`
	ClosedAt      *string          `json:"cerrada_en,omitempty"`
}

// CajaReportResponse resumen de conciliación de la caja.
type CajaReportResponse struct {
	Caja          CajaResponse    `json:"caja"`
	PaidInvoices  int             `json:"facturas_pagadas"`
	PaidTotal     decimal.Decimal `json:"total_cobrado"`
	ExpectedTotal decimal.Decimal `json:"monto_esperado"` // inicial + cobrado
}
