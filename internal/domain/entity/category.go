package entity

import "github.com/shopspring/decimal"

// Códigos de tarifa que no dependen de la categoría de la empresa.
const (
	FeeInspeccionParte = "inspeccion_parte" // tasa de inspección a instancia de parte
)

// Category es una categoría IRC del catálogo con su tarifa de registro.
// Es dato de consulta externo; aquí solo se lee.
type Category struct {
	Code string
	Name string
	Fee  decimal.Decimal
}
