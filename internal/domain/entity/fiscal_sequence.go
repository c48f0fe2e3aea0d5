package entity

import "time"

// Tipos de comprobante fiscal según la codificación DGII.
const (
	NCFTipoCreditoFiscal = "01" // válido para crédito fiscal (requiere RNC)
	NCFTipoConsumo       = "02" // consumidor final
	NCFTipoGubernamental = "15"
)

// FiscalSequence representa un rango de NCF autorizado por la DGII.
// El cursor es el próximo número a entregar; la asignación es el único punto
// que lo muta y nunca retrocede. Las secuencias no se borran, se desactivan.
type FiscalSequence struct {
	ID        string
	Tipo      string    // código de tipo de comprobante ("01", "02", ...)
	Serie     string    // letra de serie autorizada (ej: "B")
	RangeFrom int64     // primer número del rango autorizado
	RangeTo   int64     // límite superior exclusivo del rango
	Cursor    int64     // próximo número a asignar; RangeFrom <= Cursor <= RangeTo
	ExpiresOn time.Time // fecha de vencimiento de la autorización
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Usable indica si la secuencia puede entregar un número ahora mismo.
func (s *FiscalSequence) Usable(now time.Time) bool {
	return s.IsActive && !now.After(s.ExpiresOn) && s.Cursor < s.RangeTo
}

// Consumed devuelve cuántos números ya se entregaron.
func (s *FiscalSequence) Consumed() int64 { return s.Cursor - s.RangeFrom }

// Available devuelve cuántos números quedan por entregar.
func (s *FiscalSequence) Available() int64 { return s.RangeTo - s.Cursor }
