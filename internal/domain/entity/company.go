package entity

import "time"

// Company representa una empresa IRC (importadora/reproductora/distribuidora
// de soportes de obras protegidas) sujeta a registro y renovación periódica.
type Company struct {
	ID             string
	Name           string
	RNC            string // Registro Nacional del Contribuyente
	CategoryCode   string // categoría IRC; determina la tarifa de registro
	Address        string
	Phone          string
	Email          string
	Status         string // active, suspended, inactive
	RegistroNumero string // número del certificado vigente
	// Vigencia del registro; DeliveredAt de la solicitud la renueva.
	RegistroDesde *time.Time
	RegistroHasta *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RegistroVigente indica si la empresa tiene registro sin vencer.
func (c *Company) RegistroVigente(now time.Time) bool {
	return c.RegistroHasta != nil && !now.After(*c.RegistroHasta)
}
