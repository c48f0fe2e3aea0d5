package dto

// CreateSequenceRequest alta administrativa de una secuencia NCF.
type CreateSequenceRequest struct {
	Tipo      string `json:"tipo" validate:"required,len=2"`
	Serie     string `json:"serie" validate:"required,len=1"`
	RangeFrom int64  `json:"range_from" validate:"required,min=1"`
	RangeTo   int64  `json:"range_to" validate:"required,gtfield=RangeFrom"`
	ExpiresOn string `json:"expires_on" validate:"required"` // YYYY-MM-DD
}

// SequenceResponse representación de una secuencia NCF.
type SequenceResponse struct {
	ID        string `json:"id"`
	Tipo      string `json:"tipo"`
	Serie     string `json:"serie"`
	RangeFrom int64  `json:"range_from"`
	RangeTo   int64  `json:"range_to"`
	Cursor    int64  `json:"cursor"`
	ExpiresOn string `json:"expires_on"`
	IsActive  bool   `json:"is_active"`
}

// SequenceStats estadísticas derivadas de una secuencia (solo lectura).
type SequenceStats struct {
	ID           string `json:"id"`
	Tipo         string `json:"tipo"`
	Serie        string `json:"serie"`
	Consumed     int64  `json:"consumidos"`
	Available    int64  `json:"disponibles"`
	DaysToExpiry int    `json:"dias_para_vencer"`
	IsActive     bool   `json:"is_active"`
}
