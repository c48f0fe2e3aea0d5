package dto

// ErrorResponse cuerpo de error HTTP. Message describe la precondición exacta
// que falló, no un fallo genérico.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
