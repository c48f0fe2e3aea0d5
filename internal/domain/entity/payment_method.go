package entity

// PaymentMethod es un método de pago del catálogo. RequiresReference indica
// si el pago debe traer un número de referencia (cheque, transferencia, etc.).
type PaymentMethod struct {
	Code              string
	Name              string
	RequiresReference bool
}

// Catálogo de métodos de pago. Es dato de consulta, no se administra aquí.
var paymentMethods = map[string]PaymentMethod{
	"efectivo":      {Code: "efectivo", Name: "Efectivo", RequiresReference: false},
	"tarjeta":       {Code: "tarjeta", Name: "Tarjeta de crédito/débito", RequiresReference: true},
	"cheque":        {Code: "cheque", Name: "Cheque certificado", RequiresReference: true},
	"transferencia": {Code: "transferencia", Name: "Transferencia bancaria", RequiresReference: true},
}

// PaymentMethodByCode devuelve el método de pago del catálogo.
func PaymentMethodByCode(code string) (PaymentMethod, bool) {
	m, ok := paymentMethods[code]
	return m, ok
}
