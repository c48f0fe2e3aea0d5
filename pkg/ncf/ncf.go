// Package ncf compone y valida Números de Comprobante Fiscal (NCF).
// Formato: serie (una letra) + tipo de comprobante (dos dígitos) + secuencial
// de ocho dígitos con ceros a la izquierda. Ej: B0100000001.
package ncf

import (
	"fmt"
	"regexp"
)

var ncfPattern = regexp.MustCompile(`^[A-Z]\d{2}\d{8}$`)

// Format compone el NCF a partir de serie, tipo y número secuencial.
func Format(serie, tipo string, numero int64) string {
	return fmt.Sprintf("%s%s%08d", serie, tipo, numero)
}

// Valid verifica que la cadena tenga la estructura de un NCF.
func Valid(s string) bool {
	return ncfPattern.MatchString(s)
}

// Parse descompone un NCF en serie, tipo y secuencial.
func Parse(s string) (serie, tipo string, numero int64, err error) {
	if !Valid(s) {
		return "", "", 0, fmt.Errorf("ncf: formato inválido %q", s)
	}
	serie = s[:1]
	tipo = s[1:3]
	if _, err := fmt.Sscanf(s[3:], "%d", &numero); err != nil {
		return "", "", 0, fmt.Errorf("ncf: secuencial inválido %q", s)
	}
	return serie, tipo, numero, nil
}
