package ncf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/onda-rd/backoffice-api/pkg/ncf"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "B0100000001", ncf.Format("B", "01", 1))
	assert.Equal(t, "B0200123456", ncf.Format("B", "02", 123456))
	assert.Equal(t, "E1599999999", ncf.Format("E", "15", 99999999))
}

func TestValid(t *testing.T) {
	assert.True(t, ncf.Valid("B0100000001"))
	assert.False(t, ncf.Valid("0100000001"), "sin serie")
	assert.False(t, ncf.Valid("B01000001"), "secuencial corto")
	assert.False(t, ncf.Valid("b0100000001"), "serie minúscula")
}

func TestParse_RoundTrip(t *testing.T) {
	serie, tipo, numero, err := ncf.Parse(ncf.Format("B", "01", 4521))
	require.NoError(t, err)
	assert.Equal(t, "B", serie)
	assert.Equal(t, "01", tipo)
	assert.Equal(t, int64(4521), numero)
}

func TestParse_Invalido(t *testing.T) {
	_, _, _, err := ncf.Parse("XYZ")
	assert.Error(t, err)
}
