package businessdays_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/onda-rd/backoffice-api/internal/domain/businessdays"
)

// Calendario de referencia: viernes 6 de marzo de 2026. 10 días hábiles
// después, saltando dos fines de semana completos, cae exactamente 14 días
// calendario más tarde (viernes 20 de marzo).
func TestAdd_ViernesMasDiezHabiles(t *testing.T) {
	viernes := time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)
	got := businessdays.Add(viernes, 10, nil)

	assert.Equal(t, time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, 14, int(got.Sub(viernes).Hours()/24), "dos fines de semana intermedios excluidos")
}

func TestAdd_UnDiaDesdeViernesEsLunes(t *testing.T) {
	viernes := time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC)
	got := businessdays.Add(viernes, 1, nil)
	assert.Equal(t, time.Monday, got.Weekday())
}

func TestAdd_CeroDiasNoAvanza(t *testing.T) {
	d := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, d, businessdays.Add(d, 0, nil))
}

// feriadoFijo marca como feriado una única fecha.
type feriadoFijo struct{ dia time.Time }

func (f feriadoFijo) IsHoliday(t time.Time) bool {
	return t.Year() == f.dia.Year() && t.YearDay() == f.dia.YearDay()
}

func TestAdd_FeriadoExtiendeElPlazo(t *testing.T) {
	lunes := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	martes := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)

	sinFeriado := businessdays.Add(lunes, 2, nil)
	conFeriado := businessdays.Add(lunes, 2, feriadoFijo{dia: martes})

	assert.Equal(t, sinFeriado.AddDate(0, 0, 1), conFeriado)
}

func TestIsBusinessDay(t *testing.T) {
	sabado := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
	lunes := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)

	assert.False(t, businessdays.IsBusinessDay(sabado, businessdays.NoHolidays{}))
	assert.True(t, businessdays.IsBusinessDay(lunes, businessdays.NoHolidays{}))
}
