// Package businessdays implementa la aritmética de días hábiles usada por los
// plazos de corrección de inspección. Excluye sábados y domingos; los feriados
// se consultan a un calendario externo inyectable.
package businessdays

import "time"

// Calendar responde si una fecha es feriado. El catálogo real de feriados es
// dato externo; aquí solo se consume.
type Calendar interface {
	IsHoliday(t time.Time) bool
}

// NoHolidays es el calendario por defecto: ningún feriado.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(time.Time) bool { return false }

// IsBusinessDay indica si t es un día hábil según el calendario.
func IsBusinessDay(t time.Time, cal Calendar) bool {
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !cal.IsHoliday(t)
}

// Add devuelve la fecha que resulta de avanzar n días hábiles desde start.
// El día inicial no cuenta: Add(viernes, 1) es el lunes siguiente.
func Add(start time.Time, n int, cal Calendar) time.Time {
	if cal == nil {
		cal = NoHolidays{}
	}
	d := start
	for remaining := n; remaining > 0; {
		d = d.AddDate(0, 0, 1)
		if IsBusinessDay(d, cal) {
			remaining--
		}
	}
	return d
}
