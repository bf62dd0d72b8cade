package calendar

// calendar.go — aritmética de días hábiles con semana fija Lun–Vie.
//
// Sin calendario de feriados: el forecast opera a 15 días vista y el
// error introducido por un feriado puntual es menor que la incertidumbre
// de las tasas de conversión.

import (
	"errors"
	"fmt"
	"time"
)

// ErrNegativeDays indica un conteo negativo de días hábiles — error de
// programación del caller, nunca se recupera silenciosamente.
var ErrNegativeDays = errors.New("calendar: negative business day count")

// IsBusinessDay devuelve true si la fecha cae de lunes a viernes.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Midnight normaliza una fecha a medianoche UTC. Todas las comparaciones
// de fechas del forecast operan sobre fechas normalizadas.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddBusinessDays avanza start exactamente n días hábiles, saltando fines
// de semana. n = 0 devuelve start sin cambios, incluso si start cae en fin
// de semana — los callers que necesitan un día hábil usan NextBusinessDay.
func AddBusinessDays(start time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, fmt.Errorf("calendar.AddBusinessDays: n=%d: %w", n, ErrNegativeDays)
	}
	d := start
	for remaining := n; remaining > 0; {
		d = d.AddDate(0, 0, 1)
		if IsBusinessDay(d) {
			remaining--
		}
	}
	return d, nil
}

// NextBusinessDay devuelve el primer día hábil estrictamente posterior a from.
func NextBusinessDay(from time.Time) time.Time {
	d := from.AddDate(0, 0, 1)
	for !IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// NextBusinessDays devuelve los próximos count días hábiles estrictamente
// posteriores a from, en orden ascendente.
func NextBusinessDays(from time.Time, count int) ([]time.Time, error) {
	if count < 0 {
		return nil, fmt.Errorf("calendar.NextBusinessDays: count=%d: %w", count, ErrNegativeDays)
	}
	days := make([]time.Time, 0, count)
	d := from
	for len(days) < count {
		d = NextBusinessDay(d)
		days = append(days, d)
	}
	return days, nil
}
