package domain

import "time"

// DailyProjection es el conteo esperado de deals por etapa para un día
// hábil futuro. Los valores son reales: un deal con probabilidad 0.5 de
// haber avanzado aporta 0.5 a la etapa destino. El redondeo a un decimal
// es responsabilidad de la capa de presentación, nunca del cálculo.
type DailyProjection struct {
	Date   time.Time
	Counts map[string]float64 // etapa → deals esperados
}

// NewDailyProjection crea una proyección con todas las etapas en cero.
func NewDailyProjection(date time.Time, funnel []string) DailyProjection {
	counts := make(map[string]float64, len(funnel))
	for _, s := range funnel {
		counts[s] = 0
	}
	return DailyProjection{Date: date, Counts: counts}
}

// Total devuelve la suma de deals esperados en todas las etapas del día.
func (p DailyProjection) Total() float64 {
	var total float64
	for _, v := range p.Counts {
		total += v
	}
	return total
}

// TerminalSeries extrae la serie de conteo terminal de una proyección.
// Como la ocupación terminal es acumulativa, el último valor es el total
// de conversiones esperadas dentro del horizonte.
func TerminalSeries(days []DailyProjection, terminal string) []float64 {
	series := make([]float64, len(days))
	for i, d := range days {
		series[i] = d.Counts[terminal]
	}
	return series
}
