package domain

import "time"

// ScenarioInput describe deals hipotéticos que NO existen en el snapshot:
// "¿qué pasa si entran N deals nuevos en la etapa X el día D?".
type ScenarioInput struct {
	Label    string
	Owner    string
	Stage    string
	Quantity float64
	// StartDate es la fecha de entrada de los deals hipotéticos.
	// Zero value → hoy.
	StartDate time.Time
}

// ScenarioSummary son los escalares de resumen de un escenario evaluado.
type ScenarioSummary struct {
	// AdditionalConversions es el total esperado de conversiones a la
	// etapa terminal dentro del horizonte, atribuible solo al escenario.
	AdditionalConversions float64
	// DaysToFirstConversion son los días hábiles hasta la primera
	// conversión terminal no nula. -1 si no hay ninguna en el horizonte.
	DaysToFirstConversion int
	// EstimatedRevenue es la estimación lineal: conversiones × valor unitario.
	EstimatedRevenue float64
}
