package domain

// funnel.go — funnel ordenado y configuración de forecast por etapa.
//
// El funnel es una secuencia lineal: un deal solo avanza hacia adelante,
// nunca retrocede, y ocupa exactamente una etapa a la vez. La última
// etapa es terminal (onboarded) y no tiene configuración propia.

const (
	// Defaults cuando una etapa del funnel no tiene entrada en Stages.
	// Herramienta de forecast operativo, no un ledger: degradar con un
	// default razonable es preferible a fallar.
	DefaultConversionRate = 0.5
	DefaultLeadTimeDays   = 2
)

// DefaultFunnel devuelve las etapas del pipeline CAX en orden.
func DefaultFunnel() []string {
	return []string{"SAL", "SQL", "OPP", "BC", "ONB_AGEND", "ONBOARDED"}
}

// StageConfig es la configuración de una etapa no terminal.
type StageConfig struct {
	// ConversionRate es la probabilidad [0,1] de avanzar a la siguiente etapa.
	ConversionRate float64
	// LeadTimeDays son los días hábiles que un deal pasa en la etapa antes
	// de ser elegible para avanzar.
	LeadTimeDays int
}

// ForecastConfig es la configuración inmutable de una corrida de forecast.
type ForecastConfig struct {
	// Funnel es la secuencia ordenada de etapas; la última es terminal.
	Funnel []string
	// Stages mapea cada etapa no terminal a su configuración.
	Stages map[string]StageConfig
}

// Terminal devuelve la etapa terminal del funnel, o "" si el funnel está vacío.
func (fc ForecastConfig) Terminal() string {
	if len(fc.Funnel) == 0 {
		return ""
	}
	return fc.Funnel[len(fc.Funnel)-1]
}

// Penultimate devuelve la etapa de agendamiento (anterior a la terminal),
// o "" si el funnel tiene menos de dos etapas.
func (fc ForecastConfig) Penultimate() string {
	if len(fc.Funnel) < 2 {
		return ""
	}
	return fc.Funnel[len(fc.Funnel)-2]
}

// StageIndex devuelve la posición de la etapa en el funnel.
func (fc ForecastConfig) StageIndex(stage string) (int, bool) {
	for i, s := range fc.Funnel {
		if s == stage {
			return i, true
		}
	}
	return 0, false
}

// ConfigFor devuelve la configuración de la etapa, o los defaults
// documentados si la etapa no tiene entrada.
func (fc ForecastConfig) ConfigFor(stage string) StageConfig {
	if sc, ok := fc.Stages[stage]; ok {
		return sc
	}
	return StageConfig{
		ConversionRate: DefaultConversionRate,
		LeadTimeDays:   DefaultLeadTimeDays,
	}
}
