package forecast

// scenario.go — evaluador de escenarios "what-if".
//
// Materializa los deals hipotéticos como deals sintéticos y los corre por
// el mismo algoritmo de proyección que el forecast base, escalados por
// cantidad. Como la agregación es lineal, la proyección del escenario
// solo (sin el snapshot real) ES el delta contra el baseline calculado
// con la misma configuración — el caller puede sumarlas o restarlas
// directamente.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"caxcast/internal/calendar"
	"caxcast/internal/domain"
)

// ErrInvalidScenario indica un escenario con cantidad no positiva o
// etapa fuera del funnel. A diferencia de un deal real con etapa rara
// (que se excluye en silencio), un escenario mal formado es un error del
// caller y falla rápido.
var ErrInvalidScenario = errors.New("forecast: invalid scenario")

// Evaluator evalúa escenarios hipotéticos sin tocar el snapshot real.
type Evaluator struct {
	engine    *Engine
	unitValue float64
}

// NewEvaluator crea un Evaluator. unitValue es el valor lineal estimado
// de una conversión (configuración externa, no política del motor).
func NewEvaluator(cfg Config, unitValue float64) *Evaluator {
	return &Evaluator{engine: New(cfg), unitValue: unitValue}
}

// Evaluate proyecta los escenarios y devuelve una serie de proyecciones
// con la misma forma que el forecast base, más los escalares de resumen.
func (ev *Evaluator) Evaluate(
	ctx context.Context,
	today time.Time,
	scenarios []domain.ScenarioInput,
) ([]domain.DailyProjection, domain.ScenarioSummary, error) {
	today = calendar.Midnight(today)

	weighted := make([]weightedDeal, 0, len(scenarios))
	for i, s := range scenarios {
		if s.Quantity <= 0 {
			return nil, domain.ScenarioSummary{},
				fmt.Errorf("forecast.Evaluate: scenario %d: quantity %.1f: %w", i, s.Quantity, ErrInvalidScenario)
		}
		if _, ok := ev.engine.cfg.Forecast.StageIndex(s.Stage); !ok {
			return nil, domain.ScenarioSummary{},
				fmt.Errorf("forecast.Evaluate: scenario %d: stage %q not in funnel: %w", i, s.Stage, ErrInvalidScenario)
		}

		start := s.StartDate
		if start.IsZero() {
			start = today
		}
		label := s.Label
		if label == "" {
			label = fmt.Sprintf("escenario %d", i+1)
		}
		weighted = append(weighted, weightedDeal{
			deal: domain.Deal{
				ID:        uuid.New().String(),
				Name:      label,
				Stage:     s.Stage,
				Owner:     s.Owner,
				EntryDate: start,
			},
			weight: s.Quantity,
		})
	}

	projections, err := ev.engine.forecastWeighted(ctx, today, weighted)
	if err != nil {
		return nil, domain.ScenarioSummary{}, err
	}
	return projections, ev.summarize(projections), nil
}

// summarize deriva los escalares del escenario de la serie terminal.
// DaysToFirstConversion es el índice del primer día con conversión no
// nula: 0 significa que la primera conversión cae el primer día hábil
// del horizonte (lead times cero); -1 que no hay ninguna en el horizonte.
func (ev *Evaluator) summarize(projections []domain.DailyProjection) domain.ScenarioSummary {
	series := domain.TerminalSeries(projections, ev.engine.cfg.Forecast.Terminal())

	summary := domain.ScenarioSummary{DaysToFirstConversion: -1}
	if len(series) == 0 {
		return summary
	}

	// La serie terminal es acumulativa: el último día es el total.
	summary.AdditionalConversions = series[len(series)-1]
	summary.EstimatedRevenue = summary.AdditionalConversions * ev.unitValue
	for i, v := range series {
		if v > 0 {
			summary.DaysToFirstConversion = i
			break
		}
	}
	return summary
}
