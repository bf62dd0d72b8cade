package ports

import (
	"context"

	"caxcast/internal/domain"
)

// Renderer presenta los resultados del forecast al usuario.
type Renderer interface {
	// RenderForecast muestra la proyección diaria por etapa.
	// En la implementación de consola, imprime una tabla formateada.
	RenderForecast(ctx context.Context, snapshot []domain.Deal, days []domain.DailyProjection, funnel []string) error

	// RenderScenario muestra la proyección de un escenario y su resumen.
	RenderScenario(ctx context.Context, days []domain.DailyProjection, summary domain.ScenarioSummary, funnel []string) error
}
