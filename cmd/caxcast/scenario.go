package main

// scenario.go — modo what-if: "¿y si entran N deals nuevos en la etapa X?".

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"caxcast/internal/domain"
	"caxcast/internal/forecast"
	"caxcast/internal/ports"
)

// runScenario parsea el spec del flag, evalúa el escenario contra la misma
// configuración del forecast base y lo imprime.
func runScenario(
	ctx context.Context,
	spec string,
	engineCfg forecast.Config,
	unitValue float64,
	today time.Time,
	renderer ports.Renderer,
) {
	input, err := parseScenarioSpec(spec, today)
	if err != nil {
		slog.Error("invalid scenario spec", "spec", spec, "err", err)
		os.Exit(1)
	}

	evaluator := forecast.NewEvaluator(engineCfg, unitValue)
	projections, summary, err := evaluator.Evaluate(ctx, today, []domain.ScenarioInput{input})
	if err != nil {
		slog.Error("scenario evaluation failed", "err", err)
		os.Exit(1)
	}

	if err := renderer.RenderScenario(ctx, projections, summary, engineCfg.Forecast.Funnel); err != nil {
		slog.Error("render failed", "err", err)
		os.Exit(1)
	}
}

// parseScenarioSpec interpreta QTY@STAGE o QTY@STAGE:YYYY-MM-DD.
// Ejemplos: "10@SAL", "5@OPP:2026-09-15".
func parseScenarioSpec(spec string, today time.Time) (domain.ScenarioInput, error) {
	qtyPart, rest, found := strings.Cut(spec, "@")
	if !found {
		return domain.ScenarioInput{}, fmt.Errorf("expected QTY@STAGE, got %q", spec)
	}

	qty, err := strconv.ParseFloat(qtyPart, 64)
	if err != nil {
		return domain.ScenarioInput{}, fmt.Errorf("quantity %q: %w", qtyPart, err)
	}

	stage := rest
	start := today
	if stagePart, datePart, hasDate := strings.Cut(rest, ":"); hasDate {
		stage = stagePart
		start, err = time.Parse("2006-01-02", datePart)
		if err != nil {
			return domain.ScenarioInput{}, fmt.Errorf("start date %q: %w", datePart, err)
		}
	}

	return domain.ScenarioInput{
		Label:     fmt.Sprintf("+%.0f deals en %s", qty, stage),
		Stage:     strings.ToUpper(strings.TrimSpace(stage)),
		Quantity:  qty,
		StartDate: start,
	}, nil
}
