package forecast

// engine.go — motor de forecast del pipeline.
//
// Proyecta cada deal de forma independiente caminando el funnel hacia
// adelante: en cada etapa el deal pasa exactamente su lead time (días
// hábiles) antes de avanzar, y la probabilidad acumulada de haber llegado
// a una etapa es el producto de las tasas de conversión de las etapas ya
// cruzadas. La masa que no convierte simplemente desaparece de la
// proyección — no se modela un bucket de abandono.
//
// Semántica de ocupación: cada día hábil del horizonte el deal aporta su
// probabilidad acumulada a exactamente una etapa. La ocupación terminal es
// pegajosa: un deal convertido sigue contando como onboarded todos los
// días posteriores, así la serie terminal es acumulativa.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"caxcast/internal/calendar"
	"caxcast/internal/domain"
)

var (
	// ErrInvalidHorizon indica un horizonte de forecast no positivo.
	ErrInvalidHorizon = errors.New("forecast: invalid horizon")
	// ErrInvalidConfig indica tasas fuera de [0,1] o lead times negativos.
	ErrInvalidConfig = errors.New("forecast: invalid stage config")
)

// Config contiene la configuración del motor para una corrida.
type Config struct {
	// Forecast es el funnel ordenado y la configuración por etapa.
	Forecast domain.ForecastConfig
	// HorizonDays es la cantidad de días hábiles a proyectar.
	HorizonDays int
	// Workers del pool de proyección por deal; <= 0 usa NumCPU.
	Workers int
}

// DefaultConfig devuelve una configuración razonable para el pipeline CAX.
func DefaultConfig() Config {
	return Config{
		Forecast: domain.ForecastConfig{
			Funnel: domain.DefaultFunnel(),
			Stages: map[string]domain.StageConfig{
				"SAL":       {ConversionRate: 0.45, LeadTimeDays: 3},
				"SQL":       {ConversionRate: 0.55, LeadTimeDays: 4},
				"OPP":       {ConversionRate: 0.65, LeadTimeDays: 5},
				"BC":        {ConversionRate: 0.75, LeadTimeDays: 4},
				"ONB_AGEND": {ConversionRate: 0.90, LeadTimeDays: 2},
			},
		},
		HorizonDays: 15,
	}
}

// Engine calcula proyecciones diarias de ocupación por etapa.
// Es puro y sin estado: dos corridas con el mismo snapshot, configuración
// y "hoy" producen exactamente el mismo resultado.
type Engine struct {
	cfg Config
}

// New crea un Engine con la configuración dada.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Forecast proyecta el snapshot sobre los próximos HorizonDays días hábiles.
// Devuelve una proyección por día en orden ascendente de fecha. Un snapshot
// vacío produce proyecciones en cero, no un error.
func (e *Engine) Forecast(ctx context.Context, today time.Time, snapshot []domain.Deal) ([]domain.DailyProjection, error) {
	weighted := make([]weightedDeal, len(snapshot))
	for i, d := range snapshot {
		weighted[i] = weightedDeal{deal: d, weight: 1}
	}
	return e.forecastWeighted(ctx, today, weighted)
}

// weightedDeal es un deal con su cantidad: 1 para deals reales del
// snapshot, la cantidad del escenario para deals sintéticos.
type weightedDeal struct {
	deal   domain.Deal
	weight float64
}

func (e *Engine) forecastWeighted(ctx context.Context, today time.Time, deals []weightedDeal) ([]domain.DailyProjection, error) {
	if e.cfg.HorizonDays <= 0 {
		return nil, fmt.Errorf("forecast.Forecast: horizon=%d: %w", e.cfg.HorizonDays, ErrInvalidHorizon)
	}
	if err := validateConfig(e.cfg.Forecast); err != nil {
		return nil, err
	}

	today = calendar.Midnight(today)
	days, err := calendar.NextBusinessDays(today, e.cfg.HorizonDays)
	if err != nil {
		return nil, fmt.Errorf("forecast.Forecast: %w", err)
	}

	projections := make([]domain.DailyProjection, len(days))
	for i, day := range days {
		projections[i] = domain.NewDailyProjection(day, e.cfg.Forecast.Funnel)
	}

	// La agregación es una suma conmutativa, el orden entre deals no importa.
	for _, contribution := range projectDealsConcurrent(ctx, e, today, days, deals, e.cfg.Workers) {
		for i, sq := range contribution {
			if sq.stage == "" {
				continue
			}
			projections[i].Counts[sq.stage] += sq.qty
		}
	}
	return projections, nil
}

// stageQty es el aporte de un deal a un día del horizonte.
type stageQty struct {
	stage string
	qty   float64
}

// projectDeal calcula el aporte del deal a cada día del horizonte.
// Devuelve nil si el deal queda fuera del forecast (etapa desconocida).
func (e *Engine) projectDeal(wd weightedDeal, today time.Time, days []time.Time) []stageQty {
	segs, ok := e.walkDeal(wd.deal, today)
	if !ok {
		slog.Debug("deal stage outside configured funnel, excluded",
			"deal_id", wd.deal.ID,
			"stage", wd.deal.Stage,
		)
		return nil
	}

	out := make([]stageQty, len(days))
	cur := 0
	for i, day := range days {
		for cur+1 < len(segs) && !day.Before(segs[cur+1].first) {
			cur++
		}
		if day.Before(segs[cur].first) {
			// Entrada futura: el deal todavía no existe este día.
			continue
		}
		out[i] = stageQty{stage: segs[cur].stage, qty: segs[cur].prob * wd.weight}
	}
	return out
}

// segment es un tramo de la trayectoria de un deal: a partir de first
// (inclusive) ocupa stage con probabilidad acumulada prob, hasta que el
// siguiente segmento lo releve.
type segment struct {
	stage string
	first time.Time
	prob  float64
}

// walkDeal construye la trayectoria del deal a través del funnel.
//
// El ancla es max(entrada, hoy): un deal nunca se proyecta como si ya
// hubiera convertido antes de correr el cálculo. Desde el ancla, cada
// etapa retiene al deal LeadTimeDays días hábiles completos; la etapa
// siguiente se ocupa a partir del día hábil posterior.
func (e *Engine) walkDeal(d domain.Deal, today time.Time) ([]segment, bool) {
	fc := e.cfg.Forecast
	idx, ok := fc.StageIndex(d.Stage)
	if !ok {
		return nil, false
	}

	anchor := anchorDate(d, today)
	terminalIdx := len(fc.Funnel) - 1
	segs := []segment{{stage: d.Stage, first: anchor, prob: 1}}

	// Deals ya onboarded ocupan el bucket terminal todo el horizonte.
	if idx == terminalIdx {
		return segs, true
	}

	// Fecha de onboarding explícita: gana siempre sobre la fecha derivada
	// de lead times, para deals que ya están en la etapa de agendamiento.
	// Una fecha pasada o en fin de semana se corre al siguiente día hábil.
	if idx == terminalIdx-1 && d.HasPredictedClose() {
		first := calendar.Midnight(d.PredictedClose)
		if !calendar.IsBusinessDay(first) {
			first = calendar.NextBusinessDay(first)
		}
		if first.Before(anchor) {
			first = anchor
		}
		segs = append(segs, segment{
			stage: fc.Terminal(),
			first: first,
			prob:  fc.ConfigFor(d.Stage).ConversionRate,
		})
		return segs, true
	}

	b := anchor
	prob := 1.0
	for i := idx; i < terminalIdx; i++ {
		sc := fc.ConfigFor(fc.Funnel[i])
		nb, err := calendar.AddBusinessDays(b, sc.LeadTimeDays)
		if err != nil {
			return nil, false // leads ya validados, no alcanzable
		}
		prob *= sc.ConversionRate
		segs = append(segs, segment{
			stage: fc.Funnel[i+1],
			first: calendar.NextBusinessDay(nb),
			prob:  prob,
		})
		b = nb
	}
	return segs, true
}

// anchorDate devuelve max(entrada, hoy), normalizada a medianoche.
func anchorDate(d domain.Deal, today time.Time) time.Time {
	if d.EntryDate.IsZero() {
		return today
	}
	entry := calendar.Midnight(d.EntryDate)
	if entry.Before(today) {
		return today
	}
	return entry
}

// validateConfig rechaza tasas fuera de [0,1] y lead times negativos.
// La ausencia de configuración para una etapa NO es un error: se cubre
// con los defaults documentados en domain.
func validateConfig(fc domain.ForecastConfig) error {
	for stage, sc := range fc.Stages {
		if sc.ConversionRate < 0 || sc.ConversionRate > 1 {
			return fmt.Errorf("forecast: stage %q: conversion rate %.3f outside [0,1]: %w",
				stage, sc.ConversionRate, ErrInvalidConfig)
		}
		if sc.LeadTimeDays < 0 {
			return fmt.Errorf("forecast: stage %q: negative lead time %d: %w",
				stage, sc.LeadTimeDays, ErrInvalidConfig)
		}
	}
	return nil
}
