package forecast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caxcast/internal/domain"
	"caxcast/internal/forecast"
)

// Todas las corridas usan el lunes 2024-01-01 como "hoy": el horizonte
// arranca el martes 2 y el día 15 cae el lunes 22.
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func jan(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

// testConfig arma un funnel corto SAL → SQL → ONBOARDED.
func testConfig(salRate float64, salLead int) forecast.Config {
	return forecast.Config{
		Forecast: domain.ForecastConfig{
			Funnel: []string{"SAL", "SQL", "ONBOARDED"},
			Stages: map[string]domain.StageConfig{
				"SAL": {ConversionRate: salRate, LeadTimeDays: salLead},
				"SQL": {ConversionRate: 0.5, LeadTimeDays: 5},
			},
		},
		HorizonDays: 15,
	}
}

func TestEngine_Forecast_LeadZeroAdvancesImmediately(t *testing.T) {
	cfg := testConfig(1.0, 0)
	cfg.Forecast.Stages["SQL"] = domain.StageConfig{ConversionRate: 1.0, LeadTimeDays: 5}

	snapshot := []domain.Deal{{ID: "d1", Stage: "SAL", EntryDate: monday}}
	days, err := forecast.New(cfg).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)
	require.Len(t, days, 15)

	// Lead 0 y tasa 1.0: el deal aparece en SQL desde el día 1 del horizonte.
	assert.Equal(t, 0.0, days[0].Counts["SAL"])
	assert.Equal(t, 1.0, days[0].Counts["SQL"])
	assert.Equal(t, 0.0, days[0].Counts["ONBOARDED"])

	// Tras los 5 días hábiles de SQL (hasta el lunes 8), convierte el martes 9.
	assert.Equal(t, 1.0, days[4].Counts["SQL"])       // lunes 8
	assert.Equal(t, 1.0, days[5].Counts["ONBOARDED"]) // martes 9
}

func TestEngine_Forecast_SingleStageRate(t *testing.T) {
	cfg := testConfig(0.5, 2)
	snapshot := []domain.Deal{{ID: "d1", Stage: "SAL", EntryDate: monday}}

	days, err := forecast.New(cfg).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)

	// Días 1 y 2: el deal sigue entero en SAL cumpliendo su lead time.
	assert.Equal(t, 1.0, days[0].Counts["SAL"])
	assert.Equal(t, 1.0, days[1].Counts["SAL"])
	assert.Equal(t, 0.0, days[1].Counts["SQL"])

	// Día 3 (2 hábiles cumplidos): aporta 0.5 a SQL y nada más abajo.
	assert.Equal(t, 0.0, days[2].Counts["SAL"])
	assert.InDelta(t, 0.5, days[2].Counts["SQL"], 1e-9)
	assert.Equal(t, 0.0, days[2].Counts["ONBOARDED"])

	// Cumplidos los 5 hábiles de SQL (miércoles 10), convierte el jueves 11
	// con la tasa encadenada 0.5 × 0.5.
	assert.InDelta(t, 0.5, days[6].Counts["SQL"], 1e-9) // miércoles 10
	assert.InDelta(t, 0.25, days[7].Counts["ONBOARDED"], 1e-9)
	assert.Equal(t, 0.0, days[7].Counts["SQL"])
}

func TestEngine_Forecast_EmptySnapshot(t *testing.T) {
	days, err := forecast.New(testConfig(0.5, 2)).Forecast(context.Background(), monday, nil)
	require.NoError(t, err)
	require.Len(t, days, 15)

	assert.Equal(t, jan(2), days[0].Date)
	assert.Equal(t, jan(22), days[14].Date)
	for _, day := range days {
		for stage, count := range day.Counts {
			assert.Equal(t, 0.0, count, "stage %s en %s", stage, day.Date)
		}
	}
}

func TestEngine_Forecast_CertainConversionConservesMass(t *testing.T) {
	cfg := testConfig(1.0, 3)
	cfg.Forecast.Stages["SQL"] = domain.StageConfig{ConversionRate: 1.0, LeadTimeDays: 5}

	snapshot := []domain.Deal{
		{ID: "d1", Stage: "SAL", EntryDate: monday},
		{ID: "d2", Stage: "SQL", EntryDate: jan(1).AddDate(0, -1, 0)}, // entrada vieja
		{ID: "d3", Stage: "ONBOARDED"},
	}

	days, err := forecast.New(cfg).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)

	// Con conversión cierta no se pierde masa: la suma de todas las
	// etapas es el tamaño del snapshot todos los días.
	for _, day := range days {
		assert.InDelta(t, float64(len(snapshot)), day.Total(), 1e-9, "día %s", day.Date)
	}
}

func TestEngine_Forecast_LowerRateNeverIncreasesTerminal(t *testing.T) {
	snapshot := []domain.Deal{
		{ID: "d1", Stage: "SAL", EntryDate: monday},
		{ID: "d2", Stage: "SAL", EntryDate: monday},
	}

	high, err := forecast.New(testConfig(0.8, 1)).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)
	low, err := forecast.New(testConfig(0.4, 1)).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)

	for i := range high {
		assert.GreaterOrEqual(t,
			high[i].Counts["ONBOARDED"], low[i].Counts["ONBOARDED"],
			"día %s", high[i].Date,
		)
	}
}

func TestEngine_Forecast_IsPureAndIdempotent(t *testing.T) {
	cfg := testConfig(0.5, 2)
	snapshot := []domain.Deal{
		{ID: "d1", Stage: "SAL", EntryDate: monday},
		{ID: "d2", Stage: "SQL", EntryDate: jan(1)},
	}

	e := forecast.New(cfg)
	first, err := e.Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)
	second, err := e.Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_Forecast_UnknownStageIsExcluded(t *testing.T) {
	snapshot := []domain.Deal{
		{ID: "d1", Stage: "LEAD_FRIO", EntryDate: monday}, // fuera del funnel
		{ID: "d2", Stage: "SAL", EntryDate: monday},
	}

	days, err := forecast.New(testConfig(0.5, 2)).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)

	// El deal con etapa desconocida no es un error, solo no cuenta.
	assert.InDelta(t, 1.0, days[0].Total(), 1e-9)
}

func TestEngine_Forecast_PredictedCloseWinsOverLeadTime(t *testing.T) {
	cfg := testConfig(0.5, 2)
	// SQL es la etapa de agendamiento del funnel corto; un lead absurdo
	// demuestra que la fecha explícita manda.
	cfg.Forecast.Stages["SQL"] = domain.StageConfig{ConversionRate: 0.9, LeadTimeDays: 50}

	snapshot := []domain.Deal{{
		ID:             "d1",
		Stage:          "SQL",
		EntryDate:      jan(1).AddDate(0, 0, -10),
		PredictedClose: jan(10), // miércoles
	}}

	days, err := forecast.New(cfg).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)

	assert.Equal(t, 1.0, days[5].Counts["SQL"]) // martes 9
	assert.InDelta(t, 0.9, days[6].Counts["ONBOARDED"], 1e-9)
	assert.Equal(t, 0.0, days[6].Counts["SQL"])
}

func TestEngine_Forecast_PredictedCloseOnWeekendRollsForward(t *testing.T) {
	cfg := testConfig(0.5, 2)
	snapshot := []domain.Deal{{
		ID:             "d1",
		Stage:          "SQL",
		PredictedClose: jan(13), // sábado → lunes 15
	}}

	days, err := forecast.New(cfg).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)

	assert.Equal(t, 0.0, days[8].Counts["ONBOARDED"]) // viernes 12
	assert.InDelta(t, 0.5, days[9].Counts["ONBOARDED"], 1e-9)
}

func TestEngine_Forecast_PredictedCloseInPastConvertsFromDayOne(t *testing.T) {
	cfg := testConfig(0.5, 2)
	snapshot := []domain.Deal{{
		ID:             "d1",
		Stage:          "SQL",
		PredictedClose: time.Date(2023, 12, 28, 0, 0, 0, 0, time.UTC),
	}}

	days, err := forecast.New(cfg).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, days[0].Counts["ONBOARDED"], 1e-9)
}

func TestEngine_Forecast_MissingStageConfigUsesDefaults(t *testing.T) {
	cfg := forecast.Config{
		Forecast: domain.ForecastConfig{
			Funnel: []string{"SAL", "SQL", "ONBOARDED"},
			Stages: map[string]domain.StageConfig{
				"SAL": {ConversionRate: 1.0, LeadTimeDays: 0},
				// SQL sin configurar → default 0.5 / 2 días hábiles
			},
		},
		HorizonDays: 15,
	}
	snapshot := []domain.Deal{{ID: "d1", Stage: "SAL", EntryDate: monday}}

	days, err := forecast.New(cfg).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)

	assert.Equal(t, 1.0, days[0].Counts["SQL"])
	assert.Equal(t, 1.0, days[1].Counts["SQL"])
	assert.InDelta(t, 0.5, days[2].Counts["ONBOARDED"], 1e-9)
}

func TestEngine_Forecast_FutureEntryContributesNothingBefore(t *testing.T) {
	cfg := testConfig(1.0, 0)
	cfg.Forecast.Stages["SQL"] = domain.StageConfig{ConversionRate: 1.0, LeadTimeDays: 0}

	snapshot := []domain.Deal{{ID: "d1", Stage: "SAL", EntryDate: jan(10)}}
	days, err := forecast.New(cfg).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)

	assert.Equal(t, 0.0, days[5].Total())             // martes 9: todavía no existe
	assert.Equal(t, 1.0, days[6].Counts["SAL"])       // miércoles 10: entra
	assert.Equal(t, 1.0, days[7].Counts["ONBOARDED"]) // jueves 11: leads cero
}

func TestEngine_Forecast_TerminalDealStaysTerminal(t *testing.T) {
	snapshot := []domain.Deal{{ID: "d1", Stage: "ONBOARDED", EntryDate: jan(1).AddDate(0, 0, -30)}}

	days, err := forecast.New(testConfig(0.5, 2)).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)

	for _, day := range days {
		assert.Equal(t, 1.0, day.Counts["ONBOARDED"], "día %s", day.Date)
	}
}

func TestEngine_Forecast_InvalidHorizon(t *testing.T) {
	cfg := testConfig(0.5, 2)
	cfg.HorizonDays = 0

	_, err := forecast.New(cfg).Forecast(context.Background(), monday, nil)
	assert.ErrorIs(t, err, forecast.ErrInvalidHorizon)

	cfg.HorizonDays = -3
	_, err = forecast.New(cfg).Forecast(context.Background(), monday, nil)
	assert.ErrorIs(t, err, forecast.ErrInvalidHorizon)
}

func TestEngine_Forecast_InvalidStageConfig(t *testing.T) {
	cfg := testConfig(1.5, 2) // tasa fuera de [0,1]
	_, err := forecast.New(cfg).Forecast(context.Background(), monday, nil)
	assert.ErrorIs(t, err, forecast.ErrInvalidConfig)

	cfg = testConfig(0.5, -2) // lead negativo
	_, err = forecast.New(cfg).Forecast(context.Background(), monday, nil)
	assert.ErrorIs(t, err, forecast.ErrInvalidConfig)
}

func TestEngine_Forecast_ManyDealsWithWorkers(t *testing.T) {
	cfg := testConfig(1.0, 2)
	cfg.Forecast.Stages["SQL"] = domain.StageConfig{ConversionRate: 1.0, LeadTimeDays: 5}
	cfg.Workers = 4

	snapshot := make([]domain.Deal, 100)
	for i := range snapshot {
		snapshot[i] = domain.Deal{ID: string(rune('a' + i%26)), Stage: "SAL", EntryDate: monday}
	}

	days, err := forecast.New(cfg).Forecast(context.Background(), monday, snapshot)
	require.NoError(t, err)

	// La agregación concurrente no pierde ni duplica deals.
	for _, day := range days {
		assert.InDelta(t, 100.0, day.Total(), 1e-9, "día %s", day.Date)
	}
}
