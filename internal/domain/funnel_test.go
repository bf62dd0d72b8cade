package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"caxcast/internal/domain"
)

func TestForecastConfig_FunnelAccessors(t *testing.T) {
	fc := domain.ForecastConfig{Funnel: domain.DefaultFunnel()}

	assert.Equal(t, "ONBOARDED", fc.Terminal())
	assert.Equal(t, "ONB_AGEND", fc.Penultimate())

	idx, ok := fc.StageIndex("OPP")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = fc.StageIndex("LEAD_FRIO")
	assert.False(t, ok)
}

func TestForecastConfig_EmptyFunnel(t *testing.T) {
	fc := domain.ForecastConfig{}
	assert.Equal(t, "", fc.Terminal())
	assert.Equal(t, "", fc.Penultimate())
}

func TestForecastConfig_ConfigForFallsBackToDefaults(t *testing.T) {
	fc := domain.ForecastConfig{
		Funnel: []string{"SAL", "ONBOARDED"},
		Stages: map[string]domain.StageConfig{
			"SAL": {ConversionRate: 0.3, LeadTimeDays: 7},
		},
	}

	assert.Equal(t, 0.3, fc.ConfigFor("SAL").ConversionRate)

	missing := fc.ConfigFor("SQL")
	assert.Equal(t, domain.DefaultConversionRate, missing.ConversionRate)
	assert.Equal(t, domain.DefaultLeadTimeDays, missing.LeadTimeDays)
}

func TestDailyProjection_Total(t *testing.T) {
	p := domain.NewDailyProjection(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), domain.DefaultFunnel())
	p.Counts["SAL"] = 2.5
	p.Counts["ONBOARDED"] = 1.5
	assert.InDelta(t, 4.0, p.Total(), 1e-9)
}

func TestDeal_Helpers(t *testing.T) {
	d := domain.Deal{ID: "101", Stage: "SAL"}
	assert.False(t, d.HasPredictedClose())
	assert.Equal(t, "-", d.OwnerLabel())
	assert.Equal(t, "101", d.TruncateName(20))

	d.Name = "Deal con un nombre larguísimo de verdad"
	assert.Len(t, d.TruncateName(20), 20)
}
