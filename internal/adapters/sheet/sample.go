package sheet

// sample.go — snapshot de demostración cuando no hay planilla a mano.
//
// Mismo rol que los datos hardcodeados del dashboard original: probar la
// herramienta sin credenciales ni red. El contenido es determinístico
// salvo los IDs (uuid) y las fechas, relativas a hoy.

import (
	"context"
	"time"

	"github.com/google/uuid"

	"caxcast/internal/domain"
)

// Sample genera un snapshot sintético, implementa ports.DealProvider.
type Sample struct{}

// NewSample crea el provider de datos de demostración.
func NewSample() *Sample {
	return &Sample{}
}

// FetchDeals devuelve un pipeline chico repartido en todas las etapas.
func (s *Sample) FetchDeals(_ context.Context) ([]domain.Deal, error) {
	today := time.Now()
	daysAgo := func(n int) time.Time { return today.AddDate(0, 0, -n) }

	rows := []struct {
		name     string
		stage    string
		owner    string
		entered  time.Time
		closesAt time.Time
	}{
		{"Deal Alpha", "SAL", "João Silva", daysAgo(2), time.Time{}},
		{"Deal Beta", "SAL", "Maria Santos", daysAgo(5), time.Time{}},
		{"Deal Gamma", "SQL", "Maria Santos", daysAgo(3), time.Time{}},
		{"Deal Delta", "SQL", "Pedro Costa", daysAgo(8), time.Time{}},
		{"Deal Echo", "OPP", "Pedro Costa", daysAgo(4), time.Time{}},
		{"Deal Foxtrot", "OPP", "Ana Lima", daysAgo(12), time.Time{}},
		{"Deal Golf", "BC", "Ana Lima", daysAgo(6), time.Time{}},
		{"Deal Hotel", "ONB_AGEND", "Carlos Rocha", daysAgo(1), today.AddDate(0, 0, 7)},
		{"Deal India", "ONB_AGEND", "Carlos Rocha", daysAgo(10), time.Time{}},
		{"Deal Juliet", "ONBOARDED", "João Silva", daysAgo(15), time.Time{}},
	}

	deals := make([]domain.Deal, 0, len(rows))
	for _, r := range rows {
		deals = append(deals, domain.Deal{
			ID:             uuid.New().String(),
			Name:           r.name,
			Stage:          r.stage,
			Owner:          r.owner,
			EntryDate:      r.entered,
			PredictedClose: r.closesAt,
		})
	}
	return deals, nil
}
