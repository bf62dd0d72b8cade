package domain

import "time"

// Deal representa una oportunidad de venta abierta en el pipeline.
type Deal struct {
	ID    string
	Name  string
	Stage string // etapa actual del funnel (SAL, SQL, ...)
	Owner string // BDR responsable, puede estar vacío

	// EntryDate es la fecha en que el deal entró a su etapa actual.
	// Zero value → se proyecta desde hoy.
	EntryDate time.Time

	// PredictedClose es la fecha explícita de onboarding prevista.
	// Solo tiene sentido para deals en la etapa de agendamiento; cuando
	// está presente, gana sobre la fecha derivada de lead times.
	PredictedClose time.Time
}

// HasPredictedClose devuelve true si el deal tiene fecha de onboarding explícita.
func (d Deal) HasPredictedClose() bool {
	return !d.PredictedClose.IsZero()
}

// OwnerLabel devuelve el BDR responsable o un placeholder si no hay.
func (d Deal) OwnerLabel() string {
	if d.Owner == "" {
		return "-"
	}
	return d.Owner
}

// TruncateName devuelve el nombre del deal truncado a maxLen caracteres.
// Si el nombre está vacío usa el ID como fallback.
func (d Deal) TruncateName(maxLen int) string {
	n := d.Name
	if n == "" {
		n = d.ID
	}
	if len(n) > maxLen {
		n = n[:maxLen-3] + "..."
	}
	return n
}
