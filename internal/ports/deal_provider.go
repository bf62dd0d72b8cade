package ports

import (
	"context"

	"caxcast/internal/domain"
)

// DealProvider obtiene el snapshot de deals abiertos del pipeline.
type DealProvider interface {
	// FetchDeals devuelve todos los deals del export, ya parseados.
	// Filas malformadas se descartan con log, no son un error.
	FetchDeals(ctx context.Context) ([]domain.Deal, error)
}
