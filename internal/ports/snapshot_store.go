package ports

import (
	"context"
	"time"

	"caxcast/internal/domain"
)

// SnapshotStore cachea el último snapshot bueno de deals, para que la
// herramienta funcione offline cuando el export no responde. Las
// proyecciones del forecast nunca se persisten.
type SnapshotStore interface {
	// SaveSnapshot guarda un snapshot completo con su hora de fetch.
	SaveSnapshot(ctx context.Context, deals []domain.Deal, fetchedAt time.Time) error

	// LatestSnapshot devuelve el snapshot más reciente y su hora de fetch.
	LatestSnapshot(ctx context.Context) ([]domain.Deal, time.Time, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
