package storage

// sqlite.go — cache local del último snapshot de deals.
//
// Estrategia:
//   - `snapshots`: una fila por fetch exitoso (hora + total de deals).
//   - `snapshot_deals`: las filas del snapshot, ligadas por snapshot_id.
//   - El forecast en sí NUNCA se persiste: solo se cachea el input, para
//     que la herramienta siga funcionando cuando el export no responde.
//   - Prune automático al arrancar: snapshots de más de 14 días.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"caxcast/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Una fila por fetch exitoso del export
CREATE TABLE IF NOT EXISTS snapshots (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    fetched_at DATETIME NOT NULL,
    total      INTEGER  NOT NULL DEFAULT 0
);

-- Los deals del snapshot, tal como vinieron del export
CREATE TABLE IF NOT EXISTS snapshot_deals (
    snapshot_id     INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
    deal_id         TEXT    NOT NULL,
    name            TEXT,
    stage           TEXT    NOT NULL,
    owner           TEXT,
    entry_date      DATETIME,
    predicted_close DATETIME
);

CREATE INDEX IF NOT EXISTS idx_snapshots_at   ON snapshots(fetched_at DESC);
CREATE INDEX IF NOT EXISTS idx_snapdeals_snap ON snapshot_deals(snapshot_id);
`

// Retención corta: el cache es un paracaídas para cortes puntuales del
// export, no un histórico.
const retentionSnapshots = 14 * 24 * time.Hour

// SQLiteStore implementa ports.SnapshotStore usando SQLite (pure Go, sin CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia snapshots viejos.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveSnapshot persiste un snapshot completo en una transacción.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, deals []domain.Deal, fetchedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (fetched_at, total) VALUES (?, ?)`,
		fetchedAt.UTC(), len(deals),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: insert snapshot: %w", err)
	}
	snapID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: last insert id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_deals
			(snapshot_id, deal_id, name, stage, owner, entry_date, predicted_close)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: prepare: %w", err)
	}
	defer stmt.Close()

	for _, d := range deals {
		if _, err := stmt.ExecContext(ctx,
			snapID, d.ID, d.Name, d.Stage, d.Owner,
			nullableDate(d.EntryDate), nullableDate(d.PredictedClose),
		); err != nil {
			return fmt.Errorf("storage.SaveSnapshot: insert deal %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSnapshot: commit: %w", err)
	}
	return nil
}

// LatestSnapshot devuelve el último snapshot guardado y su hora de fetch.
func (s *SQLiteStore) LatestSnapshot(ctx context.Context) ([]domain.Deal, time.Time, error) {
	var snapID int64
	var fetchedAtRaw string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, fetched_at FROM snapshots ORDER BY fetched_at DESC, id DESC LIMIT 1`,
	).Scan(&snapID, &fetchedAtRaw)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("storage.LatestSnapshot: query snapshot: %w", err)
	}
	fetchedAt, _ := time.Parse(time.RFC3339, fetchedAtRaw)

	rows, err := s.db.QueryContext(ctx, `
		SELECT deal_id, name, stage, owner, entry_date, predicted_close
		FROM snapshot_deals
		WHERE snapshot_id = ?
	`, snapID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("storage.LatestSnapshot: query deals: %w", err)
	}
	defer rows.Close()

	var deals []domain.Deal
	for rows.Next() {
		var d domain.Deal
		var name, owner, entry, predicted sql.NullString

		if err := rows.Scan(&d.ID, &name, &d.Stage, &owner, &entry, &predicted); err != nil {
			return nil, time.Time{}, fmt.Errorf("storage.LatestSnapshot: scan row: %w", err)
		}
		d.Name = name.String
		d.Owner = owner.String
		if entry.Valid {
			d.EntryDate, _ = time.Parse(time.RFC3339, entry.String)
		}
		if predicted.Valid {
			d.PredictedClose, _ = time.Parse(time.RFC3339, predicted.String)
		}
		deals = append(deals, d)
	}

	return deals, fetchedAt, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// pruneOld elimina snapshots viejos para mantener la DB ligera.
func (s *SQLiteStore) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionSnapshots)
	s.db.ExecContext(ctx, `
		DELETE FROM snapshot_deals WHERE snapshot_id IN
			(SELECT id FROM snapshots WHERE fetched_at < ?)
	`, cutoff)
	s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE fetched_at < ?`, cutoff)
}

// nullableDate convierte zero value en NULL.
func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
