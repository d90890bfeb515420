package storage

// sqlite.go — ledger keyed con semántica insert-if-absent.
//
// Rediseño sobre el CSV read-modify-write legacy:
//   - `ledger`: una fila por opportunity_id (PRIMARY KEY). Insert usa
//     ON CONFLICT DO NOTHING — nunca un append ciego, nunca duplicados.
//   - `run_lock`: una fila única que serializa runs solapados. Un lock
//     más viejo que lockStaleAfter se considera de un run muerto y se
//     puede tomar.
//   - El orden de inserción (rowid) es el orden de replay del bankroll.
//   - outcome/placed los escribe el proceso de settlement externo vía
//     RecordSettlement; este engine nunca los toca.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cjarmstrong/edgehound/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Una fila por oportunidad alguna vez alertada. Nunca se borra.
CREATE TABLE IF NOT EXISTS ledger (
    opportunity_id  TEXT PRIMARY KEY,
    league          TEXT NOT NULL,
    home_team       TEXT NOT NULL,
    away_team       TEXT NOT NULL,
    start_time      DATETIME NOT NULL,
    selection       TEXT NOT NULL,
    venue           TEXT NOT NULL,
    venue_price     REAL NOT NULL,
    consensus_price REAL NOT NULL,
    implied_prob    REAL NOT NULL,
    threshold       REAL NOT NULL,
    calibrated_prob REAL NOT NULL,
    kelly           REAL NOT NULL,
    half_kelly      REAL NOT NULL,
    stake           REAL NOT NULL,
    outcome         INTEGER,            -- NULL hasta settlement
    placed          INTEGER,            -- NULL hasta settlement
    created_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_created ON ledger(created_at);

-- Lock de run único: id siempre 1.
CREATE TABLE IF NOT EXISTS run_lock (
    id          INTEGER PRIMARY KEY CHECK (id = 1),
    run_id      TEXT NOT NULL,
    acquired_at DATETIME NOT NULL
);
`

// lockStaleAfter: un run que lleve más de esto con el lock se da por
// muerto (crash sin release) y su lock se puede tomar.
const lockStaleAfter = 15 * time.Minute

// SQLiteLedger implementa ports.Ledger usando SQLite (pure Go, sin CGo).
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger abre (o crea) la base de datos en la ruta dada y
// aplica el schema. Cualquier fallo se reporta como domain.ErrLedgerIO.
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteLedger: open %q: %w: %w", path, domain.ErrLedgerIO, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteLedger: apply schema: %w: %w", domain.ErrLedgerIO, err)
	}
	return &SQLiteLedger{db: db}, nil
}

// Insert registra la entrada solo si su opportunity_id no existe.
// Devuelve false sin error si ya existía.
func (s *SQLiteLedger) Insert(ctx context.Context, e domain.LedgerEntry) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger
			(opportunity_id, league, home_team, away_team, start_time, selection,
			 venue, venue_price, consensus_price, implied_prob, threshold,
			 calibrated_prob, kelly, half_kelly, stake, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(opportunity_id) DO NOTHING`,
		e.ID,
		e.Event.League,
		e.Event.HomeTeam,
		e.Event.AwayTeam,
		e.Event.StartTime.UTC(),
		e.Selection,
		e.Venue,
		e.VenuePrice,
		e.ConsensusPrice,
		e.ImpliedProb,
		e.Threshold,
		e.CalibratedProb,
		e.Kelly,
		e.HalfKelly,
		e.Stake,
		e.CreatedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("storage.Insert: %s: %w: %w", e.ID, domain.ErrLedgerIO, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage.Insert: rows affected: %w: %w", domain.ErrLedgerIO, err)
	}
	return n > 0, nil
}

// ReadAll devuelve todas las entradas en orden de inserción (rowid), que
// es el orden que usa el replay de bankroll.
func (s *SQLiteLedger) ReadAll(ctx context.Context) ([]domain.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT opportunity_id, league, home_team, away_team, start_time, selection,
		       venue, venue_price, consensus_price, implied_prob, threshold,
		       calibrated_prob, kelly, half_kelly, stake, outcome, placed, created_at
		FROM ledger
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("storage.ReadAll: query: %w: %w", domain.ErrLedgerIO, err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var (
			e               domain.LedgerEntry
			start, created  time.Time
			outcome, placed sql.NullBool
		)
		if err := rows.Scan(
			&e.ID,
			&e.Event.League,
			&e.Event.HomeTeam,
			&e.Event.AwayTeam,
			&start,
			&e.Selection,
			&e.Venue,
			&e.VenuePrice,
			&e.ConsensusPrice,
			&e.ImpliedProb,
			&e.Threshold,
			&e.CalibratedProb,
			&e.Kelly,
			&e.HalfKelly,
			&e.Stake,
			&outcome,
			&placed,
			&created,
		); err != nil {
			return nil, fmt.Errorf("storage.ReadAll: scan: %w: %w", domain.ErrLedgerIO, err)
		}
		e.Event.StartTime = start.UTC()
		e.CreatedAt = created.UTC()
		if outcome.Valid {
			v := outcome.Bool
			e.Outcome = &v
		}
		if placed.Valid {
			v := placed.Bool
			e.Placed = &v
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.ReadAll: %w: %w", domain.ErrLedgerIO, err)
	}
	return entries, nil
}

// AcquireRunLock toma el lock de run único dentro de una transacción
// inmediata. Si otro run lo tiene y no está stale, devuelve
// domain.ErrRunLocked.
func (s *SQLiteLedger) AcquireRunLock(ctx context.Context, runID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.AcquireRunLock: begin: %w: %w", domain.ErrLedgerIO, err)
	}
	defer tx.Rollback()

	var holder string
	var acquiredAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT run_id, acquired_at FROM run_lock WHERE id = 1`,
	).Scan(&holder, &acquiredAt)
	switch {
	case err == nil:
		if time.Since(acquiredAt) < lockStaleAfter {
			return fmt.Errorf("storage.AcquireRunLock: held by run %s: %w", holder, domain.ErrRunLocked)
		}
		// lock stale de un run muerto — lo tomamos
	case errors.Is(err, sql.ErrNoRows):
		// libre
	default:
		return fmt.Errorf("storage.AcquireRunLock: query: %w: %w", domain.ErrLedgerIO, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO run_lock (id, run_id, acquired_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET run_id = excluded.run_id, acquired_at = excluded.acquired_at`,
		runID, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("storage.AcquireRunLock: upsert: %w: %w", domain.ErrLedgerIO, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.AcquireRunLock: commit: %w: %w", domain.ErrLedgerIO, err)
	}
	return nil
}

// ReleaseRunLock suelta el lock solo si este run lo tiene todavía.
func (s *SQLiteLedger) ReleaseRunLock(ctx context.Context, runID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM run_lock WHERE id = 1 AND run_id = ?`, runID,
	); err != nil {
		return fmt.Errorf("storage.ReleaseRunLock: %w: %w", domain.ErrLedgerIO, err)
	}
	return nil
}

// RecordSettlement marca una entrada como colocada y liquidada. Lo llama
// el proceso de settlement externo, nunca el engine.
func (s *SQLiteLedger) RecordSettlement(ctx context.Context, opportunityID string, placed, won bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ledger SET placed = ?, outcome = ? WHERE opportunity_id = ?`,
		placed, won, opportunityID,
	)
	if err != nil {
		return fmt.Errorf("storage.RecordSettlement: %s: %w: %w", opportunityID, domain.ErrLedgerIO, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("storage.RecordSettlement: %s: no such entry", opportunityID)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}
