package ports

import (
	"context"

	"github.com/cjarmstrong/edgehound/internal/domain"
)

// Ledger es el registro durable y deduplicado de oportunidades. Es la
// única fuente de verdad de "esto ya se alertó" y del historial para el
// replay de bankroll.
type Ledger interface {
	// Insert registra la entrada si su opportunity_id no existe todavía.
	// Devuelve false (sin error) si ya existía — insert-if-absent atómico,
	// nunca un append ciego.
	Insert(ctx context.Context, entry domain.LedgerEntry) (inserted bool, err error)

	// ReadAll devuelve todas las entradas en orden de inserción.
	ReadAll(ctx context.Context) ([]domain.LedgerEntry, error)

	// AcquireRunLock toma el lock de run único. Devuelve
	// domain.ErrRunLocked si otro run lo tiene y no está stale.
	AcquireRunLock(ctx context.Context, runID string) error

	// ReleaseRunLock suelta el lock si este run lo tiene.
	ReleaseRunLock(ctx context.Context, runID string) error

	// Close cierra la conexión limpiamente.
	Close() error
}
