package ports

import (
	"context"

	"github.com/cjarmstrong/edgehound/internal/domain"
)

// VenueProvider obtiene las quotes actuales de una casa de apuestas para
// una liga. Cada adapter es dueño de su parsing, auth y timeouts por
// llamada; el engine solo ve quotes ya normalizables.
//
// Un fallo de venue no se reintenta: la venue queda fuera del set de
// comparación de ese run.
type VenueProvider interface {
	// Name devuelve el nombre de la venue, usado en alertas y diagnósticos.
	Name() string

	// FetchQuotes devuelve las quotes de la liga dada.
	FetchQuotes(ctx context.Context, league string) ([]domain.Quote, error)
}

// ConsensusProvider obtiene las filas de consenso (precios medios
// multi-fuente) para una liga. Los fallos de conexión se reintentan con
// backoff acotado dentro del adapter; al agotarse se reporta como
// domain.ErrSourceUnavailable.
type ConsensusProvider interface {
	FetchConsensus(ctx context.Context, league string) ([]domain.ConsensusRow, error)
}
