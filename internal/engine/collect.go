package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cjarmstrong/edgehound/internal/domain"
)

// collectVenues obtiene las quotes de todas las venues para una liga en
// paralelo con un pool acotado. Las venues no dependen entre sí, así que
// un fallo de una solo se registra como diagnóstico — la venue queda
// fuera del set de comparación de este run, sin reintentos.
func (e *Engine) collectVenues(ctx context.Context, league string) ([]domain.Quote, []domain.LeagueFailure, int) {
	var (
		mu       sync.Mutex
		quotes   []domain.Quote
		failures []domain.LeagueFailure
		dropped  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.CollectWorkers)

	for _, venue := range e.venues {
		venue := venue
		g.Go(func() error {
			raw, err := venue.FetchQuotes(gctx, league)
			if err != nil {
				slog.Warn("venue fetch failed",
					"venue", venue.Name(), "league", league, "err", err)
				mu.Lock()
				failures = append(failures, domain.LeagueFailure{
					League: league,
					Stage:  domain.StageCollectVenues,
					Err:    fmt.Errorf("%s: %w", venue.Name(), err),
				})
				mu.Unlock()
				return nil // aislamiento: nunca aborta al resto de venues
			}

			valid, bad := domain.NormalizeQuotes(raw)
			mu.Lock()
			quotes = append(quotes, valid...)
			dropped += bad
			mu.Unlock()
			return nil
		})
	}

	// los workers nunca devuelven error; Wait solo sincroniza
	_ = g.Wait()

	return quotes, failures, dropped
}
