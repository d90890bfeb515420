package domain

import (
	"fmt"
	"hash/fnv"
	"time"
)

// Opportunity es una (evento, selección, venue) cuyo precio supera el
// umbral de breakeven sobre el consenso en el momento de la detección.
type Opportunity struct {
	Event     Event
	Selection string

	Venue          string
	VenuePrice     float64
	ConsensusPrice float64

	// --- Detección ---
	ImpliedProb float64 // 1 / ConsensusPrice
	Threshold   float64 // precio decimal mínimo para que la apuesta sea +EV

	// --- Sizing (se rellena tras calibrar) ---
	CalibratedProb float64
	Kelly          float64 // fracción Kelly completa, clampada a [0, 1]
	HalfKelly      float64
	Stake          float64 // Kelly × bankroll actual, en unidades de moneda

	ID         string
	DetectedAt time.Time
}

// OpportunityID genera el id determinista de una oportunidad.
//
// El esquema colapsa a propósito detecciones repetidas del mismo evento
// real dentro del mismo minuto: el hash cubre los nombres normalizados de
// ambos equipos, la selección y el start_time truncado al minuto (UTC).
// La venue queda fuera deliberadamente — la misma apuesta vista en dos
// casas es una sola oportunidad.
func OpportunityID(ev Event, selection string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s",
		NormalizeTeam(ev.HomeTeam),
		NormalizeTeam(ev.AwayTeam),
		NormalizeTeam(selection),
		ev.StartTime.UTC().Truncate(time.Minute).Format(time.RFC3339),
	)
	return fmt.Sprintf("%016x", h.Sum64())
}
