package engine

import (
	"time"

	"github.com/cjarmstrong/edgehound/internal/domain"
	"github.com/cjarmstrong/edgehound/internal/resolver"
)

// Detector decide si un precio de venue constituye un edge explotable
// sobre el consenso.
type Detector struct {
	// Alpha es el margen requerido sobre la probabilidad implícita del
	// consenso antes de llamar edge a una discrepancia. Compensa vig y
	// holgura del modelo. Default 0.05.
	Alpha float64

	// Window es la ventana activa: solo eventos que empiezan dentro de
	// las próximas Window horas. Lejos del kickoff la confianza del
	// consenso se degrada. Default 3h.
	Window time.Duration
}

// Detect evalúa cada par (consenso, venue) dentro de la ventana activa:
//
//	implied = 1 / mean_price
//	thresh  = 1 / (implied − alpha)
//	edge    ⇔ venue_price ≥ thresh
//
// Si implied ≤ alpha el umbral no es una cota válida y el par se rechaza
// siempre. Devuelve las oportunidades (sin sizing todavía) y cuántas
// líneas dentro de la ventana se examinaron.
func (d Detector) Detect(now time.Time, matches []resolver.Match) (opps []domain.Opportunity, examined int) {
	for _, m := range matches {
		start := m.Consensus.Event.StartTime
		if start.Before(now) || start.After(now.Add(d.Window)) {
			continue
		}
		examined++

		implied, err := domain.ImpliedProbability(m.Consensus.MeanPrice)
		if err != nil {
			continue
		}
		if implied <= d.Alpha {
			// umbral negativo o inflado — nunca una cota válida
			continue
		}
		threshold := 1.0 / (implied - d.Alpha)

		if m.Quote.Price <= 1.0 || m.Quote.Price < threshold {
			continue
		}

		ev := m.Consensus.Event
		opps = append(opps, domain.Opportunity{
			Event:          ev,
			Selection:      m.Consensus.Selection,
			Venue:          m.Quote.Source,
			VenuePrice:     m.Quote.Price,
			ConsensusPrice: m.Consensus.MeanPrice,
			ImpliedProb:    implied,
			Threshold:      threshold,
			ID:             domain.OpportunityID(ev, m.Consensus.Selection),
			DetectedAt:     now,
		})
	}
	return opps, examined
}
