package engine

import (
	"github.com/cjarmstrong/edgehound/internal/domain"
	"github.com/cjarmstrong/edgehound/internal/ports"
)

// Sizer calibra la probabilidad de cada oportunidad y calcula el stake
// recomendado con Kelly fraccional sobre el bankroll actual.
type Sizer struct {
	calibrator ports.Calibrator
	multiplier float64 // fracción de Kelly para el stake en moneda: 1.0 full, 0.5 half
}

// NewSizer crea un Sizer con el calibrador inyectado. Un multiplier no
// positivo equivale a Kelly completo.
func NewSizer(calibrator ports.Calibrator, multiplier float64) *Sizer {
	if multiplier <= 0 {
		multiplier = 1.0
	}
	return &Sizer{calibrator: calibrator, multiplier: multiplier}
}

// Size rellena CalibratedProb, Kelly, HalfKelly y Stake de cada
// oportunidad. Las fracciones full y half siempre se calculan para la
// notificación; el stake en moneda usa el multiplier configurado.
func (s *Sizer) Size(opps []domain.Opportunity, bankroll float64) []domain.Opportunity {
	sized := make([]domain.Opportunity, len(opps))
	for i, o := range opps {
		p := s.calibrator.Predict(o.ImpliedProb)
		o.CalibratedProb = p
		o.Kelly = domain.KellyFraction(p, o.VenuePrice, 1.0)
		o.HalfKelly = domain.KellyFraction(p, o.VenuePrice, 0.5)
		o.Stake = domain.KellyFraction(p, o.VenuePrice, s.multiplier) * bankroll
		sized[i] = o
	}
	return sized
}
