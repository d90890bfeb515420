package engine_test

import (
	"testing"

	"github.com/cjarmstrong/edgehound/internal/domain"
	"github.com/cjarmstrong/edgehound/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCalibrator suma un ajuste fijo a la probabilidad implícita.
type fakeCalibrator struct {
	shift float64
}

func (f fakeCalibrator) Predict(implied float64) float64 { return implied + f.shift }
func (f fakeCalibrator) Version() string                 { return "fake-1" }

func TestSize_FillsKellyAndStake(t *testing.T) {
	sizer := engine.NewSizer(fakeCalibrator{shift: 0.05}, 1.0)

	opps := []domain.Opportunity{{
		VenuePrice:  2.30,
		ImpliedProb: 0.50,
	}}
	sized := sizer.Size(opps, 1000)
	require.Len(t, sized, 1)

	o := sized[0]
	assert.InDelta(t, 0.55, o.CalibratedProb, 1e-9)
	// b=1.30, q=0.45 → kelly = (1.30·0.55 − 0.45)/1.30 = 0.20385
	assert.InDelta(t, 0.20385, o.Kelly, 1e-4)
	assert.InDelta(t, o.Kelly/2, o.HalfKelly, 1e-9)
	assert.InDelta(t, o.Kelly*1000, o.Stake, 1e-6)
}

func TestSize_NoEdgeAfterCalibrationMeansZeroStake(t *testing.T) {
	// el calibrador rebaja la probabilidad por debajo del breakeven
	sizer := engine.NewSizer(fakeCalibrator{shift: -0.10}, 1.0)

	opps := []domain.Opportunity{{
		VenuePrice:  2.10,
		ImpliedProb: 0.50,
	}}
	sized := sizer.Size(opps, 1000)
	require.Len(t, sized, 1)
	assert.Zero(t, sized[0].Kelly)
	assert.Zero(t, sized[0].Stake)
}

func TestSize_HalfKellyMultiplierHalvesStake(t *testing.T) {
	full := engine.NewSizer(fakeCalibrator{shift: 0.05}, 1.0)
	half := engine.NewSizer(fakeCalibrator{shift: 0.05}, 0.5)

	opps := []domain.Opportunity{{VenuePrice: 2.30, ImpliedProb: 0.50}}
	f := full.Size(opps, 1000)[0]
	h := half.Size(opps, 1000)[0]

	assert.InDelta(t, f.Stake/2, h.Stake, 1e-9)
	// las fracciones reportadas no dependen del multiplier
	assert.Equal(t, f.Kelly, h.Kelly)
	assert.Equal(t, f.HalfKelly, h.HalfKelly)
}

func TestSize_DoesNotMutateInput(t *testing.T) {
	sizer := engine.NewSizer(fakeCalibrator{}, 1.0)
	opps := []domain.Opportunity{{VenuePrice: 2.30, ImpliedProb: 0.50}}
	_ = sizer.Size(opps, 1000)
	assert.Zero(t, opps[0].Stake)
}
