package domain_test

import (
	"testing"

	"github.com/cjarmstrong/edgehound/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestKellyFraction_Basic(t *testing.T) {
	// p=0.55, price=2.00: b=1, q=0.45 → f = 0.55 - 0.45 = 0.10
	f := domain.KellyFraction(0.55, 2.00, 1.0)
	assert.InDelta(t, 0.10, f, 1e-9)

	// medio Kelly escala linealmente
	half := domain.KellyFraction(0.55, 2.00, 0.5)
	assert.InDelta(t, 0.05, half, 1e-9)
}

func TestKellyFraction_ZeroAtFairPrice(t *testing.T) {
	// En el precio justo b·p − q = 0 exactamente: p = 1/price.
	f := domain.KellyFraction(0.5, 2.00, 1.0)
	assert.Zero(t, f)

	f = domain.KellyFraction(0.25, 4.00, 1.0)
	assert.Zero(t, f)
}

func TestKellyFraction_NegativeClampedToZero(t *testing.T) {
	// Sin edge: la fracción cruda sería negativa, se reporta 0.
	f := domain.KellyFraction(0.40, 2.00, 1.0)
	assert.Zero(t, f)
}

func TestKellyFraction_NeverExceedsBankroll(t *testing.T) {
	// La fracción cruda p − q/b se acerca a 1 a medida que p → 1 pero
	// nunca lo supera con multiplier ≤ 1.
	f := domain.KellyFraction(0.999, 50.0, 1.0)
	assert.InDelta(t, 0.99898, f, 1e-4)
	assert.LessOrEqual(t, f, 1.0)

	// en la cota p = 1 (q = 0) la fracción es exactamente el bankroll
	assert.Equal(t, 1.0, domain.KellyFraction(1.0, 50.0, 1.0))
}

func TestKellyFraction_InvalidPrice(t *testing.T) {
	assert.Zero(t, domain.KellyFraction(0.9, 1.0, 1.0))
	assert.Zero(t, domain.KellyFraction(0.9, 0.5, 1.0))
}
