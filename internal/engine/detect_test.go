package engine_test

import (
	"testing"
	"time"

	"github.com/cjarmstrong/edgehound/internal/domain"
	"github.com/cjarmstrong/edgehound/internal/engine"
	"github.com/cjarmstrong/edgehound/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func matchAt(start time.Time, meanPrice, venuePrice float64) resolver.Match {
	ev := domain.Event{
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		StartTime: start,
		League:    "EPL",
	}
	return resolver.Match{
		Consensus: domain.ConsensusPrice{Event: ev, Selection: "Arsenal", MeanPrice: meanPrice, Sources: 10},
		Quote: domain.Quote{
			HomeTeam:  ev.HomeTeam,
			AwayTeam:  ev.AwayTeam,
			StartTime: start,
			Selection: "Arsenal",
			Price:     venuePrice,
			Source:    "draftkings",
		},
	}
}

func defaultDetector() engine.Detector {
	return engine.Detector{Alpha: 0.05, Window: 3 * time.Hour}
}

func TestDetect_ThresholdScenario(t *testing.T) {
	// consenso 2.00 (implied 0.50), alpha 0.05 ⇒ thresh = 1/0.45 = 2.2222
	start := now.Add(time.Hour)

	opps, examined := defaultDetector().Detect(now, []resolver.Match{matchAt(start, 2.00, 2.30)})
	require.Len(t, opps, 1)
	assert.Equal(t, 1, examined)
	assert.InDelta(t, 0.50, opps[0].ImpliedProb, 1e-9)
	assert.InDelta(t, 2.2222, opps[0].Threshold, 1e-4)
	assert.Equal(t, 2.30, opps[0].VenuePrice)
	assert.NotEmpty(t, opps[0].ID)

	opps, examined = defaultDetector().Detect(now, []resolver.Match{matchAt(start, 2.00, 2.10)})
	assert.Empty(t, opps)
	assert.Equal(t, 1, examined)
}

func TestDetect_ExactThresholdFlagged(t *testing.T) {
	// venue_price ≥ thresh es inclusivo
	start := now.Add(time.Hour)
	thresh := 1.0 / (0.5 - 0.05)

	opps, _ := defaultDetector().Detect(now, []resolver.Match{matchAt(start, 2.00, thresh)})
	assert.Len(t, opps, 1)
}

func TestDetect_ImpliedBelowAlphaRejected(t *testing.T) {
	// implied = 1/25 = 0.04 ≤ alpha → umbral inválido, nunca se flaggea
	start := now.Add(time.Hour)

	opps, examined := defaultDetector().Detect(now, []resolver.Match{matchAt(start, 25.0, 100.0)})
	assert.Empty(t, opps)
	assert.Equal(t, 1, examined)

	// implied == alpha exactamente también se rechaza
	opps, _ = defaultDetector().Detect(now, []resolver.Match{matchAt(start, 20.0, 100.0)})
	assert.Empty(t, opps)
}

func TestDetect_WindowFiltersBeforeThreshold(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		want  int
	}{
		{"inside window", now.Add(2 * time.Hour), 1},
		{"outside window", now.Add(5 * time.Hour), 0},
		{"already started", now.Add(-10 * time.Minute), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// edge teórico enorme, pero la ventana manda
			opps, examined := defaultDetector().Detect(now, []resolver.Match{matchAt(tc.start, 2.00, 5.00)})
			assert.Len(t, opps, tc.want)
			assert.Equal(t, tc.want, examined)
		})
	}
}

func TestDetect_InvalidPricesNeverFlagged(t *testing.T) {
	start := now.Add(time.Hour)

	// precio de venue ≤ 1 nunca se flaggea
	m := matchAt(start, 2.00, 1.0)
	opps, _ := defaultDetector().Detect(now, []resolver.Match{m})
	assert.Empty(t, opps)

	// precio de consenso inválido se salta sin panic
	m = matchAt(start, 1.0, 3.0)
	opps, _ = defaultDetector().Detect(now, []resolver.Match{m})
	assert.Empty(t, opps)
}
