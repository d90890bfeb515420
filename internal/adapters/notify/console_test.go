package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cjarmstrong/edgehound/internal/adapters/notify"
	"github.com/cjarmstrong/edgehound/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeOpp(home, away, venue string, price, threshold float64) domain.Opportunity {
	return domain.Opportunity{
		Event: domain.Event{
			HomeTeam:  home,
			AwayTeam:  away,
			StartTime: time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC),
			League:    "NBA",
		},
		Selection:      home,
		Venue:          venue,
		VenuePrice:     price,
		ConsensusPrice: 2.00,
		ImpliedProb:    0.50,
		Threshold:      threshold,
		CalibratedProb: 0.53,
		Kelly:          0.12,
		HalfKelly:      0.06,
		Stake:          60,
		ID:             "abc123",
	}
}

func TestConsole_Notify_WithOpportunities(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	opps := []domain.Opportunity{
		makeOpp("Los Angeles Lakers", "Boston Celtics", "draftkings", 2.30, 2.2222),
	}

	err := n.Notify(context.Background(), opps)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "POTENTIAL BETS FOUND")
	assert.Contains(t, out, "Boston Celtics @ Los Angeles Lakers")
	assert.Contains(t, out, "draftkings")
	assert.Contains(t, out, "2.30 (+130)") // odds decimales y americanas
	assert.Contains(t, out, "2.22 (+122)") // umbral de breakeven
	assert.Contains(t, out, "12%")
	assert.Contains(t, out, "$60.00")
}

func TestConsole_Notify_EmptyList(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	err := n.Notify(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no opportunities found")
}

func TestConsole_NotifyReminders(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	err := n.NotifyReminders(context.Background(), []domain.Opportunity{
		makeOpp("Los Angeles Lakers", "Boston Celtics", "fanduel", 2.40, 2.2222),
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "still live")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "fanduel")

	// sin recordatorios no imprime nada
	buf.Reset()
	require.NoError(t, n.NotifyReminders(context.Background(), nil))
	assert.Empty(t, buf.String())
}

func TestConsole_NotifyReport(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	report := domain.RunReport{
		RunID:          "d9c1a1e2-0000-0000-0000-000000000000",
		LeaguesScanned: 3,
		LinesExamined:  42,
		Unmatched:      5,
		Notified:       2,
		Failures: []domain.LeagueFailure{
			{League: "NHL", Stage: domain.StageCollectConsensus, Err: domain.ErrSourceUnavailable},
		},
	}

	err := n.NotifyReport(context.Background(), report)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "RUN d9c1a1e2")
	assert.Contains(t, out, "lines-in-window:42")
	assert.Contains(t, out, "FAILURES (1)")
	assert.Contains(t, out, "NHL")
}
