package domain_test

import (
	"testing"
	"time"

	"github.com/cjarmstrong/edgehound/internal/domain"
	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func settledEntry(stake, price float64, won bool) domain.LedgerEntry {
	e := domain.LedgerEntry{CreatedAt: time.Now()}
	e.Stake = stake
	e.VenuePrice = price
	e.Placed = boolPtr(true)
	e.Outcome = boolPtr(won)
	return e
}

func TestReplayBankroll_WinAndLoss(t *testing.T) {
	entries := []domain.LedgerEntry{
		settledEntry(50, 2.30, true),  // +50·2.30 − 50 = +65
		settledEntry(20, 1.80, false), // −20
	}
	got := domain.ReplayBankroll(500, entries)
	assert.InDelta(t, 545, got, 1e-9)
}

func TestReplayBankroll_SkipsUnsettled(t *testing.T) {
	placed := domain.LedgerEntry{}
	placed.Stake = 100
	placed.VenuePrice = 2.0
	placed.Placed = boolPtr(true) // sin outcome todavía

	notPlaced := domain.LedgerEntry{}
	notPlaced.Stake = 100
	notPlaced.VenuePrice = 2.0
	notPlaced.Outcome = boolPtr(true) // outcome sin placed

	got := domain.ReplayBankroll(500, []domain.LedgerEntry{placed, notPlaced})
	assert.Equal(t, 500.0, got)
}

func TestReplayBankroll_Deterministic(t *testing.T) {
	entries := []domain.LedgerEntry{
		settledEntry(33.33, 2.17, true),
		settledEntry(12.5, 3.40, false),
		settledEntry(7.77, 1.91, true),
	}
	first := domain.ReplayBankroll(500, entries)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, domain.ReplayBankroll(500, entries))
	}
}

func TestReplayBankroll_EmptyLedger(t *testing.T) {
	assert.Equal(t, 500.0, domain.ReplayBankroll(500, nil))
}
