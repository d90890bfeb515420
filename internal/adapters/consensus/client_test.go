package consensus_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cjarmstrong/edgehound/internal/adapters/consensus"
	"github.com/cjarmstrong/edgehound/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `[
	{
		"home_team": "Los Angeles Lakers",
		"away_team": "Boston Celtics",
		"commence_time": "2026-03-14T19:30:00Z",
		"home_price": 2.05,
		"away_price": 1.85,
		"sources": 12
	},
	{
		"home_team": "Arsenal",
		"away_team": "Chelsea",
		"commence_time": "2026-03-14T15:00:00Z",
		"home_price": 2.40,
		"draw_price": 3.30,
		"away_price": 3.10,
		"sources": 8
	}
]`

func TestFetchConsensus_MapsRows(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		gotKey = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := consensus.NewClient(srv.URL, "secret")
	rows, err := c.FetchConsensus(context.Background(), "NBA")
	require.NoError(t, err)

	assert.Equal(t, "/odds?league=NBA", gotPath)
	assert.Equal(t, "secret", gotKey)

	require.Len(t, rows, 2)
	lakers := rows[0]
	assert.Equal(t, "Los Angeles Lakers", lakers.Event.HomeTeam)
	assert.Equal(t, "NBA", lakers.Event.League)
	assert.True(t, lakers.Event.StartTime.Equal(time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)))
	assert.Equal(t, 2.05, lakers.HomePrice)
	assert.Zero(t, lakers.DrawPrice) // sin draw en mercados a dos salidas
	assert.Equal(t, 12, lakers.Sources)

	assert.Equal(t, 3.30, rows[1].DrawPrice)
}

func TestFetchConsensus_ClientErrorNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "unknown league", http.StatusNotFound)
	}))
	defer srv.Close()

	c := consensus.NewClient(srv.URL, "")
	_, err := c.FetchConsensus(context.Background(), "XFL")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Equal(t, 1, calls) // los 4xx no se reintentan
}

func TestFetchConsensus_RetriesServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := consensus.NewClient(srv.URL, "")
	rows, err := c.FetchConsensus(context.Background(), "NBA")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 2, calls)
}

func TestFetchConsensus_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // conexión rechazada

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	c := consensus.NewClient(srv.URL, "")
	_, err := c.FetchConsensus(ctx, "NBA")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}
