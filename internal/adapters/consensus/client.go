package consensus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/cjarmstrong/edgehound/internal/domain"
)

const (
	// El agregador permite 10 req/s por API key; nos quedamos por debajo.
	requestsPerSec = 5

	maxRetries = 3
	// Espera fija entre reintentos: los fallos del agregador suelen ser
	// blips de red, no sobrecarga.
	retryWait = 2 * time.Second
)

// Client es el HTTP client del agregador de consenso, con rate limiting
// y retries. Implementa ports.ConsensusProvider.
type Client struct {
	http    *http.Client
	base    string
	apiKey  string
	limiter *rate.Limiter
}

// NewClient crea un Client contra el base URL dado.
func NewClient(base, apiKey string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		base:    base,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(requestsPerSec, 2),
	}
}

// row es el formato wire del agregador: precios decimales medios por
// resultado y el número de sources que los respaldan.
type row struct {
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
	HomePrice    float64   `json:"home_price"`
	DrawPrice    float64   `json:"draw_price"`
	AwayPrice    float64   `json:"away_price"`
	Sources      int       `json:"sources"`
}

// FetchConsensus descarga las filas de consenso de una liga. Todos los
// fallos de transporte y de servidor se reportan como
// domain.ErrSourceUnavailable para que el engine aísle la liga.
func (c *Client) FetchConsensus(ctx context.Context, league string) ([]domain.ConsensusRow, error) {
	endpoint := fmt.Sprintf("%s/odds?league=%s", c.base, url.QueryEscape(league))

	var wire []row
	if err := c.get(ctx, endpoint, &wire); err != nil {
		return nil, fmt.Errorf("consensus.FetchConsensus: %s: %w: %w", league, domain.ErrSourceUnavailable, err)
	}

	rows := make([]domain.ConsensusRow, 0, len(wire))
	for _, r := range wire {
		rows = append(rows, domain.ConsensusRow{
			Event: domain.Event{
				HomeTeam:  r.HomeTeam,
				AwayTeam:  r.AwayTeam,
				StartTime: r.CommenceTime.UTC(),
				League:    league,
			},
			HomePrice: r.HomePrice,
			DrawPrice: r.DrawPrice,
			AwayPrice: r.AwayPrice,
			Sources:   r.Sources,
		})
	}
	return rows, nil
}

// get hace un GET con rate limiting y retries de espera fija.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-Api-Key", c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			slog.Warn("consensus request retried", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera el retryWait fijo, respetando el contexto.
func (c *Client) sleep(ctx context.Context) {
	select {
	case <-time.After(retryWait):
	case <-ctx.Done():
	}
}
