package venues

// File-backed venue provider. Venue odds arrive as JSON drops written by
// the per-book collectors (one directory per venue, one file per
// league). Keeping collection out-of-process means a blocked scraper
// never stalls a scan; the engine just reads whatever the collectors
// last wrote.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cjarmstrong/edgehound/internal/domain"
)

// quoteFile is the drop format: one array of lines per league file.
type quoteFile struct {
	Quotes []struct {
		HomeTeam     string    `json:"home_team"`
		AwayTeam     string    `json:"away_team"`
		CommenceTime time.Time `json:"commence_time"`
		Selection    string    `json:"selection"`
		Price        float64   `json:"price"`
	} `json:"quotes"`
}

// FileProvider implements ports.VenueProvider over a venue's drop
// directory. The file layout is {dir}/{league}.json.
type FileProvider struct {
	name string
	dir  string
}

// NewFileProvider creates a provider named after the venue, reading
// from the given directory.
func NewFileProvider(name, dir string) *FileProvider {
	return &FileProvider{name: name, dir: dir}
}

// Name returns the venue name, used as the quote source.
func (p *FileProvider) Name() string {
	return p.name
}

// FetchQuotes reads the league's drop file. A missing file means the
// venue does not cover the league and yields no quotes; an unreadable
// or malformed file is a source failure.
func (p *FileProvider) FetchQuotes(_ context.Context, league string) ([]domain.Quote, error) {
	path := filepath.Join(p.dir, league+".json")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("venues.FetchQuotes: %s/%s: %w: %w", p.name, league, domain.ErrSourceUnavailable, err)
	}

	var qf quoteFile
	if err := json.Unmarshal(raw, &qf); err != nil {
		return nil, fmt.Errorf("venues.FetchQuotes: %s/%s: parse: %w: %w", p.name, league, domain.ErrSourceUnavailable, err)
	}

	info, err := os.Stat(path)
	observed := time.Now().UTC()
	if err == nil {
		observed = info.ModTime().UTC()
	}

	quotes := make([]domain.Quote, 0, len(qf.Quotes))
	for _, q := range qf.Quotes {
		quotes = append(quotes, domain.Quote{
			HomeTeam:   q.HomeTeam,
			AwayTeam:   q.AwayTeam,
			StartTime:  q.CommenceTime.UTC(),
			Selection:  q.Selection,
			Price:      q.Price,
			Source:     p.name,
			ObservedAt: observed,
		})
	}
	return quotes, nil
}

// Discover lists the venue subdirectories of root and builds one
// provider per venue. Non-directories are skipped.
func Discover(root string) ([]*FileProvider, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("venues.Discover: %q: %w: %w", root, domain.ErrSourceUnavailable, err)
	}
	var providers []*FileProvider
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		providers = append(providers, NewFileProvider(e.Name(), filepath.Join(root, e.Name())))
	}
	return providers, nil
}
