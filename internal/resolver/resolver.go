package resolver

import (
	"sort"
	"time"

	"github.com/cjarmstrong/edgehound/internal/domain"
)

// Config controla el matching de entidades entre fuentes.
type Config struct {
	// Threshold mínimo de similitud que deben superar home, away y
	// selección a la vez. Default 0.85.
	Threshold float64

	// TimeTolerance es la diferencia máxima de start_time entre fuentes.
	// Los relojes de las fuentes difieren por redondeo, no por horas.
	TimeTolerance time.Duration
}

// DefaultConfig devuelve la configuración de producción.
func DefaultConfig() Config {
	return Config{
		Threshold:     0.85,
		TimeTolerance: 5 * time.Minute,
	}
}

// Match une una quote de venue con el precio de consenso del mismo
// evento real y la misma selección.
type Match struct {
	Consensus domain.ConsensusPrice
	Quote     domain.Quote
}

// Resolver empareja eventos del consenso con quotes de venue a pesar de
// etiquetas inconsistentes entre fuentes. Best-match only: cada quote se
// une como mucho a un evento de consenso, el de mayor similitud.
type Resolver struct {
	cfg    Config
	scorer Scorer
}

// New crea un Resolver con el scorer inyectado.
func New(cfg Config, scorer Scorer) *Resolver {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig().Threshold
	}
	if cfg.TimeTolerance <= 0 {
		cfg.TimeTolerance = DefaultConfig().TimeTolerance
	}
	return &Resolver{cfg: cfg, scorer: scorer}
}

// Resolve devuelve los pares (consenso, quote) que superan el umbral de
// similitud en home, away y selección, dentro de la tolerancia temporal.
// Quotes sin match confiable se descartan en silencio y solo se cuentan
// en unmatched — nunca se alerta sobre un evento que no se pudo resolver.
//
// El resultado es determinista: las entradas se ordenan internamente, así
// que listas idénticas en cualquier orden producen los mismos pares.
func (r *Resolver) Resolve(prices []domain.ConsensusPrice, quotes []domain.Quote) (matches []Match, unmatched int) {
	sortedPrices := make([]domain.ConsensusPrice, len(prices))
	copy(sortedPrices, prices)
	sort.Slice(sortedPrices, func(i, j int) bool {
		ki, kj := sortedPrices[i].Event.Key(), sortedPrices[j].Event.Key()
		if ki != kj {
			return ki < kj
		}
		return sortedPrices[i].Selection < sortedPrices[j].Selection
	})

	sortedQuotes := make([]domain.Quote, len(quotes))
	copy(sortedQuotes, quotes)
	sort.Slice(sortedQuotes, func(i, j int) bool {
		a, b := sortedQuotes[i], sortedQuotes[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		ka, kb := eventKeyOf(a), eventKeyOf(b)
		if ka != kb {
			return ka < kb
		}
		return a.Selection < b.Selection
	})

	for _, q := range sortedQuotes {
		best, ok := r.bestMatch(sortedPrices, q)
		if !ok {
			unmatched++
			continue
		}
		matches = append(matches, Match{Consensus: best, Quote: q})
	}
	return matches, unmatched
}

// bestMatch busca el evento de consenso con mayor similitud para la
// quote. Empates de score se rompen por menor diferencia de start_time;
// empates restantes por orden canónico del evento.
func (r *Resolver) bestMatch(prices []domain.ConsensusPrice, q domain.Quote) (domain.ConsensusPrice, bool) {
	var (
		best      domain.ConsensusPrice
		bestScore = -1.0
		bestDelta time.Duration
		found     bool
	)

	for _, c := range prices {
		delta := absDuration(c.Event.StartTime.Sub(q.StartTime))
		if delta > r.cfg.TimeTolerance {
			continue
		}

		simHome := r.scorer.Similarity(c.Event.HomeTeam, q.HomeTeam)
		simAway := r.scorer.Similarity(c.Event.AwayTeam, q.AwayTeam)
		simSel := r.scorer.Similarity(c.Selection, q.Selection)
		if simHome < r.cfg.Threshold || simAway < r.cfg.Threshold || simSel < r.cfg.Threshold {
			continue
		}

		score := (simHome + simAway + simSel) / 3.0
		if !found || score > bestScore || (score == bestScore && delta < bestDelta) {
			best = c
			bestScore = score
			bestDelta = delta
			found = true
		}
	}
	return best, found
}

func eventKeyOf(q domain.Quote) string {
	return domain.Event{HomeTeam: q.HomeTeam, AwayTeam: q.AwayTeam, StartTime: q.StartTime}.Key()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
