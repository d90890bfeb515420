package resolver

import (
	"strings"

	"github.com/agext/levenshtein"

	"github.com/cjarmstrong/edgehound/internal/domain"
)

// Scorer scores the similarity of two labels on a [0, 1] scale.
// Pluggable so matching stays unit-testable without any network
// dependency.
type Scorer interface {
	Similarity(a, b string) float64
}

// EditDistance scores with normalized Levenshtein similarity over
// case-folded, whitespace-collapsed labels.
type EditDistance struct{}

func (EditDistance) Similarity(a, b string) float64 {
	return levenshtein.Similarity(domain.NormalizeTeam(a), domain.NormalizeTeam(b), nil)
}

// NameScorer is the production scorer for team labels. Plain edit
// distance collapses on abbreviated city names ("LA Lakers" vs
// "Los Angeles Lakers" is barely 0.5), so it also tries a token
// alignment where a short token may stand in for the initials of
// consecutive tokens on the other side. The final score is the better
// of the two readings.
type NameScorer struct{}

func (s NameScorer) Similarity(a, b string) float64 {
	na, nb := domain.NormalizeTeam(a), domain.NormalizeTeam(b)
	if na == nb {
		return 1.0
	}
	whole := levenshtein.Similarity(na, nb, nil)
	tokens := tokenAlignScore(strings.Fields(na), strings.Fields(nb))
	if tokens > whole {
		return tokens
	}
	return whole
}

// tokenAlignScore alinea greedy los tokens del lado corto contra el
// largo. Un token corto que coincide exactamente con las iniciales de
// k tokens consecutivos del otro lado ("la" → "los angeles") consume
// esos k tokens con score 1.0; el resto se empareja 1:1 por edit
// distance. Tokens del lado largo que sobran puntúan 0.
func tokenAlignScore(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}

	var total float64
	units := 0
	j := 0
	for _, tok := range short {
		if j >= len(long) {
			units++
			continue
		}
		if k := initialsRun(tok, long[j:]); k > 0 {
			total += 1.0
			units++
			j += k
			continue
		}
		total += levenshtein.Similarity(tok, long[j], nil)
		units++
		j++
	}
	// tokens sobrantes del lado largo penalizan
	units += len(long) - j

	if units == 0 {
		return 0
	}
	return total / float64(units)
}

// initialsRun devuelve k si tok son exactamente las iniciales de los
// primeros k tokens de rest (k = len(tok), k ≥ 2). 0 si no.
func initialsRun(tok string, rest []string) int {
	k := len(tok)
	if k < 2 || k > len(rest) {
		return 0
	}
	for i := 0; i < k; i++ {
		if rest[i] == "" || rest[i][0] != tok[i] {
			return 0
		}
	}
	return k
}
