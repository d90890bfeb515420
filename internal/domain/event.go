package domain

import (
	"strings"
	"time"
)

// SelectionDraw es la etiqueta de selección para el empate en mercados
// de tres resultados (fútbol). Home y away usan el nombre del equipo.
const SelectionDraw = "draw"

// Event identifica un partido. La identidad es difusa: no hay una key
// externa estable entre fuentes, solo nombres de equipos y hora de inicio.
type Event struct {
	HomeTeam  string
	AwayTeam  string
	StartTime time.Time
	League    string
}

// Key devuelve una representación canónica del evento, usada para
// ordenar de forma determinista (nunca como identidad entre fuentes).
func (e Event) Key() string {
	return NormalizeTeam(e.HomeTeam) + "|" + NormalizeTeam(e.AwayTeam) + "|" +
		e.StartTime.UTC().Format(time.RFC3339)
}

// Quote es una línea observada en una venue: precio decimal para una
// selección de un evento. Inmutable una vez producida por el adapter.
type Quote struct {
	HomeTeam   string
	AwayTeam   string
	StartTime  time.Time
	Selection  string // nombre del equipo, o SelectionDraw
	Price      float64
	Source     string
	ObservedAt time.Time
}

// Valid reporta si la quote tiene un precio decimal usable (> 1.0) y las
// etiquetas mínimas para intentar un match.
func (q Quote) Valid() bool {
	return q.Price > 1.0 &&
		strings.TrimSpace(q.HomeTeam) != "" &&
		strings.TrimSpace(q.AwayTeam) != "" &&
		strings.TrimSpace(q.Selection) != "" &&
		!q.StartTime.IsZero()
}

// NormalizeQuotes filtra quotes inválidas y canonicaliza el whitespace de
// las etiquetas. Devuelve también cuántas se descartaron.
func NormalizeQuotes(quotes []Quote) (valid []Quote, dropped int) {
	valid = make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		q.HomeTeam = collapseSpaces(q.HomeTeam)
		q.AwayTeam = collapseSpaces(q.AwayTeam)
		q.Selection = collapseSpaces(q.Selection)
		if !q.Valid() {
			dropped++
			continue
		}
		valid = append(valid, q)
	}
	return valid, dropped
}

// NormalizeTeam canonicaliza un nombre de equipo para comparación y
// hashing: minúsculas y whitespace colapsado. No intenta expandir
// abreviaturas — de eso se encarga el resolver con similitud difusa.
func NormalizeTeam(name string) string {
	return strings.ToLower(collapseSpaces(name))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
