package domain

import "time"

// Stage identifica la fase del pipeline donde falló una liga.
type Stage string

const (
	StageCollectVenues    Stage = "collect_venues"
	StageCollectConsensus Stage = "collect_consensus"
	StageResolve          Stage = "resolve"
	StageDetect           Stage = "detect"
)

// LeagueFailure es un fallo aislado de una liga. El run continúa con las
// demás ligas; el fallo se reporta como diagnóstico, no como alerta.
type LeagueFailure struct {
	League string
	Stage  Stage
	Err    error
}

// RunReport agrega los diagnósticos de un run completo: qué se examinó,
// qué no se pudo leer y cuánto se notificó. Sustituye al catch-and-continue
// del diseño legacy con resultados tipados por liga.
type RunReport struct {
	RunID     string
	StartedAt time.Time

	LinesExamined  int // pares (consenso, venue) dentro de la ventana activa
	QuotesDropped  int // quotes inválidas descartadas al normalizar
	Unmatched      int // quotes de venue sin match de entidad confiable
	ConsensusRows  int
	VenueQuotes    int
	LeaguesScanned int

	Failures []LeagueFailure

	Notified   int // oportunidades nuevas alertadas
	Reminders  int // oportunidades ya en el ledger que siguen vigentes
	FinishedAt time.Time
}

// Failed reporta si alguna liga falló durante el run.
func (r RunReport) Failed() bool {
	return len(r.Failures) > 0
}
