package domain

import "time"

// LedgerEntry es la única entidad durable del sistema: una oportunidad
// registrada exactamente una vez. Outcome y Placed los escribe un proceso
// de settlement externo, nunca este engine.
type LedgerEntry struct {
	Opportunity

	Outcome *bool // ¿ganó la apuesta? nil hasta que el partido se liquide
	Placed  *bool // ¿se colocó la apuesta? nil hasta que el settlement lo marque

	CreatedAt time.Time
}

// Settled reporta si la entrada cuenta para el replay del bankroll:
// apuesta colocada y resultado conocido.
func (e LedgerEntry) Settled() bool {
	return e.Placed != nil && *e.Placed && e.Outcome != nil
}

// ReplayBankroll reconstruye el bankroll actual desde el historial del
// ledger, en orden de inserción. El bankroll es una función pura del
// historial — no hay un total persistido aparte que pueda divergir.
//
// Entradas colocadas pero sin resultado todavía se saltan: capital
// comprometido sin liquidar no se cuenta como perdido.
func ReplayBankroll(initial float64, entries []LedgerEntry) float64 {
	bankroll := initial
	for _, e := range entries {
		if !e.Settled() {
			continue
		}
		win := 0.0
		if *e.Outcome {
			win = 1.0
		}
		bankroll += e.Stake*win*e.VenuePrice - e.Stake
	}
	return bankroll
}
