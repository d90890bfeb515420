package domain

import "errors"

// Taxonomía de errores del engine. Los adapters envuelven sus fallos con
// estos sentinels (%w) para que el orquestador decida qué es fatal y qué
// se aísla por liga.
var (
	// ErrSourceUnavailable: una venue o el feed de consenso no se pudo leer.
	// No es fatal — la liga afectada se salta y el run continúa.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrCalibratorUnavailable: el modelo de calibración no cargó.
	// Fatal en el arranque — sin estimador de probabilidad no hay run.
	ErrCalibratorUnavailable = errors.New("calibrator unavailable")

	// ErrLedgerIO: no se pudo leer o persistir el ledger. Fatal para el run:
	// continuar arriesga alertas duplicadas o historial de bankroll perdido.
	ErrLedgerIO = errors.New("ledger i/o failure")

	// ErrRunLocked: otro run tiene el lock del ledger. Dos runs solapados
	// no pueden correr la fase read-then-append a la vez.
	ErrRunLocked = errors.New("ledger locked by another run")
)
