package domain

// KellyFraction calcula la fracción del bankroll a apostar según el
// criterio de Kelly fraccional:
//
//	b = price − 1; q = 1 − p
//	f = ((b·p − q) / b) · multiplier
//
// multiplier ∈ (0, 1]: 1.0 es Kelly completo, 0.5 medio Kelly.
//
// El resultado se clampa a [0, 1]: una fracción negativa significa "sin
// edge" y se reporta como 0 en vez de propagarse como stake negativo, y
// nunca se recomienda apostar más que el bankroll completo.
func KellyFraction(prob, price, multiplier float64) float64 {
	if price <= 1.0 {
		return 0
	}
	b := price - 1.0
	q := 1.0 - prob
	f := ((b*prob - q) / b) * multiplier
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
