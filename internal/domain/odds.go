package domain

import (
	"fmt"
	"math"
)

// Conversiones entre formatos de odds. Decimal es el formato interno;
// el americano solo aparece en las notificaciones.

// ImpliedProbability devuelve 1/price para un precio decimal válido.
func ImpliedProbability(price float64) (float64, error) {
	if price <= 1.0 {
		return 0, fmt.Errorf("domain.ImpliedProbability: price %.4f must be > 1.0", price)
	}
	return 1.0 / price, nil
}

// DecimalToAmerican convierte odds decimales a americanas.
// 2.50 → +150, 1.67 → -149.
func DecimalToAmerican(price float64) (int, error) {
	if price <= 1.0 {
		return 0, fmt.Errorf("domain.DecimalToAmerican: price %.4f must be > 1.0", price)
	}
	if price >= 2.0 {
		return int(math.Round((price - 1.0) * 100.0)), nil
	}
	return int(math.Round(-100.0 / (price - 1.0))), nil
}

// AmericanToDecimal convierte odds americanas a decimales.
// +150 → 2.50, -150 → 1.67.
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("domain.AmericanToDecimal: odds cannot be 0")
	}
	if american > 0 {
		return float64(american)/100.0 + 1.0, nil
	}
	return 100.0/float64(-american) + 1.0, nil
}

// FormatAmerican formatea odds americanas con signo explícito: +130, -150.
func FormatAmerican(american int) string {
	if american > 0 {
		return fmt.Sprintf("+%d", american)
	}
	return fmt.Sprintf("%d", american)
}
