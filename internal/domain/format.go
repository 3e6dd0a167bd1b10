package domain

import "fmt"

// FormatUSDC formatea un importe USDC con dos decimales.
func FormatUSDC(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// FormatLargeNumber formatea un número con sufijo K/M para volúmenes.
func FormatLargeNumber(n float64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("$%.1fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("$%.1fK", n/1_000)
	default:
		return fmt.Sprintf("$%.0f", n)
	}
}

// FormatPrice formatea un precio como porcentaje (0.45 → 45%).
func FormatPrice(price float64) string {
	return fmt.Sprintf("%.0f%%", price*100)
}

// TruncateQuestion devuelve la pregunta truncada a maxLen runas,
// con el ID como fallback si está vacía. El corte respeta límites de runa
// para no partir caracteres multibyte.
func TruncateQuestion(question, id string, maxLen int) string {
	q := question
	if q == "" {
		if runes := []rune(id); len(runes) > 20 {
			q = string(runes[:20]) + "..."
		} else {
			q = id
		}
	}
	if runes := []rune(q); len(runes) > maxLen {
		q = string(runes[:maxLen-3]) + "..."
	}
	return q
}
