package betflow

// selector.go — Selección de chain origen para el bridge.
//
// Función pura: decide desde qué chain mover fondos, sin validar que el
// importe quede cubierto. Esa comprobación es del orquestador, que suma
// el total multichain antes de planificar ruta.

import "github.com/xmarket/bot/internal/domain"

// SelectSource elige la chain origen para cubrir required USDC en destChainID.
//
//   - Si el balance en destino ya cubre required: devuelve la chain destino
//     con needsBridge=false.
//   - Si no: la chain no-destino con mayor balance > 0, needsBridge=true,
//     aunque su balance individual no cubra required.
//   - Sin ninguna chain con balance: (nil, false).
func SelectSource(balances []domain.ChainBalance, required float64, destChainID int64) (*domain.ChainBalance, bool) {
	if dest := domain.BalanceOn(balances, destChainID); dest != nil && dest.Balance >= required {
		return dest, false
	}

	var best *domain.ChainBalance
	for i := range balances {
		b := &balances[i]
		if b.ChainID == destChainID || b.Balance <= 0 {
			continue
		}
		if best == nil || b.Balance > best.Balance {
			best = b
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}
