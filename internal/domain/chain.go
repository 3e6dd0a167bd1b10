package domain

import "math/big"

// ChainBalance es el balance USDC de una wallet en una chain concreta.
// Se construye fresco en cada consulta y nunca se persiste.
type ChainBalance struct {
	ChainID    int64
	ChainName  string
	Balance    float64  // legible, p.ej. 5.00
	BalanceRaw *big.Int // unidades mínimas del token (6 decimales para USDC)
}

// TotalBalance suma los balances de todas las chains.
func TotalBalance(balances []ChainBalance) float64 {
	var total float64
	for _, b := range balances {
		total += b.Balance
	}
	return total
}

// BalanceOn devuelve el balance de la chain dada, o nil si no está en la lista.
func BalanceOn(balances []ChainBalance, chainID int64) *ChainBalance {
	for i := range balances {
		if balances[i].ChainID == chainID {
			return &balances[i]
		}
	}
	return nil
}
