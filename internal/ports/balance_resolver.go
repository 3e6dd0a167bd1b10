package ports

import (
	"context"

	"github.com/xmarket/bot/internal/domain"
)

// BalanceResolver lee balances USDC on-chain de una wallet.
type BalanceResolver interface {
	// Balances consulta el balance en todas las chains configuradas.
	// Tolerancia a fallos parciales: una chain que falla se omite del
	// resultado en vez de fallar la llamada completa.
	// El resultado viene ordenado por balance descendente.
	Balances(ctx context.Context, address string) ([]domain.ChainBalance, error)

	// BalanceOn consulta el balance en una sola chain.
	BalanceOn(ctx context.Context, address string, chainID int64) (domain.ChainBalance, error)
}
