package ports

import (
	"context"

	"github.com/xmarket/bot/internal/domain"
)

// Ledger persiste usuarios, apuestas, transacciones y contexto de búsqueda.
//
// Invariante: todo cambio de balance se aplica junto a su Transaction en una
// única transacción de base de datos — nunca puede quedar un balance
// modificado sin movimiento auditable, ni al revés.
type Ledger interface {
	// Usuarios
	GetUserByXID(ctx context.Context, xUserID string) (domain.User, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (domain.User, error)
	TotalUserBalances(ctx context.Context) (float64, error)

	// Apuestas. Una Bet se crea pending y se liquida exactamente una vez.
	CreateBet(ctx context.Context, bet domain.Bet) error
	// SettleBetFilled marca la bet como filled con los datos reales del fill,
	// debita el balance del usuario y registra la Transaction — atómico.
	SettleBetFilled(ctx context.Context, betID, orderID string, price, shares float64) error
	// MarkBetFailed deja la bet en estado terminal failed sin tocar balances.
	MarkBetFailed(ctx context.Context, betID string) error
	PendingBetTotal(ctx context.Context, userID string) (float64, error)
	FilledBets(ctx context.Context, userID string) ([]domain.Bet, error)

	// Depósitos y retiros — mismo invariante balance+Transaction.
	// CreditDeposit es idempotente sobre txHash.
	CreditDeposit(ctx context.Context, userID string, amountUSDC float64, txHash string) error
	DebitWithdrawal(ctx context.Context, userID string, amountUSDC float64, txHash string) error

	// Contexto "última búsqueda" por usuario.
	SaveLastMarkets(ctx context.Context, xUserID string, markets []domain.MarketRef) error
	LastMarkets(ctx context.Context, xUserID string) ([]domain.MarketRef, error)

	Close() error
}
