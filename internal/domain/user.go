package domain

import "time"

// User es un usuario registrado con su balance custodial.
type User struct {
	ID            string
	XUserID       string
	XUsername     string
	WalletAddress string // dirección para depósitos/retiros, puede estar vacía
	BalanceUSDC   float64
	CreatedAt     time.Time
}

// TransactionType clasifica los movimientos del ledger.
type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxBet        TransactionType = "bet"
	TxWin        TransactionType = "win"
	TxLoss       TransactionType = "loss"
)

// Transaction es un movimiento auditable del balance de un usuario.
// Todo cambio de balance lleva su Transaction emparejada — se crean juntos
// o no se crea ninguno.
type Transaction struct {
	ID         string
	UserID     string
	Type       TransactionType
	AmountUSDC float64 // negativo para débitos
	TxHash     string  // hash on-chain para deposit/withdrawal, vacío si no aplica
	CreatedAt  time.Time
}
