package domain

import (
	"errors"
	"fmt"
	"time"
)

// Errores de negocio del flujo de apuestas.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoRecentMarkets     = errors.New("no recent markets")
	ErrUserNotFound        = errors.New("user not found")
)

// BetSide es el lado de la apuesta.
type BetSide string

const (
	SideYes BetSide = "yes"
	SideNo  BetSide = "no"
)

// BetStatus es el estado de una apuesta persistida.
// pending → filled | failed. sold se alcanza solo al cerrar posición.
// Nunca se muta después de un estado terminal.
type BetStatus string

const (
	BetPending BetStatus = "pending"
	BetFilled  BetStatus = "filled"
	BetFailed  BetStatus = "failed"
	BetSold    BetStatus = "sold"
)

// Terminal devuelve true si el estado no admite más transiciones.
func (s BetStatus) Terminal() bool {
	return s == BetFilled || s == BetFailed || s == BetSold
}

// Bet es una apuesta custodial persistida en el ledger.
type Bet struct {
	ID          string
	UserID      string
	MarketID    string
	MarketTitle string
	Side        BetSide
	AmountUSDC  float64
	Price       float64 // precio de fill realizado, no el cotizado al buscar
	Shares      float64
	Status      BetStatus
	OrderID     string // ID del order en el CLOB, vacío hasta el fill
	TweetID     string
	CreatedAt   time.Time
	SettledAt   *time.Time
}

// BetRequest es la petición que recibe el trade executor.
type BetRequest struct {
	MarketID string
	Side     BetSide
	Amount   float64 // USDC
}

// BetResult es la respuesta del trade executor.
type BetResult struct {
	Success   bool
	OrderID   string
	Shares    float64
	Price     float64 // precio de fill realizado
	Simulated bool    // true si lo produjo el executor mock
	Error     string
}

// CalculateShares calcula los shares comprados para un importe y precio dados.
func CalculateShares(amount, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return amount / price
}

// ValidateBetAmount comprueba que el importe esté dentro de los límites.
// Devuelve un mensaje apto para responder directamente al usuario.
func ValidateBetAmount(amount, minBet, maxBet float64) error {
	if amount <= 0 {
		return errors.New("invalid amount")
	}
	if amount < minBet {
		return fmt.Errorf("minimum bet is %s", FormatUSDC(minBet))
	}
	if amount > maxBet {
		return fmt.Errorf("maximum bet is %s", FormatUSDC(maxBet))
	}
	return nil
}
