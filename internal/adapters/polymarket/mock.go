package polymarket

// mock.go — Ejecutor simulado para correr el bot sin wallet.
//
// Precios fijos y un pequeño delay sintético para que el flujo completo
// (comandos, ledger, respuestas) se pueda probar sin tocar el CLOB.

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xmarket/bot/internal/domain"
)

const (
	mockYesPrice = 0.45
	mockNoPrice  = 0.55
	mockDelay    = 500 * time.Millisecond
)

// MockExecutor implementa ports.TradeExecutor sin ejecutar órdenes reales.
type MockExecutor struct {
	delay time.Duration
}

// NewMockExecutor crea un ejecutor simulado con el delay por defecto.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{delay: mockDelay}
}

// PlaceBet simula una compra a precio fijo. Respeta la cancelación del
// contexto durante el delay.
func (me *MockExecutor) PlaceBet(ctx context.Context, req domain.BetRequest) (domain.BetResult, error) {
	select {
	case <-time.After(me.delay):
	case <-ctx.Done():
		return domain.BetResult{}, ctx.Err()
	}

	price := mockYesPrice
	if req.Side == domain.SideNo {
		price = mockNoPrice
	}

	return domain.BetResult{
		Success:   true,
		OrderID:   "mock-" + uuid.NewString(),
		Shares:    domain.CalculateShares(req.Amount, price),
		Price:     price,
		Simulated: true,
	}, nil
}
