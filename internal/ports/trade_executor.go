package ports

import (
	"context"

	"github.com/xmarket/bot/internal/domain"
)

// TradeExecutor submits buy orders to the prediction market.
//
// Two implementations exist, selected once at construction time: a mock
// (fixed price, synthetic delay, random order id) and a live CLOB client.
// Callers never branch on mode — they only see this interface.
type TradeExecutor interface {
	// PlaceBet executes a market buy. The Price in the result is the
	// realized fill price, which may differ from any earlier quote.
	PlaceBet(ctx context.Context, req domain.BetRequest) (domain.BetResult, error)
}
