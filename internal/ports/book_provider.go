package ports

import (
	"context"

	"github.com/xmarket/bot/internal/domain"
)

// BookProvider obtiene orderbooks del CLOB.
type BookProvider interface {
	// FetchOrderBook devuelve el orderbook del token dado.
	FetchOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error)
}
