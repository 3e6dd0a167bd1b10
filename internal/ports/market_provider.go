package ports

import (
	"context"

	"github.com/xmarket/bot/internal/domain"
)

// MarketProvider obtiene mercados activos desde la API de Gamma.
type MarketProvider interface {
	// FetchActiveMarkets devuelve los mercados abiertos ordenados por volumen.
	FetchActiveMarkets(ctx context.Context) ([]domain.Market, error)

	// FetchMarketByID devuelve un mercado concreto, o error si no existe.
	FetchMarketByID(ctx context.Context, marketID string) (domain.Market, error)
}
