package polymarket

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xmarket/bot/internal/domain"
)

const (
	gammaMarketsPath = "/markets"
	gammaPageSize    = 100
)

// FetchActiveMarkets devuelve los mercados abiertos ordenados por volumen
// descendente. Implementa ports.MarketProvider.
func (c *Client) FetchActiveMarkets(ctx context.Context) ([]domain.Market, error) {
	url := fmt.Sprintf("%s%s?limit=%d&closed=false&order=volume&ascending=false&offset=0",
		c.gammaBase, gammaMarketsPath, gammaPageSize)

	var resp []gammaMarket
	if err := c.get(ctx, c.gammaLimiter, url, &resp); err != nil {
		return nil, fmt.Errorf("gamma.FetchActiveMarkets: %w", err)
	}

	markets := make([]domain.Market, 0, len(resp))
	for _, gm := range resp {
		m := mapGammaMarket(gm)
		if !m.Active {
			continue
		}
		markets = append(markets, m)
	}

	slog.Debug("active markets fetched", "count", len(markets))
	return markets, nil
}

// FetchMarketByID devuelve la metadata de un mercado concreto de Gamma.
func (c *Client) FetchMarketByID(ctx context.Context, marketID string) (domain.Market, error) {
	url := fmt.Sprintf("%s%s?condition_ids=%s&limit=1", c.gammaBase, gammaMarketsPath, marketID)

	var resp []gammaMarket
	if err := c.get(ctx, c.gammaLimiter, url, &resp); err != nil {
		return domain.Market{}, fmt.Errorf("gamma.FetchMarketByID %s: %w", marketID, err)
	}
	if len(resp) == 0 {
		return domain.Market{}, fmt.Errorf("gamma.FetchMarketByID %s: market not found", marketID)
	}

	return mapGammaMarket(resp[0]), nil
}
