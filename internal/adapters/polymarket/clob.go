package polymarket

import (
	"context"
	"fmt"

	"github.com/xmarket/bot/internal/domain"
)

const (
	bookPath        = "/book"
	clobMarketsPath = "/markets"
)

// FetchOrderBook obtiene el orderbook de un token. Implementa ports.BookProvider.
func (c *Client) FetchOrderBook(ctx context.Context, tokenID string) (domain.OrderBook, error) {
	url := fmt.Sprintf("%s%s?token_id=%s", c.clobBase, bookPath, tokenID)

	var resp bookResponse
	if err := c.get(ctx, c.clobLimiter, url, &resp); err != nil {
		return domain.OrderBook{}, fmt.Errorf("clob.FetchOrderBook: %w", err)
	}
	if resp.AssetID == "" {
		resp.AssetID = tokenID
	}

	return mapOrderBook(resp), nil
}

// marketTokens son los token IDs YES/NO de un mercado, más su flag neg_risk.
type marketTokens struct {
	YesTokenID string
	NoTokenID  string
	NegRisk    bool
}

// fetchMarketTokens resuelve los token IDs de un condition_id vía el CLOB.
func (c *Client) fetchMarketTokens(ctx context.Context, conditionID string) (marketTokens, error) {
	url := fmt.Sprintf("%s%s/%s", c.clobBase, clobMarketsPath, conditionID)

	var resp clobMarket
	if err := c.get(ctx, c.clobLimiter, url, &resp); err != nil {
		return marketTokens{}, fmt.Errorf("clob.fetchMarketTokens %s: %w", conditionID, err)
	}

	var mt marketTokens
	mt.NegRisk = resp.NegRisk
	for _, t := range resp.Tokens {
		switch t.Outcome {
		case "Yes":
			mt.YesTokenID = t.TokenID
		case "No":
			mt.NoTokenID = t.TokenID
		}
	}
	if mt.YesTokenID == "" || mt.NoTokenID == "" {
		return marketTokens{}, fmt.Errorf("clob.fetchMarketTokens %s: incomplete token pair", conditionID)
	}
	return mt, nil
}
