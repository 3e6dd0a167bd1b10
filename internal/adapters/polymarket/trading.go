package polymarket

// trading.go — Live order execution via the Polymarket CLOB API.
//
// Implements ports.TradeExecutor using AuthClient for L1/L2 auth.
// Bets are placed as FOK market buys at the current best ask: either the
// whole amount fills immediately or the order is rejected, so the ledger
// never ends up with a partially-filled bet.

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/xmarket/bot/internal/domain"
)

// clobOrderRequest is the JSON body sent to POST /order.
type clobOrderRequest struct {
	Order     clobOrderBody `json:"order"`
	Owner     string        `json:"owner"`
	OrderType string        `json:"orderType"`
}

type clobOrderBody struct {
	Salt          json.Number `json:"salt"`
	Maker         string      `json:"maker"`
	Signer        string      `json:"signer"`
	Taker         string      `json:"taker"`
	TokenID       string      `json:"tokenId"`
	MakerAmount   string      `json:"makerAmount"`
	TakerAmount   string      `json:"takerAmount"`
	Expiration    string      `json:"expiration"`
	Nonce         string      `json:"nonce"`
	FeeRateBps    string      `json:"feeRateBps"`
	Side          string      `json:"side"`
	SignatureType int         `json:"signatureType"`
	Signature     string      `json:"signature"`
}

// LiveExecutor implements ports.TradeExecutor against the real CLOB.
type LiveExecutor struct {
	auth *AuthClient
}

// NewLiveExecutor creates a live executor backed by the given auth client.
func NewLiveExecutor(auth *AuthClient) *LiveExecutor {
	return &LiveExecutor{auth: auth}
}

// PlaceBet resolves the market's outcome token, reads the current best ask
// and submits a signed FOK buy for the requested USDC amount.
func (le *LiveExecutor) PlaceBet(ctx context.Context, req domain.BetRequest) (domain.BetResult, error) {
	if err := le.auth.EnsureCreds(ctx); err != nil {
		return domain.BetResult{}, fmt.Errorf("polymarket.PlaceBet: creds: %w", err)
	}

	tokens, err := le.auth.fetchMarketTokens(ctx, req.MarketID)
	if err != nil {
		return domain.BetResult{}, fmt.Errorf("polymarket.PlaceBet: tokens: %w", err)
	}

	tokenID := tokens.YesTokenID
	if req.Side == domain.SideNo {
		tokenID = tokens.NoTokenID
	}
	if tokenID == "" {
		return domain.BetResult{}, fmt.Errorf("polymarket.PlaceBet: market %s has no %s token", req.MarketID, req.Side)
	}

	book, err := le.auth.FetchOrderBook(ctx, tokenID)
	if err != nil {
		return domain.BetResult{}, fmt.Errorf("polymarket.PlaceBet: book: %w", err)
	}
	ask := book.BestAsk()
	if ask <= 0 {
		return domain.BetResult{
			Success: false,
			Error:   "no asks available for this outcome",
		}, nil
	}

	signed, err := le.auth.buildSignedOrder(tokenID, ask, req.Amount, tokens.NegRisk)
	if err != nil {
		return domain.BetResult{}, fmt.Errorf("polymarket.PlaceBet: sign: %w", err)
	}

	body := clobOrderRequest{
		Order: clobOrderBody{
			Salt:          json.Number(signed.Salt.String()),
			Maker:         signed.Maker.Hex(),
			Signer:        signed.Signer.Hex(),
			Taker:         signed.Taker.Hex(),
			TokenID:       tokenID,
			MakerAmount:   signed.MakerAmount.String(),
			TakerAmount:   signed.TakerAmount.String(),
			Expiration:    signed.Expiration.String(),
			Nonce:         signed.Nonce.String(),
			FeeRateBps:    signed.FeeRateBps.String(),
			Side:          "BUY",
			SignatureType: int(signed.SignatureType.Int64()),
			Signature:     "0x" + hex.EncodeToString(signed.Signature),
		},
		Owner:     le.auth.creds.APIKey,
		OrderType: "FOK",
	}

	var resp clobOrderResponse
	if err := le.auth.doL2(ctx, http.MethodPost, "/order", body, &resp); err != nil {
		return domain.BetResult{}, fmt.Errorf("polymarket.PlaceBet: post: %w", err)
	}

	if !resp.Success || resp.ErrorMsg != "" {
		return domain.BetResult{
			Success: false,
			Error:   resp.ErrorMsg,
		}, nil
	}

	// For a BUY: makingAmount is the USDC we spent, takingAmount the shares
	// received, both in micro units. The realized price can differ from the
	// quoted ask.
	spent := parseMicro(resp.MakingAmount)
	shares := parseMicro(resp.TakingAmount)

	price := ask
	if shares > 0 && spent > 0 {
		price = spent / shares
	}
	if shares == 0 {
		shares = domain.CalculateShares(req.Amount, price)
	}

	return domain.BetResult{
		Success: true,
		OrderID: resp.OrderID,
		Shares:  shares,
		Price:   price,
	}, nil
}

// parseMicro converts a micro-unit decimal string ("5000000") to float (5.0).
func parseMicro(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v / 1e6
}
