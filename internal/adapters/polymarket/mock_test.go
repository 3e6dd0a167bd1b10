package polymarket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmarket/bot/internal/adapters/polymarket"
	"github.com/xmarket/bot/internal/domain"
)

func TestMockExecutor_FixedPrices(t *testing.T) {
	exec := polymarket.NewMockExecutor()

	yes, err := exec.PlaceBet(context.Background(), domain.BetRequest{
		MarketID: "0xmkt",
		Side:     domain.SideYes,
		Amount:   10,
	})
	require.NoError(t, err)
	assert.True(t, yes.Success)
	assert.True(t, yes.Simulated)
	assert.InDelta(t, 0.45, yes.Price, 0.001)
	assert.InDelta(t, 10/0.45, yes.Shares, 0.01)
	assert.Contains(t, yes.OrderID, "mock-")

	no, err := exec.PlaceBet(context.Background(), domain.BetRequest{
		MarketID: "0xmkt",
		Side:     domain.SideNo,
		Amount:   10,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.55, no.Price, 0.001)
}

func TestMockExecutor_RespectsContextCancel(t *testing.T) {
	exec := polymarket.NewMockExecutor()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := exec.PlaceBet(ctx, domain.BetRequest{
		MarketID: "0xmkt",
		Side:     domain.SideYes,
		Amount:   5,
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
