package onchain_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmarket/bot/config"
	"github.com/xmarket/bot/internal/adapters/onchain"
)

// newRPCServer levanta un nodo JSON-RPC de mentira que responde a eth_call
// con el balance dado (uint256 en raw units).
func newRPCServer(t *testing.T, balance *big.Int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "eth_call", req.Method)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":"0x%064x"}`, req.ID, balance)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newBrokenRPCServer simula un RPC caído.
func newBrokenRPCServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "node down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func chainCfg(id int64, name, rpcURL string) config.ChainConfig {
	return config.ChainConfig{
		ChainID:      id,
		Name:         name,
		RPCURL:       rpcURL,
		USDCAddress:  "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
		USDCDecimals: 6,
	}
}

const testAddress = "0x1111111111111111111111111111111111111111"

func TestBalances_SortsDescending(t *testing.T) {
	polygon := newRPCServer(t, big.NewInt(5_000_000))     // 5 USDC
	arbitrum := newRPCServer(t, big.NewInt(120_000_000))  // 120 USDC
	base := newRPCServer(t, big.NewInt(500_000))          // 0.50 USDC

	resolver, err := onchain.NewResolver([]config.ChainConfig{
		chainCfg(137, "Polygon", polygon.URL),
		chainCfg(42161, "Arbitrum", arbitrum.URL),
		chainCfg(8453, "Base", base.URL),
	})
	require.NoError(t, err)
	defer resolver.Close()

	balances, err := resolver.Balances(context.Background(), testAddress)
	require.NoError(t, err)
	require.Len(t, balances, 3)

	assert.Equal(t, "Arbitrum", balances[0].ChainName)
	assert.Equal(t, 120.0, balances[0].Balance)
	assert.Equal(t, "Polygon", balances[1].ChainName)
	assert.Equal(t, 5.0, balances[1].Balance)
	assert.Equal(t, "Base", balances[2].ChainName)
	assert.Equal(t, 0.5, balances[2].Balance)
	assert.Equal(t, big.NewInt(120_000_000), balances[0].BalanceRaw)

	// Segunda consulta: mismo orden, las goroutines no alteran el resultado.
	again, err := resolver.Balances(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, balances, again)
}

func TestBalances_EqualBalancesOrderByChainID(t *testing.T) {
	a := newRPCServer(t, big.NewInt(10_000_000))
	b := newRPCServer(t, big.NewInt(10_000_000))

	resolver, err := onchain.NewResolver([]config.ChainConfig{
		chainCfg(42161, "Arbitrum", a.URL),
		chainCfg(137, "Polygon", b.URL),
	})
	require.NoError(t, err)
	defer resolver.Close()

	balances, err := resolver.Balances(context.Background(), testAddress)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, int64(137), balances[0].ChainID)
	assert.Equal(t, int64(42161), balances[1].ChainID)
}

func TestBalances_OmitsFailingChain(t *testing.T) {
	healthy := newRPCServer(t, big.NewInt(42_000_000))
	broken := newBrokenRPCServer(t)

	resolver, err := onchain.NewResolver([]config.ChainConfig{
		chainCfg(137, "Polygon", healthy.URL),
		chainCfg(8453, "Base", broken.URL),
	})
	require.NoError(t, err)
	defer resolver.Close()

	balances, err := resolver.Balances(context.Background(), testAddress)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "Polygon", balances[0].ChainName)
	assert.Equal(t, 42.0, balances[0].Balance)
}

func TestBalances_ErrorWhenAllChainsFail(t *testing.T) {
	broken := newBrokenRPCServer(t)

	resolver, err := onchain.NewResolver([]config.ChainConfig{
		chainCfg(137, "Polygon", broken.URL),
	})
	require.NoError(t, err)
	defer resolver.Close()

	_, err = resolver.Balances(context.Background(), testAddress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 1 chains failed")
}

func TestBalanceOn(t *testing.T) {
	srv := newRPCServer(t, big.NewInt(7_500_000))

	resolver, err := onchain.NewResolver([]config.ChainConfig{
		chainCfg(137, "Polygon", srv.URL),
	})
	require.NoError(t, err)
	defer resolver.Close()

	bal, err := resolver.BalanceOn(context.Background(), testAddress, 137)
	require.NoError(t, err)
	assert.Equal(t, 7.5, bal.Balance)
	assert.Equal(t, int64(137), bal.ChainID)

	_, err = resolver.BalanceOn(context.Background(), testAddress, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain 1 not configured")
}

func TestNewResolver_NoUsableChains(t *testing.T) {
	_, err := onchain.NewResolver([]config.ChainConfig{
		chainCfg(137, "Polygon", "://not-a-url"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable chain RPCs")
}
