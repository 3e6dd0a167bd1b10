package onchain

// balances.go — Lector de balances USDC multi-chain vía JSON-RPC.
//
// Una consulta lanza el balanceOf de todas las chains en paralelo y tolera
// fallos parciales: si el RPC de una chain no responde, esa chain se omite
// del resultado en vez de tumbar la consulta completa.

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"

	"github.com/xmarket/bot/config"
	"github.com/xmarket/bot/internal/domain"
)

const rpcCallTimeout = 8 * time.Second

var erc20ABI abi.ABI

func init() {
	var err error
	erc20ABI, err = abi.JSON(strings.NewReader(`[{
		"name":"balanceOf","type":"function",
		"inputs":[{"name":"account","type":"address"}],
		"outputs":[{"name":"","type":"uint256"}]
	}]`))
	if err != nil {
		panic("erc20 abi: " + err.Error())
	}
}

// chainClient agrupa un RPC client con la config de su chain.
type chainClient struct {
	cfg    config.ChainConfig
	client *ethclient.Client
}

// Resolver implementa ports.BalanceResolver sobre los RPCs configurados.
type Resolver struct {
	chains []chainClient
	byID   map[int64]*chainClient
}

// NewResolver conecta con los RPCs de las chains dadas. Una chain cuyo RPC
// no se puede inicializar se descarta con un warning; con cero chains
// utilizables devuelve error.
func NewResolver(chains []config.ChainConfig) (*Resolver, error) {
	r := &Resolver{byID: make(map[int64]*chainClient)}
	for _, c := range chains {
		client, err := ethclient.Dial(c.RPCURL)
		if err != nil {
			slog.Warn("chain RPC unavailable, skipping", "chain", c.Name, "error", err)
			continue
		}
		r.chains = append(r.chains, chainClient{cfg: c, client: client})
	}
	if len(r.chains) == 0 {
		return nil, fmt.Errorf("onchain.NewResolver: no usable chain RPCs")
	}
	for i := range r.chains {
		r.byID[r.chains[i].cfg.ChainID] = &r.chains[i]
	}
	return r, nil
}

// Close cierra todas las conexiones RPC.
func (r *Resolver) Close() {
	for _, cc := range r.chains {
		cc.client.Close()
	}
}

// Balances consulta el balance USDC de address en todas las chains en
// paralelo, ordenado por balance descendente. Las chains que fallan se
// omiten; solo devuelve error si TODAS fallan.
func (r *Resolver) Balances(ctx context.Context, address string) ([]domain.ChainBalance, error) {
	var (
		mu       sync.Mutex
		balances []domain.ChainBalance
		failed   int
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, cc := range r.chains {
		cc := cc
		g.Go(func() error {
			bal, err := queryBalance(gctx, cc, address)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("balance query failed", "chain", cc.cfg.Name, "error", err)
				failed++
				// fallo parcial tolerado
				return nil
			}
			balances = append(balances, bal)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(balances) == 0 && failed > 0 {
		return nil, fmt.Errorf("onchain.Balances: all %d chains failed", failed)
	}

	sort.Slice(balances, func(i, j int) bool {
		if balances[i].Balance != balances[j].Balance {
			return balances[i].Balance > balances[j].Balance
		}
		return balances[i].ChainID < balances[j].ChainID
	})
	return balances, nil
}

// BalanceOn consulta el balance en una sola chain.
func (r *Resolver) BalanceOn(ctx context.Context, address string, chainID int64) (domain.ChainBalance, error) {
	cc, ok := r.byID[chainID]
	if !ok {
		return domain.ChainBalance{}, fmt.Errorf("onchain.BalanceOn: chain %d not configured", chainID)
	}
	bal, err := queryBalance(ctx, *cc, address)
	if err != nil {
		return domain.ChainBalance{}, fmt.Errorf("onchain.BalanceOn %s: %w", cc.cfg.Name, err)
	}
	return bal, nil
}

// queryBalance hace el eth_call de balanceOf contra el contrato USDC.
func queryBalance(ctx context.Context, cc chainClient, address string) (domain.ChainBalance, error) {
	callCtx, cancel := context.WithTimeout(ctx, rpcCallTimeout)
	defer cancel()

	callData, err := erc20ABI.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return domain.ChainBalance{}, fmt.Errorf("pack balanceOf: %w", err)
	}

	token := common.HexToAddress(cc.cfg.USDCAddress)
	result, err := cc.client.CallContract(callCtx, ethereum.CallMsg{
		To:   &token,
		Data: callData,
	}, nil)
	if err != nil {
		return domain.ChainBalance{}, fmt.Errorf("eth_call: %w", err)
	}

	vals, err := erc20ABI.Unpack("balanceOf", result)
	if err != nil || len(vals) == 0 {
		return domain.ChainBalance{}, fmt.Errorf("unpack balanceOf: %w", err)
	}
	raw := vals[0].(*big.Int)

	divisor := math.Pow10(cc.cfg.USDCDecimals)
	human, _ := new(big.Float).Quo(
		new(big.Float).SetInt(raw),
		new(big.Float).SetFloat64(divisor),
	).Float64()

	return domain.ChainBalance{
		ChainID:    cc.cfg.ChainID,
		ChainName:  cc.cfg.Name,
		Balance:    human,
		BalanceRaw: raw,
	}, nil
}
