package onchain

// watcher.go — Watcher de depósitos USDC en la chain destino.
//
// Escanea eventos Transfer del contrato USDC cuyo destinatario es la wallet
// de la plataforma y acredita el depósito al usuario dueño de la wallet
// emisora. La atribución es por sender: el usuario registra su wallet al
// darse de alta y todo Transfer desde ella cuenta como depósito suyo.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/xmarket/bot/config"
	"github.com/xmarket/bot/internal/domain"
	"github.com/xmarket/bot/internal/ports"
)

// topic0 del evento Transfer(address,address,uint256)
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// maxBlockRange limita el rango de cada eth_getLogs; los RPCs públicos
// rechazan rangos grandes.
const maxBlockRange = 2000

// DepositWatcher acredita depósitos on-chain en el ledger.
type DepositWatcher struct {
	client    *ethclient.Client
	ledger    ports.Ledger
	chain     config.ChainConfig
	platform  common.Address
	lastBlock uint64
}

// NewDepositWatcher conecta con el RPC de la chain destino.
// platformAddress es la wallet que recibe los depósitos.
func NewDepositWatcher(chain config.ChainConfig, platformAddress string, ledger ports.Ledger) (*DepositWatcher, error) {
	client, err := ethclient.Dial(chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("onchain.NewDepositWatcher: dial %s: %w", chain.Name, err)
	}
	return &DepositWatcher{
		client:   client,
		ledger:   ledger,
		chain:    chain,
		platform: common.HexToAddress(platformAddress),
	}, nil
}

// Run escanea depósitos cada interval hasta que el contexto se cancele.
// El primer scan arranca desde el bloque actual: los depósitos anteriores
// al boot ya quedaron acreditados en una ejecución previa (CreditDeposit
// es idempotente sobre txHash, así que repetir un rango es inocuo).
func (dw *DepositWatcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			dw.client.Close()
			return
		case <-ticker.C:
			if err := dw.scan(ctx); err != nil {
				slog.Error("deposit scan failed", "chain", dw.chain.Name, "error", err)
			}
		}
	}
}

// scan procesa los Transfer hacia la plataforma desde el último bloque visto.
func (dw *DepositWatcher) scan(ctx context.Context) error {
	head, err := dw.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("block number: %w", err)
	}

	if dw.lastBlock == 0 {
		dw.lastBlock = head
		return nil
	}
	if head <= dw.lastBlock {
		return nil
	}

	from := dw.lastBlock + 1
	to := head
	if to-from > maxBlockRange {
		to = from + maxBlockRange
	}

	// El segundo topic indexado de Transfer es el destinatario
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{common.HexToAddress(dw.chain.USDCAddress)},
		Topics: [][]common.Hash{
			{transferTopic},
			nil,
			{common.BytesToHash(dw.platform.Bytes())},
		},
	}

	logs, err := dw.client.FilterLogs(ctx, query)
	if err != nil {
		return fmt.Errorf("filter logs [%d,%d]: %w", from, to, err)
	}

	for _, lg := range logs {
		if err := dw.credit(ctx, lg.Topics, lg.Data, lg.TxHash.Hex()); err != nil {
			slog.Error("deposit credit failed", "tx", lg.TxHash.Hex(), "error", err)
		}
	}

	dw.lastBlock = to
	return nil
}

// credit atribuye un Transfer a un usuario y lo acredita en el ledger.
func (dw *DepositWatcher) credit(ctx context.Context, topics []common.Hash, data []byte, txHash string) error {
	if len(topics) < 3 {
		return fmt.Errorf("malformed transfer log")
	}
	sender := common.BytesToAddress(topics[1].Bytes())

	user, err := dw.ledger.GetUserByWallet(ctx, sender.Hex())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Transfer de una wallet no registrada, se ignora
			slog.Debug("deposit from unknown wallet", "from", sender.Hex(), "tx", txHash)
			return nil
		}
		return fmt.Errorf("lookup wallet %s: %w", sender.Hex(), err)
	}

	raw := new(big.Int).SetBytes(data)
	amount, _ := new(big.Float).Quo(
		new(big.Float).SetInt(raw),
		new(big.Float).SetFloat64(math.Pow10(dw.chain.USDCDecimals)),
	).Float64()
	if amount <= 0 {
		return nil
	}

	if err := dw.ledger.CreditDeposit(ctx, user.ID, amount, txHash); err != nil {
		return fmt.Errorf("credit user %s: %w", user.ID, err)
	}

	slog.Info("deposit credited",
		"user", user.XUsername,
		"amount", amount,
		"tx", txHash)
	return nil
}
