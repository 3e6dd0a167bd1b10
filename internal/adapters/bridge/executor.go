package bridge

// executor.go — Ejecución de rutas de bridge.
//
// Para cada step de la ruta pide a LI.FI la transacción concreta, la firma
// con la private key de la plataforma, la envía por el RPC de la chain
// origen y espera el receipt antes de pasar al siguiente step.

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/xmarket/bot/config"
	"github.com/xmarket/bot/internal/domain"
)

const (
	receiptPollInterval = 3 * time.Second
	receiptTimeout      = 5 * time.Minute
)

// Executor implementa ports.BridgeExecutor sobre LI.FI.
type Executor struct {
	client     *Client
	privateKey *ecdsa.PrivateKey
	address    common.Address
	rpcByChain map[int64]string
}

// NewExecutor crea un Executor con la key de la plataforma y los RPCs
// de las chains configuradas.
func NewExecutor(client *Client, privateKeyHex string, chains []config.ChainConfig) (*Executor, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("bridge.NewExecutor: invalid private key: %w", err)
	}

	rpcs := make(map[int64]string, len(chains))
	for _, c := range chains {
		rpcs[c.ChainID] = c.RPCURL
	}

	return &Executor{
		client:     client,
		privateKey: key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
		rpcByChain: rpcs,
	}, nil
}

// --- DTOs de /advanced/stepTransaction ---

type stepTransactionResponse struct {
	TransactionRequest txRequest `json:"transactionRequest"`
}

type txRequest struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	GasPrice string `json:"gasPrice"`
	GasLimit string `json:"gasLimit"`
	ChainID  int64  `json:"chainId"`
}

// rawRouteSteps extrae los steps raw del handle de la ruta.
type rawRoute struct {
	Steps []json.RawMessage `json:"steps"`
}

// Execute firma y envía cada step de la ruta, esperando confirmación
// entre steps. Un step fallido aborta la ruta completa.
func (e *Executor) Execute(ctx context.Context, route domain.BridgeRoute) error {
	rpcURL, ok := e.rpcByChain[route.FromChainID]
	if !ok {
		return fmt.Errorf("bridge.Execute: no RPC for chain %d", route.FromChainID)
	}
	rpc, err := ethclient.Dial(rpcURL)
	if err != nil {
		return fmt.Errorf("bridge.Execute: dial rpc: %w", err)
	}
	defer rpc.Close()

	var rr rawRoute
	if err := json.Unmarshal(route.RawRoute, &rr); err != nil {
		return fmt.Errorf("bridge.Execute: parse route: %w", err)
	}
	if len(rr.Steps) == 0 {
		return fmt.Errorf("bridge.Execute: route has no steps")
	}

	for i, rawStep := range rr.Steps {
		slog.Info("executing bridge step",
			"step", i+1,
			"total", len(rr.Steps),
			"from_chain", route.FromChainID,
			"to_chain", route.ToChainID)

		var resp stepTransactionResponse
		if err := e.client.post(ctx, "/advanced/stepTransaction", rawStep, &resp); err != nil {
			return fmt.Errorf("bridge.Execute: step %d transaction: %w", i+1, err)
		}

		txHash, err := e.sendStep(ctx, rpc, resp.TransactionRequest)
		if err != nil {
			return fmt.Errorf("bridge.Execute: step %d send: %w", i+1, err)
		}

		if err := e.waitReceipt(ctx, rpc, txHash); err != nil {
			return fmt.Errorf("bridge.Execute: step %d confirm: %w", i+1, err)
		}
		slog.Info("bridge step confirmed", "step", i+1, "tx", txHash.Hex())
	}
	return nil
}

// sendStep firma y envía la transacción de un step.
func (e *Executor) sendStep(ctx context.Context, rpc *ethclient.Client, req txRequest) (common.Hash, error) {
	nonce, err := rpc.PendingNonceAt(ctx, e.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("nonce: %w", err)
	}

	value := new(big.Int)
	if req.Value != "" {
		if v, err := hexutil.DecodeBig(req.Value); err == nil {
			value = v
		}
	}

	gasPrice, err := parseHexBig(req.GasPrice)
	if err != nil || gasPrice.Sign() == 0 {
		gasPrice, err = rpc.SuggestGasPrice(ctx)
		if err != nil {
			return common.Hash{}, fmt.Errorf("gas price: %w", err)
		}
	}

	gasLimit := uint64(500_000)
	if gl, err := hexutil.DecodeUint64(req.GasLimit); err == nil && gl > 0 {
		gasLimit = gl
	}

	data, err := hexutil.Decode(req.Data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("calldata: %w", err)
	}
	to := common.HexToAddress(req.To)

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	chainID := big.NewInt(req.ChainID)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), e.privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign: %w", err)
	}

	if err := rpc.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send: %w", err)
	}
	return signed.Hash(), nil
}

// waitReceipt espera hasta receiptTimeout a que la transacción se mine.
func (e *Executor) waitReceipt(ctx context.Context, rpc *ethclient.Client, txHash common.Hash) error {
	waitCtx, cancel := context.WithTimeout(ctx, receiptTimeout)
	defer cancel()

	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			return fmt.Errorf("tx %s not mined: %w", txHash.Hex(), waitCtx.Err())
		case <-ticker.C:
			receipt, err := rpc.TransactionReceipt(waitCtx, txHash)
			if err != nil {
				continue
			}
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("tx %s reverted", txHash.Hex())
			}
			return nil
		}
	}
}

// parseHexBig parsea un valor hex "0x..." a big.Int. Vacío → 0.
func parseHexBig(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	return hexutil.DecodeBig(s)
}
