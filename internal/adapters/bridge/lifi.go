package bridge

// lifi.go — Route planning contra el router LI.FI.
//
// Solo planifica: devuelve rutas candidatas con su handle raw. La ejecución
// vive en executor.go. Mismo patrón HTTP que el resto de adapters: timeout
// corto, rate limiting y retries con backoff para errores transitorios.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/xmarket/bot/internal/domain"
	"github.com/xmarket/bot/internal/httpx"
)

const (
	defaultLiFiBase = "https://li.quest/v1"

	// LI.FI permite ~20 req/min sin API key
	lifiRatePerSec = 0.3

	usdcDecimals = 6

	// El importe bridgeado lleva un 1% extra para cubrir fees y slippage,
	// de forma que tras el bridge llegue al menos el importe de la apuesta.
	slippageBuffer = 1.01
)

// usdcByChain son las direcciones USDC que LI.FI espera como token address.
var usdcByChain = map[int64]string{
	1:     "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	137:   "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
	42161: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
	8453:  "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
	10:    "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85",
}

// Client habla con la API de LI.FI. Implementa ports.RoutePlanner.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
	retry   httpx.Policy
}

// NewClient crea un Client. Con base vacío usa el endpoint público.
func NewClient(base string) *Client {
	if base == "" {
		base = defaultLiFiBase
	}
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(lifiRatePerSec, 3),
		retry:   httpx.Default(),
	}
}

// --- DTOs de /advanced/routes ---

type routesRequest struct {
	FromChainID      int64  `json:"fromChainId"`
	ToChainID        int64  `json:"toChainId"`
	FromTokenAddress string `json:"fromTokenAddress"`
	ToTokenAddress   string `json:"toTokenAddress"`
	FromAmount       string `json:"fromAmount"`
	FromAddress      string `json:"fromAddress"`
	ToAddress        string `json:"toAddress"`
}

type routesResponse struct {
	Routes []json.RawMessage `json:"routes"`
}

// lifiRoute extrae los campos que necesitamos de una ruta; el JSON completo
// se conserva como handle opaco para la ejecución.
type lifiRoute struct {
	FromChainID int64      `json:"fromChainId"`
	ToChainID   int64      `json:"toChainId"`
	GasCostUSD  string     `json:"gasCostUSD"`
	Steps       []lifiStep `json:"steps"`
}

type lifiStep struct {
	Tool     string `json:"tool"`
	Estimate struct {
		ExecutionDuration float64 `json:"executionDuration"`
	} `json:"estimate"`
}

// Routes consulta rutas USDC→USDC entre dos chains para amountUSDC más el
// buffer de slippage. Devuelve domain.ErrRouteUnavailable si el router no
// encuentra ninguna ruta.
func (c *Client) Routes(ctx context.Context, fromChainID, toChainID int64, amountUSDC float64, userAddress string) ([]domain.BridgeRoute, error) {
	fromToken, ok := usdcByChain[fromChainID]
	if !ok {
		return nil, fmt.Errorf("bridge.Routes: unsupported source chain %d", fromChainID)
	}
	toToken, ok := usdcByChain[toChainID]
	if !ok {
		return nil, fmt.Errorf("bridge.Routes: unsupported destination chain %d", toChainID)
	}

	req := routesRequest{
		FromChainID:      fromChainID,
		ToChainID:        toChainID,
		FromTokenAddress: fromToken,
		ToTokenAddress:   toToken,
		FromAmount:       toMicroUnits(amountUSDC * slippageBuffer),
		FromAddress:      userAddress,
		ToAddress:        userAddress,
	}

	var resp routesResponse
	if err := c.post(ctx, "/advanced/routes", req, &resp); err != nil {
		return nil, fmt.Errorf("bridge.Routes: %w", err)
	}
	if len(resp.Routes) == 0 {
		return nil, domain.ErrRouteUnavailable
	}

	routes := make([]domain.BridgeRoute, 0, len(resp.Routes))
	for _, raw := range resp.Routes {
		var lr lifiRoute
		if err := json.Unmarshal(raw, &lr); err != nil {
			continue
		}
		routes = append(routes, mapRoute(lr, raw))
	}
	if len(routes) == 0 {
		return nil, domain.ErrRouteUnavailable
	}
	return routes, nil
}

// mapRoute convierte una ruta de LI.FI a domain.BridgeRoute.
func mapRoute(lr lifiRoute, raw json.RawMessage) domain.BridgeRoute {
	r := domain.BridgeRoute{
		FromChainID: lr.FromChainID,
		ToChainID:   lr.ToChainID,
		GasCostUSD:  lr.GasCostUSD,
		RawRoute:    append([]byte(nil), raw...),
	}
	if r.GasCostUSD == "" {
		r.GasCostUSD = "?"
	}
	for _, s := range lr.Steps {
		r.Steps = append(r.Steps, s.Tool)
		r.EstimatedSeconds += int(s.Estimate.ExecutionDuration)
	}
	return r
}

// toMicroUnits convierte USDC legible a unidades mínimas como string decimal.
func toMicroUnits(amount float64) string {
	micro := new(big.Float).Mul(big.NewFloat(amount), big.NewFloat(math.Pow10(usdcDecimals)))
	i, _ := micro.Int(nil)
	return i.String()
}

// post hace un POST JSON con rate limiting y retries.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return httpx.DoJSON(ctx, c.http, c.limiter, c.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("new request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, out)
}
