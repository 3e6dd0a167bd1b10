package ports

import (
	"context"

	"github.com/xmarket/bot/internal/domain"
)

// RoutePlanner consulta rutas de bridge en el router externo.
type RoutePlanner interface {
	// Routes devuelve las rutas candidatas ordenadas mejor-primero por el
	// router. Devuelve domain.ErrRouteUnavailable si no hay ninguna.
	// El planner aplica el buffer de slippage sobre el importe pedido.
	Routes(ctx context.Context, fromChainID, toChainID int64, amountUSDC float64, userAddress string) ([]domain.BridgeRoute, error)
}

// BridgeExecutor ejecuta una ruta de bridge previamente planificada.
type BridgeExecutor interface {
	// Execute firma y envía las transacciones de cada step de la ruta,
	// esperando la confirmación de cada una. Bloquea hasta completar o fallar.
	Execute(ctx context.Context, route domain.BridgeRoute) error
}
