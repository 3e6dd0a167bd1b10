package betflow

// flow.go — Orquestador del flujo de apuesta self-custodial.
//
// Máquina de estados sobre domain.BetFlowStatus:
//
//	idle → checking-destination → (ready | scanning-chains)
//	     → (needs-bridge | insufficient | error)
//	     → bridging → (bridge-complete | error)
//
// Cada llamada es síncrona y cada estado terminal lleva los datos
// necesarios para renderizar la respuesta sin más round trips. El resultado
// se reemplaza completo en cada transición; una instancia de Flow sirve a
// un único usuario/sesión y no se comparte.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xmarket/bot/internal/domain"
	"github.com/xmarket/bot/internal/ports"
)

// Flow orquesta la preparación y el bridge de una apuesta.
type Flow struct {
	resolver    ports.BalanceResolver
	planner     ports.RoutePlanner
	bridger     ports.BridgeExecutor
	destChainID int64
	simulated   bool // modo demo: ready se reporta como simulated

	result domain.BetFlowResult
}

// New crea un Flow. Con simulated=true el estado ready se sustituye por
// simulated (ejecución real deshabilitada).
func New(resolver ports.BalanceResolver, planner ports.RoutePlanner, bridger ports.BridgeExecutor, destChainID int64, simulated bool) *Flow {
	return &Flow{
		resolver:    resolver,
		planner:     planner,
		bridger:     bridger,
		destChainID: destChainID,
		simulated:   simulated,
		result:      domain.BetFlowResult{Status: domain.FlowIdle},
	}
}

// Result devuelve el último resultado del flow.
func (f *Flow) Result() domain.BetFlowResult {
	return f.result
}

// Prepare ejecuta el flujo desde idle hasta el primer estado terminal o
// needs-bridge: comprueba el balance en destino, escanea el resto de chains
// si hace falta y planifica la ruta de bridge.
func (f *Flow) Prepare(ctx context.Context, amountUSDC float64, address string) domain.BetFlowResult {
	f.transition(domain.BetFlowResult{
		Status:     domain.FlowCheckingDestination,
		AmountUSDC: amountUSDC,
	})

	dest, err := f.resolver.BalanceOn(ctx, address, f.destChainID)
	if err != nil {
		return f.fail(amountUSDC, fmt.Sprintf("destination balance check failed: %v", err))
	}

	if dest.Balance >= amountUSDC {
		ready := domain.FlowReady
		if f.simulated {
			ready = domain.FlowSimulated
		}
		return f.transition(domain.BetFlowResult{
			Status:             ready,
			AmountUSDC:         amountUSDC,
			DestinationBalance: dest.Balance,
		})
	}

	f.transition(domain.BetFlowResult{
		Status:             domain.FlowScanningChains,
		AmountUSDC:         amountUSDC,
		DestinationBalance: dest.Balance,
	})

	balances, err := f.resolver.Balances(ctx, address)
	if err != nil {
		return f.fail(amountUSDC, fmt.Sprintf("chain scan failed: %v", err))
	}

	source, needsBridge := SelectSource(balances, amountUSDC, f.destChainID)
	total := domain.TotalBalance(balances)

	if source == nil || total < amountUSDC {
		return f.transition(domain.BetFlowResult{
			Status:             domain.FlowInsufficient,
			AmountUSDC:         amountUSDC,
			DestinationBalance: dest.Balance,
			AllBalances:        balances,
		})
	}
	if !needsBridge {
		// El rescan encontró fondos suficientes en destino
		ready := domain.FlowReady
		if f.simulated {
			ready = domain.FlowSimulated
		}
		return f.transition(domain.BetFlowResult{
			Status:             ready,
			AmountUSDC:         amountUSDC,
			DestinationBalance: source.Balance,
			AllBalances:        balances,
		})
	}

	f.transition(domain.BetFlowResult{
		Status:             domain.FlowGettingRoute,
		AmountUSDC:         amountUSDC,
		DestinationBalance: dest.Balance,
		SourceChain:        source,
		AllBalances:        balances,
	})

	routes, err := f.planner.Routes(ctx, source.ChainID, f.destChainID, amountUSDC, address)
	if err != nil {
		if errors.Is(err, domain.ErrRouteUnavailable) {
			return f.fail(amountUSDC, fmt.Sprintf("no bridge route from %s", source.ChainName))
		}
		return f.fail(amountUSDC, fmt.Sprintf("route planning failed: %v", err))
	}

	best := routes[0]
	slog.Info("bridge route planned",
		"from", source.ChainName,
		"steps", best.Steps,
		"eta_min", best.EstimatedMinutes(),
		"gas_usd", best.GasCostUSD)

	return f.transition(domain.BetFlowResult{
		Status:             domain.FlowNeedsBridge,
		AmountUSDC:         amountUSDC,
		DestinationBalance: dest.Balance,
		SourceChain:        source,
		AllBalances:        balances,
		ChosenRoute:        &best,
	})
}

// ExecuteBridge ejecuta la ruta elegida de un resultado needs-bridge.
// Bloquea hasta que el bridge se complete o falle.
func (f *Flow) ExecuteBridge(ctx context.Context, prepared domain.BetFlowResult) domain.BetFlowResult {
	if prepared.Status != domain.FlowNeedsBridge || prepared.ChosenRoute == nil {
		return f.fail(prepared.AmountUSDC, fmt.Sprintf("cannot bridge from status %s", prepared.Status))
	}

	bridging := prepared
	bridging.Status = domain.FlowBridging
	f.transition(bridging)

	if err := f.bridger.Execute(ctx, *prepared.ChosenRoute); err != nil {
		return f.fail(prepared.AmountUSDC, fmt.Sprintf("bridge execution failed: %v", err))
	}

	done := prepared
	done.Status = domain.FlowBridgeComplete
	return f.transition(done)
}

// transition reemplaza el resultado completo y lo devuelve.
func (f *Flow) transition(r domain.BetFlowResult) domain.BetFlowResult {
	slog.Debug("bet flow transition", "from", f.result.Status, "to", r.Status)
	f.result = r
	return r
}

func (f *Flow) fail(amount float64, msg string) domain.BetFlowResult {
	return f.transition(domain.BetFlowResult{
		Status:     domain.FlowError,
		AmountUSDC: amount,
		Error:      msg,
	})
}
