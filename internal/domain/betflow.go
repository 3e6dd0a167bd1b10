package domain

// betflow.go — bridge-aware bet preparation flow types.
//
// The flow status is a closed enum rather than free-form strings so every
// consumption site can switch exhaustively over it.

// BetFlowStatus is the state of one bet preparation flow.
type BetFlowStatus int

const (
	FlowIdle BetFlowStatus = iota
	FlowCheckingDestination
	FlowScanningChains
	FlowGettingRoute
	FlowReady          // destination chain has enough — place bet directly
	FlowNeedsBridge    // route fetched, waiting for user to confirm bridge
	FlowBridging       // bridge tx in flight
	FlowBridgeComplete // USDC arrived on the destination chain
	FlowInsufficient   // not enough USDC anywhere
	FlowSimulated      // demo mode terminal, equivalent to ready
	FlowError
)

// String returns the wire/UI label for the status.
func (s BetFlowStatus) String() string {
	switch s {
	case FlowIdle:
		return "idle"
	case FlowCheckingDestination:
		return "checking-destination"
	case FlowScanningChains:
		return "scanning-chains"
	case FlowGettingRoute:
		return "getting-route"
	case FlowReady:
		return "ready"
	case FlowNeedsBridge:
		return "needs-bridge"
	case FlowBridging:
		return "bridging"
	case FlowBridgeComplete:
		return "bridge-complete"
	case FlowInsufficient:
		return "insufficient"
	case FlowSimulated:
		return "simulated"
	case FlowError:
		return "error"
	}
	return "unknown"
}

// Terminal reports whether the flow cannot advance further without a new
// user action (ready/simulated/bridge-complete) or at all (insufficient/error).
func (s BetFlowStatus) Terminal() bool {
	switch s {
	case FlowReady, FlowSimulated, FlowBridgeComplete, FlowInsufficient, FlowError:
		return true
	case FlowIdle, FlowCheckingDestination, FlowScanningChains, FlowGettingRoute,
		FlowNeedsBridge, FlowBridging:
		return false
	}
	return false
}

// BetFlowResult is the full outcome of one flow step. Each transition produces
// a fresh value; the orchestrator owns it for the duration of one user flow.
// Terminal states always carry enough data for the caller to render without
// another round trip.
type BetFlowResult struct {
	Status             BetFlowStatus
	AmountUSDC         float64
	DestinationBalance float64
	SourceChain        *ChainBalance  // set from needs-bridge onwards
	AllBalances        []ChainBalance // set when the full scan ran
	ChosenRoute        *BridgeRoute   // set from needs-bridge onwards
	Error              string
}
