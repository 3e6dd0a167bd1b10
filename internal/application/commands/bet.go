package commands

// bet.go — Comando `bet <amount> [USDC] yes|no [#id]`.
//
// Camino custodial: validar importe → resolver mercado del contexto →
// crear Bet pending → ejecutar → liquidar atómicamente. Ningún camino de
// error deja la Bet en pending.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xmarket/bot/internal/domain"
	"github.com/xmarket/bot/internal/ports"
)

// handleBet ejecuta una apuesta custodial.
func (h *Handler) handleBet(ctx context.Context, mention ports.Mention, cmd domain.ParsedCommand) string {
	user, signupReply, ok := h.requireUser(ctx, mention)
	if !ok {
		return signupReply
	}

	if err := domain.ValidateBetAmount(cmd.Amount, h.cfg.MinBetUSDC, h.cfg.MaxBetUSDC); err != nil {
		return err.Error()
	}

	ref, errReply := h.resolveMarket(ctx, mention.AuthorID, cmd.MarketID)
	if errReply != "" {
		return errReply
	}

	// Balance disponible = custodial menos lo comprometido en bets en vuelo
	pending, err := h.ledger.PendingBetTotal(ctx, user.ID)
	if err != nil {
		slog.Error("pending total failed", "user", user.ID, "error", err)
		return "something went wrong, please try again"
	}
	available := user.BalanceUSDC - pending
	if cmd.Amount > available {
		return h.insufficientReply(ctx, user, cmd.Amount, available)
	}

	bet := domain.Bet{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		MarketID:    ref.ID,
		MarketTitle: ref.Question,
		Side:        cmd.Side,
		AmountUSDC:  cmd.Amount,
		Status:      domain.BetPending,
		TweetID:     mention.TweetID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.ledger.CreateBet(ctx, bet); err != nil {
		slog.Error("create bet failed", "user", user.ID, "error", err)
		return "something went wrong, please try again"
	}

	result, err := h.executor.PlaceBet(ctx, domain.BetRequest{
		MarketID: ref.ID,
		Side:     cmd.Side,
		Amount:   cmd.Amount,
	})
	if err != nil || !result.Success {
		h.failBet(ctx, bet.ID)
		if err != nil {
			slog.Error("bet execution failed", "bet", bet.ID, "error", err)
			return "order execution failed — your balance was not touched, try again"
		}
		return fmt.Sprintf("order rejected: %s — your balance was not touched", result.Error)
	}

	// Debit + fill + transaction en una única transacción de DB
	if err := h.ledger.SettleBetFilled(ctx, bet.ID, result.OrderID, result.Price, result.Shares); err != nil {
		h.failBet(ctx, bet.ID)
		slog.Error("bet settle failed", "bet", bet.ID, "error", err)
		return "order execution failed — your balance was not touched, try again"
	}

	suffix := ""
	if result.Simulated {
		suffix = " (simulated)"
	}
	return fmt.Sprintf(
		"bet placed%s: %s %s on %q\n%.2f shares @ %s",
		suffix,
		domain.FormatUSDC(cmd.Amount),
		strings.ToUpper(string(cmd.Side)),
		domain.TruncateQuestion(ref.Question, ref.ID, 80),
		result.Shares,
		domain.FormatPrice(result.Price),
	)
}

// resolveMarket resuelve la apuesta contra la última búsqueda del usuario.
// Con short id (#a1b2c3d4) matchea por prefijo dentro del contexto; sin id
// usa el primer resultado. Un condition id completo se resuelve contra Gamma
// aunque no venga de la última búsqueda.
func (h *Handler) resolveMarket(ctx context.Context, xUserID, shortID string) (domain.MarketRef, string) {
	refs, err := h.ledger.LastMarkets(ctx, xUserID)
	noContext := errors.Is(err, domain.ErrNoRecentMarkets)
	if err != nil && !noContext {
		slog.Error("load search context failed", "user", xUserID, "error", err)
		return domain.MarketRef{}, "something went wrong, please try again"
	}

	if shortID == "" {
		if noContext {
			return domain.MarketRef{}, "no recent markets — use \"find <query>\" first, then bet on a result"
		}
		return refs[0], ""
	}

	for _, ref := range refs {
		if strings.HasPrefix(ref.ID, shortID) ||
			strings.HasPrefix(strings.TrimPrefix(ref.ID, "0x"), shortID) {
			return ref, ""
		}
	}

	// Los short ids solo existen dentro del contexto; un id más largo puede
	// ser un condition id real.
	if len(shortID) > 10 {
		if m, err := h.markets.FetchMarketByID(ctx, shortID); err == nil {
			return domain.MarketRef{
				ID:       m.ID,
				Question: m.Question,
				YesPrice: m.YesPrice(),
				NoPrice:  m.NoPrice(),
			}, ""
		}
	}
	if noContext {
		return domain.MarketRef{}, "no recent markets — use \"find <query>\" first, then bet on a result"
	}
	return domain.MarketRef{}, fmt.Sprintf("#%s doesn't match your last search — run \"find\" again", shortID)
}

// insufficientReply construye la respuesta de fondos insuficientes. Si el
// usuario tiene wallet vinculada, corre el flow self-custodial para sugerir
// un bridge o listar sus balances on-chain.
func (h *Handler) insufficientReply(ctx context.Context, user domain.User, amount, available float64) string {
	base := fmt.Sprintf("insufficient balance: you have %s available, need %s",
		domain.FormatUSDC(available), domain.FormatUSDC(amount))

	if user.WalletAddress == "" || h.newFlow == nil {
		return base + " — deposit USDC to top up"
	}

	flow := h.newFlow()
	prep := flow.Prepare(ctx, amount, user.WalletAddress)

	switch prep.Status {
	case domain.FlowReady, domain.FlowSimulated:
		return base + fmt.Sprintf("\nyour wallet already holds %s on the trading chain — deposit from there",
			domain.FormatUSDC(prep.DestinationBalance))
	case domain.FlowNeedsBridge:
		route := prep.ChosenRoute
		return base + fmt.Sprintf(
			"\nyour wallet has %s on %s — bridge it via %s (~%d min, gas ~$%s) and deposit",
			domain.FormatUSDC(prep.SourceChain.Balance),
			prep.SourceChain.ChainName,
			strings.Join(route.Steps, "→"),
			route.EstimatedMinutes(),
			route.GasCostUSD,
		)
	case domain.FlowInsufficient:
		return base + fmt.Sprintf("\nyour wallet holds %s across all chains — not enough to cover this bet",
			domain.FormatUSDC(domain.TotalBalance(prep.AllBalances)))
	case domain.FlowError:
		slog.Warn("wallet scan for suggestion failed", "user", user.ID, "error", prep.Error)
		return base + " — deposit USDC to top up"
	default:
		return base + " — deposit USDC to top up"
	}
}

// failBet deja la bet en estado terminal failed; best-effort.
func (h *Handler) failBet(ctx context.Context, betID string) {
	if err := h.ledger.MarkBetFailed(ctx, betID); err != nil {
		slog.Error("mark bet failed errored", "bet", betID, "error", err)
	}
}
