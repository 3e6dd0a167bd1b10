package commands

// balance.go — Comandos `balance` y `positions`.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xmarket/bot/internal/domain"
	"github.com/xmarket/bot/internal/ports"
)

// handleBalance responde con el balance custodial, lo comprometido en bets
// en vuelo y el número de posiciones activas.
func (h *Handler) handleBalance(ctx context.Context, mention ports.Mention) string {
	user, signupReply, ok := h.requireUser(ctx, mention)
	if !ok {
		return signupReply
	}

	pending, err := h.ledger.PendingBetTotal(ctx, user.ID)
	if err != nil {
		slog.Error("pending total failed", "user", user.ID, "error", err)
		return "something went wrong, please try again"
	}
	positions, err := h.ledger.FilledBets(ctx, user.ID)
	if err != nil {
		slog.Error("filled bets failed", "user", user.ID, "error", err)
		return "something went wrong, please try again"
	}

	reply := fmt.Sprintf("balance: %s", domain.FormatUSDC(user.BalanceUSDC))
	if pending > 0 {
		reply += fmt.Sprintf(" (%s locked in pending bets)", domain.FormatUSDC(pending))
	}
	reply += fmt.Sprintf("\nactive positions: %d", len(positions))
	return reply
}

// handlePositions lista las posiciones filled del usuario.
func (h *Handler) handlePositions(ctx context.Context, mention ports.Mention) string {
	user, signupReply, ok := h.requireUser(ctx, mention)
	if !ok {
		return signupReply
	}

	bets, err := h.ledger.FilledBets(ctx, user.ID)
	if err != nil {
		slog.Error("filled bets failed", "user", user.ID, "error", err)
		return "something went wrong, please try again"
	}
	if len(bets) == 0 {
		return "no open positions — use \"find <query>\" to discover markets"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "your positions (%d):", len(bets))
	shown := 0
	for _, b := range bets {
		if shown >= 5 {
			fmt.Fprintf(&sb, "\n...and %d more", len(bets)-shown)
			break
		}
		fmt.Fprintf(&sb, "\n%s %s on %q — %.2f shares @ %s",
			domain.FormatUSDC(b.AmountUSDC),
			strings.ToUpper(string(b.Side)),
			domain.TruncateQuestion(b.MarketTitle, b.MarketID, 50),
			b.Shares,
			domain.FormatPrice(b.Price),
		)
		shown++
	}
	return sb.String()
}
