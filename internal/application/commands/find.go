package commands

// find.go — Comando `find <query>`.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xmarket/bot/internal/domain"
	"github.com/xmarket/bot/internal/ports"
)

// handleFind busca mercados, guarda el top como contexto del usuario y
// responde con el mejor resultado.
func (h *Handler) handleFind(ctx context.Context, mention ports.Mention, cmd domain.ParsedCommand) string {
	if strings.TrimSpace(cmd.Query) == "" {
		return "tell me what to search: find <query>"
	}

	results, err := h.matcher.Search(ctx, cmd.Query)
	if err != nil {
		slog.Error("market search failed", "query", cmd.Query, "error", err)
		return "market search is unavailable right now, try again in a bit"
	}
	if len(results) == 0 {
		return fmt.Sprintf("no markets found for %q — try different keywords", cmd.Query)
	}

	refs := make([]domain.MarketRef, 0, len(results))
	for _, r := range results {
		refs = append(refs, domain.MarketRef{
			ID:       r.Market.ID,
			Question: r.Market.Question,
			YesPrice: r.Market.YesPrice(),
			NoPrice:  r.Market.NoPrice(),
		})
	}
	if err := h.ledger.SaveLastMarkets(ctx, mention.AuthorID, refs); err != nil {
		slog.Error("save search context failed", "user", mention.AuthorID, "error", err)
	}

	top := results[0].Market
	return fmt.Sprintf(
		"%s\nYES %s | NO %s | vol %s\nreply \"bet <amount> yes|no\" to bet on it (#%s)",
		domain.TruncateQuestion(top.Question, top.ID, 120),
		domain.FormatPrice(top.YesPrice()),
		domain.FormatPrice(top.NoPrice()),
		domain.FormatLargeNumber(top.Volume),
		top.ShortID(),
	)
}
