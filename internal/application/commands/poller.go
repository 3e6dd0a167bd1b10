package commands

// poller.go — Loop de polling de menciones.
//
// Un único loop secuencial: las menciones de un ciclo se procesan en orden
// y un comando fallido no tumba el loop, solo se loggea.

import (
	"context"
	"log/slog"
	"time"

	"github.com/xmarket/bot/internal/ports"
)

// Poller consume menciones periódicamente y las despacha al Handler.
type Poller struct {
	source   ports.MentionSource
	handler  *Handler
	interval time.Duration
}

// NewPoller crea un Poller.
func NewPoller(source ports.MentionSource, handler *Handler, interval time.Duration) *Poller {
	return &Poller{source: source, handler: handler, interval: interval}
}

// Run ejecuta el loop hasta que el contexto se cancele.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("mention poller starting", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("mention poller stopped")
			return nil
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

// cycle procesa las menciones nuevas de un tick.
func (p *Poller) cycle(ctx context.Context) {
	mentions, err := p.source.FetchMentions(ctx)
	if err != nil {
		slog.Error("fetch mentions failed", "error", err)
		return
	}

	for _, m := range mentions {
		if err := p.handler.HandleMention(ctx, m); err != nil {
			slog.Error("mention handling failed", "tweet", m.TweetID, "error", err)
		}
	}
}
