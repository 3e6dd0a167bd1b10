package commands

// handler.go — Dispatcher de comandos de menciones.
//
// Una mención se parsea una vez y se despacha al handler de su comando.
// Toda respuesta sale por el Replier inyectado (X real o consola en dry-run).
// Los errores de upstream se convierten en texto para el usuario: el loop
// de menciones nunca muere por un comando fallido.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xmarket/bot/internal/application/betflow"
	"github.com/xmarket/bot/internal/application/matcher"
	"github.com/xmarket/bot/internal/domain"
	"github.com/xmarket/bot/internal/ports"
)

const usageText = "commands: find <query> | bet <amount> yes|no | balance | positions"

// Config son los límites y textos del handler.
type Config struct {
	MinBetUSDC float64
	MaxBetUSDC float64
	SignupURL  string
}

// Handler procesa menciones y responde.
type Handler struct {
	cfg      Config
	ledger   ports.Ledger
	matcher  *matcher.Matcher
	executor ports.TradeExecutor
	replier  ports.Replier
	markets  ports.MarketProvider
	// newFlow crea un flow por petición: el orquestador guarda estado
	// por sesión y no se comparte entre usuarios.
	newFlow func() *betflow.Flow
}

// New crea un Handler con todas las dependencias inyectadas.
func New(cfg Config, ledger ports.Ledger, m *matcher.Matcher, executor ports.TradeExecutor, replier ports.Replier, markets ports.MarketProvider, newFlow func() *betflow.Flow) *Handler {
	return &Handler{
		cfg:      cfg,
		ledger:   ledger,
		matcher:  m,
		executor: executor,
		replier:  replier,
		markets:  markets,
		newFlow:  newFlow,
	}
}

// HandleMention parsea y ejecuta el comando de una mención, y responde.
func (h *Handler) HandleMention(ctx context.Context, mention ports.Mention) error {
	cmd := domain.ParseCommand(mention.Text)
	slog.Info("mention received",
		"user", mention.Username,
		"command", cmd.Type,
		"tweet", mention.TweetID)

	var reply string
	switch cmd.Type {
	case domain.CmdFind:
		reply = h.handleFind(ctx, mention, cmd)
	case domain.CmdBet:
		reply = h.handleBet(ctx, mention, cmd)
	case domain.CmdBalance:
		reply = h.handleBalance(ctx, mention)
	case domain.CmdPositions:
		reply = h.handlePositions(ctx, mention)
	case domain.CmdUnknown:
		reply = usageText
	default:
		reply = usageText
	}

	if reply == "" {
		return nil
	}
	if err := h.replier.Reply(ctx, mention.TweetID, reply); err != nil {
		return fmt.Errorf("commands.HandleMention: reply: %w", err)
	}
	return nil
}

// requireUser resuelve el usuario de la mención. Usuario no registrado
// devuelve el texto de alta y ok=false.
func (h *Handler) requireUser(ctx context.Context, mention ports.Mention) (domain.User, string, bool) {
	user, err := h.ledger.GetUserByXID(ctx, mention.AuthorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, fmt.Sprintf("you're not signed up yet! create your account at %s", h.cfg.SignupURL), false
		}
		slog.Error("user lookup failed", "user", mention.AuthorID, "error", err)
		return domain.User{}, "something went wrong, please try again", false
	}
	return user, "", true
}
