package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/xmarket/bot/config"
	"github.com/xmarket/bot/internal/adapters/bridge"
	"github.com/xmarket/bot/internal/adapters/notify"
	"github.com/xmarket/bot/internal/adapters/onchain"
	"github.com/xmarket/bot/internal/adapters/polymarket"
	"github.com/xmarket/bot/internal/adapters/storage"
	"github.com/xmarket/bot/internal/adapters/x"
	"github.com/xmarket/bot/internal/application/betflow"
	"github.com/xmarket/bot/internal/application/commands"
	"github.com/xmarket/bot/internal/application/matcher"
	"github.com/xmarket/bot/internal/domain"
	"github.com/xmarket/bot/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	dryRun := flag.Bool("dry-run", false, "print replies to console instead of posting to X")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	mockMode := cfg.Secrets.WalletPrivateKey == ""
	slog.Info("xmarket bot starting",
		"config", *configPath,
		"poll_interval", cfg.PollInterval(),
		"dry_run", *dryRun,
		"mock_trading", mockMode,
		"destination_chain", cfg.DestinationChain().Name,
	)

	ledger, err := storage.NewSQLiteLedger(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open ledger", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer ledger.Close()

	market := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase)

	resolver, err := onchain.NewResolver(cfg.Chains.Supported)
	if err != nil {
		slog.Error("failed to init chain resolver", "err", err)
		os.Exit(1)
	}
	defer resolver.Close()

	lifi := bridge.NewClient(cfg.API.LiFiBase)

	// Estrategia de ejecución elegida una vez en el arranque:
	// sin private key → mock con precios fijos; con key → CLOB real.
	var executor ports.TradeExecutor
	var bridger ports.BridgeExecutor
	var platformAddress string
	if mockMode {
		executor = polymarket.NewMockExecutor()
		bridger = noopBridger{}
	} else {
		auth, err := polymarket.NewAuthClient(cfg.API.CLOBBase, cfg.API.GammaBase, cfg.Secrets.WalletPrivateKey)
		if err != nil {
			slog.Error("failed to init trading client", "err", err)
			os.Exit(1)
		}
		executor = polymarket.NewLiveExecutor(auth)
		platformAddress = auth.Address()

		bridger, err = bridge.NewExecutor(lifi, cfg.Secrets.WalletPrivateKey, cfg.Chains.Supported)
		if err != nil {
			slog.Error("failed to init bridge executor", "err", err)
			os.Exit(1)
		}
	}

	// Las menciones siempre se leen de X; en dry-run solo cambia dónde
	// se escriben las respuestas.
	source := x.NewClient(cfg.API.XBase, cfg.Secrets)
	var replier ports.Replier = source
	if *dryRun {
		replier = notify.NewConsole()
	}

	newFlow := func() *betflow.Flow {
		return betflow.New(resolver, lifi, bridger, cfg.Chains.DestinationChainID, mockMode)
	}

	handler := commands.New(
		commands.Config{
			MinBetUSDC: cfg.Bot.MinBetUSDC,
			MaxBetUSDC: cfg.Bot.MaxBetUSDC,
			SignupURL:  cfg.Bot.SignupURL,
		},
		ledger,
		matcher.New(market),
		executor,
		replier,
		market,
		newFlow,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// El watcher de depósitos solo corre en modo live: sin wallet de
	// plataforma no hay dirección que observar.
	if !mockMode {
		watcher, err := onchain.NewDepositWatcher(*cfg.DestinationChain(), platformAddress, ledger)
		if err != nil {
			slog.Error("failed to init deposit watcher", "err", err)
			os.Exit(1)
		}
		go watcher.Run(ctx, cfg.DepositInterval())
	}

	poller := commands.NewPoller(source, handler, cfg.PollInterval())
	if err := poller.Run(ctx); err != nil {
		slog.Error("bot exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("xmarket bot stopped cleanly")
}

// noopBridger se usa en modo mock, donde nunca se ejecuta un bridge real.
type noopBridger struct{}

func (noopBridger) Execute(_ context.Context, _ domain.BridgeRoute) error { return nil }

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
