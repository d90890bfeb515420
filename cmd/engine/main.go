package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cjarmstrong/edgehound/config"
	"github.com/cjarmstrong/edgehound/internal/adapters/calibrate"
	"github.com/cjarmstrong/edgehound/internal/adapters/consensus"
	"github.com/cjarmstrong/edgehound/internal/adapters/notify"
	"github.com/cjarmstrong/edgehound/internal/adapters/storage"
	"github.com/cjarmstrong/edgehound/internal/adapters/venues"
	"github.com/cjarmstrong/edgehound/internal/engine"
	"github.com/cjarmstrong/edgehound/internal/ports"
	"github.com/cjarmstrong/edgehound/internal/resolver"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	dryRun := flag.Bool("dry-run", false, "use an in-memory ledger (nothing persisted)")
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

	if *dryRun {
		cfg.Storage.DSN = ":memory:"
		slog.Info("dry run: ledger in memory, alerts will not persist")
	}

	leagues := cfg.EnabledLeagues()
	slog.Info("edgehound starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"leagues", leagues,
		"once", *once,
	)

	// Sin calibrador no hay sizing honesto: abortar, nunca stakear con
	// probabilidades sin calibrar.
	calibrator, err := calibrate.Load(cfg.Model.Path)
	if err != nil {
		slog.Error("failed to load calibration model", "err", err, "path", cfg.Model.Path)
		os.Exit(1)
	}
	slog.Info("calibration model loaded", "version", calibrator.Version())

	ledger, err := storage.NewSQLiteLedger(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open ledger", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer ledger.Close()

	fileProviders, err := venues.Discover(cfg.Venues.Dir)
	if err != nil {
		slog.Error("failed to discover venues", "err", err, "dir", cfg.Venues.Dir)
		os.Exit(1)
	}
	providers := make([]ports.VenueProvider, 0, len(fileProviders))
	for _, p := range fileProviders {
		slog.Debug("venue registered", "venue", p.Name())
		providers = append(providers, p)
	}

	client := consensus.NewClient(cfg.Consensus.BaseURL, cfg.Consensus.APIKey)

	resCfg := resolver.DefaultConfig()
	resCfg.Threshold = cfg.Engine.MatchThreshold
	resCfg.TimeTolerance = cfg.TimeTolerance()

	engCfg := engine.DefaultConfig()
	engCfg.Leagues = leagues
	engCfg.ScanInterval = cfg.ScanInterval()
	engCfg.Alpha = cfg.Engine.Alpha
	engCfg.Window = cfg.Window()
	engCfg.InitialBankroll = cfg.Engine.InitialBankroll
	engCfg.MinConsensusSources = cfg.Engine.MinConsensusSources
	engCfg.StakeMultiplier = cfg.Engine.StakeMultiplier
	engCfg.CollectWorkers = cfg.Engine.CollectWorkers
	engCfg.RunOnce = *once

	e := engine.New(
		engCfg,
		providers,
		client,
		ledger,
		notify.NewConsole(),
		resolver.New(resCfg, resolver.NameScorer{}),
		calibrator,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := e.Run(ctx); err != nil {
		slog.Error("engine exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("edgehound stopped cleanly")
}

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
