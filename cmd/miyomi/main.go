package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/miyomi/config"
	"github.com/alejandrodnm/miyomi/internal/adapters/notify"
	"github.com/alejandrodnm/miyomi/internal/adapters/storage"
	"github.com/alejandrodnm/miyomi/internal/domain/strategy"
	"github.com/alejandrodnm/miyomi/internal/scanner"
	"github.com/alejandrodnm/miyomi/internal/server"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	fixtures := flag.Bool("fixtures", false, "use local fixtures instead of real APIs")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full table (default: compact 1-line)")
	detail := flag.Bool("detail", false, "print reasoning for the top 3 opportunities")
	serve := flag.Bool("serve", false, "expose the analytics API next to the scan loop")
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
	if *fixtures {
		cfg.Sources.Mode = "fixture"
	}
	setupLogger(cfg.Log)

	slog.Info("miyomi starting",
		"config", *configPath,
		"interval", cfg.Interval(),
		"sources_mode", cfg.Sources.Mode,
		"once", *once,
		"serve", *serve,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sources := buildSources(cfg)
	if len(sources) == 0 {
		slog.Error("no market sources enabled")
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	state, err := buildStateStore(ctx, cfg.State)
	if err != nil {
		slog.Error("failed to open state store", "err", err, "backend", cfg.State.Backend)
		os.Exit(1)
	}
	defer state.Close()

	opts := []scanner.Option{
		scanner.WithStorage(store),
		scanner.WithStateStore(state),
	}
	gen, pub, err := buildPublishing(cfg)
	if err != nil {
		slog.Error("failed to set up publishing", "err", err, "provider", cfg.Publish.Provider)
		os.Exit(1)
	}
	if pub != nil {
		opts = append(opts, scanner.WithPublishing(gen, pub))
	}

	weights := cfg.Scoring.Weights()
	analyzer := strategy.NewContrarian(weights)
	notifier := notify.NewConsole(*table, *detail)
	notifier.SetScoreWeights(weights)

	s := scanner.New(scannerConfig(cfg, *once), sources, analyzer, notifier, opts...)

	if *serve && *once {
		slog.Warn("-serve ignored with -once")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.Run(gctx)
		if *once || err != nil {
			cancel()
		}
		return err
	})
	if *serve && !*once {
		api := server.New(server.Config{
			Addr:        cfg.Server.Addr,
			CORSOrigins: cfg.Server.CORSOrigins,
		}, store, s)
		g.Go(func() error { return api.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		slog.Error("miyomi exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("miyomi stopped cleanly")
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
