package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caxcast/config"
	"caxcast/internal/adapters/console"
	"caxcast/internal/adapters/sheet"
	"caxcast/internal/adapters/storage"
	"caxcast/internal/domain"
	"caxcast/internal/forecast"
	"caxcast/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	csvPath := flag.String("csv", "", "read deals from a local CSV file instead of the sheet export")
	sample := flag.Bool("sample", false, "use generated sample data instead of the sheet export")
	table := flag.Bool("table", false, "print the full day-by-stage table (default: compact 1-line)")
	scenario := flag.String("scenario", "", "evaluate a what-if scenario: QTY@STAGE or QTY@STAGE:YYYY-MM-DD")
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

	slog.Info("caxcast starting",
		"config", *configPath,
		"horizon_days", cfg.Forecast.HorizonDays,
		"sample", *sample,
		"csv", *csvPath,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// El cache de snapshots solo aplica al fetch remoto: con datos locales
	// o de muestra no hay nada que cachear.
	var store *storage.SQLiteStore
	provider := selectProvider(cfg, *csvPath, *sample)
	if *csvPath == "" && !*sample {
		store, err = storage.NewSQLiteStore(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open snapshot cache", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
	}

	deals := loadSnapshot(ctx, provider, store)

	engineCfg := forecast.Config{
		Forecast:    cfg.ForecastDomain(),
		HorizonDays: cfg.Forecast.HorizonDays,
		Workers:     cfg.Forecast.Workers,
	}
	engine := forecast.New(engineCfg)

	today := time.Now()
	projections, err := engine.Forecast(ctx, today, deals)
	if err != nil {
		slog.Error("forecast failed", "err", err)
		os.Exit(1)
	}

	renderer := console.NewConsole(*table)
	if err := renderer.RenderForecast(ctx, deals, projections, engineCfg.Forecast.Funnel); err != nil {
		slog.Error("render failed", "err", err)
		os.Exit(1)
	}

	if *scenario != "" {
		runScenario(ctx, *scenario, engineCfg, cfg.Forecast.UnitValue, today, renderer)
	}
}

// selectProvider elige la fuente de deals según los flags.
func selectProvider(cfg *config.Config, csvPath string, sample bool) ports.DealProvider {
	switch {
	case sample:
		return sheet.NewSample()
	case csvPath != "":
		return sheet.NewFile(csvPath)
	default:
		return sheet.NewClient(cfg.Sheet.URLs, cfg.SheetTimeout())
	}
}

// loadSnapshot obtiene el snapshot del provider; si el fetch falla y hay
// cache, usa el último snapshot bueno en lugar de abortar.
func loadSnapshot(ctx context.Context, provider ports.DealProvider, store *storage.SQLiteStore) []domain.Deal {
	deals, err := provider.FetchDeals(ctx)
	if err == nil {
		if store != nil {
			if saveErr := store.SaveSnapshot(ctx, deals, time.Now()); saveErr != nil {
				slog.Warn("failed to cache snapshot", "err", saveErr)
			}
		}
		slog.Info("snapshot loaded", "deals", len(deals))
		return deals
	}

	if store == nil {
		slog.Error("failed to load deals", "err", err)
		os.Exit(1)
	}

	cached, fetchedAt, cacheErr := store.LatestSnapshot(ctx)
	if cacheErr != nil {
		slog.Error("fetch failed and no cached snapshot available",
			"fetch_err", err,
			"cache_err", cacheErr,
		)
		os.Exit(1)
	}

	slog.Warn("fetch failed, using cached snapshot",
		"err", err,
		"fetched_at", fetchedAt.Format(time.RFC3339),
		"deals", len(cached),
	)
	return cached
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
