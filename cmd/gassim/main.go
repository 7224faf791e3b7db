package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gas/internal/config"
	"github.com/udisondev/gas/internal/data"
	"github.com/udisondev/gas/internal/db"
	"github.com/udisondev/gas/internal/game/geo"
	"github.com/udisondev/gas/internal/metrics"
	"github.com/udisondev/gas/internal/sim"
	"github.com/udisondev/gas/internal/world"
)

const ConfigPath = "config/gas.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("GAS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadEngine(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config %s: %w", cfgPath, err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("gas simulation starting",
		"log_level", cfg.LogLevel,
		"tick_rate", cfg.TickRate,
		"tick_workers", cfg.TickWorkers,
		"definitions_source", cfg.DefinitionsSource)

	catalog, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}

	grid := geo.NewGrid(cfg.Geo.CellSize)
	if cfg.Geo.GridPath != "" {
		if grid, err = geo.LoadGridFile(cfg.Geo.GridPath); err != nil {
			return err
		}
		slog.Info("occlusion grid loaded", "path", cfg.Geo.GridPath, "blocked_cells", grid.Len())
	}

	scenario, err := sim.LoadScenario(cfg.ScenarioPath)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	w := world.New(world.Options{
		Catalog: catalog,
		Spatial: geo.Space{Grid: grid},
		Workers: cfg.TickWorkers,
		Metrics: metrics.NewMetrics(registry),
	})

	runner := &sim.Runner{
		World:    w,
		Scenario: scenario,
		Step:     cfg.TickInterval().Seconds(),
		Interval: cfg.TickInterval(),
		OnEvents: logEvents,
	}
	if err := runner.Setup(); err != nil {
		return fmt.Errorf("setting up scenario: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	simCtx, stopSim := context.WithCancel(gctx)
	defer stopSim()

	if cfg.MetricsAddress != "" {
		srv := &http.Server{
			Handler:           metricsMux(registry),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			ln, err := net.Listen("tcp", cfg.MetricsAddress)
			if err != nil {
				return fmt.Errorf("metrics listener: %w", err)
			}
			slog.Info("starting metrics server", "address", ln.Addr().String())
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-simCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		// A finished scenario stops the metrics server too.
		defer stopSim()
		err := runner.Run(simCtx, 0)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		if err != nil {
			return fmt.Errorf("simulation: %w", err)
		}
		for _, st := range runner.Snapshot() {
			slog.Info("final state",
				"entity", st.Name,
				"id", st.ID,
				"attributes", st.Attributes,
				"tags", st.Tags,
				"effects", st.Effects)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func loadCatalog(ctx context.Context, cfg config.Engine) (*data.Catalog, error) {
	if cfg.DefinitionsSource == config.SourceYAML {
		catalog, err := data.LoadCatalog(cfg.DefinitionsPath)
		if err != nil {
			return nil, fmt.Errorf("loading definitions: %w", err)
		}
		return catalog, nil
	}

	dsn := cfg.Database.DSN()
	database, err := db.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, dsn); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	doc, err := database.Definitions().Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading definitions: %w", err)
	}
	catalog, err := data.BuildCatalog(doc)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	slog.Info("definitions loaded from database",
		"attributes", len(catalog.Attributes()),
		"effects", len(catalog.Effects()),
		"abilities", len(catalog.Abilities()))
	return catalog, nil
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	return mux
}

func logEvents(tick int, events []world.Event) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, ev := range events {
		slog.Debug("attribute changed",
			"tick", tick,
			"entity", ev.Entity,
			"attribute", ev.Attribute,
			"old", ev.Old,
			"new", ev.New)
	}
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
