// Package app wires the launchpad components into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dane-04-code/Fusefun/internal/config"
	"github.com/dane-04-code/Fusefun/internal/engine"
	"github.com/dane-04-code/Fusefun/internal/events"
	"github.com/dane-04-code/Fusefun/internal/ledger"
	"github.com/dane-04-code/Fusefun/internal/metrics"
	"github.com/dane-04-code/Fusefun/internal/monitor"
	"github.com/dane-04-code/Fusefun/internal/storage"
	"github.com/dane-04-code/Fusefun/internal/storage/postgres"
	"github.com/dane-04-code/Fusefun/internal/venue"
)

// Runner owns the wired component graph and its lifecycle.
type Runner struct {
	cfg    *config.Config
	logger *zap.Logger

	engine    *engine.Engine
	bus       *events.Bus
	tracker   *monitor.Tracker
	collector *metrics.Collector
	persister *storage.Persister
	store     storage.Storage
	notifier  *events.WebhookNotifier
}

// NewRunner builds the full component graph from cfg.
func NewRunner(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	treasury, err := solana.PublicKeyFromBase58(cfg.Treasury)
	if err != nil {
		return nil, fmt.Errorf("invalid treasury key: %w", err)
	}
	authority, err := solana.PublicKeyFromBase58(cfg.Authority)
	if err != nil {
		return nil, fmt.Errorf("invalid authority key: %w", err)
	}
	migrationAuthority := authority
	if cfg.MigrationAuthority != "" {
		migrationAuthority, err = solana.PublicKeyFromBase58(cfg.MigrationAuthority)
		if err != nil {
			return nil, fmt.Errorf("invalid migration authority key: %w", err)
		}
	}

	bus := events.NewBus(logger, cfg.EventBufferLen)

	eng, err := engine.New(engine.Options{
		Params:             cfg.Protocol,
		Authority:          authority,
		Treasury:           treasury,
		MigrationAuthority: migrationAuthority,
		Store:              ledger.NewStore(),
		Bus:                bus,
		Venue:              venue.NewAMM(logger),
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}

	r := &Runner{
		cfg:    cfg,
		logger: logger,
		engine: eng,
		bus:    bus,
	}

	r.tracker = monitor.NewTracker(
		cfg.Protocol.GraduationSolThreshold,
		cfg.Protocol.TokenDecimals,
		logger,
		nil,
	)
	r.tracker.Register(bus)

	r.collector = metrics.NewCollector(prometheus.DefaultRegisterer)
	r.collector.Register(bus)

	if cfg.PostgresURL != "" {
		store, err := postgres.NewStorage(cfg.PostgresURL, logger)
		if err != nil {
			return nil, fmt.Errorf("connect storage: %w", err)
		}
		if err := store.RunMigrations(); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		r.store = store
		r.persister = storage.NewPersister(store, logger)
		r.persister.Register(bus)
	}

	if cfg.WebhookURL != "" {
		r.notifier = events.NewWebhookNotifier(cfg.WebhookURL, logger)
		r.notifier.Register(bus)
	}

	return r, nil
}

// Engine exposes the trade processor.
func (r *Runner) Engine() *engine.Engine {
	return r.engine
}

// Tracker exposes the graduation progress monitor.
func (r *Runner) Tracker() *monitor.Tracker {
	return r.tracker
}

// Run blocks until ctx is cancelled, then shuts the components down.
func (r *Runner) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.statsLoop(gCtx)
	})
	if r.cfg.MetricsAddr != "" {
		g.Go(func() error {
			return r.serveMetrics(gCtx)
		})
	}

	err := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r.tracker.Close()
	r.collector.Close()
	if r.persister != nil {
		r.persister.Close()
	}
	if busErr := r.bus.Shutdown(shutdownCtx); busErr != nil {
		r.logger.Warn("event bus shutdown", zap.Error(busErr))
	}
	if r.store != nil {
		if closeErr := r.store.Close(); closeErr != nil {
			r.logger.Warn("storage close", zap.Error(closeErr))
		}
	}

	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (r *Runner) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: r.cfg.MetricsAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	r.logger.Info("metrics endpoint listening", zap.String("addr", r.cfg.MetricsAddr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (r *Runner) statsLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			state := r.engine.Store().Protocol()
			r.logger.Info("protocol stats",
				zap.Uint64("tokens_launched", state.TotalTokensLaunched),
				zap.Uint64("volume_sol", state.TotalVolumeSol),
				zap.Uint64("graduated", state.TotalGraduated),
				zap.Bool("paused", state.Paused))
		}
	}
}
