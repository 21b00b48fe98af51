package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kashyapn/inrhedge/internal/engine"
	"github.com/kashyapn/inrhedge/internal/server"
	"github.com/kashyapn/inrhedge/internal/server/handler"
	"github.com/kashyapn/inrhedge/internal/server/ws"
	"github.com/kashyapn/inrhedge/internal/service"
)

// newAnalyzer builds the valuation analyzer from the configured futures
// contract and sweep parameters.
func (a *App) newAnalyzer() *engine.Analyzer {
	return engine.NewAnalyzer(
		engine.HedgeConfig{
			ContractSize: a.cfg.Futures.ContractSize,
			PointValue:   a.cfg.Futures.PointValue,
		},
		engine.SweepConfig{
			Band:   a.cfg.Sweep.Band,
			Points: a.cfg.Sweep.Points,
		},
	)
}

func (a *App) newCatalogService(deps *Dependencies) *service.CatalogService {
	return service.NewCatalogService(deps.BondStore, deps.BlobReader, service.CatalogConfig{
		Source: a.cfg.Catalog.Source,
		Path:   a.cfg.Catalog.Path,
	}, a.logger)
}

// ServeMode runs the HTTP API and WebSocket hub until the context is
// cancelled.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	g, ctx := errgroup.WithContext(ctx)
	a.startServer(ctx, g, deps)
	return waitGroup(g)
}

// IngestMode loads the configured bond sheet into the store once and exits.
func (a *App) IngestMode(ctx context.Context, deps *Dependencies) error {
	n, err := a.newCatalogService(deps).Ingest(ctx)
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "ingest complete", slog.Int("bonds", n))
	return nil
}

// ArchiveMode moves scenario results older than the retention window to
// object storage and exits.
func (a *App) ArchiveMode(ctx context.Context, deps *Dependencies) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -a.cfg.Archive.RetentionDays)
	n, err := deps.Archiver.ArchiveResults(ctx, cutoff)
	if err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "archive complete",
		slog.Int64("results", n),
		slog.Time("cutoff", cutoff),
	)
	return nil
}

// FullMode ingests the catalog, then serves the API until the context is
// cancelled.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	if _, err := a.newCatalogService(deps).Ingest(ctx); err != nil {
		a.logger.WarnContext(ctx, "catalog ingest failed; serving existing catalog",
			slog.String("error", err.Error()),
		)
	}

	g, ctx := errgroup.WithContext(ctx)
	if a.cfg.Server.Enabled {
		a.startServer(ctx, g, deps)
	} else {
		a.logger.InfoContext(ctx, "server disabled, running headless")
		g.Go(func() error {
			<-ctx.Done()
			return ctx.Err()
		})
	}
	return waitGroup(g)
}

// startServer builds the services, handlers, and WebSocket hub, and adds the
// server goroutines to the errgroup: the hub loop, the listener, and a
// watcher that shuts the listener down when the context is cancelled.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	analyzer := a.newAnalyzer()

	catalogSvc := a.newCatalogService(deps)
	scenarioSvc := service.NewScenarioService(
		deps.BondStore, deps.ResultStore, deps.RateCache, deps.SignalBus,
		analyzer, a.logger,
	)
	rateSvc := service.NewRateService(deps.RateCache, deps.SignalBus, a.logger)

	hub := ws.NewHub(deps.SignalBus, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Bonds:     handler.NewBondHandler(catalogSvc, a.logger),
		Scenarios: handler.NewScenarioHandler(scenarioSvc, a.logger),
		Rates:     handler.NewRateHandler(rateSvc, a.logger),
	}, hub, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// waitGroup waits for the errgroup and treats context cancellation as a
// clean shutdown rather than an error.
func waitGroup(g *errgroup.Group) error {
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
