package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/catalog"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/engine"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/engine/routing"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/geocoder"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/http"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/http/usecases"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/logger"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/spatialindex"
	"github.com/v1nsenl/Path-Finder-Shortest-Path/pkg/util"
	"go.uber.org/zap"
)

var (
	skipReconcile = flag.Bool("skip_reconcile", false, "serve the stored place catalog without geocoding new graph nodes")
	useRateLimit  = flag.Bool("rate_limit", false, "rate limit api requests per client ip")
	regionMargin  = flag.Float64("region_margin", 1.0, "how far (in km) outside the catalog region a nearest place query is answered")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := util.LoadConfig()
	if err != nil {
		logger.Fatal("failed to read config", zap.Error(err))
	}
	logger.Info("Path Finder starting", zap.String("region", cfg.Region))

	routingEngine, err := engine.NewEngine(cfg.GraphFile, cfg.OSMFile, logger, routing.Algorithm(cfg.Algorithm))
	if err != nil {
		// without a road graph nothing can be routed
		logger.Fatal("Error fetching map data. Please check location settings.", zap.Error(err))
	}
	if err := routingEngine.UseLandmarks(cfg.LandmarkFile, cfg.Landmarks, logger); err != nil {
		logger.Fatal("failed to prepare landmarks", zap.Error(err))
	}
	graph := routingEngine.GetRoutingEngine().GetGraph()

	store, err := newStore(cfg.Catalog)
	if err != nil {
		logger.Fatal("failed to open place catalog", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	places := catalog.Load(ctx, store, logger)

	if !*skipReconcile {
		gc, err := geocoder.NewNominatim(cfg.Geocoder, logger)
		if err != nil {
			logger.Fatal("failed to create geocoder", zap.Error(err))
		}
		reconciler := catalog.NewReconciler(gc, store, catalog.NewNameFilter(cfg.Catalog.ReservedPrefixes),
			cfg.Catalog.Workers, logger)

		var stats catalog.ReconcileStats
		places, stats, err = reconciler.Reconcile(ctx, places, graph)
		if err != nil {
			logger.Error("place catalog reconciliation incomplete", zap.Error(err),
				zap.Int("admitted", stats.Admitted))
		}
	}
	if ctx.Err() != nil {
		logger.Info("Path Finder stopped before serving")
		stop()
		return
	}
	stop()

	rtree := spatialindex.NewRtree()
	rtree.Build(places.Entries(), logger)

	routingService := usecases.NewRoutingService(logger, routingEngine.GetRoutingEngine(), places, rtree, *regionMargin)

	serveCtx, cleanup := context.WithCancel(context.Background())
	api := http.NewServer(logger)
	if _, err := api.Use(serveCtx, logger, *useRateLimit, routingService); err != nil {
		logger.Fatal("failed to start api", zap.Error(err))
	}

	sig := http.GracefulShutdown()

	logger.Info("Path Finder Server Stopped", zap.String("signal", sig.String()))
	cleanup()
	if err := api.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("api stopped with error", zap.Error(err))
	}
}

func newStore(cfg util.CatalogConfig) (catalog.Store, error) {
	switch cfg.Backend {
	case "postgres":
		return catalog.OpenPostgres(cfg.DSN)
	default:
		return catalog.NewCSVStore(cfg.File), nil
	}
}
