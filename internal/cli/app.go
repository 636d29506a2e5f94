package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pfrederiksen/ski-spot/internal/config"
	"github.com/pfrederiksen/ski-spot/internal/coords"
	"github.com/pfrederiksen/ski-spot/internal/geocode"
	"github.com/pfrederiksen/ski-spot/internal/logger"
	"github.com/pfrederiksen/ski-spot/internal/ranking"
	"github.com/pfrederiksen/ski-spot/internal/routing"
	"github.com/pfrederiksen/ski-spot/internal/scraper"
	"github.com/pfrederiksen/ski-spot/internal/service"
	"github.com/pfrederiksen/ski-spot/internal/storage"
)

// perLegConcurrency bounds route requests when the table service is off
const perLegConcurrency = 8

// app is the fully wired set of components for one command run
type app struct {
	cfg      *config.Config
	store    storage.Store
	scraper  *scraper.Engine
	geocoder *geocode.Client
	svc      *service.Service
	redis    *redis.Client
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ds := coords.Default()
	if cfg.CoordsFile != "" {
		ds, err = coords.LoadFile(cfg.CoordsFile)
		if err != nil {
			store.Close()
			return nil, err
		}
	}
	logger.Debug("Loaded coordinates dataset", logger.Fields{
		"version": ds.Version(),
		"size":    ds.Size(),
	})

	a := &app{cfg: cfg, store: store}

	fetcher := scraper.NewFetcher(scraper.DefaultFetcherConfig())
	a.scraper = scraper.New(store, ds, fetcher, scraper.Config{
		BaseURL:     cfg.SourceURL,
		Concurrency: cfg.ScrapeConcurrency,
	})

	var cache geocode.Cache
	if cfg.RedisAddr != "" {
		client, err := geocode.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("Redis unavailable, using in-memory geocode cache", logger.Fields{
				"addr":  cfg.RedisAddr,
				"error": err.Error(),
			})
		} else {
			a.redis = client
			cache = geocode.NewRedisCache(client)
		}
	}
	a.geocoder = geocode.NewClient(geocode.Options{BaseURL: cfg.NominatimURL, Cache: cache})

	routes := routing.NewClient(cfg.OSRMURL)
	var lookup ranking.DistanceLookup = routes
	if !cfg.OSRMBatch {
		lookup = routing.PerLeg{Client: routes, Concurrency: perLegConcurrency}
	}

	a.svc = service.New(store, a.scraper, a.geocoder, ranking.NewEngine(lookup), service.Options{
		CacheTimeout: cfg.CacheTimeout,
		FreshMin:     cfg.FreshMin,
	})
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Store {
	case config.StoreFile:
		return storage.OpenFile(cfg.DataDir)
	case config.StoreSQLite:
		return storage.OpenSQL(ctx, cfg.DBPath, cfg.Debug)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func (a *app) Close() error {
	if a.redis != nil {
		a.redis.Close()
	}
	return a.store.Close()
}
