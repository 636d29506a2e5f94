package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pfrederiksen/ski-spot/internal/geo"
	"github.com/pfrederiksen/ski-spot/internal/logger"
	"github.com/pfrederiksen/ski-spot/internal/ranking"
	"github.com/pfrederiksen/ski-spot/internal/resort"
	"github.com/pfrederiksen/ski-spot/internal/scraper"
	"github.com/pfrederiksen/ski-spot/internal/storage"
)

var (
	ErrLocationRequired = errors.New("location is required")
	ErrLocationNotFound = errors.New("could not find location")
	ErrInvalidRadius    = errors.New("radius must not be negative")
)

// Defaults for the refresh policy and searches
const (
	DefaultCacheTimeout = 30 * time.Minute
	DefaultFreshMin     = 50
	DefaultRadius       = 100
	MaxResults          = 10
)

// Geocoder resolves free-form location text
type Geocoder interface {
	Resolve(ctx context.Context, text string) (geo.Point, bool)
}

// Refresher rescrapes the resort listings
type Refresher interface {
	ScrapeAll(ctx context.Context, states ...scraper.State) (*scraper.Summary, error)
}

// Options tunes the refresh policy
type Options struct {
	CacheTimeout time.Duration
	FreshMin     int
}

// Service answers resort queries from the cache, refreshing it when stale
type Service struct {
	store     storage.Store
	refresher Refresher
	geocoder  Geocoder
	engine    *ranking.Engine
	opts      Options

	refreshes singleflight.Group
	now       func() time.Time
}

// New creates a Service. A nil refresher serves whatever the store holds.
func New(store storage.Store, refresher Refresher, geocoder Geocoder, engine *ranking.Engine, opts Options) *Service {
	if opts.CacheTimeout <= 0 {
		opts.CacheTimeout = DefaultCacheTimeout
	}
	if opts.FreshMin < 0 {
		opts.FreshMin = DefaultFreshMin
	}
	if engine == nil {
		engine = ranking.NewEngine(nil)
	}

	return &Service{
		store:     store,
		refresher: refresher,
		geocoder:  geocoder,
		engine:    engine,
		opts:      opts,
		now:       time.Now,
	}
}

// Resorts returns every cached resort. When too few records were refreshed
// within the cache timeout it scrapes first; a failed scrape is logged and
// the cached records are returned anyway.
func (s *Service) Resorts(ctx context.Context) ([]*resort.Resort, error) {
	cutoff := s.now().Add(-s.opts.CacheTimeout)
	fresh, err := s.store.CountFreshSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("checking cache freshness: %w", err)
	}

	if fresh <= s.opts.FreshMin && s.refresher != nil {
		s.refresh(ctx, fresh)
	}

	records, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading resorts: %w", err)
	}
	return records, nil
}

// refresh runs one scrape at a time; concurrent callers wait for it
func (s *Service) refresh(ctx context.Context, fresh int) {
	_, err, _ := s.refreshes.Do("refresh", func() (interface{}, error) {
		logger.Info("Refreshing resort data", logger.Fields{
			"fresh":     fresh,
			"fresh_min": s.opts.FreshMin,
		})
		return s.refresher.ScrapeAll(ctx)
	})
	if err != nil {
		logger.Error("Error scraping resorts", nil, err)
	}
}

// Refresh scrapes every state unconditionally
func (s *Service) Refresh(ctx context.Context) (*scraper.Summary, error) {
	if s.refresher == nil {
		return nil, errors.New("no scraper configured")
	}
	return s.refresher.ScrapeAll(ctx)
}

// Seed loads the built-in sample resorts into the store
func (s *Service) Seed(ctx context.Context) (int, error) {
	samples, err := resort.Samples()
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	for _, r := range samples {
		r.DeriveOpen()
		r.LastRefreshed = now
		if err := s.store.Upsert(ctx, r); err != nil {
			return 0, fmt.Errorf("seeding %s: %w", r.Slug, err)
		}
	}

	logger.Info("Seeded sample resorts", logger.Fields{"count": len(samples)})
	return len(samples), nil
}

// MapResort is the short form of a resort used to plot every resort
type MapResort struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsOpen    bool    `json:"is_open"`
}

// Mapped returns every cached resort that has coordinates
func (s *Service) Mapped(ctx context.Context) ([]MapResort, error) {
	records, err := s.Resorts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]MapResort, 0, len(records))
	for _, r := range records {
		if !r.HasCoordinates() {
			continue
		}
		out = append(out, MapResort{
			ID:        r.ID,
			Name:      r.Name,
			State:     r.State,
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
			IsOpen:    r.IsOpen,
		})
	}
	return out, nil
}
