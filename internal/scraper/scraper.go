package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/ski-spot/internal/coords"
	"github.com/pfrederiksen/ski-spot/internal/logger"
	"github.com/pfrederiksen/ski-spot/internal/resort"
)

// Upserter persists resorts keyed by slug
type Upserter interface {
	Upsert(ctx context.Context, r *resort.Resort) error
}

// Config holds engine settings
type Config struct {
	BaseURL string
	// Concurrency bounds how many state pages are scraped at once
	Concurrency int
}

// Result summarizes one scraped page
type Result struct {
	Region          string `json:"region"`
	Strategy        string `json:"strategy"`
	Found           int    `json:"found"`
	Upserted        int    `json:"upserted"`
	Failed          int    `json:"failed"`
	WithCoordinates int    `json:"with_coordinates"`
}

// Summary aggregates a scrape of every state
type Summary struct {
	States       int       `json:"states"`
	FailedStates []string  `json:"failed_states,omitempty"`
	Results      []Result  `json:"results"`
	Upserted     int       `json:"upserted"`
	Duration     float64   `json:"duration_seconds"`
	Finished     time.Time `json:"finished"`
}

// Engine scrapes listing pages and upserts the resorts it finds
type Engine struct {
	store      Upserter
	coords     *coords.Dataset
	fetcher    Fetcher
	strategies []Strategy
	cfg        Config
	tracer     trace.Tracer
	now        func() time.Time
}

// New creates an Engine. A nil dataset leaves every resort without coordinates
// unless its page carries them.
func New(store Upserter, ds *coords.Dataset, fetcher Fetcher, cfg Config) *Engine {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	return &Engine{
		store:      store,
		coords:     ds,
		fetcher:    fetcher,
		strategies: DefaultStrategies(cfg.BaseURL, fetcher),
		cfg:        cfg,
		tracer:     otel.Tracer("github.com/pfrederiksen/ski-spot/internal/scraper"),
		now:        time.Now,
	}
}

// ScrapeAndUpsertFromHTML extracts resorts from a listing page and upserts them.
// Records that fail to save are logged and counted; they do not stop the page.
func (e *Engine) ScrapeAndUpsertFromHTML(ctx context.Context, html, region string) (Result, error) {
	res := Result{Region: region}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return res, fmt.Errorf("parsing HTML: %w", err)
	}

	records, strategy, err := e.extract(ctx, doc, region)
	if err != nil {
		return res, err
	}
	res.Strategy = strategy
	res.Found = len(records)

	if strategy == "" {
		logger.Warn("No known layout on page", logger.Fields{"region": region})
		return res, nil
	}

	now := e.now().UTC()
	for _, r := range records {
		e.prepare(r, region, now)
		if r.HasCoordinates() {
			res.WithCoordinates++
		}

		if err := e.store.Upsert(ctx, r); err != nil {
			res.Failed++
			logger.Error("Failed to save resort", logger.Fields{"slug": r.Slug, "region": region}, err)
			continue
		}
		res.Upserted++
	}

	logger.Info("Scraped region", logger.Fields{
		"region":           region,
		"strategy":         strategy,
		"found":            res.Found,
		"upserted":         res.Upserted,
		"with_coordinates": res.WithCoordinates,
	})
	return res, nil
}

func (e *Engine) extract(ctx context.Context, doc *goquery.Document, region string) ([]*resort.Resort, string, error) {
	for _, s := range e.strategies {
		records, err := s.Extract(ctx, doc, region)
		if errors.Is(err, ErrNoMatch) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			logger.Error("Extraction strategy failed", logger.Fields{"strategy": s.Name(), "region": region}, err)
			continue
		}
		return records, s.Name(), nil
	}
	return nil, "", nil
}

// prepare fills the fields every strategy shares
func (e *Engine) prepare(r *resort.Resort, region string, now time.Time) {
	r.State = region
	r.Region = RegionOf(region)

	if !r.HasCoordinates() {
		if p, ok := e.coords.Lookup(r.Slug); ok {
			r.Latitude = resort.Float(p.Latitude)
			r.Longitude = resort.Float(p.Longitude)
		}
	}

	r.DeriveOpen()
	r.ConditionsUpdated = &now
	r.LastRefreshed = now
}

// ScrapeState fetches and processes one state listing page
func (e *Engine) ScrapeState(ctx context.Context, state State) (Result, error) {
	ctx, span := e.tracer.Start(ctx, "scraper.ScrapeState",
		trace.WithAttributes(attribute.String("state", state.Name)))
	defer span.End()

	url := e.cfg.BaseURL + state.Path
	logger.Info("Scraping state", logger.Fields{"state": state.Name, "url": url})

	if e.fetcher == nil {
		return Result{Region: state.Name}, errors.New("no fetcher configured")
	}
	html, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return Result{Region: state.Name}, fmt.Errorf("fetching %s: %w", state.Name, err)
	}

	res, err := e.ScrapeAndUpsertFromHTML(ctx, html, state.Name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract failed")
		return res, err
	}
	span.SetAttributes(
		attribute.String("strategy", res.Strategy),
		attribute.Int("upserted", res.Upserted),
	)
	return res, nil
}

// ScrapeAll scrapes the given states, or every known state when none are
// given. A failed state is logged and skipped; the error is non-nil only if
// ctx was cancelled.
func (e *Engine) ScrapeAll(ctx context.Context, states ...State) (*Summary, error) {
	if len(states) == 0 {
		states = States
	}
	start := e.now()

	var mu sync.Mutex
	summary := &Summary{States: len(states)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for _, st := range states {
		g.Go(func() error {
			res, err := e.ScrapeState(gctx, st)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error("Error scraping state", logger.Fields{"state": st.Name}, err)
				summary.FailedStates = append(summary.FailedStates, st.Name)
				return nil
			}
			summary.Results = append(summary.Results, res)
			summary.Upserted += res.Upserted
			return nil
		})
	}
	_ = g.Wait()

	summary.Finished = e.now()
	summary.Duration = summary.Finished.Sub(start).Seconds()

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}
