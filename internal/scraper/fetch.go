package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/ski-spot/internal/logger"
)

const (
	DefaultBaseURL = "https://www.onthesnow.com"
	UserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	Timeout        = 15 * time.Second
)

// Fetcher loads the HTML body of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherConfig tunes an HTTPFetcher
type FetcherConfig struct {
	Timeout time.Duration
	// RequestsPerSecond caps the request rate; zero means unlimited
	RequestsPerSecond float64
	MaxRetries        uint64
	InitialBackoff    time.Duration
}

// DefaultFetcherConfig returns the settings used against the live site
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:           Timeout,
		RequestsPerSecond: 2,
		MaxRetries:        2,
		InitialBackoff:    500 * time.Millisecond,
	}
}

// HTTPFetcher fetches pages with browser-like headers, a shared rate limit and
// retries on transport errors and 5xx responses
type HTTPFetcher struct {
	client *resty.Client
	cfg    FetcherConfig
}

// NewFetcher creates an HTTPFetcher
func NewFetcher(cfg FetcherConfig) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = Timeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeaders(map[string]string{
			"User-Agent":      UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.5",
		})
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &HTTPFetcher{client: client, cfg: cfg}
}

// Fetch returns the body of url. Client errors are not retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var body string
	attempt := 0

	op := func() error {
		attempt++
		resp, err := f.client.R().SetContext(ctx).Get(url)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("fetching page: %w", err)
		}

		if resp.StatusCode() >= http.StatusInternalServerError {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode())
		}
		if resp.StatusCode() != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode()))
		}

		body = resp.String()
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.cfg.InitialBackoff
	b.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		logger.Warn("Retrying page fetch", logger.Fields{
			"url":     url,
			"attempt": attempt,
			"wait_ms": wait.Milliseconds(),
			"error":   err.Error(),
		})
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, f.cfg.MaxRetries), ctx), notify)
	if err != nil {
		return "", err
	}
	return body, nil
}
