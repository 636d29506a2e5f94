package geocode

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/ski-spot/internal/geo"
	"github.com/pfrederiksen/ski-spot/internal/logger"
)

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	UserAgent      = "SkiSpot/1.0 (github.com/pfrederiksen/ski-spot)"
	Timeout        = 10 * time.Second
)

// Options configures a Client
type Options struct {
	BaseURL string
	// Cache defaults to a MemoryCache
	Cache Cache
	// RequestsPerSecond defaults to 1
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client geocodes through Nominatim
type Client struct {
	http  *resty.Client
	cache Cache
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewClient creates a Nominatim client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = Timeout
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", UserAgent).
		SetHeader("Accept", "application/json")
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context())
	})

	return &Client{http: client, cache: opts.Cache}
}

// Resolve converts a zip code or "city, ST" text to coordinates. It reports
// false when the location is empty, unknown, or the lookup failed.
func (c *Client) Resolve(ctx context.Context, text string) (geo.Point, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return geo.Point{}, false
	}

	params := searchParams(text)
	key := cacheKey(params)
	if e, ok := c.cache.Get(ctx, key); ok {
		return e.Point, e.Found
	}

	p, found, err := c.search(ctx, params)
	if err != nil {
		// transient failures are not cached
		logger.Error("Geocoding request failed", logger.Fields{"location": text}, err)
		return geo.Point{}, false
	}

	if found {
		logger.Info("Geocoded location", logger.Fields{"location": text, "lat": p.Lat, "lng": p.Lng})
		c.cache.Set(ctx, key, Entry{Point: p, Found: true}, DefaultTTL)
	} else {
		logger.Warn("No results for location", logger.Fields{"location": text})
		c.cache.Set(ctx, key, Entry{}, NegativeTTL)
	}
	return p, found
}

func searchParams(text string) map[string]string {
	if IsZip(text) {
		return map[string]string{
			"postalcode":   NormalizeZip(text),
			"countrycodes": "us",
			"format":       "json",
			"limit":        "1",
		}
	}
	return map[string]string{
		"q":      ExpandState(text) + ", USA",
		"format": "json",
		"limit":  "1",
	}
}

func cacheKey(params map[string]string) string {
	if zip, ok := params["postalcode"]; ok {
		return "zip:" + zip
	}
	return "q:" + strings.ToLower(params["q"])
}

func (c *Client) search(ctx context.Context, params map[string]string) (geo.Point, bool, error) {
	var places []place
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&places).
		Get("/search")
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("fetching results: %w", err)
	}
	if resp.IsError() {
		return geo.Point{}, false, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}
	if len(places) == 0 {
		return geo.Point{}, false, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("parsing latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return geo.Point{}, false, fmt.Errorf("parsing longitude: %w", err)
	}
	return geo.Point{Lat: lat, Lng: lng}, true, nil
}

// Reverse returns a short "Place, Region" name for coordinates, or "" when
// the lookup fails
func (c *Client) Reverse(ctx context.Context, lat, lng float64) string {
	var result place
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":    strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":    strconv.FormatFloat(lng, 'f', -1, 64),
			"format": "json",
			"zoom":   "10",
		}).
		SetResult(&result).
		Get("/reverse")
	if err != nil {
		logger.Error("Reverse geocoding failed", logger.Fields{"lat": lat, "lng": lng}, err)
		return ""
	}
	if resp.IsError() {
		logger.Warn("Reverse geocoding failed", logger.Fields{"status": resp.StatusCode()})
		return ""
	}

	return shortName(result.DisplayName)
}

// shortName keeps the first two parts of a Nominatim display name
func shortName(display string) string {
	if strings.TrimSpace(display) == "" {
		return ""
	}
	parts := strings.Split(display, ",")
	if len(parts) >= 2 {
		return strings.TrimSpace(parts[0]) + ", " + strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(parts[0])
}
