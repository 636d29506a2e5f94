package routing

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/ski-spot/internal/geo"
	"github.com/pfrederiksen/ski-spot/internal/logger"
)

const (
	DefaultBaseURL = "https://router.project-osrm.org"
	UserAgent      = "ski-spot/1.0 (github.com/pfrederiksen/ski-spot)"

	ConnectTimeout = 3 * time.Second
	ReadTimeout    = 15 * time.Second
	RouteTimeout   = 10 * time.Second

	metersPerMile  = 1609.344
	secondsPerHour = 3600.0
)

// Leg is the driving distance and duration to one destination.
// Available is false when the provider could not resolve it.
type Leg struct {
	DistanceMiles float64 `json:"distance_miles"`
	DurationHours float64 `json:"duration_hours"`
	Available     bool    `json:"available"`
}

// Unavailable is the leg returned for any failed lookup
var Unavailable = Leg{}

// Client talks to an OSRM server
type Client struct {
	baseURL string
	table   *resty.Client
	route   *resty.Client
	tracer  trace.Tracer
}

// NewClient creates a client for the OSRM server at baseURL
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// connect/read split for the batch call
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: ConnectTimeout}).DialContext,
		TLSHandshakeTimeout:   ConnectTimeout,
		ResponseHeaderTimeout: ReadTimeout,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		table: resty.New().
			SetTransport(transport).
			SetTimeout(ConnectTimeout+ReadTimeout).
			SetHeader("User-Agent", UserAgent),
		route: resty.New().
			SetTimeout(RouteTimeout).
			SetHeader("User-Agent", UserAgent),
		tracer: otel.Tracer("github.com/pfrederiksen/ski-spot/internal/routing"),
	}
}

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// Table resolves driving legs from origin to every destination in one request.
// The result always has len(dests) entries, in destination order.
func (c *Client) Table(ctx context.Context, origin geo.Point, dests []geo.Point) []Leg {
	legs := make([]Leg, len(dests))
	if len(dests) == 0 {
		return legs
	}

	ctx, span := c.tracer.Start(ctx, "routing.Table", trace.WithAttributes(
		attribute.Int("routing.destinations", len(dests)),
	))
	defer span.End()

	points := make([]string, 0, len(dests)+1)
	points = append(points, formatPoint(origin))
	indexes := make([]string, len(dests))
	for i, d := range dests {
		points = append(points, formatPoint(d))
		indexes[i] = fmt.Sprint(i + 1)
	}

	reqURL := fmt.Sprintf("%s/table/v1/driving/%s?sources=0&destinations=%s&annotations=distance,duration",
		c.baseURL, strings.Join(points, ";"), strings.Join(indexes, ";"))

	var body tableResponse
	resp, err := c.table.R().
		SetContext(ctx).
		SetResult(&body).
		Get(reqURL)
	if err != nil {
		c.fail(span, "OSRM table request failed", len(dests), err)
		return legs
	}
	if resp.StatusCode() != http.StatusOK {
		c.fail(span, "OSRM table returned bad status", len(dests), fmt.Errorf("status %d", resp.StatusCode()))
		return legs
	}
	if body.Code != "Ok" {
		c.fail(span, "OSRM table returned error code", len(dests), fmt.Errorf("code %q: %s", body.Code, body.Message))
		return legs
	}
	if len(body.Distances) == 0 || len(body.Durations) == 0 {
		c.fail(span, "OSRM table response missing matrix", len(dests), fmt.Errorf("empty matrix"))
		return legs
	}

	distances := body.Distances[0]
	durations := body.Durations[0]
	resolved := 0
	for i := range dests {
		if i >= len(distances) || i >= len(durations) {
			break
		}
		if distances[i] == nil || durations[i] == nil {
			continue
		}
		legs[i] = convert(*distances[i], *durations[i])
		resolved++
	}

	span.SetAttributes(attribute.Int("routing.resolved", resolved))
	if resolved < len(dests) {
		logger.Debug("OSRM table partially resolved", logger.Fields{
			"destinations": len(dests),
			"resolved":     resolved,
		})
	}

	return legs
}

// Route resolves a single driving leg
func (c *Client) Route(ctx context.Context, origin, dest geo.Point) Leg {
	reqURL := fmt.Sprintf("%s/route/v1/driving/%s;%s?overview=false",
		c.baseURL, formatPoint(origin), formatPoint(dest))

	var body routeResponse
	resp, err := c.route.R().
		SetContext(ctx).
		SetResult(&body).
		Get(reqURL)
	if err != nil {
		logger.Error("OSRM route request failed", nil, err)
		return Unavailable
	}
	if resp.StatusCode() != http.StatusOK {
		logger.Warn("OSRM route returned bad status", logger.Fields{"status": resp.StatusCode()})
		return Unavailable
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		logger.Warn("OSRM returned no route", logger.Fields{"code": body.Code})
		return Unavailable
	}

	return convert(body.Routes[0].Distance, body.Routes[0].Duration)
}

func (c *Client) fail(span trace.Span, msg string, n int, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	logger.Error(msg, logger.Fields{"destinations": n}, err)
}

// PerLeg adapts single-route lookups to the batch shape. It is used when the
// routing server does not offer the table service.
type PerLeg struct {
	Client      *Client
	Concurrency int
}

// Table resolves each destination with its own route request
func (p PerLeg) Table(ctx context.Context, origin geo.Point, dests []geo.Point) []Leg {
	legs := make([]Leg, len(dests))

	g, ctx := errgroup.WithContext(ctx)
	if p.Concurrency > 0 {
		g.SetLimit(p.Concurrency)
	}
	for i, d := range dests {
		g.Go(func() error {
			legs[i] = p.Client.Route(ctx, origin, d)
			return nil
		})
	}
	_ = g.Wait()

	return legs
}

func convert(meters, seconds float64) Leg {
	return Leg{
		DistanceMiles: round(meters/metersPerMile, 1),
		DurationHours: round(seconds/secondsPerHour, 2),
		Available:     true,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// OSRM expects lng,lat
func formatPoint(p geo.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lng, p.Lat)
}
