package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pfrederiksen/ski-spot/internal/logger"
	"github.com/pfrederiksen/ski-spot/internal/ranking"
)

// SearchRequest is a location search
type SearchRequest struct {
	Location string
	// Radius is the maximum driving distance in miles
	Radius   float64
	Priority ranking.Priority
	Sort     ranking.SortOrder
}

// UserLocation echoes the resolved search location
type UserLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Query     string  `json:"query"`
}

// ResortResult is one ranked resort, formatted for display
type ResortResult struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	State             string   `json:"state"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	IsOpen            bool     `json:"is_open"`
	BaseDepth         *int     `json:"base_depth"`
	NewSnow24h        *int     `json:"new_snow_24h"`
	TrailsOpen        *int     `json:"trails_open"`
	TrailsTotal       *int     `json:"trails_total"`
	LiftsOpen         *int     `json:"lifts_open"`
	LiftsTotal        *int     `json:"lifts_total"`
	TrailsPercentOpen int      `json:"trails_percent_open"`
	ConditionsSummary string   `json:"conditions_summary"`
	URL               string   `json:"url"`

	DriveMiles   float64  `json:"drive_miles"`
	DriveHours   *float64 `json:"drive_hours"`
	DriveTime    *string  `json:"drive_time"`
	StraightLine bool     `json:"straight_line,omitempty"`

	// scores as whole percentages
	SnowQualityScore int `json:"snow_quality_score"`
	DistanceScore    int `json:"distance_score"`
	OverallScore     int `json:"overall_score"`
}

// SearchResult is the response to a search
type SearchResult struct {
	UserLocation UserLocation     `json:"user_location"`
	Radius       float64          `json:"radius"`
	Count        int              `json:"count"`
	Resorts      []ResortResult   `json:"resorts"`
	Timings      map[string]int64 `json:"timings"`
}

// Search geocodes the location, ranks the cached resorts around it and
// returns the best MaxResults
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	totalStart := time.Now()
	timings := make(map[string]int64)

	req.Location = strings.TrimSpace(req.Location)
	if req.Location == "" {
		return nil, ErrLocationRequired
	}
	if req.Radius < 0 {
		return nil, ErrInvalidRadius
	}
	if req.Priority == "" {
		req.Priority = ranking.PrioritySnow
	}
	if req.Sort == "" {
		req.Sort = ranking.SortOptimized
	}

	t0 := time.Now()
	point, ok := s.geocoder.Resolve(ctx, req.Location)
	timings["geocoding_ms"] = time.Since(t0).Milliseconds()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, req.Location)
	}

	t0 = time.Now()
	records, err := s.Resorts(ctx)
	if err != nil {
		return nil, err
	}
	timings["get_resorts_ms"] = time.Since(t0).Milliseconds()
	timings["total_resorts"] = int64(len(records))

	t0 = time.Now()
	candidates, stats := s.engine.Rank(ctx, records, point.Lat, point.Lng, req.Radius, req.Sort, req.Priority)
	timings["filter_distance_ms"] = time.Since(t0).Milliseconds()
	timings["candidates_after_filter"] = int64(len(candidates))
	for k, v := range stats.Snapshot() {
		timings["rank_"+k] = v
	}

	if len(candidates) > MaxResults {
		candidates = candidates[:MaxResults]
	}

	t0 = time.Now()
	results := make([]ResortResult, len(candidates))
	for i, c := range candidates {
		results[i] = formatCandidate(c)
	}
	timings["format_response_ms"] = time.Since(t0).Milliseconds()
	timings["total_ms"] = time.Since(totalStart).Milliseconds()

	logger.Info("Search timings", logger.Fields{
		"location":   req.Location,
		"radius":     req.Radius,
		"priority":   string(req.Priority),
		"results":    len(results),
		"total_ms":   timings["total_ms"],
		"geocode_ms": timings["geocoding_ms"],
		"rank_ms":    timings["filter_distance_ms"],
	})

	return &SearchResult{
		UserLocation: UserLocation{Latitude: point.Lat, Longitude: point.Lng, Query: req.Location},
		Radius:       req.Radius,
		Count:        len(results),
		Resorts:      results,
		Timings:      timings,
	}, nil
}

func formatCandidate(c *ranking.Candidate) ResortResult {
	r := c.Resort
	out := ResortResult{
		ID:                r.ID,
		Name:              r.Name,
		State:             r.State,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		IsOpen:            r.IsOpen,
		BaseDepth:         r.BaseDepth,
		NewSnow24h:        r.NewSnow24h,
		TrailsOpen:        r.TrailsOpen,
		TrailsTotal:       r.TrailsTotal,
		LiftsOpen:         r.LiftsOpen,
		LiftsTotal:        r.LiftsTotal,
		TrailsPercentOpen: r.TrailsPercentOpen(),
		ConditionsSummary: r.ConditionsSummary(),
		URL:               r.SourceURL,
		DriveMiles:        round(c.DistanceMiles, 1),
		StraightLine:      c.StraightLine,
		SnowQualityScore:  percent(c.QualityScore),
		DistanceScore:     percent(c.DistanceScore),
		OverallScore:      percent(c.Combined),
	}

	if c.DurationHours != nil && *c.DurationHours > 0 {
		hours := round(*c.DurationHours, 2)
		text := FormatDriveTime(*c.DurationHours)
		out.DriveHours = &hours
		out.DriveTime = &text
	}
	return out
}

// FormatDriveTime renders hours as "2h 15min", "45min" or "3h"
func FormatDriveTime(hours float64) string {
	total := int(hours * 60)
	h, m := total/60, total%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dmin", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dmin", h, m)
	}
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
