package ranking

import (
	"context"
	"sort"
	"time"

	"github.com/pfrederiksen/ski-spot/internal/geo"
	"github.com/pfrederiksen/ski-spot/internal/logger"
	"github.com/pfrederiksen/ski-spot/internal/resort"
	"github.com/pfrederiksen/ski-spot/internal/routing"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDistance   SortOrder = "distance"
	SortByConditions SortOrder = "conditions"
	SortOptimized    SortOrder = "optimized"
)

// prefilterFactor bounds how far driving distance is assumed to exceed
// straight-line distance
const prefilterFactor = 1.5

// DistanceLookup resolves driving legs from one origin to many destinations.
// Implementations never fail: unresolved destinations come back unavailable.
type DistanceLookup interface {
	Table(ctx context.Context, origin geo.Point, dests []geo.Point) []routing.Leg
}

// Candidate is a resort that survived filtering, with its distance and scores
type Candidate struct {
	Resort *resort.Resort `json:"resort"`

	// DistanceMiles is the driving distance, or the straight-line distance
	// when the driving lookup failed
	DistanceMiles float64  `json:"driving_distance_miles"`
	DurationHours *float64 `json:"driving_duration_hours"`
	StraightLine  bool     `json:"straight_line"`

	SnowQuality   float64 `json:"snow_quality_score"`
	DistanceScore float64 `json:"distance_score"`
	QualityScore  float64 `json:"quality_score"`
	Combined      float64 `json:"combined_score"`
}

// Engine ranks resorts around a user location
type Engine struct {
	lookup DistanceLookup
}

// NewEngine creates an Engine that resolves driving distances through lookup.
// A nil lookup ranks on straight-line distance only.
func NewEngine(lookup DistanceLookup) *Engine {
	return &Engine{lookup: lookup}
}

// Rank filters records to those within maxDistance driving miles of the user
// and returns them scored and sorted. It returns an empty slice, not an error,
// when nothing qualifies.
func (e *Engine) Rank(ctx context.Context, records []*resort.Resort, userLat, userLng, maxDistance float64,
	sortBy SortOrder, priority Priority) ([]*Candidate, *Stats) {

	stats := NewStats()
	start := time.Now()
	defer stats.Time(TimingTotal, start)

	stats.Add(StatRecords, int64(len(records)))
	origin := geo.Point{Lat: userLat, Lng: userLng}

	// Stage 1: straight-line pre-filter
	t0 := time.Now()
	type pending struct {
		resort   *resort.Resort
		point    geo.Point
		straight float64
	}
	var candidates []pending
	for _, r := range records {
		if r == nil || !r.HasCoordinates() {
			continue
		}
		stats.Incr(StatWithCoordinates)

		p := geo.Point{Lat: *r.Latitude, Lng: *r.Longitude}
		straight := origin.DistanceTo(p)
		if straight <= maxDistance*prefilterFactor {
			candidates = append(candidates, pending{resort: r, point: p, straight: straight})
		}
	}
	stats.Time(TimingPrefilter, t0)
	stats.Add(StatPrefiltered, int64(len(candidates)))

	if len(candidates) == 0 {
		return []*Candidate{}, stats
	}

	// Stage 2: one batched driving distance lookup
	t0 = time.Now()
	dests := make([]geo.Point, len(candidates))
	for i, c := range candidates {
		dests[i] = c.point
	}
	var legs []routing.Leg
	if e.lookup != nil {
		legs = e.lookup.Table(ctx, origin, dests)
	}
	stats.Time(TimingLookup, t0)

	results := make([]*Candidate, 0, len(candidates))
	for i, c := range candidates {
		var leg routing.Leg
		if i < len(legs) {
			leg = legs[i]
		}

		if leg.Available {
			stats.Incr(StatDrivingResolved)
			if leg.DistanceMiles <= maxDistance {
				hours := leg.DurationHours
				results = append(results, &Candidate{
					Resort:        c.resort,
					DistanceMiles: leg.DistanceMiles,
					DurationHours: &hours,
				})
			}
			continue
		}

		stats.Incr(StatStraightFallback)
		if c.straight <= maxDistance {
			results = append(results, &Candidate{
				Resort:        c.resort,
				DistanceMiles: c.straight,
				StraightLine:  true,
			})
		}
	}
	stats.Add(StatResults, int64(len(results)))

	if len(results) == 0 {
		return results, stats
	}

	// Stage 3: score, normalized against the result set
	t0 = time.Now()
	score(results, priority)
	stats.Time(TimingScore, t0)

	// Stage 4: stable sort
	Sort(results, sortBy)

	logger.Debug("Ranked resorts", logger.Fields{
		"records":    len(records),
		"candidates": len(candidates),
		"results":    len(results),
		"sort":       string(sortBy),
		"priority":   string(priority),
	})

	return results, stats
}

func score(results []*Candidate, priority Priority) {
	maxDist := 0.0
	for _, c := range results {
		c.SnowQuality = SnowQualityScore(c.Resort)
		if c.DistanceMiles > maxDist {
			maxDist = c.DistanceMiles
		}
	}
	if maxDist == 0 {
		maxDist = 1
	}

	for _, c := range results {
		c.DistanceScore = 1 - c.DistanceMiles/maxDist
		c.QualityScore = c.SnowQuality / 100
		c.Combined = CombinedScore(c.DistanceScore, c.QualityScore, priority)
	}
}

// Sort orders candidates in place. Equal keys keep their input order.
func Sort(results []*Candidate, sortBy SortOrder) {
	switch sortBy {
	case SortByDistance:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].DistanceMiles < results[j].DistanceMiles
		})
	case SortByConditions:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].SnowQuality > results[j].SnowQuality
		})
	default:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Combined > results[j].Combined
		})
	}
}
