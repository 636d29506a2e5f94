package ranking

import (
	"math"

	"github.com/pfrederiksen/ski-spot/internal/resort"
)

// Priority selects which dimension gets the larger weight in CombinedScore
type Priority string

const (
	PrioritySnow     Priority = "snow"
	PriorityDistance Priority = "distance"
)

const (
	scoreEpsilon  = 0.01
	primaryWeight = 0.6
	otherWeight   = 0.4
)

// SnowQualityScore rates a resort's conditions on a 0-100 scale.
// Closed resorts always score 0.
func SnowQualityScore(r *resort.Resort) float64 {
	if r == nil || !r.IsOpen {
		return 0
	}

	score := 0.0

	// base depth: up to 30 points, 60" or more is maxed
	if r.BaseDepth != nil && *r.BaseDepth > 0 {
		score += math.Min(float64(*r.BaseDepth)/2, 30)
	}

	// fresh snow: up to 35 points for 14" or more
	if r.NewSnow24h != nil && *r.NewSnow24h > 0 {
		score += math.Min(float64(*r.NewSnow24h)*2.5, 35)
	}

	score += fraction(r.TrailsOpen, r.TrailsTotal) * 20
	score += fraction(r.LiftsOpen, r.LiftsTotal) * 15

	return score
}

func fraction(open, total *int) float64 {
	if open == nil || total == nil || *total <= 0 || *open <= 0 {
		return 0
	}
	return math.Min(float64(*open)/float64(*total), 1)
}

// CombinedScore is the weighted geometric mean of the normalized distance and
// quality scores, both in [0,1]. The priority dimension gets 60% of the weight.
func CombinedScore(distanceScore, qualityScore float64, priority Priority) float64 {
	d := distanceScore + scoreEpsilon
	q := qualityScore + scoreEpsilon

	qWeight, dWeight := primaryWeight, otherWeight
	if priority == PriorityDistance {
		qWeight, dWeight = otherWeight, primaryWeight
	}

	return math.Pow(q, qWeight) * math.Pow(d, dWeight)
}
