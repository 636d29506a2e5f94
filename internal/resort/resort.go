package resort

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Resort represents cached ski resort conditions
type Resort struct {
	bun.BaseModel `bun:"table:resorts,alias:r" json:"-"`

	ID     int64  `bun:"id,pk,autoincrement" json:"id"`
	Slug   string `bun:"slug,notnull,unique" json:"slug"`
	Name   string `bun:"name,notnull" json:"name"`
	Region string `bun:"region" json:"region,omitempty"`
	State  string `bun:"state" json:"state,omitempty"`

	Latitude  *float64 `bun:"latitude" json:"latitude"`
	Longitude *float64 `bun:"longitude" json:"longitude"`

	BaseDepth   *int `bun:"base_depth" json:"base_depth"`     // inches
	SummitDepth *int `bun:"summit_depth" json:"summit_depth"` // inches
	NewSnow24h  *int `bun:"new_snow_24h" json:"new_snow_24h"`
	NewSnow48h  *int `bun:"new_snow_48h" json:"new_snow_48h"`

	TrailsOpen  *int `bun:"trails_open" json:"trails_open"`
	TrailsTotal *int `bun:"trails_total" json:"trails_total"`
	LiftsOpen   *int `bun:"lifts_open" json:"lifts_open"`
	LiftsTotal  *int `bun:"lifts_total" json:"lifts_total"`
	AcresOpen   *int `bun:"acres_open" json:"acres_open"`

	IsOpen            bool       `bun:"is_open,notnull,default:false" json:"is_open"`
	ConditionsUpdated *time.Time `bun:"conditions_updated" json:"conditions_updated,omitempty"`
	SourceURL         string     `bun:"source_url" json:"source_url"`

	LastRefreshed time.Time `bun:"last_refreshed,notnull" json:"last_refreshed"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the stable upsert key from a resort name
func Slugify(name string) string {
	return strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// HasCoordinates reports whether the resort can take part in distance operations
func (r *Resort) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// DeriveOpen sets IsOpen from the trail and lift counts.
// A resort is open iff any trail or lift is open.
func (r *Resort) DeriveOpen() {
	r.IsOpen = positive(r.TrailsOpen) || positive(r.LiftsOpen)
}

// TrailsPercentOpen returns the rounded percentage of open trails, 0 if unknown
func (r *Resort) TrailsPercentOpen() int {
	return percent(r.TrailsOpen, r.TrailsTotal)
}

// LiftsPercentOpen returns the rounded percentage of open lifts, 0 if unknown
func (r *Resort) LiftsPercentOpen() int {
	return percent(r.LiftsOpen, r.LiftsTotal)
}

// ConditionsSummary returns a brief human-readable summary such as
// `48" base | 6" new | 195/195 trails`
func (r *Resort) ConditionsSummary() string {
	var parts []string
	if positive(r.BaseDepth) {
		parts = append(parts, fmt.Sprintf("%d\" base", *r.BaseDepth))
	}
	if positive(r.NewSnow24h) {
		parts = append(parts, fmt.Sprintf("%d\" new", *r.NewSnow24h))
	}
	if positive(r.TrailsOpen) && positive(r.TrailsTotal) {
		parts = append(parts, fmt.Sprintf("%d/%d trails", *r.TrailsOpen, *r.TrailsTotal))
	}
	if len(parts) == 0 {
		return "No data"
	}
	return strings.Join(parts, " | ")
}

func (r *Resort) String() string {
	return r.Name
}

func percent(open, total *int) int {
	if !positive(total) {
		return 0
	}
	o := 0
	if open != nil {
		o = *open
	}
	return int(math.Round(float64(o) / float64(*total) * 100))
}

func positive(v *int) bool {
	return v != nil && *v > 0
}

// Int returns a pointer to v
func Int(v int) *int {
	return &v
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}
