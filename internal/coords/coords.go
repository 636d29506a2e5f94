// Package coords provides the versioned reference dataset mapping resort slugs
// to coordinates.
//
// Snow report listing pages rarely carry geocoordinates, so the scraper resolves
// each resort through this dataset. The default dataset is embedded in the binary
// and can be replaced by a JSON file with the same shape.
package coords

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed resorts.json
var defaultJSON []byte

// Point is a latitude/longitude pair
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type entry struct {
	Slug string `json:"slug"`
	Point
}

type file struct {
	Version string  `json:"version"`
	Resorts []entry `json:"resorts"`
}

// Dataset maps resort slugs to coordinates
type Dataset struct {
	version string
	points  map[string]Point
}

// Default returns the embedded dataset
func Default() *Dataset {
	ds, err := Parse(defaultJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded coordinate dataset is invalid: %v", err))
	}
	return ds
}

// LoadFile reads a dataset from a JSON file
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading coordinate dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes a dataset. Later entries win over earlier ones with the same slug.
func Parse(data []byte) (*Dataset, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing coordinate dataset: %w", err)
	}

	ds := New(f.Version, nil)
	for _, e := range f.Resorts {
		slug := strings.TrimSpace(e.Slug)
		if slug == "" {
			return nil, fmt.Errorf("coordinate dataset %s: entry with empty slug", f.Version)
		}
		if e.Latitude < -90 || e.Latitude > 90 || e.Longitude < -180 || e.Longitude > 180 {
			return nil, fmt.Errorf("coordinate dataset %s: %s out of range", f.Version, slug)
		}
		ds.points[slug] = e.Point
	}
	return ds, nil
}

// New builds a dataset from a map, mostly useful for tests
func New(version string, points map[string]Point) *Dataset {
	ds := &Dataset{
		version: version,
		points:  make(map[string]Point, len(points)),
	}
	for k, v := range points {
		ds.points[k] = v
	}
	return ds
}

// Lookup returns the coordinates for a slug
func (d *Dataset) Lookup(slug string) (Point, bool) {
	if d == nil {
		return Point{}, false
	}
	p, ok := d.points[slug]
	return p, ok
}

// Version returns the dataset version label
func (d *Dataset) Version() string {
	return d.version
}

// Size returns the number of entries
func (d *Dataset) Size() int {
	return len(d.points)
}
