package geo

import (
	"math"
	"testing"
)

func TestGreatCircleDistance_SamePoint(t *testing.T) {
	points := []Point{
		{0, 0},
		{39.7392, -104.9903},
		{-33.8688, 151.2093},
		{90, 0},
	}

	for _, p := range points {
		if d := GreatCircleDistance(p.Lat, p.Lng, p.Lat, p.Lng); d != 0 {
			t.Errorf("distance from %+v to itself = %v, want 0", p, d)
		}
	}
}

func TestGreatCircleDistance_Symmetric(t *testing.T) {
	pairs := [][2]Point{
		{{39.7392, -104.9903}, {39.6403, -106.3742}},
		{{40.7128, -74.0060}, {44.5303, -72.7814}},
		{{0, 179.5}, {0, -179.5}},
	}

	for _, pair := range pairs {
		ab := pair[0].DistanceTo(pair[1])
		ba := pair[1].DistanceTo(pair[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("d(a,b) = %v, d(b,a) = %v", ab, ba)
		}
	}
}

func TestGreatCircleDistance_Known(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
		tol  float64
	}{
		{
			name: "denver to vail",
			a:    Point{39.7392, -104.9903},
			b:    Point{39.6403, -106.3742},
			want: 74.0,
			tol:  1.5,
		},
		{
			name: "one degree of longitude at the equator",
			a:    Point{0, 0},
			b:    Point{0, 1},
			want: 2 * math.Pi * EarthRadiusMiles / 360,
			tol:  1e-6,
		},
		{
			name: "across the antimeridian",
			a:    Point{0, 179.5},
			b:    Point{0, -179.5},
			want: 2 * math.Pi * EarthRadiusMiles / 360,
			tol:  1e-6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.DistanceTo(tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("distance = %v, want %v ± %v", got, tt.want, tt.tol)
			}
		})
	}
}
