// Package geo provides great-circle distance math.
package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used for all distance math
const EarthRadiusMiles = 3959.0

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// GreatCircleDistance returns the haversine distance in miles between two points
func GreatCircleDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := radians(lat1)
	lat2Rad := radians(lat2)
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// DistanceTo returns the great-circle distance in miles to q
func (p Point) DistanceTo(q Point) float64 {
	return GreatCircleDistance(p.Lat, p.Lng, q.Lat, q.Lng)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
