package planner

import (
	"math"

	"nexum/internal/models"
)

// FallbackPoint is used when no member has a home location (Sydney CBD).
var FallbackPoint = models.Point{Lat: -33.8688, Lng: 151.2093}

// Midpoint is the arithmetic mean of the home coordinates of members that
// have both set, or FallbackPoint if none do.
func Midpoint(members []*models.GroupMember) models.Point {
	var sumLat, sumLng float64
	n := 0
	for _, m := range members {
		if !m.User.HasHome() {
			continue
		}
		sumLat += *m.User.HomeLat
		sumLng += *m.User.HomeLng
		n++
	}
	if n == 0 {
		return FallbackPoint
	}
	return models.Point{Lat: sumLat / float64(n), Lng: sumLng / float64(n)}
}

// Distance is the planar euclidean distance in degrees.
func Distance(a, b models.Point) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lng-b.Lng)
}
