// Package geo provides the great-circle distance and bounding-box math used
// by the nearby-issue search.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for all distance math.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine great-circle distance in kilometers
// between two lat/lon points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Box is a rectangular lat/lon range used as a cheap pre-filter before
// exact distance computation.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// BoundingBox returns the box that encloses a radiusKm circle around the
// center. The longitude correction divides by cos(lat), so the box
// degenerates near the poles; radius search accuracy is only guaranteed
// below roughly 85° latitude.
func BoundingBox(lat, lon, radiusKm float64) Box {
	latDelta := radiusKm / EarthRadiusKm * (180 / math.Pi)
	lonDelta := latDelta / math.Cos(lat*math.Pi/180)

	return Box{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLon: lon - lonDelta,
		MaxLon: lon + lonDelta,
	}
}
