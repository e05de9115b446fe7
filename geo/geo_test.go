package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm_IdenticalPoints(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(24.58, 73.68, 24.58, 73.68))
	assert.Equal(t, 0.0, DistanceKm(0, 0, 0, 0))
	assert.Equal(t, 0.0, DistanceKm(-89.9, 179.9, -89.9, 179.9))
}

func TestDistanceKm_Symmetric(t *testing.T) {
	d1 := DistanceKm(24.58, 73.68, 51.5074, -0.1278)
	d2 := DistanceKm(51.5074, -0.1278, 24.58, 73.68)
	assert.Equal(t, d1, d2)
}

func TestDistanceKm_KnownDistances(t *testing.T) {
	// London -> Paris, roughly 344 km great-circle
	assert.InDelta(t, 344, DistanceKm(51.5074, -0.1278, 48.8566, 2.3522), 3)

	// one degree of latitude along a meridian is ~111.2 km
	assert.InDelta(t, 111.2, DistanceKm(0, 0, 1, 0), 0.5)

	// a hundredth of a degree diagonal at ~24.6°N is ~1.5 km
	assert.InDelta(t, 1.5, DistanceKm(24.58, 73.68, 24.59, 73.69), 0.1)
}

func TestBoundingBox_Equator(t *testing.T) {
	// 111.19 km is very close to one degree of latitude
	box := BoundingBox(0, 0, 111.19)

	assert.InDelta(t, 1.0, box.MaxLat, 0.01)
	assert.InDelta(t, -1.0, box.MinLat, 0.01)
	// no longitude correction at the equator
	assert.InDelta(t, box.MaxLat-box.MinLat, box.MaxLon-box.MinLon, 0.001)
}

func TestBoundingBox_LongitudeWidensWithLatitude(t *testing.T) {
	equator := BoundingBox(0, 0, 10)
	at60 := BoundingBox(60, 0, 10)

	latSpanEquator := equator.MaxLat - equator.MinLat
	latSpan60 := at60.MaxLat - at60.MinLat
	assert.InDelta(t, latSpanEquator, latSpan60, 1e-9, "latitude span does not depend on latitude")

	lonSpan60 := at60.MaxLon - at60.MinLon
	// cos(60°) = 0.5, so the longitude span doubles
	assert.InDelta(t, 2*(equator.MaxLon-equator.MinLon), lonSpan60, 1e-6)
}

func TestBoundingBox_ContainsCenter(t *testing.T) {
	box := BoundingBox(24.58, 73.68, 5)
	assert.Less(t, box.MinLat, 24.58)
	assert.Greater(t, box.MaxLat, 24.58)
	assert.Less(t, box.MinLon, 73.68)
	assert.Greater(t, box.MaxLon, 73.68)
}
