package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm_ZeroForSamePoint(t *testing.T) {
	p := Coordinates{Lat: 13.0827, Lon: 80.2707}
	assert.Zero(t, DistanceKm(p, p))
}

func TestDistanceKm_WGS84Arcs(t *testing.T) {
	origin := Coordinates{Lat: 0, Lon: 0}

	// One degree along the meridian and along the equator differ on the ellipsoid.
	assert.InDelta(t, 110.574, DistanceKm(origin, Coordinates{Lat: 1, Lon: 0}), 0.001)
	assert.InDelta(t, 111.319, DistanceKm(origin, Coordinates{Lat: 0, Lon: 1}), 0.001)
}

func TestDistanceKm_Symmetric(t *testing.T) {
	chennai := Coordinates{Lat: 13.0827, Lon: 80.2707}
	mumbai := Coordinates{Lat: 19.0760, Lon: 72.8777}

	d1 := DistanceKm(chennai, mumbai)
	d2 := DistanceKm(mumbai, chennai)

	assert.InDelta(t, d1, d2, 1e-9)
	assert.Greater(t, d1, 1000.0)
	assert.Less(t, d1, 1100.0)
}
