package domain

import "github.com/tidwall/geodesic"

// DistanceKm returns the WGS-84 ellipsoidal geodesic distance between a and b
// in kilometers.
func DistanceKm(a, b Coordinates) float64 {
	var meters float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &meters, nil, nil)
	return meters / 1000
}
