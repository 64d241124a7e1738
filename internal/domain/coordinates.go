package domain

import "fmt"

// Immutable geographic coordinates in WGS-84 degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Validate reports whether the coordinates fall inside the valid degree ranges.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lon)
	}
	return nil
}

// Return coordinates as a [lat, lon] vector for vector index lookups.
func (c Coordinates) Vector() [2]float32 { return [2]float32{float32(c.Lat), float32(c.Lon)} }

func (c Coordinates) String() string { return fmt.Sprintf("(%.4f, %.4f)", c.Lat, c.Lon) }
