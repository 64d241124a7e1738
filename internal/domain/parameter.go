package domain

import "fmt"

// Parameter is a measured physical quantity. Its value is also the column
// name used by the record store.
type Parameter string

const (
	Temperature     Parameter = "temperature"
	Salinity        Parameter = "salinity"
	Pressure        Parameter = "pressure"
	DissolvedOxygen Parameter = "dissolved_oxygen"
)

// Parameters lists every supported parameter in vocabulary order.
var Parameters = []Parameter{Temperature, Salinity, Pressure, DissolvedOxygen}

func (p Parameter) Valid() bool {
	switch p {
	case Temperature, Salinity, Pressure, DissolvedOxygen:
		return true
	}
	return false
}

// Column returns the record-store column for p, rejecting anything outside the
// fixed vocabulary so it is safe to interpolate into SQL.
func (p Parameter) Column() (string, error) {
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownParameter, string(p))
	}
	return string(p), nil
}

// Label is the human-readable name, e.g. "Dissolved oxygen".
func (p Parameter) Label() string {
	switch p {
	case Temperature:
		return "Temperature"
	case Salinity:
		return "Salinity"
	case Pressure:
		return "Pressure"
	case DissolvedOxygen:
		return "Dissolved oxygen"
	}
	return string(p)
}
