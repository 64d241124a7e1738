package domain

import (
	"fmt"
	"strings"
	"time"
)

// ResolvedAnswer describes the sample chosen for a query.
//
// Year is the year actually used, which differs from RequestedYear when the
// closest-year fallback kicked in.
type ResolvedAnswer struct {
	Parameter            Parameter
	RequestedYear        *int
	Year                 int
	Value                float64
	SampleID             int64
	Coordinates          Coordinates
	Date                 time.Time
	Place                string
	Target               Coordinates
	DistanceKm           float64
	UsedFallbackYear     bool
	UsedFallbackLocation bool
}

// Summary renders the answer as the multi-line text shown to REPL users.
func (a ResolvedAnswer) Summary() string {
	var b strings.Builder

	if a.UsedFallbackLocation {
		b.WriteString("No place recognized. Using default sample location instead.\n")
	}
	if a.UsedFallbackYear && a.RequestedYear != nil {
		fmt.Fprintf(&b, "No data for %s in %d. Using closest available year: %d\n", a.Parameter, *a.RequestedYear, a.Year)
	}

	fmt.Fprintf(&b, "%s near (%g, %g) in %d:\n", a.Parameter.Label(), a.Target.Lat, a.Target.Lon, a.Year)
	fmt.Fprintf(&b, "Value: %g\n", a.Value)
	fmt.Fprintf(&b, "Location: (%g, %g)\n", a.Coordinates.Lat, a.Coordinates.Lon)
	fmt.Fprintf(&b, "Date: %s\n", a.Date.Format(time.DateOnly))
	fmt.Fprintf(&b, "Distance from target: %.2f km", a.DistanceKm)

	return b.String()
}
