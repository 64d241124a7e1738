package services

import (
	"fmt"
	"ocean-query-service/internal/domain"
	"ocean-query-service/internal/places"
	"regexp"
	"strconv"
	"strings"
)

// Parameter vocabulary in match order. The first term found in the text wins,
// so "temperature and salinity" parses as temperature.
var parameterTerms = []struct {
	term  string
	param domain.Parameter
}{
	{"temperature", domain.Temperature},
	{"salinity", domain.Salinity},
	{"pressure", domain.Pressure},
	{"dissolved_oxygen", domain.DissolvedOxygen},
	{"dissolved oxygen", domain.DissolvedOxygen},
	{"oxygen", domain.DissolvedOxygen},
}

var (
	yearPattern      = regexp.MustCompile(`\b(20\d\d)\b`)
	coordPairPattern = regexp.MustCompile(`(?:^|[^\d.])(-?\d{1,3}(?:\.\d+)?)\s*,\s*(-?\d{1,3}(?:\.\d+)?)(?:$|[^\d])`)
)

// QueryParser turns free text into a ParsedQuery using keyword rules and a
// place registry. It holds no mutable state.
type QueryParser struct {
	registry *places.Registry
}

func NewQueryParser(registry *places.Registry) *QueryParser {
	if registry == nil {
		registry = places.Default()
	}
	return &QueryParser{registry: registry}
}

// Parse extracts the parameter, an optional year and an optional target.
// It fails only when no parameter term is present.
func (p *QueryParser) Parse(text string) (domain.ParsedQuery, error) {
	lower := strings.ToLower(text)

	param, ok := matchParameter(lower)
	if !ok {
		return domain.ParsedQuery{}, fmt.Errorf("parse query %q: %w", text, domain.ErrNoParameter)
	}

	q := domain.ParsedQuery{Text: text, Parameter: param}

	if m := yearPattern.FindStringSubmatch(lower); m != nil {
		year, err := strconv.Atoi(m[1])
		if err == nil {
			q.Year = &year
		}
	}

	if name, coords, ok := p.matchPlace(lower); ok {
		q.Place = name
		q.Target = &coords
	} else if coords, ok := matchCoordinates(lower); ok {
		q.Target = &coords
	}

	return q, nil
}

func matchParameter(lower string) (domain.Parameter, bool) {
	for _, t := range parameterTerms {
		if strings.Contains(lower, t.term) ||
			strings.Contains(lower, strings.ReplaceAll(t.term, "_", " ")) ||
			strings.Contains(lower, strings.ReplaceAll(t.term, " ", "_")) {
			return t.param, true
		}
	}
	return "", false
}

// Registry order decides between several places named in one query.
func (p *QueryParser) matchPlace(lower string) (string, domain.Coordinates, bool) {
	for _, e := range p.registry.Entries() {
		underscored, spaced := places.Forms(e.Name)
		if strings.Contains(lower, underscored) || strings.Contains(lower, spaced) {
			return e.Name, e.Coordinates, true
		}
	}
	return "", domain.Coordinates{}, false
}

// Accepts an explicit "lat, lon" pair. Both numbers must be in range.
func matchCoordinates(lower string) (domain.Coordinates, bool) {
	for _, m := range coordPairPattern.FindAllStringSubmatch(lower, -1) {
		lat, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		c := domain.Coordinates{Lat: lat, Lon: lon}
		if c.Validate() == nil {
			return c, true
		}
	}
	return domain.Coordinates{}, false
}
