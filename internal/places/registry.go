package places

import (
	"context"
	"errors"
	"fmt"
	"ocean-query-service/internal/domain"
	"ocean-query-service/internal/ports"
	"strings"
)

// Entry is a canonical place name and its coordinates.
type Entry struct {
	Name        string
	Coordinates domain.Coordinates
}

// Registry is an immutable, ordered mapping of place names to coordinates.
// Iteration order is fixed at construction and drives first-match-wins parsing.
type Registry struct {
	entries []Entry
	byKey   map[string]int
}

// Built-in coastal reference points, in scan order.
var defaultEntries = []Entry{
	{Name: "chennai", Coordinates: domain.Coordinates{Lat: 13.0827, Lon: 80.2707}},
	{Name: "mumbai", Coordinates: domain.Coordinates{Lat: 19.0760, Lon: 72.8777}},
	{Name: "kolkata", Coordinates: domain.Coordinates{Lat: 22.5726, Lon: 88.3639}},
	{Name: "bangalore", Coordinates: domain.Coordinates{Lat: 12.9716, Lon: 77.5946}},
	{Name: "kochi", Coordinates: domain.Coordinates{Lat: 9.9312, Lon: 76.2673}},
	{Name: "visakhapatnam", Coordinates: domain.Coordinates{Lat: 17.6868, Lon: 83.2185}},
	{Name: "goa", Coordinates: domain.Coordinates{Lat: 15.2993, Lon: 74.1240}},
	{Name: "puducherry", Coordinates: domain.Coordinates{Lat: 11.9416, Lon: 79.8083}},
	{Name: "mangalore", Coordinates: domain.Coordinates{Lat: 12.9141, Lon: 74.8560}},
	{Name: "port_blair", Coordinates: domain.Coordinates{Lat: 11.6234, Lon: 92.7265}},
}

// Default returns the built-in registry.
func Default() *Registry {
	r, err := New(defaultEntries)
	if err != nil {
		panic(err)
	}
	return r
}

// New builds a registry from entries, keeping their order.
// Names must be unique once normalized and coordinates must be in range.
func New(entries []Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		key := normalize(e.Name)
		if key == "" {
			return nil, errors.New("new registry: empty place name")
		}
		if err := e.Coordinates.Validate(); err != nil {
			return nil, fmt.Errorf("new registry: place %q: %w", e.Name, err)
		}
		if _, dup := r.byKey[key]; dup {
			return nil, fmt.Errorf("new registry: duplicate place %q", e.Name)
		}

		r.byKey[key] = len(r.entries)
		r.entries = append(r.entries, Entry{Name: key, Coordinates: e.Coordinates})
	}

	return r, nil
}

// FromSource builds a registry from a PlaceSource such as the places table.
func FromSource(ctx context.Context, src ports.PlaceSource) (*Registry, error) {
	rows, err := src.ListPlaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry from source: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, p := range rows {
		entries = append(entries, Entry{Name: p.Name, Coordinates: p.Coordinates})
	}
	return New(entries)
}

// Lookup returns the coordinates for name. Matching ignores case and treats
// underscores and spaces as equivalent.
func (r *Registry) Lookup(name string) (domain.Coordinates, error) {
	i, ok := r.byKey[normalize(name)]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("lookup %q: %w", name, domain.ErrPlaceNotFound)
	}
	return r.entries[i].Coordinates, nil
}

// Entries returns a copy of the registry contents in scan order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Registry) Len() int { return len(r.entries) }

// Canonical keys are lowercase and underscore-joined.
func normalize(name string) string {
	fields := strings.Fields(strings.ToLower(strings.ReplaceAll(name, "_", " ")))
	return strings.Join(fields, "_")
}

// Forms returns the underscore-joined and space-joined spellings of a
// canonical name, which are what free text is matched against.
func Forms(name string) (underscored, spaced string) {
	underscored = normalize(name)
	return underscored, strings.ReplaceAll(underscored, "_", " ")
}
