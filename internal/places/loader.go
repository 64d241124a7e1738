package places

import (
	"encoding/json"
	"fmt"
	"io"
	"ocean-query-service/internal/domain"
	"os"
)

type jsonPlace struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

// LoadJSON reads a registry from a JSON array of {"name", "lat", "lon"}
// objects. File order becomes scan order.
func LoadJSON(r io.Reader) (*Registry, error) {
	var raw []jsonPlace
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("load places: decode: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for i, p := range raw {
		if p.Lat == nil || p.Lon == nil {
			return nil, fmt.Errorf("load places: entry %d (%q): lat and lon are required", i, p.Name)
		}
		entries = append(entries, Entry{
			Name:        p.Name,
			Coordinates: domain.Coordinates{Lat: *p.Lat, Lon: *p.Lon},
		})
	}

	reg, err := New(entries)
	if err != nil {
		return nil, fmt.Errorf("load places: %w", err)
	}
	return reg, nil
}

// LoadFile opens path and calls LoadJSON.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load places: open %s: %w", path, err)
	}
	defer f.Close()

	return LoadJSON(f)
}
