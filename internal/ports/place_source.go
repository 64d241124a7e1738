package ports

import (
	"context"
	"ocean-query-service/internal/domain"
)

// A named location used to seed the place registry.
type Place struct {
	Name        string
	Coordinates domain.Coordinates
}

// Port: a source of registry entries, read once at startup.
type PlaceSource interface {
	ListPlaces(ctx context.Context) ([]Place, error)
}
