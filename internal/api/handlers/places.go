package handlers

import (
	"net/http"
	"ocean-query-service/internal/api/dto"
	"ocean-query-service/internal/places"
)

// PlaceHandler exposes the place registry.
type PlaceHandler struct {
	Registry *places.Registry
}

func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.Registry.Entries()
	res := dto.ListPlacesResponse{Places: make([]dto.PlaceResponse, 0, len(entries))}
	for _, e := range entries {
		res.Places = append(res.Places, dto.PlaceResponse{
			Name: e.Name,
			Lat:  e.Coordinates.Lat,
			Lon:  e.Coordinates.Lon,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
