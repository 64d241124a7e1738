package dto

type PlaceResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type ListPlacesResponse struct {
	Places []PlaceResponse `json:"places"`
}
