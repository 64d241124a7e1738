package dto

type QueryRequest struct {
	Text string `json:"text"`
	K    int    `json:"k"`
}

type BatchQueryRequest struct {
	Queries []string `json:"queries"`
	K       int      `json:"k"`
}

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type ParsedQueryResponse struct {
	Text      string               `json:"text"`
	Parameter string               `json:"parameter"`
	Year      *int                 `json:"year"`
	Place     string               `json:"place,omitempty"`
	Target    *CoordinatesResponse `json:"target"`
}

type AnswerResponse struct {
	Parameter            string              `json:"parameter"`
	RequestedYear        *int                `json:"requested_year"`
	Year                 int                 `json:"year"`
	Value                float64             `json:"value"`
	SampleID             int64               `json:"sample_id"`
	Location             CoordinatesResponse `json:"location"`
	Date                 string              `json:"date"`
	Target               CoordinatesResponse `json:"target"`
	DistanceKm           float64             `json:"distance_km"`
	UsedFallbackYear     bool                `json:"used_fallback_year"`
	UsedFallbackLocation bool                `json:"used_fallback_location"`
	Summary              string              `json:"summary"`
}

type QueryResponse struct {
	Query   ParsedQueryResponse `json:"query"`
	Answers []AnswerResponse    `json:"answers"`
}

type BatchItemResponse struct {
	Text   string         `json:"text"`
	Result *QueryResponse `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
	Status int            `json:"status"`
}

type BatchQueryResponse struct {
	Results []BatchItemResponse `json:"results"`
}
