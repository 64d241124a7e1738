package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"ocean-query-service/internal/adapters/memory"
	"ocean-query-service/internal/api/dto"
	"ocean-query-service/internal/domain"
	"ocean-query-service/internal/places"
	"ocean-query-service/internal/services"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func newTestRouter(t *testing.T, store *memory.SampleStore, pinger fakePinger) http.Handler {
	t.Helper()

	registry := places.Default()
	resolver := services.NewQueryResolver(store, nil, services.QueryResolverOptions{})
	svc := services.NewQueryService(services.NewQueryParser(registry), resolver, nil, nil)

	return NewRouter(Deps{
		Service:  svc,
		Registry: registry,
		Store:    pinger,
		Timeout:  time.Second,
		Metrics:  http.NotFoundHandler(),
	})
}

func chennaiStore() *memory.SampleStore {
	return memory.NewSampleStore([]memory.Row{
		{ID: 1, Coordinates: domain.Coordinates{Lat: 13.05, Lon: 80.25}, Date: day(2015, 4, 2),
			Values: map[domain.Parameter]float64{domain.Temperature: 26.0}},
		{ID: 2, Coordinates: domain.Coordinates{Lat: 13.09, Lon: 80.28}, Date: day(2020, 8, 21),
			Values: map[domain.Parameter]float64{domain.Temperature: 29.1}},
	})
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQuery_ClosestYear(t *testing.T) {
	h := newTestRouter(t, chennaiStore(), fakePinger{})

	rec := post(h, "/query", `{"text": "temperature near Chennai in 2018"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var res dto.QueryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))

	assert.Equal(t, "temperature", res.Query.Parameter)
	assert.Equal(t, "chennai", res.Query.Place)
	require.Len(t, res.Answers, 1)

	a := res.Answers[0]
	assert.Equal(t, 2020, a.Year)
	assert.Equal(t, 2018, *a.RequestedYear)
	assert.True(t, a.UsedFallbackYear)
	assert.Equal(t, int64(2), a.SampleID)
	assert.Equal(t, "2020-08-21", a.Date)
	assert.Contains(t, a.Summary, "Using closest available year: 2020")
}

func TestQuery_ErrorStatuses(t *testing.T) {
	broken := memory.NewSampleStore(nil)
	broken.Err = errors.New("disk I/O error")

	tests := []struct {
		name   string
		store  *memory.SampleStore
		body   string
		status int
	}{
		{"no parameter", chennaiStore(), `{"text": "weather in chennai"}`, http.StatusBadRequest},
		{"empty text", chennaiStore(), `{"text": " "}`, http.StatusBadRequest},
		{"bad k", chennaiStore(), `{"text": "temperature", "k": 500}`, http.StatusBadRequest},
		{"unknown field", chennaiStore(), `{"text": "temperature", "year": 2018}`, http.StatusBadRequest},
		{"no data", chennaiStore(), `{"text": "salinity near chennai"}`, http.StatusNotFound},
		{"store down", broken, `{"text": "temperature near chennai"}`, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newTestRouter(t, tt.store, fakePinger{}), "/query", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "disk I/O")
		})
	}
}

func TestQuery_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t, chennaiStore(), fakePinger{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/query", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestQuery_TopK(t *testing.T) {
	rec := post(newTestRouter(t, chennaiStore(), fakePinger{}), "/query", `{"text": "temperature near chennai", "k": 5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.QueryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.Len(t, res.Answers, 2)
	assert.LessOrEqual(t, res.Answers[0].DistanceKm, res.Answers[1].DistanceKm)
}

func TestBatch(t *testing.T) {
	rec := post(newTestRouter(t, chennaiStore(), fakePinger{}), "/query/batch",
		`{"queries": ["temperature near chennai in 2020", "hello"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.BatchQueryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.Len(t, res.Results, 2)

	assert.Equal(t, http.StatusOK, res.Results[0].Status)
	require.NotNil(t, res.Results[0].Result)
	assert.Equal(t, 2020, res.Results[0].Result.Answers[0].Year)

	assert.Equal(t, http.StatusBadRequest, res.Results[1].Status)
	assert.Equal(t, domain.ErrNoParameter.Error(), res.Results[1].Error)

	rec = post(newTestRouter(t, chennaiStore(), fakePinger{}), "/query/batch", `{"queries": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaces(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, chennaiStore(), fakePinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/places", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.ListPlacesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	require.NotEmpty(t, res.Places)
	assert.Equal(t, dto.PlaceResponse{Name: "chennai", Lat: 13.0827, Lon: 80.2707}, res.Places[0])
}

func TestHealthAndReady(t *testing.T) {
	h := newTestRouter(t, chennaiStore(), fakePinger{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := newTestRouter(t, chennaiStore(), fakePinger{err: errors.New("no db")})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()

	newTestRouter(t, chennaiStore(), fakePinger{}).ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
