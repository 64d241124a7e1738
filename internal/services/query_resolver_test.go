package services

import (
	"context"
	"errors"
	"ocean-query-service/internal/adapters/memory"
	"ocean-query-service/internal/domain"
	"ocean-query-service/internal/platform/obs"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(store *memory.SampleStore, opts QueryResolverOptions) *QueryResolver {
	return NewQueryResolver(store, nil, opts)
}

func TestClosestYear(t *testing.T) {
	tests := []struct {
		name      string
		years     []int
		requested int
		want      int
	}{
		{"single other year", []int{2012}, 2019, 2012},
		{"tie goes to smaller", []int{2010, 2020}, 2015, 2010},
		{"tie independent of order", []int{2020, 2010}, 2015, 2010},
		{"closer later year", []int{2015, 2020}, 2018, 2020},
		{"exact", []int{2014, 2016, 2018}, 2016, 2016},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClosestYear(tt.years, tt.requested)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ClosestYear(nil, 2015)
	assert.False(t, ok)
}

func TestResolve_ExactYear(t *testing.T) {
	store := memory.NewSampleStore([]memory.Row{
		row(1, 13.0, 80.0, date(2018, 2, 1), domain.Temperature, 27.1),
		row(2, 13.1, 80.3, date(2018, 3, 1), domain.Temperature, 27.9),
		row(3, 13.08, 80.27, date(2019, 3, 1), domain.Temperature, 30.0),
	})
	target := domain.Coordinates{Lat: 13.0827, Lon: 80.2707}

	a, err := newResolver(store, QueryResolverOptions{}).Resolve(context.Background(), domain.ParsedQuery{
		Parameter: domain.Temperature,
		Year:      ptr(2018),
		Place:     "chennai",
		Target:    &target,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), a.SampleID)
	assert.Equal(t, 2018, a.Year)
	assert.False(t, a.UsedFallbackYear)
	assert.False(t, a.UsedFallbackLocation)
	assert.Equal(t, 27.9, a.Value)
}

func TestResolve_ChennaiClosestYearScenario(t *testing.T) {
	store := memory.NewSampleStore([]memory.Row{
		row(1, 13.05, 80.25, date(2015, 4, 2), domain.Temperature, 26.0),
		row(2, 13.50, 80.60, date(2020, 7, 9), domain.Temperature, 28.4),
		row(3, 13.09, 80.28, date(2020, 8, 21), domain.Temperature, 29.1),
		row(4, 12.00, 79.90, date(2020, 1, 5), domain.Temperature, 27.0),
	})
	metrics := obs.NewMetricsForTesting()
	r := newResolver(store, QueryResolverOptions{Metrics: metrics})

	q, err := NewQueryParser(nil).Parse("temperature near Chennai in 2018")
	require.NoError(t, err)

	a, err := r.Resolve(context.Background(), q)
	require.NoError(t, err)

	assert.True(t, a.UsedFallbackYear)
	assert.Equal(t, 2018, *a.RequestedYear)
	assert.Equal(t, 2020, a.Year)
	assert.Equal(t, int64(3), a.SampleID)
	assert.Equal(t, 29.1, a.Value)
	assert.Equal(t, domain.Coordinates{Lat: 13.09, Lon: 80.28}, a.Coordinates)
	assert.Equal(t, date(2020, 8, 21), a.Date)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Fallbacks.WithLabelValues("year")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Queries.WithLabelValues("ok")))
}

func TestResolve_SingleOtherYear(t *testing.T) {
	store := memory.NewSampleStore([]memory.Row{
		row(1, 10, 70, date(2011, 1, 1), domain.Salinity, 35.2),
	})

	a, err := newResolver(store, QueryResolverOptions{}).Resolve(context.Background(), domain.ParsedQuery{
		Parameter: domain.Salinity,
		Year:      ptr(2023),
		Target:    &domain.Coordinates{Lat: 0, Lon: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 2011, a.Year)
	assert.True(t, a.UsedFallbackYear)
}

func TestResolve_YearTieBreak(t *testing.T) {
	store := memory.NewSampleStore([]memory.Row{
		row(1, 10, 70, date(2020, 1, 1), domain.Pressure, 100),
		row(2, 50, 10, date(2010, 1, 1), domain.Pressure, 200),
	})

	a, err := newResolver(store, QueryResolverOptions{}).Resolve(context.Background(), domain.ParsedQuery{
		Parameter: domain.Pressure,
		Year:      ptr(2015),
		Target:    &domain.Coordinates{Lat: 10, Lon: 70},
	})
	require.NoError(t, err)
	assert.Equal(t, 2010, a.Year)
	assert.Equal(t, int64(2), a.SampleID)
}

func TestResolve_UnknownPlaceUsesDefaultLocation(t *testing.T) {
	store := memory.NewSampleStore([]memory.Row{
		row(1, 5, 75, date(2019, 1, 1), domain.Salinity, 34.0),
		row(2, 15, 85, date(2019, 1, 1), domain.Salinity, 35.0),
	})
	def := domain.Coordinates{Lat: 15.1, Lon: 85.1}

	q, err := NewQueryParser(nil).Parse("salinity near Atlantis")
	require.NoError(t, err)

	a, err := newResolver(store, QueryResolverOptions{DefaultLocation: &def}).Resolve(context.Background(), q)
	require.NoError(t, err)

	assert.True(t, a.UsedFallbackLocation)
	assert.Equal(t, def, a.Target)
	assert.Equal(t, int64(2), a.SampleID)
	assert.False(t, a.UsedFallbackYear)
}

func TestResolve_DefaultLocationFromFirstSample(t *testing.T) {
	store := memory.NewSampleStore([]memory.Row{
		row(1, 5, 75, date(2019, 1, 1), domain.Temperature, 25.0),
		row(2, 15, 85, date(2019, 1, 1), domain.Salinity, 35.0),
	})

	a, err := newResolver(store, QueryResolverOptions{}).Resolve(context.Background(), domain.ParsedQuery{Parameter: domain.Salinity})
	require.NoError(t, err)

	assert.True(t, a.UsedFallbackLocation)
	assert.Equal(t, domain.Coordinates{Lat: 5, Lon: 75}, a.Target)
	assert.Equal(t, int64(2), a.SampleID)
}

func TestResolve_DistanceRoundTrip(t *testing.T) {
	store := memory.NewSampleStore([]memory.Row{
		row(1, 18.9, 72.8, date(2017, 1, 1), domain.DissolvedOxygen, 4.1),
		row(2, 19.2, 72.5, date(2017, 2, 1), domain.DissolvedOxygen, 4.4),
		row(3, 20.0, 70.0, date(2017, 3, 1), domain.DissolvedOxygen, 4.9),
	})
	target := domain.Coordinates{Lat: 19.0760, Lon: 72.8777}

	answers, err := newResolver(store, QueryResolverOptions{}).ResolveTop(context.Background(), domain.ParsedQuery{
		Parameter: domain.DissolvedOxygen,
		Target:    &target,
	}, 3)
	require.NoError(t, err)
	require.Len(t, answers, 3)

	for _, a := range answers {
		assert.InDelta(t, domain.DistanceKm(a.Coordinates, target), a.DistanceKm, 1e-6)
	}
	assert.LessOrEqual(t, answers[0].DistanceKm, answers[1].DistanceKm)
	assert.LessOrEqual(t, answers[1].DistanceKm, answers[2].DistanceKm)
}

func TestResolve_NoData(t *testing.T) {
	store := memory.NewSampleStore([]memory.Row{
		row(1, 5, 75, date(2019, 1, 1), domain.Temperature, 25.0),
	})
	r := newResolver(store, QueryResolverOptions{})
	target := domain.Coordinates{Lat: 5, Lon: 75}

	_, err := r.Resolve(context.Background(), domain.ParsedQuery{Parameter: domain.Pressure, Year: ptr(2019), Target: &target})
	assert.ErrorIs(t, err, domain.ErrNoDataForParameter)

	_, err = r.Resolve(context.Background(), domain.ParsedQuery{Parameter: domain.Pressure, Target: &target})
	assert.ErrorIs(t, err, domain.ErrNoDataForParameter)

	_, err = newResolver(memory.NewSampleStore(nil), QueryResolverOptions{}).Resolve(context.Background(), domain.ParsedQuery{Parameter: domain.Pressure})
	assert.ErrorIs(t, err, domain.ErrNoDataForParameter)
}

func TestResolve_UnknownParameter(t *testing.T) {
	_, err := newResolver(memory.NewSampleStore(nil), QueryResolverOptions{}).Resolve(context.Background(), domain.ParsedQuery{Parameter: "chlorophyll"})
	assert.ErrorIs(t, err, domain.ErrUnknownParameter)
}

func TestResolve_StoreUnavailableWrapsAdapterError(t *testing.T) {
	store := memory.NewSampleStore(nil)
	store.Err = errors.New("connection refused")
	metrics := obs.NewMetricsForTesting()

	_, err := newResolver(store, QueryResolverOptions{Metrics: metrics}).Resolve(context.Background(), domain.ParsedQuery{Parameter: domain.Temperature})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, store.Err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Queries.WithLabelValues("store_error")))
}

func TestResolve_UsesIndexWhenAvailable(t *testing.T) {
	store := memory.NewSampleStore([]memory.Row{
		row(1, 13.0, 80.2, date(2020, 1, 1), domain.Temperature, 20),
		row(2, 13.08, 80.27, date(2020, 1, 1), domain.Temperature, 21),
	})
	index := &stubIndex{ids: []int64{1}}
	spatial := NewSpatialResolver(store, index, 2, nil, nil)
	r := NewQueryResolver(store, spatial, QueryResolverOptions{})
	target := domain.Coordinates{Lat: 13.0827, Lon: 80.2707}

	// The index only knows row 1, so that is what comes back.
	a, err := r.Resolve(context.Background(), domain.ParsedQuery{Parameter: domain.Temperature, Target: &target})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.SampleID)
	assert.Equal(t, 1, index.calls)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "no_parameter", Outcome(domain.ErrNoParameter))
	assert.Equal(t, "no_data", Outcome(errors.Join(errors.New("x"), domain.ErrNoDataForParameter)))
	assert.Equal(t, "error", Outcome(errors.New("other")))
}
