package main

import (
	"bytes"
	"context"
	"ocean-query-service/internal/adapters/memory"
	"ocean-query-service/internal/domain"
	"ocean-query-service/internal/services"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop(t *testing.T) {
	store := memory.NewSampleStore([]memory.Row{
		{ID: 1, Coordinates: domain.Coordinates{Lat: 13.09, Lon: 80.28}, Date: time.Date(2020, 8, 21, 0, 0, 0, 0, time.UTC),
			Values: map[domain.Parameter]float64{domain.Temperature: 29.1}},
	})
	resolver := services.NewQueryResolver(store, nil, services.QueryResolverOptions{})
	svc := services.NewQueryService(services.NewQueryParser(nil), resolver, nil, nil)

	in := strings.NewReader("temperature near chennai in 2020\n\nwhat is the weather\nexit\ntemperature\n")
	var out bytes.Buffer

	require.NoError(t, loop(context.Background(), svc, in, &out))

	got := out.String()
	assert.Contains(t, got, "Value: 29.1")
	assert.Contains(t, got, "Date: 2020-08-21")
	assert.Contains(t, got, "Could not answer:")
	// Nothing after exit is evaluated.
	assert.Equal(t, 1, strings.Count(got, "Value:"))
}
