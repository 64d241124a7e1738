package repositories

import (
	"context"
	"database/sql"
	"ocean-query-service/internal/domain"
	"ocean-query-service/internal/ports"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const seedJSON = `[
	{"id": 1, "date": "2015-04-02", "latitude": 13.05, "longitude": 80.25, "temperature": 26.0, "salinity": 34.1, "pressure": null, "dissolved_oxygen": 4.2},
	{"id": 2, "date": "2020-07-09", "latitude": 13.50, "longitude": 80.60, "temperature": 28.4, "salinity": null, "pressure": 10.5, "dissolved_oxygen": null},
	{"id": 3, "date": "2020-08-21", "latitude": 13.09, "longitude": 80.28, "temperature": 29.1, "salinity": 34.9, "pressure": null, "dissolved_oxygen": null},
	{"id": 4, "date": "2018-01-05T06:30:00Z", "latitude": 13.05, "longitude": 80.25, "temperature": null, "salinity": 33.0, "pressure": null, "dissolved_oxygen": null}
]`

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dir := t.TempDir()
	db, err := sql.Open("sqlite", filepath.Join(dir, "argo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, InitSchema(ctx, db, SQLite, "argo"))

	seedPath := filepath.Join(dir, "samples.json")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedJSON), 0o600))

	n, err := SeedSamplesFromJSON(ctx, db, SQLite, "argo", seedPath)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	return db
}

func newRepo(t *testing.T) *SqliteSampleRepository {
	repo, err := NewSqliteSampleRepository(openTestDB(t), "argo", nil)
	require.NoError(t, err)
	return repo
}

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, ValidateTableName("synthetic_argo_final"))
	assert.Error(t, ValidateTableName("samples; DROP TABLE places"))
	assert.Error(t, ValidateTableName("1samples"))

	_, err := NewSqliteSampleRepository(nil, "bad name", nil)
	assert.Error(t, err)
}

func TestSqliteSampleRepository_DistinctLocations(t *testing.T) {
	locs, err := newRepo(t).DistinctLocations(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.Coordinates{
		{Lat: 13.05, Lon: 80.25},
		{Lat: 13.50, Lon: 80.60},
		{Lat: 13.09, Lon: 80.28},
	}, locs)
}

func TestSqliteSampleRepository_DistinctYears(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	years, err := repo.DistinctYears(ctx, domain.Temperature)
	require.NoError(t, err)
	assert.Equal(t, []int{2015, 2020}, years)

	years, err = repo.DistinctYears(ctx, domain.Salinity)
	require.NoError(t, err)
	assert.Equal(t, []int{2015, 2018, 2020}, years)

	_, err = repo.DistinctYears(ctx, domain.Parameter("depth"))
	assert.ErrorIs(t, err, domain.ErrUnknownParameter)
}

func TestSqliteSampleRepository_RowsFor(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	year := 2020
	rows, err := repo.RowsFor(ctx, domain.Temperature, &year)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].ID)
	assert.Equal(t, 28.4, *rows[0].Value)
	assert.Equal(t, time.Date(2020, 7, 9, 0, 0, 0, 0, time.UTC), rows[0].Date)

	all, err := repo.RowsFor(ctx, domain.DissolvedOxygen, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(1), all[0].ID)

	none, err := repo.RowsFor(ctx, domain.Pressure, &[]int{2015}[0])
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSqliteSampleRepository_RowsByIDs(t *testing.T) {
	repo := newRepo(t)

	rows, err := repo.RowsByIDs(context.Background(), domain.Pressure, []int64{3, 2, 99})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(2), rows[0].ID)
	assert.Equal(t, 10.5, *rows[0].Value)
	assert.Nil(t, rows[1].Value)

	empty, err := repo.RowsByIDs(context.Background(), domain.Pressure, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSqliteSampleRepository_NilDB(t *testing.T) {
	repo, err := NewSqliteSampleRepository(nil, "", nil)
	require.NoError(t, err)

	_, err = repo.DistinctLocations(context.Background())
	assert.Error(t, err)
	assert.Error(t, repo.Ping(context.Background()))
}

func TestSeedSamplesFromJSON_RejectsBadRows(t *testing.T) {
	dir := t.TempDir()
	db, err := sql.Open("sqlite", filepath.Join(dir, "argo.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, InitSchema(context.Background(), db, SQLite, ""))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"id": 1, "date": "yesterday", "latitude": 1, "longitude": 1}]`), 0o600))
	_, err = SeedSamplesFromJSON(context.Background(), db, SQLite, "", bad)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(bad, []byte(`[{"id": 1, "date": "2020-01-01", "latitude": 100, "longitude": 1}]`), 0o600))
	_, err = SeedSamplesFromJSON(context.Background(), db, SQLite, "", bad)
	assert.Error(t, err)
}

func TestListSamplePoints(t *testing.T) {
	points, err := ListSamplePoints(context.Background(), openTestDB(t), "argo")
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, int64(1), points[0].ID)
	assert.Equal(t, domain.Coordinates{Lat: 13.05, Lon: 80.25}, points[0].Coordinates)
}

func TestSqlitePlaceRepository_RoundTripKeepsOrder(t *testing.T) {
	repo := NewSqlitePlaceRepository(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.PutPlaces(ctx, []ports.Place{
		{Name: "mumbai", Coordinates: domain.Coordinates{Lat: 19.0760, Lon: 72.8777}},
		{Name: "chennai", Coordinates: domain.Coordinates{Lat: 13.0827, Lon: 80.2707}},
	}))

	got, err := repo.ListPlaces(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "mumbai", got[0].Name)
	assert.Equal(t, 80.2707, got[1].Coordinates.Lon)

	assert.Error(t, repo.PutPlaces(ctx, []ports.Place{{Name: " "}}))
	assert.Error(t, repo.PutPlaces(ctx, []ports.Place{{Name: "x", Coordinates: domain.Coordinates{Lat: -91}}}))
}

func TestInitSchema_UnknownDialect(t *testing.T) {
	assert.Error(t, InitSchema(context.Background(), openTestDB(t), Dialect("oracle"), ""))
}
