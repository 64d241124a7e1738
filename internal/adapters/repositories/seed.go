package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"ocean-query-service/internal/domain"
	"os"
	"time"
)

// SampleSeed is one row of a samples JSON file. Missing readings are null.
type SampleSeed struct {
	ID              int64    `json:"id"`
	Date            string   `json:"date"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	Temperature     *float64 `json:"temperature"`
	Salinity        *float64 `json:"salinity"`
	Pressure        *float64 `json:"pressure"`
	DissolvedOxygen *float64 `json:"dissolved_oxygen"`
}

// SeedSamplesFromJSON loads sample rows from a JSON array file, replacing
// rows with the same id. Returns the number of rows written.
func SeedSamplesFromJSON(ctx context.Context, db *sql.DB, dialect Dialect, table, jsonPath string) (int, error) {
	if db == nil {
		return 0, errors.New("seed samples: DB is nil")
	}
	t, err := tableOrDefault(table)
	if err != nil {
		return 0, fmt.Errorf("seed samples: %w", err)
	}

	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed samples: read %q: %w", jsonPath, err)
	}

	var data []SampleSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed samples: parse json: %w", err)
	}

	dates := make([]time.Time, len(data))
	for i, item := range data {
		if item.ID <= 0 {
			return 0, fmt.Errorf("seed samples: invalid id at index %d: %d", i+1, item.ID)
		}
		c := domain.Coordinates{Lat: item.Latitude, Lon: item.Longitude}
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("seed samples: id=%d: %w", item.ID, err)
		}
		d, err := parseDate(item.Date)
		if err != nil {
			return 0, fmt.Errorf("seed samples: id=%d: %w", item.ID, err)
		}
		dates[i] = d
	}

	var query string
	switch dialect {
	case SQLite:
		query = fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (
			id, date, latitude, longitude, temperature, salinity, pressure, dissolved_oxygen
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);
		`, t)
	case Postgres:
		query = fmt.Sprintf(`
		INSERT INTO %s (
			id, date, latitude, longitude, temperature, salinity, pressure, dissolved_oxygen
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET date = EXCLUDED.date,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			temperature = EXCLUDED.temperature,
			salinity = EXCLUDED.salinity,
			pressure = EXCLUDED.pressure,
			dissolved_oxygen = EXCLUDED.dissolved_oxygen;
		`, t)
	default:
		return 0, fmt.Errorf("seed samples: unknown dialect %q", dialect)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed samples: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("seed samples: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range data {
		var date any = dates[i]
		if dialect == SQLite {
			date = dates[i].Format(time.DateOnly)
		}
		if _, err := stmt.ExecContext(ctx,
			item.ID, date, item.Latitude, item.Longitude,
			item.Temperature, item.Salinity, item.Pressure, item.DissolvedOxygen,
		); err != nil {
			return 0, fmt.Errorf("seed samples: insert id=%d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed samples: commit tx: %w", err)
	}

	return len(data), nil
}

// SamplePoint is a sample id and position, the input to index builds.
type SamplePoint struct {
	ID          int64
	Coordinates domain.Coordinates
}

// ListSamplePoints returns every sample position ordered by id.
func ListSamplePoints(ctx context.Context, db *sql.DB, table string) ([]SamplePoint, error) {
	if db == nil {
		return nil, errors.New("list sample points: DB is nil")
	}
	t, err := tableOrDefault(table)
	if err != nil {
		return nil, fmt.Errorf("list sample points: %w", err)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT id, latitude, longitude FROM %s ORDER BY id;`, t))
	if err != nil {
		return nil, fmt.Errorf("list sample points: query %s table: %w", t, err)
	}
	defer rows.Close()

	out := make([]SamplePoint, 0, 1024)
	for rows.Next() {
		var p SamplePoint
		if err := rows.Scan(&p.ID, &p.Coordinates.Lat, &p.Coordinates.Lon); err != nil {
			return nil, fmt.Errorf("list sample points: scan row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sample points: row iteration: %w", err)
	}

	return out, nil
}
