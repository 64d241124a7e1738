package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ocean-query-service/internal/ports"
	"strings"
)

// SQLite-backed place table. Implements ports.PlaceSource.
type SqlitePlaceRepository struct {
	DB *sql.DB
}

func NewSqlitePlaceRepository(db *sql.DB) *SqlitePlaceRepository {
	return &SqlitePlaceRepository{DB: db}
}

// ListPlaces returns places in their stored order.
func (s *SqlitePlaceRepository) ListPlaces(ctx context.Context) ([]ports.Place, error) {
	if s.DB == nil {
		return nil, errors.New("place repository: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT name, lat, lon
	FROM places
	ORDER BY position, name;
	`)
	if err != nil {
		return nil, fmt.Errorf("list places: query places table: %w", err)
	}
	defer rows.Close()

	var out []ports.Place
	for rows.Next() {
		var p ports.Place
		if err := rows.Scan(&p.Name, &p.Coordinates.Lat, &p.Coordinates.Lon); err != nil {
			return nil, fmt.Errorf("list places: scan rows: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list places: row iteration: %w", err)
	}

	return out, nil
}

// PutPlaces upserts places. Slice order becomes stored order.
func (s *SqlitePlaceRepository) PutPlaces(ctx context.Context, places []ports.Place) error {
	if s.DB == nil {
		return errors.New("place repository: db is nil")
	}
	if len(places) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put places: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO places (
		name,
		lat,
		lon,
		position
	)
	VALUES (?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("put places: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, p := range places {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return errors.New("put places: empty place name")
		}
		if err := p.Coordinates.Validate(); err != nil {
			return fmt.Errorf("put places: %q: %w", name, err)
		}
		if _, err := stmt.ExecContext(ctx, name, p.Coordinates.Lat, p.Coordinates.Lon, i); err != nil {
			return fmt.Errorf("put places: insert %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put places: commit: %w", err)
	}

	return nil
}
