package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"ocean-query-service/internal/domain"
	"ocean-query-service/internal/platform/obs"
)

// Postgres-backed implementation of the RecordStore port.
type SQLSampleRepository struct {
	DB     *sql.DB
	table  string
	logger *slog.Logger
}

func NewSQLSampleRepository(db *sql.DB, table string, logger *slog.Logger) (*SQLSampleRepository, error) {
	t, err := tableOrDefault(table)
	if err != nil {
		return nil, fmt.Errorf("new sql sample repository: %w", err)
	}
	if logger == nil {
		logger = obs.Discard()
	}
	return &SQLSampleRepository{DB: db, table: t, logger: logger}, nil
}

func (s *SQLSampleRepository) DistinctLocations(ctx context.Context) (_ []domain.Coordinates, err error) {
	defer obs.Time(ctx, s.logger, "sql.samples.DistinctLocations")(&err)

	if s.DB == nil {
		return nil, errors.New("sql sample repository: db is nil")
	}

	query := fmt.Sprintf(`
	SELECT latitude, longitude
	FROM %s
	GROUP BY latitude, longitude
	ORDER BY MIN(id);
	`, s.table)

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("distinct locations: query %s table: %w", s.table, err)
	}
	defer rows.Close()

	out := make([]domain.Coordinates, 0, 64)
	for rows.Next() {
		var c domain.Coordinates
		if err := rows.Scan(&c.Lat, &c.Lon); err != nil {
			return nil, fmt.Errorf("distinct locations: scan row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("distinct locations: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLSampleRepository) DistinctYears(ctx context.Context, param domain.Parameter) (_ []int, err error) {
	defer obs.Time(ctx, s.logger, "sql.samples.DistinctYears")(&err)

	if s.DB == nil {
		return nil, errors.New("sql sample repository: db is nil")
	}
	col, err := param.Column()
	if err != nil {
		return nil, fmt.Errorf("distinct years: %w", err)
	}

	query := fmt.Sprintf(`
	SELECT DISTINCT EXTRACT(YEAR FROM date)::int AS year
	FROM %s
	WHERE %s IS NOT NULL
	ORDER BY year;
	`, s.table, col)

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("distinct years: query %s table: %w", s.table, err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("distinct years: scan row: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("distinct years: row iteration: %w", err)
	}

	return years, nil
}

func (s *SQLSampleRepository) RowsFor(ctx context.Context, param domain.Parameter, year *int) (_ []domain.SampleRecord, err error) {
	defer obs.Time(ctx, s.logger, "sql.samples.RowsFor")(&err)

	if s.DB == nil {
		return nil, errors.New("sql sample repository: db is nil")
	}
	col, err := param.Column()
	if err != nil {
		return nil, fmt.Errorf("rows for: %w", err)
	}

	query := fmt.Sprintf(`
	SELECT id, latitude, longitude, %s, date
	FROM %s
	WHERE %s IS NOT NULL
	`, col, s.table, col)
	args := []any{}
	if year != nil {
		query += ` AND EXTRACT(YEAR FROM date)::int = $1`
		args = append(args, *year)
	}
	query += ` ORDER BY id;`

	return s.query(ctx, "rows for", query, args...)
}

func (s *SQLSampleRepository) RowsByIDs(ctx context.Context, param domain.Parameter, ids []int64) (_ []domain.SampleRecord, err error) {
	defer obs.Time(ctx, s.logger, "sql.samples.RowsByIDs")(&err)

	if s.DB == nil {
		return nil, errors.New("sql sample repository: db is nil")
	}
	col, err := param.Column()
	if err != nil {
		return nil, fmt.Errorf("rows by ids: %w", err)
	}
	if len(ids) == 0 {
		return []domain.SampleRecord{}, nil
	}

	query := fmt.Sprintf(`
	SELECT id, latitude, longitude, %s, date
	FROM %s
	WHERE id = ANY($1::bigint[])
	ORDER BY id;
	`, col, s.table)

	return s.query(ctx, "rows by ids", query, ids)
}

func (s *SQLSampleRepository) query(ctx context.Context, op, query string, args ...any) ([]domain.SampleRecord, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query %s table: %w", op, s.table, err)
	}
	defer rows.Close()

	out := make([]domain.SampleRecord, 0, 64)
	for rows.Next() {
		var (
			rec   domain.SampleRecord
			value sql.NullFloat64
		)
		if err := rows.Scan(&rec.ID, &rec.Coordinates.Lat, &rec.Coordinates.Lon, &value, &rec.Date); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		if value.Valid {
			v := value.Float64
			rec.Value = &v
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return out, nil
}

func (s *SQLSampleRepository) Ping(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("sql sample repository: db is nil")
	}
	return s.DB.PingContext(ctx)
}
