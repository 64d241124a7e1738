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

// SQLite-backed implementation of the RecordStore port.
type SqliteSampleRepository struct {
	DB     *sql.DB
	table  string
	logger *slog.Logger
}

// NewSqliteSampleRepository reads samples from table, or "samples" when
// table is empty.
func NewSqliteSampleRepository(db *sql.DB, table string, logger *slog.Logger) (*SqliteSampleRepository, error) {
	t, err := tableOrDefault(table)
	if err != nil {
		return nil, fmt.Errorf("new sqlite sample repository: %w", err)
	}
	if logger == nil {
		logger = obs.Discard()
	}
	return &SqliteSampleRepository{DB: db, table: t, logger: logger}, nil
}

func (s *SqliteSampleRepository) DistinctLocations(ctx context.Context) (_ []domain.Coordinates, err error) {
	defer obs.Time(ctx, s.logger, "sqlite.samples.DistinctLocations")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite sample repository: DB is nil")
	}

	// First-seen order, so the fallback location is stable across runs.
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

func (s *SqliteSampleRepository) DistinctYears(ctx context.Context, param domain.Parameter) (_ []int, err error) {
	defer obs.Time(ctx, s.logger, "sqlite.samples.DistinctYears")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite sample repository: DB is nil")
	}
	col, err := param.Column()
	if err != nil {
		return nil, fmt.Errorf("distinct years: %w", err)
	}

	query := fmt.Sprintf(`
	SELECT DISTINCT CAST(strftime('%%Y', date) AS INTEGER) AS year
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
		var y sql.NullInt64
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("distinct years: scan row: %w", err)
		}
		if y.Valid {
			years = append(years, int(y.Int64))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("distinct years: row iteration: %w", err)
	}

	return years, nil
}

func (s *SqliteSampleRepository) RowsFor(ctx context.Context, param domain.Parameter, year *int) (_ []domain.SampleRecord, err error) {
	defer obs.Time(ctx, s.logger, "sqlite.samples.RowsFor")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite sample repository: DB is nil")
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
		query += ` AND CAST(strftime('%Y', date) AS INTEGER) = ?`
		args = append(args, *year)
	}
	query += ` ORDER BY id;`

	return s.query(ctx, "rows for", query, args...)
}

func (s *SqliteSampleRepository) RowsByIDs(ctx context.Context, param domain.Parameter, ids []int64) (_ []domain.SampleRecord, err error) {
	defer obs.Time(ctx, s.logger, "sqlite.samples.RowsByIDs")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite sample repository: DB is nil")
	}
	col, err := param.Column()
	if err != nil {
		return nil, fmt.Errorf("rows by ids: %w", err)
	}
	if len(ids) == 0 {
		return []domain.SampleRecord{}, nil
	}

	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	// SQLite cannot bind a slice to IN (...). Only the placeholder list is
	// interpolated; the ids stay parameterized.
	query := fmt.Sprintf(`
	SELECT id, latitude, longitude, %s, date
	FROM %s
	WHERE id IN (%s)
	ORDER BY id;
	`, col, s.table, placeholders(len(ids)))

	return s.query(ctx, "rows by ids", query, args...)
}

func (s *SqliteSampleRepository) query(ctx context.Context, op, query string, args ...any) ([]domain.SampleRecord, error) {
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
			date  string
		)
		if err := rows.Scan(&rec.ID, &rec.Coordinates.Lat, &rec.Coordinates.Lon, &value, &date); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		if rec.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("%s: id=%d: %w", op, rec.ID, err)
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

// Ping reports whether the database is reachable.
func (s *SqliteSampleRepository) Ping(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("sqlite sample repository: DB is nil")
	}
	return s.DB.PingContext(ctx)
}
