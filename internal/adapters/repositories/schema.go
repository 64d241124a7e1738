package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect selects the SQL flavor for schema and seed statements.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) Valid() bool { return d == SQLite || d == Postgres }

// InitSchema creates the samples and places tables if missing.
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect, table string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}
	t, err := tableOrDefault(table)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	var statements []string
	switch dialect {
	case SQLite:
		statements = []string{
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY,
				date TEXT NOT NULL,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				temperature REAL,
				salinity REAL,
				pressure REAL,
				dissolved_oxygen REAL
			);
			`, t),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_date ON %s(date);`, t, t),
			`
			CREATE TABLE IF NOT EXISTS places (
				name TEXT PRIMARY KEY,
				lat REAL NOT NULL,
				lon REAL NOT NULL,
				position INTEGER NOT NULL
			);
			`,
		}
	case Postgres:
		statements = []string{
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGINT PRIMARY KEY,
				date DATE NOT NULL,
				latitude DOUBLE PRECISION NOT NULL,
				longitude DOUBLE PRECISION NOT NULL,
				temperature DOUBLE PRECISION,
				salinity DOUBLE PRECISION,
				pressure DOUBLE PRECISION,
				dissolved_oxygen DOUBLE PRECISION
			);
			`, t),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_date ON %s(date);`, t, t),
			`
			CREATE TABLE IF NOT EXISTS places (
				name TEXT PRIMARY KEY,
				lat DOUBLE PRECISION NOT NULL,
				lon DOUBLE PRECISION NOT NULL,
				position INTEGER NOT NULL
			);
			`,
		}
	default:
		return fmt.Errorf("init schema: unknown dialect %q", dialect)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
