package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"ocean-query-service/internal/adapters/repositories"
	"ocean-query-service/internal/adapters/vectorindex"
	"ocean-query-service/internal/app"
	"ocean-query-service/internal/config"
	"ocean-query-service/internal/places"
	"ocean-query-service/internal/platform/obs"
	"ocean-query-service/internal/ports"
	"os"

	"github.com/joho/godotenv"
)

const usage = `usage:
  dbtool init
  dbtool seed <samples.json> [places.json]
  dbtool build-index <output path>`

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger, err := obs.NewLogger(os.Stderr, cfg.LogLevel, "text")
	if err != nil {
		slog.Error("build logger", "error", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, logger, os.Args[1:]); err != nil {
		logger.Error("dbtool failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	conn, dialect, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	switch args[0] {
	case "init":
		logger.Info("initializing database schema", "table", cfg.SamplesTable)
		return repositories.InitSchema(ctx, conn, dialect, cfg.SamplesTable)

	case "seed":
		if len(args) < 2 || len(args) > 3 {
			return errors.New(usage)
		}
		if err := repositories.InitSchema(ctx, conn, dialect, cfg.SamplesTable); err != nil {
			return err
		}
		n, err := repositories.SeedSamplesFromJSON(ctx, conn, dialect, cfg.SamplesTable, args[1])
		if err != nil {
			return err
		}
		logger.Info("samples seeded", "rows", n)

		if len(args) == 3 {
			n, err := seedPlaces(ctx, conn, dialect, logger, args[2])
			if err != nil {
				return err
			}
			logger.Info("places seeded", "rows", n)
		}
		return invalidateCache(ctx, cfg, logger)

	case "build-index":
		if len(args) != 2 {
			return errors.New(usage)
		}
		n, err := buildIndex(ctx, conn, cfg.SamplesTable, args[1])
		if err != nil {
			return err
		}
		logger.Info("vector index written", "path", args[1], "points", n)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

type placeWriter interface {
	PutPlaces(ctx context.Context, places []ports.Place) error
}

func seedPlaces(ctx context.Context, conn *sql.DB, dialect repositories.Dialect, logger *slog.Logger, path string) (int, error) {
	reg, err := places.LoadFile(path)
	if err != nil {
		return 0, fmt.Errorf("seed places: %w", err)
	}

	entries := reg.Entries()
	out := make([]ports.Place, 0, len(entries))
	for _, e := range entries {
		out = append(out, ports.Place{Name: e.Name, Coordinates: e.Coordinates})
	}

	var w placeWriter
	if dialect == repositories.Postgres {
		w = repositories.NewSQLPlaceRepository(conn, logger)
	} else {
		w = repositories.NewSqlitePlaceRepository(conn)
	}
	if err := w.PutPlaces(ctx, out); err != nil {
		return 0, fmt.Errorf("seed places: %w", err)
	}
	return len(out), nil
}

func buildIndex(ctx context.Context, conn *sql.DB, table, path string) (int, error) {
	samples, err := repositories.ListSamplePoints(ctx, conn, table)
	if err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}

	points := make([]vectorindex.Point, 0, len(samples))
	for _, s := range samples {
		v := s.Coordinates.Vector()
		points = append(points, vectorindex.Point{ID: s.ID, Lat: v[0], Lon: v[1]})
	}

	if err := vectorindex.SaveFile(path, points); err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}
	return len(points), nil
}

// Cached years and locations would outlive the rows they describe.
func invalidateCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.RedisAddr == "" {
		return nil
	}

	c, closeCache := app.NewRecordCache(ctx, cfg, nil, logger, nil)
	defer closeCache()

	if err := c.Invalidate(ctx); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info("metadata cache invalidated", "addr", cfg.RedisAddr)
	return nil
}
