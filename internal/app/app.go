package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"ocean-query-service/internal/adapters/audit"
	"ocean-query-service/internal/adapters/cache"
	"ocean-query-service/internal/adapters/repositories"
	"ocean-query-service/internal/adapters/vectorindex"
	"ocean-query-service/internal/config"
	"ocean-query-service/internal/places"
	"ocean-query-service/internal/platform/db"
	"ocean-query-service/internal/platform/obs"
	"ocean-query-service/internal/ports"
	"ocean-query-service/internal/services"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// App is the wired query stack shared by the HTTP server and the REPL.
type App struct {
	Service  *services.QueryService
	Registry *places.Registry
	Store    Pinger

	closers []func() error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Build is the composition root. It opens the configured store and wires the
// optional cache, index and audit adapters behind their ports.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *obs.Metrics) (_ *App, err error) {
	if cfg == nil {
		return nil, errors.New("build app: config is nil")
	}
	if logger == nil {
		logger = obs.Discard()
	}

	a := &App{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	conn, dialect, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}
	a.closers = append(a.closers, conn.Close)

	var store ports.RecordStore
	switch dialect {
	case repositories.Postgres:
		repo, err := repositories.NewSQLSampleRepository(conn, cfg.SamplesTable, logger)
		if err != nil {
			return nil, fmt.Errorf("build app: %w", err)
		}
		store, a.Store = repo, repo
	default:
		repo, err := repositories.NewSqliteSampleRepository(conn, cfg.SamplesTable, logger)
		if err != nil {
			return nil, fmt.Errorf("build app: %w", err)
		}
		store, a.Store = repo, repo
	}

	if cfg.RedisAddr != "" {
		cached, closeCache := NewRecordCache(ctx, cfg, store, logger, metrics)
		a.closers = append(a.closers, closeCache)
		store = cached
	}

	a.Registry, err = loadRegistry(ctx, cfg, conn, dialect, logger)
	if err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}

	index := openIndex(ctx, cfg, logger, metrics)

	var publisher ports.AnswerPublisher
	if len(cfg.KafkaBrokers) > 0 {
		p, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic, clockwork.NewRealClock(), logger)
		if err != nil {
			return nil, fmt.Errorf("build app: %w", err)
		}
		a.closers = append(a.closers, p.Close)
		publisher = p
	}

	spatial := services.NewSpatialResolver(store, index, cfg.VectorSearchK, logger, metrics)
	resolver := services.NewQueryResolver(store, spatial, services.QueryResolverOptions{
		DefaultLocation: cfg.DefaultLocation,
		Logger:          logger,
		Metrics:         metrics,
	})
	a.Service = services.NewQueryService(services.NewQueryParser(a.Registry), resolver, publisher, logger)

	logger.InfoContext(ctx, "query stack ready",
		"store", cfg.StoreDriver,
		"places", a.Registry.Len(),
		"index", spatial.Accelerated(),
		"cache", cfg.RedisAddr != "",
		"audit", publisher != nil,
	)

	return a, nil
}

// Close releases adapters in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenStore opens the database selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config) (*sql.DB, repositories.Dialect, error) {
	if cfg.StoreDriver == "postgres" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		return conn, repositories.Postgres, err
	}
	conn, err := db.OpenSQLite(ctx, cfg.DBPath)
	return conn, repositories.SQLite, err
}

// NewRecordCache wraps next in the Redis metadata cache. The returned func
// closes the Redis client. next may be nil when the cache is only invalidated.
func NewRecordCache(ctx context.Context, cfg *config.Config, next ports.RecordStore, logger *slog.Logger, metrics *obs.Metrics) (*cache.RedisRecordStore, func() error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// The decorator falls through to the store on Redis errors.
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WarnContext(ctx, "redis unreachable, cache will fall through", "addr", cfg.RedisAddr, "error", err)
	}

	return cache.NewRedisRecordStore(next, client, cache.RedisRecordStoreOptions{
		Prefix:  cfg.SamplesTable,
		TTL:     cfg.CacheTTL,
		Logger:  logger,
		Metrics: metrics,
	}), client.Close
}

func loadRegistry(ctx context.Context, cfg *config.Config, conn *sql.DB, dialect repositories.Dialect, logger *slog.Logger) (*places.Registry, error) {
	switch {
	case cfg.PlacesPath != "":
		return places.LoadFile(cfg.PlacesPath)
	case cfg.PlacesFromDB:
		var src ports.PlaceSource
		if dialect == repositories.Postgres {
			src = repositories.NewSQLPlaceRepository(conn, logger)
		} else {
			src = repositories.NewSqlitePlaceRepository(conn)
		}
		return places.FromSource(ctx, src)
	default:
		return places.Default(), nil
	}
}

// openIndex returns nil when no index is configured or it cannot be opened;
// resolution then scans.
func openIndex(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *obs.Metrics) ports.VectorIndex {
	var (
		idx ports.VectorIndex
		err error
	)
	switch {
	case cfg.VectorIndexPath != "":
		var x *vectorindex.RTreeIndex
		if x, err = vectorindex.LoadFile(cfg.VectorIndexPath); err == nil {
			idx = x
		}
	case cfg.VectorIndexURL != "":
		var x *vectorindex.HTTPIndex
		if x, err = vectorindex.NewHTTPIndex(cfg.VectorIndexURL, cfg.VectorIndexKey, cfg.QueryTimeout, logger); err == nil {
			idx = x
		}
	default:
		return nil
	}

	if err != nil {
		logger.WarnContext(ctx, "vector index unavailable, falling back to scan",
			"path", cfg.VectorIndexPath, "url", cfg.VectorIndexURL, "error", err)
		if metrics != nil {
			metrics.IndexSearches.WithLabelValues("load_error").Inc()
		}
		return nil
	}
	return idx
}
