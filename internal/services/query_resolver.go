package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"ocean-query-service/internal/domain"
	"ocean-query-service/internal/platform/obs"
	"ocean-query-service/internal/ports"
	"time"
)

// QueryResolver turns a ParsedQuery into answers, applying the default
// location and closest-year fallbacks. Dependencies are fixed at construction
// and the resolver keeps no per-request state.
type QueryResolver struct {
	store           ports.RecordStore
	spatial         *SpatialResolver
	defaultLocation *domain.Coordinates
	logger          *slog.Logger
	metrics         *obs.Metrics
}

type QueryResolverOptions struct {
	// Used when a query names no known place. When nil the first distinct
	// sample location in the store is used.
	DefaultLocation *domain.Coordinates
	Logger          *slog.Logger
	Metrics         *obs.Metrics
}

func NewQueryResolver(store ports.RecordStore, spatial *SpatialResolver, opts QueryResolverOptions) *QueryResolver {
	logger := opts.Logger
	if logger == nil {
		logger = obs.Discard()
	}
	if spatial == nil {
		spatial = NewSpatialResolver(store, nil, 0, logger, opts.Metrics)
	}
	return &QueryResolver{
		store:           store,
		spatial:         spatial,
		defaultLocation: opts.DefaultLocation,
		logger:          logger,
		metrics:         opts.Metrics,
	}
}

// Resolve returns the single closest answer for q.
func (r *QueryResolver) Resolve(ctx context.Context, q domain.ParsedQuery) (domain.ResolvedAnswer, error) {
	answers, err := r.ResolveTop(ctx, q, 1)
	if err != nil {
		return domain.ResolvedAnswer{}, err
	}
	return answers[0], nil
}

// ResolveTop returns up to k answers for q, nearest first. k <= 0 means 1.
//
// When the requested year has no rows the closest year with data is used
// instead; ties go to the earlier year. When q has no target the default
// location is used. Either substitution is flagged on every answer.
func (r *QueryResolver) ResolveTop(ctx context.Context, q domain.ParsedQuery, k int) (answers []domain.ResolvedAnswer, err error) {
	start := time.Now()
	defer obs.Time(ctx, r.logger, "resolve_query")(&err)
	defer func() { r.observe(start, err) }()

	if r.store == nil {
		return nil, errors.New("resolve query: record store is nil")
	}
	if !q.Parameter.Valid() {
		return nil, fmt.Errorf("resolve query: parameter %q: %w", q.Parameter, domain.ErrUnknownParameter)
	}
	if k <= 0 {
		k = 1
	}

	target, usedFallbackLocation, err := r.locateTarget(ctx, q)
	if err != nil {
		return nil, err
	}

	var (
		year             *int
		usedFallbackYear bool
		rows             []domain.SampleRecord
	)

	if q.Year != nil {
		year = q.Year
		rows, err = r.store.RowsFor(ctx, q.Parameter, year)
		if err != nil {
			return nil, storeError("resolve query: rows for year", err)
		}

		if len(rows) == 0 {
			closest, err := r.closestYear(ctx, q.Parameter, *q.Year)
			if err != nil {
				return nil, err
			}
			year = &closest
			usedFallbackYear = true

			rows, err = r.store.RowsFor(ctx, q.Parameter, year)
			if err != nil {
				return nil, storeError("resolve query: rows for closest year", err)
			}
		}
	} else {
		rows, err = r.store.RowsFor(ctx, q.Parameter, nil)
		if err != nil {
			return nil, storeError("resolve query: rows for parameter", err)
		}
	}

	matches, err := r.spatial.Resolve(ctx, q.Parameter, year, target, rows, k)
	if err != nil {
		return nil, storeError("resolve query", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("resolve query: %s: %w", q.Parameter, domain.ErrNoDataForParameter)
	}

	if usedFallbackYear {
		r.countFallback("year")
	}
	if usedFallbackLocation {
		r.countFallback("location")
	}

	answers = make([]domain.ResolvedAnswer, 0, len(matches))
	for _, m := range matches {
		answers = append(answers, domain.ResolvedAnswer{
			Parameter:            q.Parameter,
			RequestedYear:        q.Year,
			Year:                 m.Record.Year(),
			Value:                *m.Record.Value,
			SampleID:             m.Record.ID,
			Coordinates:          m.Record.Coordinates,
			Date:                 m.Record.Date,
			Place:                q.Place,
			Target:               target,
			DistanceKm:           m.DistanceKm,
			UsedFallbackYear:     usedFallbackYear,
			UsedFallbackLocation: usedFallbackLocation,
		})
	}

	return answers, nil
}

func (r *QueryResolver) locateTarget(ctx context.Context, q domain.ParsedQuery) (domain.Coordinates, bool, error) {
	if q.Target != nil {
		return *q.Target, false, nil
	}
	if r.defaultLocation != nil {
		return *r.defaultLocation, true, nil
	}

	locations, err := r.store.DistinctLocations(ctx)
	if err != nil {
		return domain.Coordinates{}, false, storeError("resolve query: default location", err)
	}
	if len(locations) == 0 {
		return domain.Coordinates{}, false, fmt.Errorf("resolve query: no sample locations: %w", domain.ErrNoDataForParameter)
	}
	return locations[0], true, nil
}

func (r *QueryResolver) closestYear(ctx context.Context, param domain.Parameter, requested int) (int, error) {
	years, err := r.store.DistinctYears(ctx, param)
	if err != nil {
		return 0, storeError("resolve query: distinct years", err)
	}
	if len(years) == 0 {
		return 0, fmt.Errorf("resolve query: %s: %w", param, domain.ErrNoDataForParameter)
	}

	best, ok := ClosestYear(years, requested)
	if !ok {
		return 0, fmt.Errorf("resolve query: %s: %w", param, domain.ErrNoDataForParameter)
	}
	return best, nil
}

// ClosestYear returns the year in years nearest requested. Equal gaps resolve
// to the smaller year regardless of input order.
func ClosestYear(years []int, requested int) (int, bool) {
	if len(years) == 0 {
		return 0, false
	}

	best := years[0]
	for _, y := range years[1:] {
		d, bd := absInt(y-requested), absInt(best-requested)
		if d < bd || (d == bd && y < best) {
			best = y
		}
	}
	return best, true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Wraps an adapter failure so callers can match ErrStoreUnavailable while the
// adapter's own error stays in the chain.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func (r *QueryResolver) observe(start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	r.metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	r.metrics.Queries.WithLabelValues(Outcome(err)).Inc()
}

func (r *QueryResolver) countFallback(kind string) {
	if r.metrics != nil {
		r.metrics.Fallbacks.WithLabelValues(kind).Inc()
	}
}

// Outcome classifies err for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNoParameter):
		return "no_parameter"
	case errors.Is(err, domain.ErrUnknownParameter):
		return "unknown_parameter"
	case errors.Is(err, domain.ErrNoDataForParameter):
		return "no_data"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_error"
	default:
		return "error"
	}
}
