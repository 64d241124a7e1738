package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"ocean-query-service/internal/domain"
	"ocean-query-service/internal/platform/obs"
	"ocean-query-service/internal/ports"
	"slices"
)

const DefaultSearchK = 10

// Match is a candidate sample and its geodesic distance from the target.
type Match struct {
	Record     domain.SampleRecord
	DistanceKm float64
}

// Nearest returns up to k candidates closest to target by WGS-84 geodesic
// distance, nearest first.
//
// Records without a value are skipped. Equal distances keep input order, so
// the result is deterministic for a given candidate slice. k <= 0 means 1.
func Nearest(target domain.Coordinates, candidates []domain.SampleRecord, k int) []Match {
	if k <= 0 {
		k = 1
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if c.Value == nil {
			continue
		}
		matches = append(matches, Match{Record: c, DistanceKm: domain.DistanceKm(target, c.Coordinates)})
	}

	slices.SortStableFunc(matches, func(a, b Match) int { return cmp.Compare(a.DistanceKm, b.DistanceKm) })

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// SpatialResolver picks the samples nearest a target.
//
// With an index it narrows the search to the index's nearest ids and re-ranks
// those rows exactly. Without one, or when the index path yields nothing
// usable, it scans the candidate rows.
type SpatialResolver struct {
	store   ports.RecordStore
	index   ports.VectorIndex
	searchK int
	logger  *slog.Logger
	metrics *obs.Metrics
}

// NewSpatialResolver builds a resolver. A nil index disables acceleration.
func NewSpatialResolver(store ports.RecordStore, index ports.VectorIndex, searchK int, logger *slog.Logger, metrics *obs.Metrics) *SpatialResolver {
	if searchK <= 0 {
		searchK = DefaultSearchK
	}
	if logger == nil {
		logger = obs.Discard()
	}
	return &SpatialResolver{store: store, index: index, searchK: searchK, logger: logger, metrics: metrics}
}

func (r *SpatialResolver) Accelerated() bool { return r.index != nil && r.store != nil }

// Resolve returns up to k matches for param near target. year restricts index
// hits to that year and is nil when every year is acceptable. candidates are
// the rows the baseline scan uses.
func (r *SpatialResolver) Resolve(
	ctx context.Context,
	param domain.Parameter,
	year *int,
	target domain.Coordinates,
	candidates []domain.SampleRecord,
	k int,
) (matches []Match, err error) {
	defer obs.Time(ctx, r.logger, "spatial_resolve")(&err)

	if r.Accelerated() {
		matches, err = r.resolveIndexed(ctx, param, year, target, k)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			return matches, nil
		}
	}

	return Nearest(target, candidates, k), nil
}

// Index failures are not fatal: they return no matches so the caller scans.
// The index is asked for at least k ids.
// Store failures while resolving ids are returned.
func (r *SpatialResolver) resolveIndexed(
	ctx context.Context,
	param domain.Parameter,
	year *int,
	target domain.Coordinates,
	k int,
) ([]Match, error) {
	k = max(k, 1)

	ids, err := r.index.Search(ctx, target.Vector(), max(r.searchK, k))
	if err != nil {
		r.countSearch("error")
		r.logger.WarnContext(ctx, "vector index search failed, scanning candidates",
			"req_id", obs.RequestID(ctx), "error", err)
		return nil, nil
	}
	if len(ids) == 0 {
		r.countSearch("empty")
		return nil, nil
	}

	rows, err := r.store.RowsByIDs(ctx, param, ids)
	if err != nil {
		return nil, fmt.Errorf("spatial resolve: rows by ids: %w", err)
	}

	var usable []domain.SampleRecord
	for _, row := range rows {
		if row.Value == nil {
			continue
		}
		if year != nil && row.Year() != *year {
			continue
		}
		usable = append(usable, row)
	}

	if len(usable) == 0 {
		r.countSearch("empty")
		return nil, nil
	}
	// Fewer usable hits than asked for; the scan can still fill k.
	if len(usable) < k {
		r.countSearch("short")
		return nil, nil
	}
	r.countSearch("hit")

	return Nearest(target, usable, k), nil
}

func (r *SpatialResolver) countSearch(outcome string) {
	if r.metrics != nil {
		r.metrics.IndexSearches.WithLabelValues(outcome).Inc()
	}
}
