package ports

import (
	"context"
	"ocean-query-service/internal/domain"
)

// Port: read-only access to the sample table.
type RecordStore interface {
	// Return every distinct sample location, in first-seen order.
	DistinctLocations(ctx context.Context) ([]domain.Coordinates, error)

	// Return the distinct years having a non-null value for the parameter, ascending.
	DistinctYears(ctx context.Context, param domain.Parameter) ([]int, error)

	// Return rows with a non-null value for the parameter.
	// A nil year returns rows for every year.
	RowsFor(ctx context.Context, param domain.Parameter, year *int) ([]domain.SampleRecord, error)

	// Return the rows with the given ids, with the parameter as the value column.
	RowsByIDs(ctx context.Context, param domain.Parameter, ids []int64) ([]domain.SampleRecord, error)
}
