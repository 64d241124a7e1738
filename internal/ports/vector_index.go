package ports

import "context"

// Prebuilt, read-only approximate nearest-neighbor index over sample coordinates.
type VectorIndex interface {
	// Return up to k sample ids ordered by ascending approximate distance to vector.
	Search(ctx context.Context, vector [2]float32, k int) ([]int64, error)
}
