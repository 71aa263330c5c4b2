package tasks

import (
	"iter"
	"slices"
)

// DefaultChunkSize matches the bulk-add limit of the list API.
const DefaultChunkSize = 100

// Chunk yields consecutive sub-slices of items with at most size elements each.
//
// The concatenation of all chunks equals items, every chunk but the last has exactly size elements,
// and an empty input yields nothing. Chunks share items' backing array and are clipped.
// Chunk panics if size is less than 1.
func Chunk[T any](items []T, size int) iter.Seq[[]T] {
	return slices.Chunk(items, size)
}
