// Package batch partitions work into bounded, order-preserving chunks.
package batch

import "iter"

// DefaultSize matches the bulk endpoint limit of the lead API.
const DefaultSize = 10

// Split yields consecutive chunks of at most size items. Chunks are produced
// lazily and alias the input slice; callers must not append to them.
// A size <= 0 falls back to DefaultSize.
func Split[T any](items []T, size int) iter.Seq[[]T] {
	if size <= 0 {
		size = DefaultSize
	}
	return func(yield func([]T) bool) {
		for start := 0; start < len(items); start += size {
			end := min(start+size, len(items))
			if !yield(items[start:end:end]) {
				return
			}
		}
	}
}

// Count returns the number of chunks Split yields for n items.
func Count(n, size int) int {
	if size <= 0 {
		size = DefaultSize
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
