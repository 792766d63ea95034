package batch

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		size    int
		lengths []int
	}{
		{name: "empty", n: 0, size: 10, lengths: nil},
		{name: "single", n: 1, size: 10, lengths: []int{1}},
		{name: "exact", n: 20, size: 10, lengths: []int{10, 10}},
		{name: "remainder", n: 25, size: 10, lengths: []int{10, 10, 5}},
		{name: "default size", n: 11, size: 0, lengths: []int{10, 1}},
		{name: "negative size", n: 3, size: -1, lengths: []int{3}},
		{name: "size one", n: 3, size: 1, lengths: []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := seq(tt.n)

			var lengths []int
			var joined []int
			for chunk := range Split(items, tt.size) {
				lengths = append(lengths, len(chunk))
				joined = append(joined, chunk...)
			}

			assert.Equal(t, tt.lengths, lengths)
			assert.Equal(t, len(tt.lengths), Count(tt.n, tt.size))
			if tt.n > 0 {
				assert.Equal(t, items, joined)
			} else {
				assert.Empty(t, joined)
			}
		})
	}
}

func TestSplit_ChunkSizesAreBounded(t *testing.T) {
	for n := 0; n <= 45; n++ {
		chunks := slices.Collect(Split(seq(n), DefaultSize))
		require.Len(t, chunks, Count(n, DefaultSize), "n=%d", n)
		for i, c := range chunks {
			assert.NotEmpty(t, c)
			assert.LessOrEqual(t, len(c), DefaultSize)
			if i < len(chunks)-1 {
				assert.Len(t, c, DefaultSize)
			}
		}
	}
}

func TestSplit_IsLazy(t *testing.T) {
	items := seq(100)
	visited := 0
	for range Split(items, 10) {
		visited++
		if visited == 2 {
			break
		}
	}
	assert.Equal(t, 2, visited)
}

func TestSplit_AppendDoesNotClobberInput(t *testing.T) {
	items := seq(15)
	for chunk := range Split(items, 10) {
		_ = append(chunk, -1)
	}
	assert.Equal(t, seq(15), items)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 0, Count(0, 10))
	assert.Equal(t, 0, Count(-3, 10))
	assert.Equal(t, 1, Count(10, 10))
	assert.Equal(t, 3, Count(21, 10))
	assert.Equal(t, 2, Count(11, 0))
}
