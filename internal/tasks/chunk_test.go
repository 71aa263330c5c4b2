package tasks

import (
	"slices"
	"testing"
)

func makeIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		size      int
		wantSizes []int
	}{
		{name: "empty input yields nothing", n: 0, size: 100, wantSizes: nil},
		{name: "fewer than one chunk", n: 7, size: 100, wantSizes: []int{7}},
		{name: "exact multiple", n: 200, size: 100, wantSizes: []int{100, 100}},
		{name: "trailing partial chunk", n: 250, size: 100, wantSizes: []int{100, 100, 50}},
		{name: "size one", n: 3, size: 1, wantSizes: []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := makeIDs(tt.n)

			var sizes []int
			var joined []int
			for c := range Chunk(items, tt.size) {
				sizes = append(sizes, len(c))
				joined = append(joined, c...)
			}

			if !slices.Equal(sizes, tt.wantSizes) {
				t.Errorf("expected chunk sizes %v, got %v", tt.wantSizes, sizes)
			}
			if !slices.Equal(joined, items) {
				t.Errorf("concatenated chunks do not equal input")
			}
			if want := (tt.n + tt.size - 1) / tt.size; len(sizes) != want {
				t.Errorf("expected %d chunks, got %d", want, len(sizes))
			}
		})
	}

	t.Run("early break", func(t *testing.T) {
		count := 0
		for range Chunk(makeIDs(500), DefaultChunkSize) {
			count++
			if count == 2 {
				break
			}
		}
		if count != 2 {
			t.Errorf("expected iteration to stop after 2 chunks, got %d", count)
		}
	})

	t.Run("invalid size panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Errorf("expected panic for size 0")
			}
		}()
		for range Chunk(makeIDs(3), 0) {
		}
	})
}
