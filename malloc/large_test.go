package malloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mallockit/internal/format"
)

// Test_Large_MapsAndUnmapsExactPages routes an over-chunk request through
// its own mapping and returns exactly those pages on free.
func Test_Large_MapsAndUnmapsExactPages(t *testing.T) {
	a, m := newTestAllocator(t, 0)

	size := a.ChunkSize() // block = size + overhead > chunk
	p, b := mustAllocate(t, a, size)
	require.True(t, a.regions[p.slot()].large)
	fill(b, 0xEE)

	length := format.AlignUp(format.BlockSize(size), 4096)
	pages := int64(format.DivUp(length, a.ChunkSize()))
	require.Equal(t, int64(2), pages)

	s := a.Stats()
	require.Equal(t, pages, s.PagesMapped)
	require.Equal(t, 1, s.LargeLive)
	require.Zero(t, s.Chunks, "large objects never map a chunk")
	require.Zero(t, s.FreeLength, "large objects never touch the bins")
	require.Equal(t, length, m.mappedBytes)

	require.NoError(t, a.Free(p))
	s = a.Stats()
	require.Equal(t, pages, s.PagesUnmapped)
	require.Equal(t, s.PagesMapped, s.PagesUnmapped)
	require.Zero(t, s.LargeLive)
	require.Equal(t, int64(1), s.ChunksFreed)
	require.Equal(t, 1, m.unmaps)
	require.Equal(t, length, m.unmappedBytes)
}

// Test_Large_PageAccounting checks the chunk-unit page count for a range of
// large sizes.
func Test_Large_PageAccounting(t *testing.T) {
	a, _ := newTestAllocator(t, 0)
	chunk := a.ChunkSize()

	for _, size := range []int{chunk, 2*chunk - 100, 2 * chunk, 5*chunk + 1} {
		before := a.Stats()
		p, _ := mustAllocate(t, a, size)
		mid := a.Stats()
		require.NoError(t, a.Free(p))
		after := a.Stats()

		want := int64(format.DivUp(format.AlignUp(format.BlockSize(size), 4096), chunk))
		require.Equal(t, want, mid.PagesMapped-before.PagesMapped, "size %d", size)
		require.Equal(t, want, after.PagesUnmapped-mid.PagesUnmapped, "size %d", size)
	}
}

// Test_Large_HeaderRecordsSize verifies the stored size exceeds the chunk
// threshold, which is how Free recognizes a large object.
func Test_Large_HeaderRecordsSize(t *testing.T) {
	a, _ := newTestAllocator(t, 1024)

	p, b := mustAllocate(t, a, 5000)
	size, free, ok := readTag(a.regions[p.slot()].mem, 0)
	require.True(t, ok)
	require.False(t, free)
	require.Equal(t, format.BlockSize(5000), size)
	require.Greater(t, size, a.ChunkSize())
	require.Equal(t, format.PayloadSize(size), cap(b))
}

// Test_Large_SlotReuse recycles the region slot of a released large object.
func Test_Large_SlotReuse(t *testing.T) {
	a, _ := newTestAllocator(t, 1024)

	small, _ := mustAllocate(t, a, 40)
	p1, _ := mustAllocate(t, a, 4000)
	require.NoError(t, a.Free(p1))
	p2, _ := mustAllocate(t, a, 8000)

	require.Equal(t, p1.slot(), p2.slot())
	require.Len(t, a.regions, 2)

	require.NoError(t, a.Free(p2))
	require.NoError(t, a.Free(small))
	require.ErrorIs(t, a.Free(p2), ErrBadPtr, "released slot no longer resolves")
}

// Test_Large_InterleavedWithSmall mixes both paths and checks the chunk
// heap is unaffected by large frees.
func Test_Large_InterleavedWithSmall(t *testing.T) {
	a, _ := newTestAllocator(t, 4096)

	var small, large []Ptr
	for i := range 20 {
		p, b := mustAllocate(t, a, 100+i)
		fill(b, byte(i))
		small = append(small, p)
		q, _ := mustAllocate(t, a, 5000+i*1000)
		large = append(large, q)
	}
	for _, q := range large {
		require.NoError(t, a.Free(q))
	}
	for i, p := range small {
		b, err := a.Bytes(p)
		require.NoError(t, err)
		requireFilled(t, b[:100+i], byte(i))
		require.NoError(t, a.Free(p))
	}

	s := a.Stats()
	require.Zero(t, s.LargeLive)
	require.Equal(t, s.ChunksAllocated, s.ChunksFreed)
	require.Equal(t, int64(s.Chunks), s.FreeLength)
}
