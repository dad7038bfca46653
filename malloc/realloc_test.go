package malloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mallockit/internal/format"
)

func pattern(i int) byte { return byte(i % 251) }

// Test_Reallocate_GrowCopiesHead fills a buffer with a known pattern, grows
// it, and checks the head survives.
func Test_Reallocate_GrowCopiesHead(t *testing.T) {
	a, _ := newTestAllocator(t, 0)

	p, b := mustAllocate(t, a, 100)
	for i := range b {
		b[i] = pattern(i)
	}

	np, nb, err := a.Reallocate(p, 5000)
	require.NoError(t, err)
	require.NotEqual(t, p, np)
	require.Len(t, nb, 5000)
	for i := range 100 {
		require.Equal(t, pattern(i), nb[i], "byte %d", i)
	}

	s := a.Stats()
	require.Equal(t, int64(2), s.ChunksAllocated)
	require.Equal(t, int64(1), s.ChunksFreed)
}

// Test_Reallocate_ShrinkCopiesPrefix copies only what fits the new block.
func Test_Reallocate_ShrinkCopiesPrefix(t *testing.T) {
	a, _ := newTestAllocator(t, 0)

	p, b := mustAllocate(t, a, 1000)
	for i := range b {
		b[i] = pattern(i)
	}

	np, nb, err := a.Reallocate(p, 10)
	require.NoError(t, err)
	require.Len(t, nb, 10)
	for i := range nb {
		require.Equal(t, pattern(i), nb[i])
	}

	usable, err := a.UsableSize(np)
	require.NoError(t, err)
	require.Equal(t, format.PayloadSize(format.BlockSize(10)), usable)
}

// Test_Reallocate_OldSizeFromHeader copies the old block's usable size, read
// from its header, when growing: bytes past the original request but inside
// the old block are carried too.
func Test_Reallocate_OldSizeFromHeader(t *testing.T) {
	a, _ := newTestAllocator(t, 0)

	p, b := mustAllocate(t, a, 13) // 16 usable bytes
	full := b[:cap(b)]
	require.Len(t, full, 16)
	for i := range full {
		full[i] = pattern(i + 1)
	}

	_, nb, err := a.Reallocate(p, 64)
	require.NoError(t, err)
	for i := range 16 {
		require.Equal(t, pattern(i+1), nb[i])
	}
}

// Test_Reallocate_AcrossLargeBoundary moves data into and back out of the
// large-object path.
func Test_Reallocate_AcrossLargeBoundary(t *testing.T) {
	a, _ := newTestAllocator(t, 4096)

	p, b := mustAllocate(t, a, 3000)
	for i := range b {
		b[i] = pattern(i)
	}

	p, b, err := a.Reallocate(p, 20000)
	require.NoError(t, err)
	require.True(t, a.regions[p.slot()].large)
	for i := range 3000 {
		require.Equal(t, pattern(i), b[i])
	}

	p, b, err = a.Reallocate(p, 500)
	require.NoError(t, err)
	require.False(t, a.regions[p.slot()].large)
	for i := range b {
		require.Equal(t, pattern(i), b[i])
	}

	s := a.Stats()
	require.Equal(t, s.PagesMapped-int64(s.Chunks), s.PagesUnmapped)
	require.NoError(t, a.Free(p))
}

// Test_Reallocate_NilAndZero covers the degenerate forms.
func Test_Reallocate_NilAndZero(t *testing.T) {
	a, _ := newTestAllocator(t, 0)

	p, b, err := a.Reallocate(0, 24)
	require.NoError(t, err)
	require.False(t, p.IsNil())
	require.Len(t, b, 24)

	p, b, err = a.Reallocate(p, 0)
	require.NoError(t, err)
	require.True(t, p.IsNil())
	require.Nil(t, b)

	s := a.Stats()
	require.Equal(t, int64(1), s.ChunksAllocated)
	require.Equal(t, int64(1), s.ChunksFreed)

	_, _, err = a.Reallocate(0, -5)
	require.ErrorIs(t, err, ErrInvalidSize)
}

// Test_Reallocate_FailureLeavesOldBlock keeps the original intact when the
// new allocation cannot be mapped.
func Test_Reallocate_FailureLeavesOldBlock(t *testing.T) {
	a, m := newTestAllocator(t, 1024)

	p, b := mustAllocate(t, a, 100)
	fill(b, 0x77)
	m.setFailAfter(m.maps)

	_, _, err := a.Reallocate(p, 10_000)
	require.ErrorIs(t, err, ErrMapFailed)

	got, err := a.Bytes(p)
	require.NoError(t, err)
	requireFilled(t, got[:100], 0x77)
	require.NoError(t, a.Free(p))
}

// Test_Reallocate_FreeFailureReleasesNewBlock damages the header of p's free
// left neighbor, so releasing p fails after the new block was taken. The new
// block must be returned to the bins and p stay allocated.
func Test_Reallocate_FreeFailureReleasesNewBlock(t *testing.T) {
	a, err := New(&Config{ChunkSize: 1024, Mapper: newFakeMapper(), PageSize: 4096})
	require.NoError(t, err)
	defer a.Close()

	left, _ := mustAllocate(t, a, 40) // [0, 56)
	p, b := mustAllocate(t, a, 40)    // [56, 112)
	_, _ = mustAllocate(t, a, 40)     // [112, 168)
	fill(b, 0x5A)
	require.NoError(t, a.Free(left))

	mem := a.regions[0].mem
	mem[0] ^= 0x40 // header no longer mirrors the footer at 48

	np, nb, err := a.Reallocate(p, 100)
	require.ErrorIs(t, err, ErrCorrupt)
	require.True(t, np.IsNil())
	require.Nil(t, nb)

	got, err := a.Bytes(p)
	require.NoError(t, err)
	requireFilled(t, got[:40], 0x5A)

	s := a.Stats()
	require.Equal(t, int64(2), s.FreeLength, "left block and the chunk tail")
	require.Equal(t, int64(4), s.ChunksAllocated)
	require.Equal(t, int64(2), s.ChunksFreed, "left block and the released new block")
}
