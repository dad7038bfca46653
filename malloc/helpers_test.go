package malloc

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// errFakeMap is returned by fakeMapper once its budget is exhausted.
var errFakeMap = errors.New("fake mapper: out of memory")

// fakeMapper hands out Go-heap memory and records every call.
type fakeMapper struct {
	mu            sync.Mutex
	maps          int
	unmaps        int
	mappedBytes   int
	unmappedBytes int
	failAfter     int // Map fails once maps reaches failAfter; negative never fails
}

func newFakeMapper() *fakeMapper {
	return &fakeMapper{failAfter: -1}
}

func (m *fakeMapper) Map(size int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAfter >= 0 && m.maps >= m.failAfter {
		return nil, errFakeMap
	}
	m.maps++
	m.mappedBytes += size
	return make([]byte, size), nil
}

func (m *fakeMapper) Unmap(mem []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unmaps++
	m.unmappedBytes += len(mem)
	return nil
}

func (m *fakeMapper) setFailAfter(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
}

// newTestAllocator builds a verifying allocator over a fakeMapper with the
// given chunk size (0 for the default) and closes it when the test ends.
func newTestAllocator(t testing.TB, chunkSize int) (*Allocator, *fakeMapper) {
	t.Helper()
	m := newFakeMapper()
	a, err := New(&Config{
		ChunkSize: chunkSize,
		Mapper:    m,
		PageSize:  4096,
		Verify:    true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })
	return a, m
}

// mustAllocate allocates size bytes and fails the test on error.
func mustAllocate(t testing.TB, a *Allocator, size int) (Ptr, []byte) {
	t.Helper()
	p, b, err := a.Allocate(size)
	require.NoError(t, err)
	require.False(t, p.IsNil(), "Allocate(%d) returned nil", size)
	require.Len(t, b, size)
	return p, b
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

// requireFilled checks that every byte of b equals v.
func requireFilled(t testing.TB, b []byte, v byte) {
	t.Helper()
	for i := range b {
		if b[i] != v {
			t.Fatalf("byte %d = 0x%02x, want 0x%02x", i, b[i], v)
		}
	}
}
