package malloc

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshuapare/mallockit/internal/buf"
	"github.com/joshuapare/mallockit/internal/format"
)

// Allocator is a boundary-tag allocator over OS-mapped chunks with
// segregated free lists. All methods are safe for concurrent use; a single
// mutex serializes every metadata access.
type Allocator struct {
	mu sync.Mutex

	chunkSize int
	pageSize  int
	mapper    Mapper
	log       *slog.Logger
	verify    bool

	// Size class configuration and lookup table
	sizes *sizeClassTable
	bins  []bin

	// Region table indexed by Ptr slot; released large-object slots are reused
	regions   []region
	freeSlots []int

	stats  Stats
	closed bool
}

// New creates an allocator. No memory is mapped until the first allocation.
// A nil cfg selects defaults.
func New(cfg *Config) (*Allocator, error) {
	c, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	sizes := newSizeClassTable(*c.SizeClasses, c.ChunkSize)
	a := &Allocator{
		chunkSize: c.ChunkSize,
		pageSize:  c.PageSize,
		mapper:    c.Mapper,
		log:       c.Logger,
		verify:    c.Verify,
		sizes:     sizes,
		bins:      make([]bin, sizes.NumClasses()),
	}
	for i := range a.bins {
		a.bins[i].threshold = sizes.thresholds[i]
	}
	return a, nil
}

// ChunkSize returns the chunk size, which is also the large-object threshold.
func (a *Allocator) ChunkSize() int {
	return a.chunkSize
}

// Allocate returns a block with at least size bytes of payload. The returned
// slice has len size and cap equal to the usable payload; its contents are
// uninitialized (fresh chunks are zeroed, reused blocks are not).
//
// Allocate(0) returns a nil Ptr, a nil slice and no error without touching
// any memory or counter.
func (a *Allocator) Allocate(size int) (Ptr, []byte, error) {
	if size < 0 {
		return 0, nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size == 0 {
		return 0, nil, nil
	}
	padded, ok := buf.AddOverflowSafe(size, format.AlignMask+format.Overhead)
	if !ok || padded > maxRegionSize {
		return 0, nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	need := format.BlockSize(size)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return 0, nil, ErrClosed
	}

	if need > a.chunkSize {
		p, payload, err := a.allocateLarge(size, need)
		if err != nil {
			return 0, nil, err
		}
		return p, payload, a.verifyLocked("allocate")
	}

	ref, blockSize, err := a.allocateBlock(need)
	if err != nil {
		return 0, nil, err
	}
	mem := a.memOf(ref)
	po := ref.off() + format.HeaderSize
	payload := mem[po : po+size : po+format.PayloadSize(blockSize)]
	return ref.payload(), payload, a.verifyLocked("allocate")
}

// allocateBlock takes a block of at least need bytes off the bins, mapping a
// new chunk on a miss, and splits off any usable remainder.
func (a *Allocator) allocateBlock(need int) (blockRef, int, error) {
	i, ref, size, ok := a.findFit(need)
	if !ok {
		if err := a.acquireChunk(); err != nil {
			return 0, 0, err
		}
		// Retry after grow
		i, ref, size, ok = a.findFit(need)
		if !ok {
			return 0, 0, ErrNoSpace
		}
	}
	a.remove(i, ref)

	mem := a.memOf(ref)
	off := ref.off()
	if rem := size - need; rem >= format.MinBlockSize {
		// Split: allocate head, return tail to the bins
		a.insert(makeRef(ref.slot(), off+need), rem)
		size = need
		a.stats.Splits++
	}
	writeTags(mem, off, size, false)

	a.stats.ChunksAllocated++
	return ref, size, nil
}

// Free releases a block returned by Allocate or Reallocate. Freeing nil is a
// no-op. Adjacent free blocks are merged before Free returns, and large
// objects are unmapped.
func (a *Allocator) Free(p Ptr) error {
	if p == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}

	ref, err := a.resolve(p)
	if err != nil {
		return err
	}
	slot := ref.slot()
	r := &a.regions[slot]
	off := ref.off()

	size, free, ok := readTag(r.mem, off)
	if !ok || size < format.MinBlockSize || off+size > len(r.mem) {
		return fmt.Errorf("%w: %s: header size %d", ErrBadPtr, p, size)
	}
	if free {
		return fmt.Errorf("%w: %s", ErrDoubleFree, p)
	}

	if size > a.chunkSize {
		if !r.large || off != 0 {
			return fmt.Errorf("%w: %s: size %d outside a large region", ErrCorrupt, p, size)
		}
		if err := a.releaseLarge(slot); err != nil {
			return err
		}
		return a.verifyLocked("free")
	}
	if r.large {
		return fmt.Errorf("%w: %s: large region with size %d", ErrCorrupt, p, size)
	}

	// Validate both neighbors before mutating anything.
	left, hasLeft, err := leftNeighbor(r.mem, off)
	if err != nil {
		return err
	}
	right, hasRight, err := rightNeighbor(r.mem, off, size)
	if err != nil {
		return err
	}

	if hasLeft && left.free {
		a.remove(a.sizes.getSizeClass(left.size), makeRef(slot, left.off))
		off = left.off
		size += left.size
		a.stats.CoalesceLeft++
	}
	if hasRight && right.free {
		a.remove(a.sizes.getSizeClass(right.size), makeRef(slot, right.off))
		size += right.size
		a.stats.CoalesceRight++
	}
	a.insert(makeRef(slot, off), size)

	a.stats.ChunksFreed++
	return a.verifyLocked("free")
}

// Reallocate moves the payload of p into a new block of size bytes and frees
// p. The first min(usable size of p, size) bytes are copied; the rest is
// uninitialized. A nil p behaves like Allocate; size 0 frees p and returns nil.
// On error the returned handle is nil, no new block is kept and p remains
// allocated, including when p itself fails to free after the copy.
func (a *Allocator) Reallocate(p Ptr, size int) (Ptr, []byte, error) {
	if p == 0 {
		return a.Allocate(size)
	}
	if size < 0 {
		return 0, nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if size == 0 {
		return 0, nil, a.Free(p)
	}

	old, err := a.Bytes(p)
	if err != nil {
		return 0, nil, err
	}
	np, payload, err := a.Allocate(size)
	if err != nil {
		return 0, nil, err
	}
	// Only caller-owned bytes are touched here, so the copy runs unlocked.
	copy(payload, old)

	if err := a.Free(p); err != nil {
		// p stays the caller's block; drop the new one.
		if ferr := a.Free(np); ferr != nil {
			return 0, nil, errors.Join(err, ferr)
		}
		return 0, nil, err
	}
	return np, payload, nil
}

// Bytes returns the full usable payload of an allocated block.
func (a *Allocator) Bytes(p Ptr) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrClosed
	}

	ref, mem, size, err := a.liveBlock(p)
	if err != nil {
		return nil, err
	}
	po := ref.off() + format.HeaderSize
	return mem[po : po+format.PayloadSize(size) : po+format.PayloadSize(size)], nil
}

// UsableSize returns the payload capacity of an allocated block, which is at
// least the size it was requested with.
func (a *Allocator) UsableSize(p Ptr) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return 0, ErrClosed
	}

	_, _, size, err := a.liveBlock(p)
	if err != nil {
		return 0, err
	}
	return format.PayloadSize(size), nil
}

// Close unmaps every region. Outstanding handles become invalid and further
// calls fail with ErrClosed. Close is idempotent.
func (a *Allocator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	for slot := range a.regions {
		r := &a.regions[slot]
		if r.raw == nil {
			continue
		}
		if err := a.mapper.Unmap(r.raw); err != nil {
			errs = append(errs, fmt.Errorf("%w: slot %d: %w", ErrMapFailed, slot, err))
		}
	}
	a.regions = nil
	a.freeSlots = nil
	for i := range a.bins {
		a.bins[i].head = 0
		a.bins[i].count = 0
	}
	a.stats.Chunks = 0
	a.stats.LargeLive = 0
	return errors.Join(errs...)
}

// resolve maps a payload handle to its block header.
func (a *Allocator) resolve(p Ptr) (blockRef, error) {
	slot, off := p.slot(), p.off()
	if slot < 0 || slot >= len(a.regions) || a.regions[slot].mem == nil {
		return 0, fmt.Errorf("%w: %s: unknown region", ErrBadPtr, p)
	}
	if off < format.HeaderSize || !format.IsAligned(off) || off >= len(a.regions[slot].mem) {
		return 0, fmt.Errorf("%w: %s: bad offset", ErrBadPtr, p)
	}
	return makeRef(slot, off-format.HeaderSize), nil
}

// liveBlock resolves p and checks that it heads an allocated block.
func (a *Allocator) liveBlock(p Ptr) (blockRef, []byte, int, error) {
	ref, err := a.resolve(p)
	if err != nil {
		return 0, nil, 0, err
	}
	mem := a.memOf(ref)
	size, free, ok := readTag(mem, ref.off())
	if !ok || size < format.MinBlockSize || ref.off()+size > len(mem) {
		return 0, nil, 0, fmt.Errorf("%w: %s: header size %d", ErrBadPtr, p, size)
	}
	if free {
		return 0, nil, 0, fmt.Errorf("%w: %s: block is free", ErrBadPtr, p)
	}
	return ref, mem, size, nil
}

// verifyLocked runs the integrity check when Verify is configured.
func (a *Allocator) verifyLocked(op string) error {
	if !a.verify {
		return nil
	}
	if err := a.check(); err != nil {
		a.log.Error("malloc: integrity check failed", "op", op, "err", err)
		return fmt.Errorf("after %s: %w", op, err)
	}
	return nil
}
