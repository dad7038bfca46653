package malloc

import (
	"fmt"

	"github.com/joshuapare/mallockit/internal/format"
)

// allocateLarge maps a dedicated region for a block of need bytes, which
// exceeds the chunk size. The block's tags record need, so Free recognizes it
// by size alone.
func (a *Allocator) allocateLarge(size, need int) (Ptr, []byte, error) {
	length := format.AlignUp(need, a.pageSize)
	if length > maxRegionSize {
		return 0, nil, fmt.Errorf("%w: %d bytes exceeds the largest mapping", ErrInvalidSize, size)
	}

	slot, err := a.mapRegion(length, true)
	if err != nil {
		return 0, nil, err
	}
	mem := a.regions[slot].mem
	writeTags(mem, 0, need, false)

	pages := a.pagesFor(length)
	a.stats.PagesMapped += pages
	a.stats.ChunksAllocated++
	a.stats.LargeLive++

	a.log.Debug("malloc: large mapped", "slot", slot, "need", need, "length", length, "pages", pages)

	ref := makeRef(slot, 0)
	po := format.HeaderSize
	return ref.payload(), mem[po : po+size : po+format.PayloadSize(need)], nil
}

// releaseLarge unmaps the whole region of a large object.
func (a *Allocator) releaseLarge(slot int) error {
	r := a.regions[slot]
	if err := a.mapper.Unmap(r.raw); err != nil {
		a.log.Error("malloc: unmap failed", "slot", slot, "length", len(r.mem), "err", err)
		return fmt.Errorf("%w: unmap %d bytes: %w", ErrMapFailed, len(r.mem), err)
	}
	a.dropRegion(slot)

	pages := a.pagesFor(len(r.mem))
	a.stats.PagesUnmapped += pages
	a.stats.ChunksFreed++
	a.stats.LargeLive--

	a.log.Debug("malloc: large released", "slot", slot, "length", len(r.mem), "pages", pages)
	return nil
}
