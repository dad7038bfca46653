package malloc

import (
	"fmt"

	"github.com/joshuapare/mallockit/internal/format"
)

// region is one OS mapping: a chunk carved into blocks, or a single large
// object. raw is the slice the Mapper returned and is what gets unmapped.
type region struct {
	raw   []byte
	mem   []byte
	large bool
}

// addRegion files a mapping in the region table, reusing a released slot
// when one is available.
func (a *Allocator) addRegion(r region) (int, error) {
	if n := len(a.freeSlots); n > 0 {
		slot := a.freeSlots[n-1]
		a.freeSlots = a.freeSlots[:n-1]
		a.regions[slot] = r
		return slot, nil
	}
	if len(a.regions) >= maxSlots {
		return 0, ErrAddressSpace
	}
	a.regions = append(a.regions, r)
	return len(a.regions) - 1, nil
}

// dropRegion forgets a released mapping and recycles its slot.
func (a *Allocator) dropRegion(slot int) {
	a.regions[slot] = region{}
	a.freeSlots = append(a.freeSlots, slot)
}

// mapRegion asks the Mapper for size bytes and registers them.
func (a *Allocator) mapRegion(size int, large bool) (int, error) {
	raw, err := a.mapper.Map(size)
	if err != nil {
		a.log.Error("malloc: map failed", "size", size, "large", large, "err", err)
		return 0, fmt.Errorf("%w: %d bytes: %w", ErrMapFailed, size, err)
	}
	if len(raw) < size {
		_ = a.mapper.Unmap(raw)
		return 0, fmt.Errorf("%w: mapper returned %d of %d bytes", ErrMapFailed, len(raw), size)
	}

	slot, err := a.addRegion(region{raw: raw, mem: raw[:size:size], large: large})
	if err != nil {
		_ = a.mapper.Unmap(raw)
		return 0, err
	}
	return slot, nil
}

// acquireChunk maps a fresh chunk and files it as one free block spanning
// the whole chunk.
func (a *Allocator) acquireChunk() error {
	slot, err := a.mapRegion(a.chunkSize, false)
	if err != nil {
		return err
	}
	a.stats.PagesMapped++
	a.stats.Chunks++

	a.insert(makeRef(slot, 0), a.chunkSize)

	a.log.Debug("malloc: chunk acquired", "slot", slot, "size", a.chunkSize, "chunks", a.stats.Chunks)
	return nil
}

// pagesFor converts a mapping length into chunk-size units.
func (a *Allocator) pagesFor(length int) int64 {
	return int64(format.DivUp(length, a.chunkSize))
}
