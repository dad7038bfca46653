package malloc

import (
	"fmt"

	"github.com/joshuapare/mallockit/internal/buf"
	"github.com/joshuapare/mallockit/internal/format"
)

// Check walks every chunk and every bin and reports the first broken
// invariant, wrapped in ErrCorrupt:
//
//   - blocks tile each chunk exactly, with matching header and footer words
//   - no two address-adjacent blocks are both free
//   - every free block sits in exactly one bin, inside that bin's size range
//   - bin links are consistent in both directions and counts match
//   - large objects carry a size above the chunk size
func (a *Allocator) Check() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.check()
}

func (a *Allocator) check() error {
	free := make(map[blockRef]int)

	for slot := range a.regions {
		r := &a.regions[slot]
		if r.mem == nil {
			continue
		}
		if r.large {
			size, isFree, ok := readTag(r.mem, 0)
			if !ok || isFree || size <= a.chunkSize || size > len(r.mem) {
				return fmt.Errorf("%w: large region %d: header size %d free=%v", ErrCorrupt, slot, size, isFree)
			}
			continue
		}
		if err := a.checkChunk(slot, r.mem, free); err != nil {
			return err
		}
	}

	for i := range a.bins {
		b := &a.bins[i]
		lo, hi := a.sizes.bounds(i)
		var prev blockRef
		n := 0
		for ref := b.head; ref != 0; ref = a.next(ref) {
			size, ok := free[ref]
			if !ok {
				return fmt.Errorf("%w: bin %d holds %s which is not an unlisted free block", ErrCorrupt, i, ref)
			}
			delete(free, ref)
			if size < lo || size >= hi {
				return fmt.Errorf("%w: bin %d [%d, %d) holds %s of size %d", ErrCorrupt, i, lo, hi, ref, size)
			}
			if got := a.prev(ref); got != prev {
				return fmt.Errorf("%w: bin %d: %s prev=%s, want %s", ErrCorrupt, i, ref, got, prev)
			}
			prev = ref
			n++
		}
		if n != b.count {
			return fmt.Errorf("%w: bin %d: walked %d blocks, count %d", ErrCorrupt, i, n, b.count)
		}
	}

	if len(free) != 0 {
		for ref := range free {
			return fmt.Errorf("%w: free block %s (and %d more) missing from bins", ErrCorrupt, ref, len(free)-1)
		}
	}
	return nil
}

// checkChunk tiles one chunk and records its free blocks.
func (a *Allocator) checkChunk(slot int, mem []byte, free map[blockRef]int) error {
	prevFree := false
	for off := 0; off < len(mem); {
		size, isFree, ok := readTag(mem, off)
		if !ok || size < format.MinBlockSize || !format.IsAligned(size) || off+size > len(mem) {
			return fmt.Errorf("%w: chunk %d: block %#x has size %d", ErrCorrupt, slot, off, size)
		}
		hw, _ := buf.Word(mem, off)
		fw, _ := buf.Word(mem, format.FooterOffset(off, size))
		if hw != fw {
			return fmt.Errorf("%w: chunk %d: block %#x header %#x != footer %#x", ErrCorrupt, slot, off, hw, fw)
		}
		if isFree {
			if prevFree {
				return fmt.Errorf("%w: chunk %d: adjacent free blocks at %#x", ErrCorrupt, slot, off)
			}
			free[makeRef(slot, off)] = size
		}
		prevFree = isFree
		off += size
	}
	return nil
}
