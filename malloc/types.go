package malloc

import (
	"fmt"

	"github.com/joshuapare/mallockit/internal/format"
)

// Ptr is the handle of an allocated payload.
//
// Memory is addressed by region and offset rather than by machine address:
// the upper 24 bits hold the region slot plus one, the lower 40 bits the byte
// offset of the payload inside the region. The zero Ptr is nil.
type Ptr uint64

const (
	offsetBits = 40
	offsetMask = 1<<offsetBits - 1

	// maxSlots is the number of regions a Ptr can address.
	maxSlots = 1<<(64-offsetBits) - 1

	// maxRegionSize bounds a single mapping so every offset fits a Ptr.
	maxRegionSize = offsetMask
)

func (p Ptr) slot() int { return int(uint64(p)>>offsetBits) - 1 }
func (p Ptr) off() int  { return int(uint64(p) & offsetMask) }

// IsNil reports whether p is the nil handle.
func (p Ptr) IsNil() bool { return p == 0 }

func (p Ptr) String() string {
	if p == 0 {
		return "nil"
	}
	return fmt.Sprintf("%d:%#06x", p.slot(), p.off())
}

// blockRef addresses a block header. It shares the Ptr encoding and is what
// free-list links store inside free blocks.
type blockRef uint64

func makeRef(slot, off int) blockRef {
	return blockRef(uint64(slot+1)<<offsetBits | uint64(off))
}

func (r blockRef) slot() int { return int(uint64(r)>>offsetBits) - 1 }
func (r blockRef) off() int  { return int(uint64(r) & offsetMask) }

// payload returns the handle of the block's payload.
func (r blockRef) payload() Ptr { return Ptr(r) + format.HeaderSize }

func (r blockRef) String() string {
	if r == 0 {
		return "nil"
	}
	return fmt.Sprintf("%d:%#06x", r.slot(), r.off())
}
